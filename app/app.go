// Package app wires a container and its sound track to a HAL.
package app

import (
	"errors"
	"fmt"
	"time"

	"pixelshell/codec"
	"pixelshell/hal"
	"pixelshell/player"
	"pixelshell/render"

	"github.com/sirupsen/logrus"
)

// DefaultErrorHold is how long a fatal error stays on screen before the run
// ends, unless quit is requested first.
const DefaultErrorHold = 5 * time.Second

var ErrNativeSize = errors.New("app: unknown native size")

// Config describes what to play.
type Config struct {
	// Video is a container, raw or zstd-compressed.
	Video []byte
	// Audio is an Ogg Vorbis, WAV or MP3 file. Without it playback follows
	// the wall clock.
	Audio []byte
	// Width and Height are the resolution the rects were authored at. Zero
	// falls back to the extent of the rects.
	Width       int
	Height      int
	Volume      float64
	MaxFailures int
	// ErrorHold overrides DefaultErrorHold; negative ends the run at once.
	ErrorHold time.Duration
}

// Player plays one container on a HAL.
type Player struct {
	h     hal.HAL
	cfg   Config
	log   *logrus.Entry
	stage string

	summary codec.Summary
	sched   *player.Scheduler
	console *render.Console

	err      error
	failedAt time.Time
	now      func() time.Time
}

// New returns the step function of a Player for h. Setup failures are shown
// on screen; the step function reports them once the error hold has passed.
func New(h hal.HAL, cfg Config) func() error {
	p := newPlayer(h, cfg)
	return p.Step
}

func newPlayer(h hal.HAL, cfg Config) *Player {
	log := logrus.WithField("component", "app")
	if l := h.Logger(); l != nil {
		log = l.WithField("component", "app")
	}
	if cfg.ErrorHold == 0 {
		cfg.ErrorHold = DefaultErrorHold
	}
	p := &Player{h: h, cfg: cfg, log: log, now: time.Now}
	if err := p.setup(); err != nil {
		p.fail(fmt.Errorf("%s: %w", p.stage, err))
	}
	return p
}

// boot records the setup step in progress for diagnostics.
func (p *Player) boot(stage string) {
	p.stage = stage
	p.log.WithFields(logrus.Fields{
		"function": "boot",
		"stage":    stage,
	}).Debug("Boot step")
}

func (p *Player) setup() error {
	p.boot("decompressing video")
	data, err := codec.Decompress(p.cfg.Video)
	if err != nil {
		return err
	}

	p.boot("validating video")
	s, err := codec.Validate(data)
	if err != nil {
		return err
	}
	p.summary = s

	w, h := p.cfg.Width, p.cfg.Height
	if w <= 0 || h <= 0 {
		w, h = s.ExtentW, s.ExtentH
		if w <= 0 || h <= 0 {
			return ErrNativeSize
		}
		p.log.WithFields(logrus.Fields{
			"function": "setup",
			"width":    w,
			"height":   h,
		}).Warn("Native size not given, using the extent of the rects")
	}

	p.boot("creating renderer")
	fb := p.h.Framebuffer()
	sc, err := render.NewScaler(fb, w, h)
	if err != nil {
		return err
	}
	p.console = render.NewConsole(render.NewDisplay(fb))

	dec, err := codec.NewDecoder(data)
	if err != nil {
		return err
	}

	p.boot("starting clock")
	clock := p.startClock(s.FPS)

	sx, sy := sc.Scale()
	p.log.WithFields(logrus.Fields{
		"function": "setup",
		"fps":      s.FPS,
		"frames":   s.Frames,
		"duration": s.Duration().String(),
		"native":   fmt.Sprintf("%dx%d", w, h),
		"screen":   fmt.Sprintf("%dx%d", fb.Width(), fb.Height()),
		"scale_x":  sx,
		"scale_y":  sy,
	}).Info("Playback ready")

	p.sched = player.NewScheduler(dec, clock, sc,
		player.WithQuit(p.h.Input().QuitRequested),
		player.WithMaxFailures(p.cfg.MaxFailures),
		player.WithLogger(p.log.WithField("component", "scheduler")),
		player.WithStateChange(func(from, to player.State) {
			p.log.WithFields(logrus.Fields{
				"function": "Scheduler",
				"from":     from.String(),
				"to":       to.String(),
			}).Debug("State change")
		}),
	)
	return p.sched.Start()
}

// startClock plays the sound track and follows it, or falls back to the
// wall clock.
func (p *Player) startClock(fps uint16) hal.Clock {
	if len(p.cfg.Audio) == 0 {
		p.log.WithField("function", "startClock").Info("No audio, using the wall clock")
		return hal.NewWallClock(fps)
	}
	clock, err := p.h.Audio().Play(p.cfg.Audio, fps, p.cfg.Volume)
	if err != nil {
		p.log.WithFields(logrus.Fields{
			"function": "startClock",
			"error":    err.Error(),
		}).Warn("Audio unavailable, using the wall clock")
		return hal.NewWallClock(fps)
	}
	return clock
}

// Summary returns the validated container summary.
func (p *Player) Summary() codec.Summary { return p.summary }

// Step renders at most one frame. It returns hal.ErrStop when playback ends
// or quit is requested.
func (p *Player) Step() (err error) {
	defer p.recoverPanic(&err)

	if p.err != nil {
		return p.holdError()
	}

	res, err := p.sched.Step()
	if err != nil {
		p.fail(err)
		return p.holdError()
	}
	if res == player.ResultStopped {
		st := p.sched.Stats()
		p.log.WithFields(logrus.Fields{
			"function":         "Step",
			"rendered":         st.Rendered,
			"dropped":          st.Dropped,
			"clock_failures":   st.ClockFailures,
			"present_failures": st.PresentFailures,
		}).Info("Playback finished")
		return hal.ErrStop
	}
	return nil
}

// fail logs err and puts it on screen. Only the first failure is kept.
func (p *Player) fail(err error) {
	if p.err != nil {
		return
	}
	p.err = err
	p.failedAt = p.now()
	p.log.WithFields(logrus.Fields{
		"function": "fail",
		"error":    err.Error(),
	}).Error("Playback failed")

	if p.console == nil {
		p.console = render.NewConsole(render.NewDisplay(p.h.Framebuffer()))
	}
	if serr := p.console.ShowError("Pixel Shell error", err); serr != nil {
		p.log.WithFields(logrus.Fields{
			"function": "fail",
			"error":    serr.Error(),
		}).Warn("Cannot show error screen")
	}
}

// holdError keeps the error screen up until quit or the hold expires.
func (p *Player) holdError() error {
	if p.cfg.ErrorHold < 0 || p.h.Input().QuitRequested() || p.now().Sub(p.failedAt) >= p.cfg.ErrorHold {
		return p.err
	}
	return nil
}
