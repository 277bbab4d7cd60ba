package player

import (
	"errors"
	"fmt"
	"image/color"
	"io"

	"pixelshell/codec"
	"pixelshell/hal"
	"pixelshell/render"

	"github.com/sirupsen/logrus"
)

// ViewerConfig controls the debug viewer.
type ViewerConfig struct {
	// Outline is drawn around every rect unless it is the zero color.
	Outline color.RGBA
	HUD     bool
	Logger  *logrus.Entry
}

// Viewer plays a container one frame per Step at the framebuffer's own
// resolution, on an opaque black background. The caller paces Step at the
// container's fps.
type Viewer struct {
	dec  *codec.Decoder
	sc   *render.Scaler
	disp *render.Display
	cfg  ViewerConfig
	log  *logrus.Entry

	last  int
	rects int
}

func NewViewer(dec *codec.Decoder, fb hal.Framebuffer, cfg ViewerConfig) (*Viewer, error) {
	sc, err := render.NewScaler(fb, fb.Width(), fb.Height())
	if err != nil {
		return nil, err
	}
	log := cfg.Logger
	if log == nil {
		log = logrus.WithField("component", "viewer")
	}
	return &Viewer{
		dec:  dec,
		sc:   sc,
		disp: render.NewDisplay(fb),
		cfg:  cfg,
		log:  log,
		last: -1,
	}, nil
}

// LastFrame returns the index and rect count of the last frame shown, or -1.
func (v *Viewer) LastFrame() (index, rects int) { return v.last, v.rects }

// Step shows the next frame. It returns hal.ErrStop after the last one.
func (v *Viewer) Step() error {
	f, err := v.dec.NextFrame()
	if errors.Is(err, io.EOF) {
		v.log.WithFields(logrus.Fields{
			"function": "Step",
			"frames":   v.dec.Frames(),
		}).Info("End of stream")
		return hal.ErrStop
	}
	if err != nil {
		return err
	}

	v.sc.Fill(render.Black)
	n := 0
	for {
		r, err := f.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		v.sc.DrawRect(r)
		if v.cfg.Outline != (color.RGBA{}) {
			v.sc.StrokeRect(r, v.cfg.Outline)
		}
		n++
	}
	v.last, v.rects = f.Index(), n

	if v.cfg.HUD {
		render.DrawHUD(v.disp, fmt.Sprintf("Frame: %d | Rects: %d", v.last, n), render.White)
	}
	if fps := int(v.dec.FPS()); fps > 0 && v.last%fps == 0 {
		v.log.WithFields(logrus.Fields{
			"function": "Step",
			"frame":    v.last,
			"rects":    n,
		}).Info("Frame")
	}
	return v.sc.Present()
}
