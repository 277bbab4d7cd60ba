//go:build cgo

package hal

import (
	"errors"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/sirupsen/logrus"
)

// WindowConfig controls the desktop window.
type WindowConfig struct {
	Title string
	// Width and Height of the framebuffer; zero uses the monitor size.
	Width  int
	Height int
	// TPS is the number of step calls per second (default 60).
	TPS int
	// Overlay makes the window transparent, undecorated, always on top and
	// invisible to the mouse.
	Overlay bool
	Logger  *logrus.Entry
}

// RunWindow starts a desktop window that displays the framebuffer and polls
// the quit keys. It blocks until the window closes or a step returns an
// error. ErrStop ends the run with a nil error.
func RunWindow(cfg WindowConfig, newApp func(HAL) func() error) error {
	w, h := cfg.Width, cfg.Height
	if w <= 0 || h <= 0 {
		w, h = ebiten.Monitor().Size()
	}
	if cfg.TPS <= 0 {
		cfg.TPS = 60
	}

	host := newHost(w, h, cfg.Logger, newHostAudio())
	step := newApp(host)

	g := &hostGame{h: host, step: step}
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(host.fb.width, host.fb.height)
	ebiten.SetTPS(cfg.TPS)
	ebiten.SetWindowClosingHandled(true)

	opts := &ebiten.RunGameOptions{}
	if cfg.Overlay {
		ebiten.SetWindowDecorated(false)
		ebiten.SetWindowFloating(true)
		ebiten.SetWindowMousePassthrough(true)
		ebiten.SetWindowPosition(0, 0)
		opts.ScreenTransparent = true
	}

	host.log.WithFields(logrus.Fields{
		"function": "RunWindow",
		"width":    host.fb.width,
		"height":   host.fb.height,
		"tps":      cfg.TPS,
		"overlay":  cfg.Overlay,
	}).Info("Opening window")

	err := ebiten.RunGameWithOptions(g, opts)
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

type hostGame struct {
	h     *hostHAL
	fbImg *ebiten.Image
	pix   []byte
	shown uint64
	step  func() error
}

func (g *hostGame) Update() error {
	g.h.in.poll()
	if g.step != nil {
		if err := g.step(); err != nil {
			if errors.Is(err, ErrStop) {
				return ebiten.Termination
			}
			return err
		}
	}
	return nil
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	fb := g.h.fb
	if g.fbImg == nil {
		g.fbImg = ebiten.NewImage(fb.width, fb.height)
		g.pix = make([]byte, len(fb.buf))
	}

	if n := fb.snapshot(g.pix); n != g.shown {
		g.shown = n
		g.fbImg.WritePixels(g.pix)
	}
	screen.DrawImage(g.fbImg, nil)
}

func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.h.fb.width, g.h.fb.height
}
