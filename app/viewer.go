package app

import (
	"image/color"

	"pixelshell/codec"
	"pixelshell/hal"
	"pixelshell/player"

	"github.com/sirupsen/logrus"
)

// ViewerConfig describes a debug viewing session.
type ViewerConfig struct {
	Video   []byte
	HUD     bool
	Outline color.RGBA
}

// NewViewer returns a step function that shows one frame per call at the
// framebuffer's resolution. The host paces it at the container's fps.
func NewViewer(h hal.HAL, cfg ViewerConfig) func() error {
	log := logrus.WithField("component", "viewer")
	if l := h.Logger(); l != nil {
		log = l.WithField("component", "viewer")
	}

	data, err := codec.Decompress(cfg.Video)
	if err != nil {
		return func() error { return err }
	}
	dec, err := codec.NewDecoder(data)
	if err != nil {
		return func() error { return err }
	}
	v, err := player.NewViewer(dec, h.Framebuffer(), player.ViewerConfig{
		Outline: cfg.Outline,
		HUD:     cfg.HUD,
		Logger:  log,
	})
	if err != nil {
		return func() error { return err }
	}

	log.WithFields(logrus.Fields{
		"function": "NewViewer",
		"fps":      dec.FPS(),
	}).Info("Viewer ready")

	in := h.Input()
	return func() error {
		if in.QuitRequested() {
			return hal.ErrStop
		}
		return v.Step()
	}
}
