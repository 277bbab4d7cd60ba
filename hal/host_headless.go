package hal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// HeadlessConfig controls the no-window host runner.
type HeadlessConfig struct {
	Hz int
	// Ticks stops the run after this many steps when non-zero.
	Ticks  uint64
	Width  int
	Height int
	Logger *logrus.Entry
}

// RunHeadless drives newApp's step function from a ticker without opening a
// window. There is no sound device; Audio().Play fails with ErrNotImplemented.
//
// Cancelling ctx requests quit and runs one more step so the app can observe
// it. A step returning ErrStop ends the run with a nil error.
func RunHeadless(ctx context.Context, newApp func(HAL) func() error, cfg HeadlessConfig) error {
	_, err := runHeadless(ctx, newApp, cfg)
	return err
}

func runHeadless(ctx context.Context, newApp func(HAL) func() error, cfg HeadlessConfig) (*hostHAL, error) {
	if cfg.Hz <= 0 {
		cfg.Hz = 60
	}
	d := time.Second / time.Duration(cfg.Hz)
	if d <= 0 {
		return nil, fmt.Errorf("invalid headless hz: %d", cfg.Hz)
	}

	h := newHost(cfg.Width, cfg.Height, cfg.Logger, nil)
	step := newApp(h)

	h.log.WithFields(logrus.Fields{
		"function": "RunHeadless",
		"hz":       cfg.Hz,
		"width":    h.fb.width,
		"height":   h.fb.height,
	}).Debug("Headless runner started")

	t := time.NewTicker(d)
	defer t.Stop()

	var tick uint64
	for {
		select {
		case <-ctx.Done():
			h.in.requestQuit()
			if _, err := runStep(step); err != nil {
				return h, err
			}
			return h, ctx.Err()
		case <-t.C:
			stop, err := runStep(step)
			if err != nil {
				return h, err
			}
			if stop {
				return h, nil
			}
			tick++
			if cfg.Ticks > 0 && tick >= cfg.Ticks {
				return h, nil
			}
		}
	}
}

func runStep(step func() error) (stop bool, err error) {
	if step == nil {
		return false, nil
	}
	err = step()
	if errors.Is(err, ErrStop) {
		return true, nil
	}
	return false, err
}
