//go:build !cgo

package hal

import (
	"errors"

	"github.com/sirupsen/logrus"
)

// WindowConfig controls the desktop window.
type WindowConfig struct {
	Title   string
	Width   int
	Height  int
	TPS     int
	Overlay bool
	Logger  *logrus.Entry
}

func RunWindow(_ WindowConfig, _ func(h HAL) func() error) error {
	return errors.New("window mode requires cgo (build/run with CGO_ENABLED=1, or use -headless)")
}
