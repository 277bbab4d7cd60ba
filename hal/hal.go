package hal

import (
	"errors"

	"github.com/sirupsen/logrus"
)

var (
	ErrNotImplemented = errors.New("not implemented")

	// ErrStop is returned by a step function to end a run cleanly.
	ErrStop = errors.New("hal: stop")
)

// PixelFormat defines the framebuffer pixel encoding.
type PixelFormat uint8

const (
	// PixelFormatRGBA8888 is 32bpp: r, g, b, a bytes in memory order.
	PixelFormatRGBA8888 PixelFormat = iota + 1
)

// Framebuffer is a simple pixel buffer plus a "present" hook.
type Framebuffer interface {
	Width() int
	Height() int
	Format() PixelFormat
	StrideBytes() int
	Buffer() []byte
	// Clear sets every pixel to fully transparent black.
	Clear()
	Present() error
}

// Clock reports elapsed time in frame ticks since playback started.
type Clock interface {
	Ticks() (uint64, error)
}

// Input is polled once per iteration.
type Input interface {
	QuitRequested() bool
}

// Audio plays an encoded sound track and returns a clock driven by its
// playback position.
type Audio interface {
	Play(data []byte, fps uint16, volume float64) (Clock, error)
}

// HAL provides the only contact point between the player and the outside world.
type HAL interface {
	Logger() *logrus.Entry
	Framebuffer() Framebuffer
	Input() Input
	Audio() Audio
}
