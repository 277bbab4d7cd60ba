package hal

import (
	"errors"
	"time"
)

// WallClock counts frame ticks from the moment it was created.
type WallClock struct {
	fps   uint16
	start time.Time
	now   func() time.Time
}

// NewWallClock returns a clock ticking fps times per second.
func NewWallClock(fps uint16) *WallClock {
	return &WallClock{fps: fps, start: time.Now(), now: time.Now}
}

func (c *WallClock) Ticks() (uint64, error) {
	if c.fps == 0 {
		return 0, errors.New("hal: wall clock: zero fps")
	}
	return durationTicks(c.now().Sub(c.start), c.fps), nil
}

// Reset restarts the count at zero.
func (c *WallClock) Reset() { c.start = c.now() }

func durationTicks(d time.Duration, fps uint16) uint64 {
	if d <= 0 {
		return 0
	}
	return uint64(d) * uint64(fps) / uint64(time.Second)
}
