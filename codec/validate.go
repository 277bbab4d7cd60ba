package codec

import (
	"encoding/binary"
	"fmt"
	"time"
)

// Summary describes a validated container.
type Summary struct {
	FPS    uint16
	Frames int
	Rects  int
	// EmptyFrames counts frames with no rects.
	EmptyFrames int
	// MaxRects is the largest rect count of a single frame.
	MaxRects int
	// Degenerate counts rects with exactly one zero dimension. They decode
	// but draw nothing.
	Degenerate int
	// Extent is the smallest native width and height that contains every rect.
	ExtentW int
	ExtentH int
}

// Duration returns the nominal playback time.
func (s Summary) Duration() time.Duration {
	if s.FPS == 0 {
		return 0
	}
	return time.Duration(s.Frames) * time.Second / time.Duration(s.FPS)
}

// Validate checks the structure of a container before it is played.
//
// The record area must be a whole number of rects and must end with an
// end-of-frame marker. Errors wrap ErrMalformed.
func Validate(data []byte) (Summary, error) {
	if len(data) < HeaderSize {
		return Summary{}, fmt.Errorf("%w: %w", ErrMalformed, ErrTruncatedHeader)
	}

	s := Summary{FPS: binary.LittleEndian.Uint16(data[:HeaderSize])}
	if s.FPS == 0 {
		return s, fmt.Errorf("%w: zero fps", ErrMalformed)
	}

	body := data[HeaderSize:]
	if len(body)%RectSize != 0 {
		return s, fmt.Errorf("%w: %d record bytes is not a multiple of %d", ErrMalformed, len(body), RectSize)
	}

	n := 0
	for off := 0; off < len(body); off += RectSize {
		r := ParseRect(body[off:])
		if r.IsEndOfFrame() {
			if n == 0 {
				s.EmptyFrames++
			}
			s.MaxRects = max(s.MaxRects, n)
			s.Frames++
			n = 0
			continue
		}
		if r.W == 0 || r.H == 0 {
			s.Degenerate++
		}
		n++
		s.Rects++
		s.ExtentW = max(s.ExtentW, int(r.X)+int(r.W))
		s.ExtentH = max(s.ExtentH, int(r.Y)+int(r.H))
	}
	if n != 0 {
		return s, fmt.Errorf("%w: %w: last frame has no end marker", ErrMalformed, ErrTruncatedFrame)
	}
	return s, nil
}
