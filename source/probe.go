package source

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

var ErrRate = errors.New("source: invalid frame rate")

// ProbeFPS asks ffprobe for the frame rate of the first video stream.
func ProbeFPS(ctx context.Context, probePath, input string) (uint16, error) {
	if probePath == "" {
		probePath = "ffprobe"
	}
	out, err := exec.CommandContext(ctx, probePath,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=r_frame_rate",
		"-of", "default=noprint_wrappers=1:nokey=1",
		input,
	).Output()
	if err != nil {
		return 0, fmt.Errorf("source: ffprobe %s: %w", input, err)
	}
	return ParseRate(string(out))
}

// ParseRate parses "num/den" or a decimal rate and rounds it to whole frames
// per second.
func ParseRate(s string) (uint16, error) {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}

	var rate float64
	if num, den, ok := strings.Cut(s, "/"); ok {
		n, err1 := strconv.ParseFloat(num, 64)
		d, err2 := strconv.ParseFloat(den, 64)
		if err1 != nil || err2 != nil || d == 0 {
			return 0, fmt.Errorf("%w: %q", ErrRate, s)
		}
		rate = n / d
	} else {
		r, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrRate, s)
		}
		rate = r
	}

	fps := math.Round(rate)
	if fps < 1 || fps > math.MaxUint16 || math.IsNaN(fps) {
		return 0, fmt.Errorf("%w: %q", ErrRate, s)
	}
	return uint16(fps), nil
}
