package factory

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"pixelshell/codec"
)

// Inspect validates the container at path, which may be compressed.
func Inspect(path string) (codec.Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return codec.Summary{}, err
	}
	defer f.Close()

	data, err := codec.ReadContainer(f)
	if err != nil {
		return codec.Summary{}, err
	}
	s, err := codec.Validate(data)
	if err != nil {
		return s, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// WriteSummary prints s as an aligned table.
func WriteSummary(w io.Writer, path string, s codec.Summary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "file\t%s\n", path)
	fmt.Fprintf(tw, "fps\t%d\n", s.FPS)
	fmt.Fprintf(tw, "frames\t%d\n", s.Frames)
	fmt.Fprintf(tw, "duration\t%s\n", s.Duration())
	fmt.Fprintf(tw, "rects\t%d\n", s.Rects)
	fmt.Fprintf(tw, "empty frames\t%d\n", s.EmptyFrames)
	fmt.Fprintf(tw, "max rects/frame\t%d\n", s.MaxRects)
	fmt.Fprintf(tw, "extent\t%dx%d\n", s.ExtentW, s.ExtentH)
	if s.Degenerate > 0 {
		fmt.Fprintf(tw, "degenerate rects\t%d\n", s.Degenerate)
	}
	return tw.Flush()
}
