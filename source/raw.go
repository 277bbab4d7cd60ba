// Package source produces grayscale raster frames for the encoder.
package source

import (
	"errors"
	"fmt"
	"io"
)

// RawReader splits a stream of raw 8-bit gray pixels into frames of
// width*height bytes.
//
// A short read at the end of the stream is the normal end of input: Next
// returns io.EOF and the discarded byte count is reported by Partial.
type RawReader struct {
	r       io.Reader
	width   int
	height  int
	buf     []byte
	frames  int
	partial int
}

func NewRawReader(r io.Reader, width, height int) (*RawReader, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("source: invalid frame size %dx%d", width, height)
	}
	return &RawReader{
		r:      r,
		width:  width,
		height: height,
		buf:    make([]byte, width*height),
	}, nil
}

// Next returns the next frame. The buffer is reused by the following call.
func (r *RawReader) Next() ([]byte, error) {
	n, err := io.ReadFull(r.r, r.buf)
	switch {
	case err == nil:
		r.frames++
		return r.buf, nil
	case errors.Is(err, io.EOF):
		return nil, io.EOF
	case errors.Is(err, io.ErrUnexpectedEOF):
		r.partial = n
		return nil, io.EOF
	default:
		return nil, fmt.Errorf("source: read frame %d: %w", r.frames, err)
	}
}

func (r *RawReader) Size() (width, height int) { return r.width, r.height }

// Frames returns the number of complete frames read.
func (r *RawReader) Frames() int { return r.frames }

// Partial returns the length of the incomplete trailing frame, if any.
func (r *RawReader) Partial() int { return r.partial }
