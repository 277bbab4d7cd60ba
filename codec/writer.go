package codec

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const writerBufferSize = 64 * 1024

// FrameSource yields per-frame rect lists until it returns io.EOF.
type FrameSource interface {
	NextFrame() ([]Rect, error)
}

// Writer writes a container sequentially. Nothing is rewritten once written.
type Writer struct {
	bw *bufio.Writer

	fps    uint16
	frames int
	rects  int

	scratch [RectSize]byte
}

// NewWriter writes the fps header to w and returns a Writer for the frames.
//
// Output is buffered; call Flush when done.
func NewWriter(w io.Writer, fps uint16) (*Writer, error) {
	if w == nil {
		return nil, errors.New("codec writer: nil writer")
	}

	bw := bufio.NewWriterSize(w, writerBufferSize)
	var hdr [HeaderSize]byte
	binary.LittleEndian.PutUint16(hdr[:], fps)
	if _, err := bw.Write(hdr[:]); err != nil {
		return nil, fmt.Errorf("codec writer: header: %w", err)
	}
	return &Writer{bw: bw, fps: fps}, nil
}

// WriteFrame writes rects followed by the end-of-frame marker.
func (w *Writer) WriteFrame(rects []Rect) error {
	for i, r := range rects {
		if r.W == 0 || r.H == 0 {
			return fmt.Errorf("%w: frame %d rect %d %+v", ErrEmptyRect, w.frames, i, r)
		}
		PutRect(w.scratch[:], r)
		if _, err := w.bw.Write(w.scratch[:]); err != nil {
			return fmt.Errorf("codec writer: frame %d: %w", w.frames, err)
		}
	}

	PutRect(w.scratch[:], EndOfFrame)
	if _, err := w.bw.Write(w.scratch[:]); err != nil {
		return fmt.Errorf("codec writer: frame %d: %w", w.frames, err)
	}

	w.frames++
	w.rects += len(rects)
	return nil
}

// Flush writes any buffered data to the underlying writer.
func (w *Writer) Flush() error {
	if err := w.bw.Flush(); err != nil {
		return fmt.Errorf("codec writer: flush: %w", err)
	}
	return nil
}

// FPS returns the frame rate written in the header.
func (w *Writer) FPS() uint16 { return w.fps }

// Frames returns the number of frames written so far.
func (w *Writer) Frames() int { return w.frames }

// Rects returns the number of content rects written so far.
func (w *Writer) Rects() int { return w.rects }

// WriteStream writes a complete container from src and flushes it.
func WriteStream(dst io.Writer, fps uint16, src FrameSource) (int, error) {
	w, err := NewWriter(dst, fps)
	if err != nil {
		return 0, err
	}
	for {
		rects, err := src.NextFrame()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return w.Frames(), err
		}
		if err := w.WriteFrame(rects); err != nil {
			return w.Frames(), err
		}
	}
	return w.Frames(), w.Flush()
}
