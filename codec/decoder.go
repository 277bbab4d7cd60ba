package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Decoder is a forward-only cursor over a container held in memory.
//
// Frames are produced lazily and cannot be revisited. The Decoder does not
// copy or modify data.
type Decoder struct {
	data []byte
	pos  int
	fps  uint16

	cur    *Frame
	frames int
}

// NewDecoder reads the fps header of data.
func NewDecoder(data []byte) (*Decoder, error) {
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrTruncatedHeader, len(data))
	}
	return &Decoder{
		data: data,
		pos:  HeaderSize,
		fps:  binary.LittleEndian.Uint16(data[:HeaderSize]),
	}, nil
}

// FPS returns the declared frame rate.
func (d *Decoder) FPS() uint16 { return d.fps }

// Frames returns the number of frames started so far.
func (d *Decoder) Frames() int { return d.frames }

// Remaining returns the number of unread bytes.
func (d *Decoder) Remaining() int { return len(d.data) - d.pos }

// NextFrame starts the next frame.
//
// Any unread part of the previous frame is skipped first. At a clean end of
// data NextFrame returns io.EOF.
func (d *Decoder) NextFrame() (*Frame, error) {
	if err := d.finishCurrent(); err != nil {
		return nil, err
	}
	if d.pos >= len(d.data) {
		return nil, io.EOF
	}
	d.cur = &Frame{d: d, index: d.frames}
	d.frames++
	return d.cur, nil
}

// SkipFrame consumes one whole frame without yielding its rects.
func (d *Decoder) SkipFrame() error {
	f, err := d.NextFrame()
	if err != nil {
		return err
	}
	return f.skip()
}

func (d *Decoder) finishCurrent() error {
	if d.cur == nil {
		return nil
	}
	f := d.cur
	d.cur = nil
	return f.skip()
}

// next reads one rect for frame f.
func (d *Decoder) next(f *Frame) (Rect, error) {
	if len(d.data)-d.pos < RectSize {
		return Rect{}, fmt.Errorf("%w: frame %d at offset %d, %d bytes left",
			ErrTruncatedFrame, f.index, d.pos, len(d.data)-d.pos)
	}
	r := ParseRect(d.data[d.pos:])
	d.pos += RectSize
	return r, nil
}

// Frame is one frame's lazy rect sequence.
type Frame struct {
	d     *Decoder
	index int
	rects int
	done  bool
	err   error
}

// Index returns the 0-based position of the frame in the stream.
func (f *Frame) Index() int { return f.index }

// Rects returns the number of rects yielded so far.
func (f *Frame) Rects() int { return f.rects }

// Next returns the next content rect.
//
// After the end-of-frame marker has been consumed Next returns io.EOF. A frame
// cut short by the end of data returns ErrTruncatedFrame.
func (f *Frame) Next() (Rect, error) {
	if f.err != nil {
		return Rect{}, f.err
	}
	if f.done {
		return Rect{}, io.EOF
	}

	r, err := f.d.next(f)
	if err != nil {
		f.err = err
		return Rect{}, err
	}
	if r.IsEndOfFrame() {
		f.done = true
		if f.d.cur == f {
			f.d.cur = nil
		}
		return Rect{}, io.EOF
	}
	f.rects++
	return r, nil
}

// AppendTo appends the remaining rects of f to dst.
func (f *Frame) AppendTo(dst []Rect) ([]Rect, error) {
	for {
		r, err := f.Next()
		if errors.Is(err, io.EOF) {
			return dst, nil
		}
		if err != nil {
			return dst, err
		}
		dst = append(dst, r)
	}
}

func (f *Frame) skip() error {
	for {
		_, err := f.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// DecodeAll decodes a whole container into per-frame rect lists.
func DecodeAll(data []byte) (uint16, [][]Rect, error) {
	d, err := NewDecoder(data)
	if err != nil {
		return 0, nil, err
	}

	var frames [][]Rect
	for {
		f, err := d.NextFrame()
		if errors.Is(err, io.EOF) {
			return d.FPS(), frames, nil
		}
		if err != nil {
			return d.FPS(), frames, err
		}
		rects, err := f.AppendTo(make([]Rect, 0, 16))
		if err != nil {
			return d.FPS(), frames, err
		}
		frames = append(frames, rects)
	}
}
