package codec

import "fmt"

// noRun marks a column with no rect growing through it.
const noRun = -1

// Encoder turns grayscale raster frames into merged rectangles.
//
// Each row is split into runs of pixels at or above the threshold. A run
// extends the rect recorded for its start column when that rect ends on the
// previous row with the same x and width; otherwise it starts a new rect.
//
// An Encoder reuses its buffers between frames and is not safe for concurrent
// use.
type Encoder struct {
	width     int
	height    int
	threshold uint8

	active []int32
	rects  []Rect
}

// NewEncoder creates an encoder for width x height frames.
func NewEncoder(width, height int, threshold uint8) (*Encoder, error) {
	if width <= 0 || height <= 0 || width > MaxDimension || height > MaxDimension {
		return nil, fmt.Errorf("%w: %dx%d", ErrDimensions, width, height)
	}
	return &Encoder{
		width:     width,
		height:    height,
		threshold: threshold,
		active:    make([]int32, width),
		rects:     make([]Rect, 0, 2048),
	}, nil
}

// Width returns the frame width in pixels.
func (e *Encoder) Width() int { return e.width }

// Height returns the frame height in pixels.
func (e *Encoder) Height() int { return e.height }

// Threshold returns the on/off brightness threshold.
func (e *Encoder) Threshold() uint8 { return e.threshold }

// Encode extracts the rects of one row-major frame.
//
// The result does not include the end-of-frame marker and is only valid until
// the next call to Encode.
func (e *Encoder) Encode(frame []byte) ([]Rect, error) {
	if len(frame) != e.width*e.height {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrFrameSize, len(frame), e.width*e.height)
	}

	for i := range e.active {
		e.active[i] = noRun
	}
	e.rects = e.rects[:0]

	w := e.width
	for y := 0; y < e.height; y++ {
		row := frame[y*w : y*w+w]
		x := 0
		for x < w {
			if row[x] < e.threshold {
				e.active[x] = noRun
				x++
				continue
			}

			start := x
			for x < w && row[x] >= e.threshold {
				x++
			}
			e.growRun(start, x, y)
		}
	}
	return e.rects, nil
}

// growRun records the run [start, end) on row y.
//
// Columns inside a run are never cleared, so active[start] may name a rect
// that stopped growing rows ago. The y+h check rejects such entries: a rect
// can only end on row y-1 if start was a run start on that row.
func (e *Encoder) growRun(start, end, y int) {
	runW := uint16(end - start)
	row := uint16(y)

	if idx := e.active[start]; idx != noRun && int(idx) < len(e.rects) {
		r := &e.rects[idx]
		if r.Y+r.H == row && r.X == uint16(start) && r.W == runW {
			r.H++
			return
		}
	}

	e.active[start] = int32(len(e.rects))
	e.rects = append(e.rects, Rect{X: uint16(start), Y: row, W: runW, H: 1})
}

// ExtractRects encodes a single frame. The returned slice is owned by the
// caller.
func ExtractRects(frame []byte, width, height int, threshold uint8) ([]Rect, error) {
	e, err := NewEncoder(width, height, threshold)
	if err != nil {
		return nil, err
	}
	rects, err := e.Encode(frame)
	if err != nil {
		return nil, err
	}
	return append([]Rect(nil), rects...), nil
}

// Rasterize paints rects into a width x height on/off mask (1 = on).
//
// Rects are clipped to the mask bounds.
func Rasterize(rects []Rect, width, height int) []byte {
	mask := make([]byte, width*height)
	for _, r := range rects {
		x1 := min(int(r.X)+int(r.W), width)
		y1 := min(int(r.Y)+int(r.H), height)
		for y := int(r.Y); y < y1; y++ {
			row := mask[y*width : y*width+width]
			for x := int(r.X); x < x1; x++ {
				row[x] = 1
			}
		}
	}
	return mask
}
