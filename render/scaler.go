// Package render draws rectangle streams into a host framebuffer.
package render

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	"pixelshell/codec"
	"pixelshell/hal"
)

var (
	ErrNativeSize  = errors.New("render: native size must be positive")
	ErrPixelFormat = errors.New("render: unsupported pixel format")
)

var (
	White = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	Black = color.RGBA{A: 0xFF}
)

// Scaler maps rects authored at a native resolution onto a framebuffer of a
// different size.
//
// Each edge is scaled with math.Round, which rounds halves away from zero.
// Scaled rects are clipped to the framebuffer; nothing is drawn outside it.
type Scaler struct {
	fb     hal.Framebuffer
	width  int
	height int
	stride int

	nativeW int
	nativeH int
	sx, sy  float64

	// row holds one framebuffer row of the current fill color.
	row     []byte
	rowFill color.RGBA
}

// NewScaler returns a Scaler drawing into fb. The scale factors are fixed at
// construction.
func NewScaler(fb hal.Framebuffer, nativeW, nativeH int) (*Scaler, error) {
	if nativeW <= 0 || nativeH <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrNativeSize, nativeW, nativeH)
	}
	if fb.Format() != hal.PixelFormatRGBA8888 {
		return nil, fmt.Errorf("%w: %v", ErrPixelFormat, fb.Format())
	}

	s := &Scaler{
		fb:      fb,
		width:   fb.Width(),
		height:  fb.Height(),
		stride:  fb.StrideBytes(),
		nativeW: nativeW,
		nativeH: nativeH,
		sx:      float64(fb.Width()) / float64(nativeW),
		sy:      float64(fb.Height()) / float64(nativeH),
	}
	s.setFill(White)
	return s, nil
}

// Scale returns the horizontal and vertical scale factors.
func (s *Scaler) Scale() (sx, sy float64) { return s.sx, s.sy }

// Clear makes the whole framebuffer fully transparent.
func (s *Scaler) Clear() {
	s.fb.Clear()
}

// Fill paints the whole framebuffer with c.
func (s *Scaler) Fill(c color.RGBA) {
	s.setFill(c)
	buf := s.fb.Buffer()
	for y := 0; y < s.height; y++ {
		off := y * s.stride
		copy(buf[off:off+s.width*4], s.row)
	}
}

// Present forwards to the framebuffer.
func (s *Scaler) Present() error {
	return s.fb.Present()
}

// DrawRect fills the scaled rect with opaque white.
func (s *Scaler) DrawRect(r codec.Rect) {
	s.FillRect(r, White)
}

// FillRect fills the scaled rect with c.
func (s *Scaler) FillRect(r codec.Rect, c color.RGBA) {
	x0, y0, x1, y1, ok := s.bounds(r)
	if !ok {
		return
	}
	s.fill(x0, y0, x1, y1, c)
}

// StrokeRect draws a one pixel outline along the inside of the scaled rect.
func (s *Scaler) StrokeRect(r codec.Rect, c color.RGBA) {
	x0, y0, x1, y1, ok := s.bounds(r)
	if !ok {
		return
	}
	s.fill(x0, y0, x1, y0+1, c)
	s.fill(x0, y1-1, x1, y1, c)
	s.fill(x0, y0, x0+1, y1, c)
	s.fill(x1-1, y0, x1, y1, c)
}

// bounds returns the clipped pixel span [x0,x1) x [y0,y1) of r.
func (s *Scaler) bounds(r codec.Rect) (x0, y0, x1, y1 int, ok bool) {
	left := int(math.Round(float64(r.X) * s.sx))
	top := int(math.Round(float64(r.Y) * s.sy))
	w := int(math.Round(float64(r.W) * s.sx))
	h := int(math.Round(float64(r.H) * s.sy))

	right := min(left+w, s.width)
	bottom := min(top+h, s.height)
	if left >= right || top >= bottom {
		return 0, 0, 0, 0, false
	}
	return left, top, right, bottom, true
}

func (s *Scaler) fill(x0, y0, x1, y1 int, c color.RGBA) {
	if c != s.rowFill {
		s.setFill(c)
	}
	buf := s.fb.Buffer()
	span := s.row[:(x1-x0)*4]
	for y := y0; y < y1; y++ {
		off := y*s.stride + x0*4
		copy(buf[off:], span)
	}
}

func (s *Scaler) setFill(c color.RGBA) {
	if s.row == nil {
		s.row = make([]byte, s.width*4)
	}
	for i := 0; i < len(s.row); i += 4 {
		s.row[i+0] = c.R
		s.row[i+1] = c.G
		s.row[i+2] = c.B
		s.row[i+3] = c.A
	}
	s.rowFill = c
}
