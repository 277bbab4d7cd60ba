package render

import (
	"image/color"

	"pixelshell/hal"

	"tinygo.org/x/drivers"
)

var _ drivers.Displayer = (*Display)(nil)

// Display exposes a framebuffer as a TinyGo display so tinyfont and tinyterm
// can draw into it.
//
// SetScroll emulates a hardware scroll register: drawing uses memory rows
// and the visible rows are rotated so that row `scroll` is at the top.
type Display struct {
	fb     hal.Framebuffer
	scroll int16
}

func NewDisplay(fb hal.Framebuffer) *Display {
	return &Display{fb: fb}
}

func (d *Display) Size() (x, y int16) {
	return int16(d.fb.Width()), int16(d.fb.Height())
}

func (d *Display) SetPixel(x, y int16, c color.RGBA) {
	w, h := d.fb.Width(), d.fb.Height()
	if x < 0 || int(x) >= w || y < 0 || int(y) >= h {
		return
	}
	off := d.screenRow(int(y))*d.fb.StrideBytes() + int(x)*4
	buf := d.fb.Buffer()
	buf[off+0] = c.R
	buf[off+1] = c.G
	buf[off+2] = c.B
	buf[off+3] = c.A
}

// Display presents the framebuffer.
func (d *Display) Display() error {
	return d.fb.Present()
}

func (d *Display) FillRectangle(x, y, width, height int16, c color.RGBA) error {
	x0, y0 := max(int(x), 0), max(int(y), 0)
	x1 := min(int(x)+int(width), d.fb.Width())
	y1 := min(int(y)+int(height), d.fb.Height())
	for yy := y0; yy < y1; yy++ {
		for xx := x0; xx < x1; xx++ {
			d.SetPixel(int16(xx), int16(yy), c)
		}
	}
	return nil
}

func (d *Display) SetScroll(line int16) {
	h := d.fb.Height()
	if h == 0 {
		return
	}
	line = int16(mod(int(line), h))
	delta := mod(int(line)-int(d.scroll), h)
	if delta != 0 {
		d.rotateUp(delta)
	}
	d.scroll = line
}

// SetRotation only supports the native orientation.
func (d *Display) SetRotation(rotation drivers.Rotation) error {
	if rotation != drivers.Rotation0 {
		return hal.ErrNotImplemented
	}
	return nil
}

func (d *Display) screenRow(y int) int {
	return mod(y-int(d.scroll), d.fb.Height())
}

// rotateUp moves every visible row n rows up, wrapping at the top.
func (d *Display) rotateUp(n int) {
	stride := d.fb.StrideBytes()
	buf := d.fb.Buffer()
	rows := d.fb.Height()
	tmp := make([]byte, n*stride)
	copy(tmp, buf[:n*stride])
	copy(buf, buf[n*stride:rows*stride])
	copy(buf[(rows-n)*stride:], tmp)
}

func mod(a, n int) int {
	a %= n
	if a < 0 {
		a += n
	}
	return a
}
