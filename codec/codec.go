// Package codec implements the sparse-rectangle video format.
//
// A container is a 2-byte little-endian frame rate followed by frames. Each
// frame is a run of 8-byte rectangles terminated by a zero-sized rectangle.
// There is no frame count and no trailer; the end of the data ends the stream.
package codec

import "encoding/binary"

const (
	// HeaderSize is the size of the fps header.
	HeaderSize = 2
	// RectSize is the encoded size of one Rect.
	RectSize = 8
	// DefaultThreshold is the brightness at or above which a pixel is "on".
	DefaultThreshold = 127
	// MaxDimension is the largest frame width or height a Rect can address.
	MaxDimension = 1<<16 - 1
)

// Rect is an axis-aligned box in codec space.
//
// Content rects always have W >= 1 and H >= 1.
type Rect struct {
	X uint16
	Y uint16
	W uint16
	H uint16
}

// EndOfFrame marks the end of one frame's rectangles.
var EndOfFrame = Rect{}

// IsEndOfFrame reports whether r is a frame terminator.
func (r Rect) IsEndOfFrame() bool {
	return r.W == 0 && r.H == 0
}

// Area returns the number of pixels r covers.
func (r Rect) Area() int {
	return int(r.W) * int(r.H)
}

// PutRect encodes r into b, which must be at least RectSize bytes.
func PutRect(b []byte, r Rect) {
	_ = b[RectSize-1]
	binary.LittleEndian.PutUint16(b[0:2], r.X)
	binary.LittleEndian.PutUint16(b[2:4], r.Y)
	binary.LittleEndian.PutUint16(b[4:6], r.W)
	binary.LittleEndian.PutUint16(b[6:8], r.H)
}

// ParseRect decodes a Rect from the first RectSize bytes of b.
func ParseRect(b []byte) Rect {
	_ = b[RectSize-1]
	return Rect{
		X: binary.LittleEndian.Uint16(b[0:2]),
		Y: binary.LittleEndian.Uint16(b[2:4]),
		W: binary.LittleEndian.Uint16(b[4:6]),
		H: binary.LittleEndian.Uint16(b[6:8]),
	}
}
