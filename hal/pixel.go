package hal

import "fmt"

// BytesPerPixel returns the storage size of one pixel, or 0 if unknown.
func (f PixelFormat) BytesPerPixel() int {
	switch f {
	case PixelFormatRGBA8888:
		return 4
	default:
		return 0
	}
}

func (f PixelFormat) String() string {
	switch f {
	case PixelFormatRGBA8888:
		return "rgba8888"
	default:
		return fmt.Sprintf("PixelFormat(%d)", uint8(f))
	}
}
