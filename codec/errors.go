package codec

import "errors"

// Decode errors.
var (
	// ErrTruncatedHeader indicates fewer than HeaderSize bytes of input.
	ErrTruncatedHeader = errors.New("codec: truncated header")

	// ErrTruncatedFrame indicates the data ended inside a frame, before its
	// end-of-frame marker.
	ErrTruncatedFrame = errors.New("codec: truncated frame")

	// ErrMalformed indicates a container that fails structural validation.
	ErrMalformed = errors.New("codec: malformed container")
)

// Encode errors.
var (
	// ErrEmptyRect indicates a content rect with zero width or height, which
	// would be read back as an end-of-frame marker.
	ErrEmptyRect = errors.New("codec: empty rect")

	// ErrFrameSize indicates a raster buffer that does not match the encoder
	// dimensions.
	ErrFrameSize = errors.New("codec: frame size mismatch")

	// ErrDimensions indicates frame dimensions outside 1..MaxDimension.
	ErrDimensions = errors.New("codec: invalid dimensions")
)
