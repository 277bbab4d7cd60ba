package codec

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

// zstdMagic starts every zstd frame. As an fps header it would read 46376,
// which no real container declares.
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// IsCompressed reports whether data is a zstd-compressed container.
func IsCompressed(data []byte) bool {
	return bytes.HasPrefix(data, zstdMagic)
}

// NewCompressedWriter wraps w so that everything written to the returned
// writer is zstd-compressed. Close must be called to finish the stream; it
// does not close w.
func NewCompressedWriter(w io.Writer) (io.WriteCloser, error) {
	enc, err := zstd.NewWriter(
		w,
		zstd.WithEncoderConcurrency(1),
		zstd.WithEncoderLevel(zstd.SpeedBetterCompression),
	)
	if err != nil {
		return nil, fmt.Errorf("codec: zstd writer: %w", err)
	}
	return enc, nil
}

// Decompress returns data unchanged unless it is zstd-compressed.
func Decompress(data []byte) ([]byte, error) {
	if !IsCompressed(data) {
		return data, nil
	}

	dec, err := zstd.NewReader(
		nil,
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderLowmem(true),
	)
	if err != nil {
		return nil, fmt.Errorf("codec: zstd reader: %w", err)
	}
	defer dec.Close()

	out, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("codec: zstd decode: %w", err)
	}
	return out, nil
}

// ReadContainer reads a whole container from r, decompressing it if needed.
func ReadContainer(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("codec: read container: %w", err)
	}
	return Decompress(data)
}
