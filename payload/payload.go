// Package payload appends playback assets to a runner executable and loads
// them back at start-up.
//
// Layout of a patched runner:
//
//	runner template | container | audio | footer (48 bytes)
//
// Footer, little-endian: video offset u64, video length u64, audio offset u64,
// audio length u64, native width u16, native height u16, "PS_PATCH", 4 zero
// bytes.
package payload

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

const FooterSize = 48

const magicOffset = 36

var magic = [8]byte{'P', 'S', '_', 'P', 'A', 'T', 'C', 'H'}

var (
	// ErrNotPatched is returned for a runner that carries no assets.
	ErrNotPatched = errors.New("payload: runner has not been patched with assets")
	ErrCorrupt    = errors.New("payload: corrupt footer")
)

// Footer locates the assets inside a patched runner.
type Footer struct {
	VideoOffset uint64
	VideoLen    uint64
	AudioOffset uint64
	AudioLen    uint64
	Width       uint16
	Height      uint16
}

// Assets are the files a runner plays.
type Assets struct {
	// Video is a container, raw or zstd-compressed.
	Video []byte
	// Audio is an encoded sound track; it may be empty.
	Audio  []byte
	Width  uint16
	Height uint16
}

func (f Footer) put(b []byte) {
	binary.LittleEndian.PutUint64(b[0:], f.VideoOffset)
	binary.LittleEndian.PutUint64(b[8:], f.VideoLen)
	binary.LittleEndian.PutUint64(b[16:], f.AudioOffset)
	binary.LittleEndian.PutUint64(b[24:], f.AudioLen)
	binary.LittleEndian.PutUint16(b[32:], f.Width)
	binary.LittleEndian.PutUint16(b[34:], f.Height)
	copy(b[magicOffset:], magic[:])
	clear(b[magicOffset+len(magic) : FooterSize])
}

// ParseFooter decodes the last FooterSize bytes of a runner.
func ParseFooter(b []byte) (Footer, error) {
	if len(b) < FooterSize {
		return Footer{}, ErrNotPatched
	}
	b = b[len(b)-FooterSize:]
	if !bytes.Equal(b[magicOffset:magicOffset+len(magic)], magic[:]) {
		return Footer{}, ErrNotPatched
	}
	return Footer{
		VideoOffset: binary.LittleEndian.Uint64(b[0:]),
		VideoLen:    binary.LittleEndian.Uint64(b[8:]),
		AudioOffset: binary.LittleEndian.Uint64(b[16:]),
		AudioLen:    binary.LittleEndian.Uint64(b[24:]),
		Width:       binary.LittleEndian.Uint16(b[32:]),
		Height:      binary.LittleEndian.Uint16(b[34:]),
	}, nil
}

// check verifies that both asset ranges lie before the footer.
func (f Footer) check(size int64) error {
	limit := uint64(size - FooterSize)
	inRange := func(off, n uint64) bool {
		return off <= limit && n <= limit-off
	}
	if !inRange(f.VideoOffset, f.VideoLen) || !inRange(f.AudioOffset, f.AudioLen) {
		return fmt.Errorf("%w: assets outside %d byte file", ErrCorrupt, size)
	}
	if f.VideoLen == 0 {
		return fmt.Errorf("%w: empty video", ErrCorrupt)
	}
	return nil
}

// Template returns the unpatched part of runner.
func Template(runner []byte) []byte {
	f, err := ParseFooter(runner)
	if err != nil || f.check(int64(len(runner))) != nil {
		return runner
	}
	end := f.VideoOffset
	if f.AudioLen > 0 {
		end = min(end, f.AudioOffset)
	}
	return runner[:end]
}

// Build writes runner with a stripped payload followed by assets to dst.
func Build(dst io.Writer, runner []byte, a Assets) (Footer, error) {
	tmpl := Template(runner)
	if _, err := dst.Write(tmpl); err != nil {
		return Footer{}, fmt.Errorf("payload: write runner: %w", err)
	}
	return Append(dst, int64(len(tmpl)), a)
}

// Append writes assets and the footer to w, which already holds base bytes.
func Append(w io.Writer, base int64, a Assets) (Footer, error) {
	if len(a.Video) == 0 {
		return Footer{}, errors.New("payload: no video")
	}
	if a.Width == 0 || a.Height == 0 {
		return Footer{}, fmt.Errorf("payload: invalid native size %dx%d", a.Width, a.Height)
	}

	f := Footer{
		VideoOffset: uint64(base),
		VideoLen:    uint64(len(a.Video)),
		AudioOffset: uint64(base) + uint64(len(a.Video)),
		AudioLen:    uint64(len(a.Audio)),
		Width:       a.Width,
		Height:      a.Height,
	}
	var tail [FooterSize]byte
	f.put(tail[:])

	for _, part := range [][]byte{a.Video, a.Audio, tail[:]} {
		if _, err := w.Write(part); err != nil {
			return Footer{}, fmt.Errorf("payload: write: %w", err)
		}
	}
	return f, nil
}

// Load reads the assets of a patched runner of the given size.
func Load(r io.ReaderAt, size int64) (*Assets, error) {
	if size < FooterSize {
		return nil, ErrNotPatched
	}
	var tail [FooterSize]byte
	if _, err := r.ReadAt(tail[:], size-FooterSize); err != nil {
		return nil, fmt.Errorf("payload: read footer: %w", err)
	}
	f, err := ParseFooter(tail[:])
	if err != nil {
		return nil, err
	}
	if err := f.check(size); err != nil {
		return nil, err
	}

	a := &Assets{
		Video:  make([]byte, f.VideoLen),
		Audio:  make([]byte, f.AudioLen),
		Width:  f.Width,
		Height: f.Height,
	}
	if _, err := r.ReadAt(a.Video, int64(f.VideoOffset)); err != nil {
		return nil, fmt.Errorf("payload: read video: %w", err)
	}
	if _, err := r.ReadAt(a.Audio, int64(f.AudioOffset)); err != nil && f.AudioLen > 0 {
		return nil, fmt.Errorf("payload: read audio: %w", err)
	}
	return a, nil
}

// LoadFile loads the assets of the runner at path.
func LoadFile(path string) (*Assets, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	st, err := file.Stat()
	if err != nil {
		return nil, err
	}
	return Load(file, st.Size())
}

// LoadSelf loads the assets appended to the running executable.
func LoadSelf() (*Assets, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("payload: locate executable: %w", err)
	}
	return LoadFile(exe)
}
