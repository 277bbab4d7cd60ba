package hal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWallClock_Ticks(t *testing.T) {
	base := time.Unix(1000, 0)
	now := base
	c := &WallClock{fps: 30, start: base, now: func() time.Time { return now }}

	n, err := c.Ticks()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), n)

	now = base.Add(999 * time.Millisecond)
	n, _ = c.Ticks()
	assert.Equal(t, uint64(29), n)

	now = base.Add(2 * time.Second)
	n, _ = c.Ticks()
	assert.Equal(t, uint64(60), n)

	c.Reset()
	n, _ = c.Ticks()
	assert.Equal(t, uint64(0), n)
}

func TestWallClock_ZeroFPS(t *testing.T) {
	_, err := NewWallClock(0).Ticks()
	assert.Error(t, err)
}

func TestHostFramebuffer_PresentPublishes(t *testing.T) {
	fb := newHostFramebuffer(2, 2)
	assert.Equal(t, PixelFormatRGBA8888, fb.Format())
	assert.Equal(t, 8, fb.StrideBytes())
	require.Len(t, fb.Buffer(), 16)

	fb.Buffer()[0] = 0xFF
	dst := make([]byte, 16)
	assert.Equal(t, uint64(0), fb.snapshot(dst))
	assert.Zero(t, dst[0], "unpresented pixels are not visible")

	require.NoError(t, fb.Present())
	assert.Equal(t, uint64(1), fb.snapshot(dst))
	assert.Equal(t, byte(0xFF), dst[0])

	fb.Clear()
	assert.Zero(t, fb.Buffer()[0])
	fb.snapshot(dst)
	assert.Equal(t, byte(0xFF), dst[0], "front buffer keeps the presented frame")
}

func TestNewHost_DefaultSize(t *testing.T) {
	h := newHost(0, 0, nil, nil)
	assert.Equal(t, defaultWidth, h.Framebuffer().Width())
	assert.Equal(t, defaultHeight, h.Framebuffer().Height())
	assert.NotNil(t, h.Logger())

	_, err := h.Audio().Play([]byte("OggS"), 30, 1)
	assert.ErrorIs(t, err, ErrNotImplemented)
}

func TestRunHeadless_StopsOnErrStop(t *testing.T) {
	steps := 0
	err := RunHeadless(context.Background(), func(h HAL) func() error {
		return func() error {
			steps++
			if steps == 5 {
				return ErrStop
			}
			return nil
		}
	}, HeadlessConfig{Hz: 1000, Width: 4, Height: 4})
	require.NoError(t, err)
	assert.Equal(t, 5, steps)
}

func TestRunHeadless_TickLimit(t *testing.T) {
	steps := 0
	err := RunHeadless(context.Background(), func(h HAL) func() error {
		return func() error { steps++; return nil }
	}, HeadlessConfig{Hz: 1000, Ticks: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, steps)
}

func TestRunHeadless_StepError(t *testing.T) {
	boom := errors.New("boom")
	err := RunHeadless(context.Background(), func(h HAL) func() error {
		return func() error { return boom }
	}, HeadlessConfig{Hz: 1000})
	assert.ErrorIs(t, err, boom)
}

func TestRunHeadless_CancelRequestsQuit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sawQuit := false

	err := RunHeadless(ctx, func(h HAL) func() error {
		in := h.Input()
		return func() error {
			if in.QuitRequested() {
				sawQuit = true
				return ErrStop
			}
			cancel()
			return nil
		}
	}, HeadlessConfig{Hz: 1000})
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, sawQuit)
}

func TestSniffAudio(t *testing.T) {
	tests := []struct {
		data []byte
		want audioFormat
	}{
		{[]byte("OggS\x00\x02"), audioVorbis},
		{[]byte("RIFF\x24\x00\x00\x00WAVEfmt "), audioWAV},
		{[]byte("RIFF\x24\x00\x00\x00AVI "), audioUnknown},
		{[]byte("ID3\x04\x00"), audioMP3},
		{[]byte{0xFF, 0xFB, 0x90, 0x64}, audioMP3},
		{[]byte("fLaC"), audioUnknown},
		{nil, audioUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sniffAudio(tt.data), "%q", tt.data)
	}
}
