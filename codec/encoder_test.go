package codec

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// maskFrame builds a frame from rows of '#' (on) and '.' (off).
func maskFrame(t testing.TB, rows ...string) ([]byte, int, int) {
	t.Helper()
	h := len(rows)
	require.NotZero(t, h)
	w := len(rows[0])
	frame := make([]byte, 0, w*h)
	for _, row := range rows {
		require.Len(t, row, w)
		for _, c := range row {
			if c == '#' {
				frame = append(frame, 255)
			} else {
				frame = append(frame, 0)
			}
		}
	}
	return frame, w, h
}

func onMask(frame []byte, threshold uint8) []byte {
	mask := make([]byte, len(frame))
	for i, v := range frame {
		if v >= threshold {
			mask[i] = 1
		}
	}
	return mask
}

func TestNewEncoder_InvalidDimensions(t *testing.T) {
	for _, dims := range [][2]int{{0, 10}, {10, 0}, {-1, 5}, {MaxDimension + 1, 1}} {
		_, err := NewEncoder(dims[0], dims[1], DefaultThreshold)
		assert.ErrorIs(t, err, ErrDimensions, "dims %v", dims)
	}
}

func TestEncoder_FrameSizeMismatch(t *testing.T) {
	e, err := NewEncoder(4, 4, DefaultThreshold)
	require.NoError(t, err)

	_, err = e.Encode(make([]byte, 15))
	assert.ErrorIs(t, err, ErrFrameSize)
}

func TestEncoder_EmptyFrame(t *testing.T) {
	frame, w, h := maskFrame(t,
		"....",
		"....",
	)
	rects, err := ExtractRects(frame, w, h, DefaultThreshold)
	require.NoError(t, err)
	assert.Empty(t, rects)
}

func TestEncoder_ThresholdIsInclusive(t *testing.T) {
	frame := []byte{126, 127, 128, 0}
	rects, err := ExtractRects(frame, 4, 1, 127)
	require.NoError(t, err)
	assert.Equal(t, []Rect{{X: 1, Y: 0, W: 2, H: 1}}, rects)
}

func TestEncoder_MergesIdenticalRuns(t *testing.T) {
	frame, w, h := maskFrame(t,
		"........",
		"..###...",
		"..###...",
		"..###...",
		"..###...",
		"........",
	)
	rects, err := ExtractRects(frame, w, h, DefaultThreshold)
	require.NoError(t, err)
	assert.Equal(t, []Rect{{X: 2, Y: 1, W: 3, H: 4}}, rects)
}

func TestEncoder_InterruptedRunDoesNotMerge(t *testing.T) {
	frame, w, h := maskFrame(t,
		"..###...",
		"..###...",
		"........",
		"..###...",
	)
	rects, err := ExtractRects(frame, w, h, DefaultThreshold)
	require.NoError(t, err)
	assert.Equal(t, []Rect{
		{X: 2, Y: 0, W: 3, H: 2},
		{X: 2, Y: 3, W: 3, H: 1},
	}, rects)
}

func TestEncoder_WidthChangeStartsNewRect(t *testing.T) {
	frame, w, h := maskFrame(t,
		"###.",
		"####",
		"###.",
	)
	rects, err := ExtractRects(frame, w, h, DefaultThreshold)
	require.NoError(t, err)
	assert.Equal(t, []Rect{
		{X: 0, Y: 0, W: 3, H: 1},
		{X: 0, Y: 1, W: 4, H: 1},
		{X: 0, Y: 2, W: 3, H: 1},
	}, rects)
}

func TestEncoder_DisjointRunsInOneRow(t *testing.T) {
	frame, w, h := maskFrame(t,
		"##..##.#",
		"##..##.#",
	)
	rects, err := ExtractRects(frame, w, h, DefaultThreshold)
	require.NoError(t, err)
	assert.Equal(t, []Rect{
		{X: 0, Y: 0, W: 2, H: 2},
		{X: 4, Y: 0, W: 2, H: 2},
		{X: 7, Y: 0, W: 1, H: 2},
	}, rects)
}

func TestEncoder_StaleColumnEntryDoesNotMerge(t *testing.T) {
	// Column 2 starts a run on row 0, sits inside a wider run on row 1 (so
	// its table entry is never cleared) and starts an identical run on row 2.
	frame, w, h := maskFrame(t,
		"..##....",
		"######..",
		"..##....",
	)
	rects, err := ExtractRects(frame, w, h, DefaultThreshold)
	require.NoError(t, err)
	assert.Equal(t, []Rect{
		{X: 2, Y: 0, W: 2, H: 1},
		{X: 0, Y: 1, W: 6, H: 1},
		{X: 2, Y: 2, W: 2, H: 1},
	}, rects)
}

func TestEncoder_ReusedAcrossFrames(t *testing.T) {
	e, err := NewEncoder(4, 2, DefaultThreshold)
	require.NoError(t, err)

	first, _, _ := maskFrame(t, "##..", "##..")
	second, _, _ := maskFrame(t, "..##", "##..")

	rects, err := e.Encode(first)
	require.NoError(t, err)
	assert.Equal(t, []Rect{{X: 0, Y: 0, W: 2, H: 2}}, rects)

	rects, err = e.Encode(second)
	require.NoError(t, err)
	assert.Equal(t, []Rect{
		{X: 2, Y: 0, W: 2, H: 1},
		{X: 0, Y: 1, W: 2, H: 1},
	}, rects)
}

func TestEncoder_NeverEmitsEmptyRects(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	const w, h = 37, 23
	e, err := NewEncoder(w, h, DefaultThreshold)
	require.NoError(t, err)

	frame := make([]byte, w*h)
	for i := 0; i < 50; i++ {
		rng.Read(frame)
		rects, err := e.Encode(frame)
		require.NoError(t, err)
		for _, r := range rects {
			require.False(t, r.IsEndOfFrame())
			require.NotZero(t, r.W)
			require.NotZero(t, r.H)
		}
	}
}

func TestEncoder_RoundTripRandomMasks(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 40; i++ {
		w := 1 + rng.Intn(64)
		h := 1 + rng.Intn(48)
		frame := make([]byte, w*h)

		// Mix of noise and solid blobs so both merge paths are exercised.
		density := rng.Intn(100)
		for j := range frame {
			if rng.Intn(100) < density {
				frame[j] = 255
			}
		}
		bx, by := rng.Intn(w), rng.Intn(h)
		bx1, by1 := min(w, bx+rng.Intn(w)+1), min(h, by+rng.Intn(h)+1)
		for y := by; y < by1; y++ {
			for x := bx; x < bx1; x++ {
				frame[y*w+x] = 200
			}
		}

		rects, err := ExtractRects(frame, w, h, DefaultThreshold)
		require.NoError(t, err)

		want := onMask(frame, DefaultThreshold)
		assert.Equal(t, want, Rasterize(rects, w, h), "mask %d (%dx%d)", i, w, h)

		area := 0
		on := 0
		for _, r := range rects {
			area += r.Area()
		}
		for _, v := range want {
			on += int(v)
		}
		assert.Equal(t, on, area, "rects must tile without overlap")
	}
}

func BenchmarkEncoder_Encode(b *testing.B) {
	const w, h = 1280, 720
	frame := make([]byte, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x-w/2)*(x-w/2)+(y-h/2)*(y-h/2) < 300*300 {
				frame[y*w+x] = 255
			}
		}
	}
	e, err := NewEncoder(w, h, DefaultThreshold)
	if err != nil {
		b.Fatal(err)
	}
	b.SetBytes(int64(len(frame)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := e.Encode(frame); err != nil {
			b.Fatal(err)
		}
	}
}
