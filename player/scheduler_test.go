package player

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"pixelshell/codec"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type manualClock struct {
	tick uint64
	err  error
}

func (c *manualClock) Ticks() (uint64, error) { return c.tick, c.err }

// recordingTarget stores the rects of every presented frame.
type recordingTarget struct {
	cur       []codec.Rect
	presented [][]codec.Rect
	clears    int
	err       error
}

func (t *recordingTarget) Clear()                { t.clears++; t.cur = nil }
func (t *recordingTarget) DrawRect(r codec.Rect) { t.cur = append(t.cur, r) }

func (t *recordingTarget) Present() error {
	if t.err != nil {
		return t.err
	}
	t.presented = append(t.presented, t.cur)
	return nil
}

// frameIDs returns the X of the first rect of every presented frame.
func (t *recordingTarget) frameIDs() []int {
	ids := make([]int, 0, len(t.presented))
	for _, f := range t.presented {
		ids = append(ids, int(f[0].X))
	}
	return ids
}

// numberedContainer holds n frames; frame i has a single rect with X = i.
func numberedContainer(t *testing.T, n int) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := codec.NewWriter(&buf, 30)
	require.NoError(t, err)
	for i := 0; i < n; i++ {
		require.NoError(t, w.WriteFrame([]codec.Rect{{X: uint16(i), Y: 0, W: 1, H: 1}}))
	}
	require.NoError(t, w.Flush())
	return buf.Bytes()
}

func quietLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(&bytes.Buffer{})
	return logrus.NewEntry(l)
}

func newTestScheduler(t *testing.T, frames int, clock *manualClock, target *recordingTarget, opts ...Option) *Scheduler {
	t.Helper()
	dec, err := codec.NewDecoder(numberedContainer(t, frames))
	require.NoError(t, err)
	opts = append([]Option{WithLogger(quietLogger())}, opts...)
	return NewScheduler(dec, clock, target, opts...)
}

func TestScheduler_StepBeforeStart(t *testing.T) {
	s := newTestScheduler(t, 1, &manualClock{}, &recordingTarget{})
	_, err := s.Step()
	assert.ErrorIs(t, err, ErrNotStarted)

	require.NoError(t, s.Start())
	assert.ErrorIs(t, s.Start(), ErrAlreadyStarted)
}

func TestScheduler_NoDriftRendersEveryTick(t *testing.T) {
	clock := &manualClock{tick: 5}
	target := &recordingTarget{}
	s := newTestScheduler(t, 10, clock, target)
	require.NoError(t, s.Start())
	assert.Equal(t, uint64(5), s.NextTick())

	for i := 0; i < 8; i++ {
		res, err := s.Step()
		require.NoError(t, err)
		assert.Equal(t, ResultRendered, res)

		res, err = s.Step()
		require.NoError(t, err)
		assert.Equal(t, ResultAhead, res, "one frame per tick")
		clock.tick++
	}

	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7}, target.frameIDs())
	assert.Equal(t, Stats{Rendered: 8}, s.Stats())
}

func TestScheduler_BehindDropsWholeFrames(t *testing.T) {
	clock := &manualClock{}
	target := &recordingTarget{}
	s := newTestScheduler(t, 10, clock, target)
	require.NoError(t, s.Start())

	res, err := s.Step()
	require.NoError(t, err)
	require.Equal(t, ResultRendered, res)

	// Four ticks later: three frames are dropped and the fourth is shown.
	clock.tick = 4
	res, err = s.Step()
	require.NoError(t, err)
	assert.Equal(t, ResultRendered, res)
	assert.Equal(t, []int{0, 4}, target.frameIDs())
	assert.Equal(t, 3, s.Stats().Dropped)
	assert.Equal(t, uint64(5), s.NextTick())
	assert.Equal(t, 2, target.clears)
}

func TestScheduler_TieRenders(t *testing.T) {
	clock := &manualClock{tick: 3}
	target := &recordingTarget{}
	s := newTestScheduler(t, 2, clock, target)
	require.NoError(t, s.Start())

	res, err := s.Step()
	require.NoError(t, err)
	assert.Equal(t, ResultRendered, res)
	assert.Zero(t, s.Stats().Dropped)
}

func TestScheduler_EndOfContent(t *testing.T) {
	var transitions []string
	clock := &manualClock{}
	target := &recordingTarget{}
	s := newTestScheduler(t, 2, clock, target, WithStateChange(func(from, to State) {
		transitions = append(transitions, from.String()+"->"+to.String())
	}))
	require.NoError(t, s.Start())

	for i := 0; i < 2; i++ {
		res, err := s.Step()
		require.NoError(t, err)
		require.Equal(t, ResultRendered, res)
		clock.tick++
	}

	res, err := s.Step()
	require.NoError(t, err)
	assert.Equal(t, ResultStopped, res)
	assert.Equal(t, StateStopped, s.State())
	assert.Equal(t, []string{"idle->running", "running->draining", "draining->stopped"}, transitions)

	res, err = s.Step()
	require.NoError(t, err)
	assert.Equal(t, ResultStopped, res)
}

func TestScheduler_EndWhileCatchingUp(t *testing.T) {
	clock := &manualClock{}
	target := &recordingTarget{}
	s := newTestScheduler(t, 3, clock, target)
	require.NoError(t, s.Start())

	clock.tick = 10
	res, err := s.Step()
	require.NoError(t, err)
	assert.Equal(t, ResultStopped, res)
	assert.Empty(t, target.presented)
	assert.Equal(t, 3, s.Stats().Dropped)
}

func TestScheduler_QuitStopsImmediately(t *testing.T) {
	quit := false
	clock := &manualClock{}
	target := &recordingTarget{}
	s := newTestScheduler(t, 5, clock, target, WithQuit(func() bool { return quit }))
	require.NoError(t, s.Start())

	quit = true
	res, err := s.Step()
	require.NoError(t, err)
	assert.Equal(t, ResultStopped, res)
	assert.Equal(t, StateStopped, s.State())
	assert.Zero(t, target.clears)
}

func TestScheduler_ClockFailures(t *testing.T) {
	clock := &manualClock{}
	target := &recordingTarget{}
	s := newTestScheduler(t, 5, clock, target, WithMaxFailures(3))
	require.NoError(t, s.Start())

	clock.err = errors.New("device busy")
	for i := 0; i < 2; i++ {
		res, err := s.Step()
		require.NoError(t, err)
		assert.Equal(t, ResultRetry, res)
	}

	// A success resets the consecutive count.
	clock.err = nil
	res, err := s.Step()
	require.NoError(t, err)
	assert.Equal(t, ResultRendered, res)

	clock.err = errors.New("device gone")
	for i := 0; i < 2; i++ {
		_, err := s.Step()
		require.NoError(t, err)
	}
	_, err = s.Step()
	assert.ErrorIs(t, err, ErrCollaborator)
	assert.Equal(t, StateStopped, s.State())
	assert.Equal(t, 5, s.Stats().ClockFailures)
}

func TestScheduler_PresentFailureContinues(t *testing.T) {
	clock := &manualClock{}
	target := &recordingTarget{err: errors.New("surface lost")}
	s := newTestScheduler(t, 5, clock, target)
	require.NoError(t, s.Start())

	res, err := s.Step()
	require.NoError(t, err)
	assert.Equal(t, ResultRetry, res)
	assert.Equal(t, uint64(1), s.NextTick(), "the frame is consumed")

	target.err = nil
	clock.tick = 1
	res, err = s.Step()
	require.NoError(t, err)
	assert.Equal(t, ResultRendered, res)
	assert.Equal(t, Stats{Rendered: 1, PresentFailures: 1}, s.Stats())
}

func TestScheduler_TruncatedFrameIsFatal(t *testing.T) {
	data := numberedContainer(t, 2)
	data = data[:len(data)-3]
	dec, err := codec.NewDecoder(data)
	require.NoError(t, err)

	clock := &manualClock{}
	s := NewScheduler(dec, clock, &recordingTarget{}, WithLogger(quietLogger()))
	require.NoError(t, s.Start())

	_, err = s.Step()
	require.NoError(t, err)
	clock.tick = 1
	_, err = s.Step()
	assert.ErrorIs(t, err, codec.ErrTruncatedFrame)
	assert.Equal(t, StateStopped, s.State())
}

func TestScheduler_RunSleepsWhileAhead(t *testing.T) {
	clock := &manualClock{}
	target := &recordingTarget{}
	var slept []time.Duration
	s := newTestScheduler(t, 6, clock, target,
		WithIdleSleep(2*time.Millisecond),
		WithSleep(func(d time.Duration) {
			slept = append(slept, d)
			clock.tick++
		}),
	)

	require.NoError(t, s.Run(context.Background()))
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, target.frameIDs())
	assert.Zero(t, s.Stats().Dropped)
	require.NotEmpty(t, slept)
	assert.Equal(t, 2*time.Millisecond, slept[0])
}

func TestScheduler_RunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	clock := &manualClock{}
	target := &recordingTarget{}
	s := newTestScheduler(t, 100, clock, target, WithSleep(func(time.Duration) {
		cancel()
	}))

	require.NoError(t, s.Run(ctx))
	assert.Equal(t, StateStopped, s.State())
	assert.Len(t, target.presented, 1)
}
