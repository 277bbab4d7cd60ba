// Package player paces decoded frames against a clock.
package player

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"pixelshell/codec"
	"pixelshell/hal"

	"github.com/sirupsen/logrus"
)

var (
	ErrNotStarted     = errors.New("player: scheduler not started")
	ErrAlreadyStarted = errors.New("player: scheduler already started")
	// ErrCollaborator is returned once the clock or the presentation surface
	// has failed too many times in a row.
	ErrCollaborator = errors.New("player: too many consecutive failures")
)

const (
	DefaultIdleSleep   = time.Millisecond
	DefaultMaxFailures = 30
)

// FrameSource is a forward-only frame cursor. *codec.Decoder implements it.
type FrameSource interface {
	NextFrame() (*codec.Frame, error)
	SkipFrame() error
}

// Target receives one frame at a time. *render.Scaler implements it.
type Target interface {
	Clear()
	DrawRect(r codec.Rect)
	Present() error
}

// State is the scheduler lifecycle state.
type State uint8

const (
	StateIdle State = iota
	StateRunning
	StateDraining
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// StepResult tells the caller what one Step did.
type StepResult uint8

const (
	// ResultAhead means the clock has not reached the next frame yet.
	ResultAhead StepResult = iota
	ResultRendered
	// ResultRetry means a collaborator failed; the next Step may succeed.
	ResultRetry
	ResultStopped
)

// Stats counts what the scheduler has done so far.
type Stats struct {
	Rendered        int
	Dropped         int
	ClockFailures   int
	PresentFailures int
}

// Scheduler renders one frame per clock tick and drops whole frames to
// catch up when it falls behind.
//
// A Scheduler is not safe for concurrent use.
type Scheduler struct {
	frames FrameSource
	clock  hal.Clock
	target Target

	quit        func() bool
	sleep       func(time.Duration)
	idle        time.Duration
	maxFailures int
	onState     func(from, to State)
	log         *logrus.Entry

	state    State
	next     uint64
	failures int
	stats    Stats
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithQuit sets the non-blocking cancellation poll.
func WithQuit(quit func() bool) Option {
	return func(s *Scheduler) { s.quit = quit }
}

// WithSleep replaces time.Sleep in Run.
func WithSleep(sleep func(time.Duration)) Option {
	return func(s *Scheduler) { s.sleep = sleep }
}

// WithIdleSleep sets how long Run sleeps while ahead of the clock.
func WithIdleSleep(d time.Duration) Option {
	return func(s *Scheduler) { s.idle = d }
}

// WithMaxFailures sets how many consecutive clock or present failures are
// tolerated before Step gives up.
func WithMaxFailures(n int) Option {
	return func(s *Scheduler) { s.maxFailures = n }
}

// WithStateChange registers a callback for every state transition.
func WithStateChange(fn func(from, to State)) Option {
	return func(s *Scheduler) { s.onState = fn }
}

func WithLogger(log *logrus.Entry) Option {
	return func(s *Scheduler) { s.log = log }
}

// NewScheduler returns an idle scheduler.
func NewScheduler(frames FrameSource, clock hal.Clock, target Target, opts ...Option) *Scheduler {
	s := &Scheduler{
		frames:      frames,
		clock:       clock,
		target:      target,
		sleep:       time.Sleep,
		idle:        DefaultIdleSleep,
		maxFailures: DefaultMaxFailures,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logrus.WithField("component", "scheduler")
	}
	if s.maxFailures <= 0 {
		s.maxFailures = 1
	}
	return s
}

func (s *Scheduler) State() State { return s.state }

// NextTick returns the tick at which the next frame is due.
func (s *Scheduler) NextTick() uint64 { return s.next }

func (s *Scheduler) Stats() Stats { return s.stats }

// Start reads the clock and schedules the first frame for that tick.
func (s *Scheduler) Start() error {
	if s.state != StateIdle {
		return ErrAlreadyStarted
	}
	t, err := s.clock.Ticks()
	if err != nil {
		s.setState(StateStopped)
		return fmt.Errorf("player: start clock: %w", err)
	}
	s.next = t
	s.setState(StateRunning)

	s.log.WithFields(logrus.Fields{
		"function": "Start",
		"tick":     t,
	}).Debug("Scheduler started")
	return nil
}

// Step runs one scheduling iteration.
//
// It never blocks. A clean end of content and a quit request both return
// ResultStopped with a nil error.
func (s *Scheduler) Step() (StepResult, error) {
	switch s.state {
	case StateIdle:
		return ResultStopped, ErrNotStarted
	case StateStopped:
		return ResultStopped, nil
	}

	if s.quit != nil && s.quit() {
		s.log.WithFields(logrus.Fields{
			"function": "Step",
			"next":     s.next,
		}).Info("Quit requested")
		s.setState(StateStopped)
		return ResultStopped, nil
	}

	cur, err := s.clock.Ticks()
	if err != nil {
		s.stats.ClockFailures++
		return s.collaboratorFailed("clock", err)
	}
	if cur < s.next {
		return ResultAhead, nil
	}

	for cur > s.next {
		if err := s.frames.SkipFrame(); err != nil {
			return s.frameFailed(err)
		}
		s.next++
		s.stats.Dropped++
	}

	f, err := s.frames.NextFrame()
	if err != nil {
		return s.frameFailed(err)
	}
	s.target.Clear()
	for {
		r, err := f.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return s.frameFailed(err)
		}
		s.target.DrawRect(r)
	}
	s.next++

	if err := s.target.Present(); err != nil {
		s.stats.PresentFailures++
		return s.collaboratorFailed("present", err)
	}
	s.failures = 0
	s.stats.Rendered++
	return ResultRendered, nil
}

// Run steps until the content ends, quit is requested, ctx is cancelled or
// an error occurs. It sleeps the idle interval whenever it is ahead.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.state == StateIdle {
		if err := s.Start(); err != nil {
			return err
		}
	}

	for {
		if ctx.Err() != nil {
			s.setState(StateStopped)
			return nil
		}
		res, err := s.Step()
		if err != nil {
			return err
		}
		switch res {
		case ResultStopped:
			return nil
		case ResultAhead, ResultRetry:
			s.sleep(s.idle)
		}
	}
}

func (s *Scheduler) frameFailed(err error) (StepResult, error) {
	if errors.Is(err, io.EOF) {
		s.setState(StateDraining)
		s.log.WithFields(logrus.Fields{
			"function": "Step",
			"rendered": s.stats.Rendered,
			"dropped":  s.stats.Dropped,
		}).Info("Content finished")
		s.setState(StateStopped)
		return ResultStopped, nil
	}

	s.setState(StateStopped)
	return ResultStopped, fmt.Errorf("player: frame at tick %d: %w", s.next, err)
}

func (s *Scheduler) collaboratorFailed(what string, err error) (StepResult, error) {
	s.failures++
	s.log.WithFields(logrus.Fields{
		"function": "Step",
		"source":   what,
		"failures": s.failures,
		"error":    err.Error(),
	}).Warn("Collaborator failure")

	if s.failures >= s.maxFailures {
		s.setState(StateStopped)
		return ResultStopped, fmt.Errorf("%w: %s: %w", ErrCollaborator, what, err)
	}
	return ResultRetry, nil
}

func (s *Scheduler) setState(to State) {
	from := s.state
	if from == to {
		return
	}
	s.state = to
	if s.onState != nil {
		s.onState(from, to)
	}
}
