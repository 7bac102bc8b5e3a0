// Package debounce coalesces bursts of events into a single deferred call.
package debounce

import (
	"sync"
	"time"
)

// DefaultDelay is the quiet period used when none is configured.
const DefaultDelay = 500 * time.Millisecond

// Timer is a pending call that can be stopped.
type Timer interface {
	Stop() bool
}

// Clock arms timers. The real clock is backed by time.AfterFunc.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock replaces the real clock, mostly for tests.
func WithClock(c Clock) Option {
	return func(s *Scheduler) {
		if c != nil {
			s.clock = c
		}
	}
}

// Scheduler holds at most one pending trigger. Every Schedule cancels the
// previous trigger and re-arms the quiet period.
type Scheduler struct {
	mu    sync.Mutex
	clock Clock
	delay time.Duration
	timer Timer
	gen   uint64
}

// New creates a scheduler firing after delay of silence.
func New(delay time.Duration, opts ...Option) *Scheduler {
	if delay <= 0 {
		delay = DefaultDelay
	}
	s := &Scheduler{clock: realClock{}, delay: delay}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Schedule replaces any pending trigger with fn.
func (s *Scheduler) Schedule(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()
	s.gen++
	gen := s.gen
	s.timer = s.clock.AfterFunc(s.delay, func() {
		s.mu.Lock()
		// A timer that fired while being replaced or canceled must not run.
		if gen != s.gen {
			s.mu.Unlock()
			return
		}
		s.timer = nil
		s.mu.Unlock()
		fn()
	})
}

// Cancel drops the pending trigger, if any.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	s.gen++
}

// Pending reports whether a trigger is armed.
func (s *Scheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}

// Delay returns the quiet period.
func (s *Scheduler) Delay() time.Duration {
	return s.delay
}

func (s *Scheduler) stopLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
