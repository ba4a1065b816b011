// Package clock provides time sources for round timing.
package clock

import (
	"sync"
	"time"
)

// Clock provides the time-related operations used by the game loop.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

// System is the wall clock. time.Now carries a monotonic reading, so
// differences between its values are immune to wall-clock jumps.
var System Clock = systemClock{}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

// Elapsed returns t1-t0, never negative.
func Elapsed(t0, t1 time.Time) time.Duration {
	d := t1.Sub(t0)
	if d < 0 {
		return 0
	}
	return d
}

// Step is a deterministic clock for tests. Each After call advances the
// clock by d and fires at once, so a loop waiting on After walks through
// time as fast as it runs. Steps that would pass the stop instant never fire.
type Step struct {
	mu   sync.Mutex
	now  time.Time
	stop time.Time
}

// NewStep returns a Step clock starting at start.
func NewStep(start time.Time) *Step {
	return &Step{now: start}
}

// Now implements Clock.
func (s *Step) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// After implements Clock.
func (s *Step) After(d time.Duration) <-chan time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan time.Time, 1)
	next := s.now.Add(d)
	if !s.stop.IsZero() && next.After(s.stop) {
		return ch
	}
	s.now = next
	ch <- next
	return ch
}

// Advance moves the clock forward by d.
func (s *Step) Advance(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = s.now.Add(d)
}

// StopAt caps how far After may advance the clock.
func (s *Step) StopAt(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stop = t
}
