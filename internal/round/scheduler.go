package round

import (
	"sync"
	"time"

	"github.com/verte-zerg/reflex/internal/clock"
	"github.com/verte-zerg/reflex/internal/model"
)

// latch is a one-shot completion signal. Set may be called any number of
// times; only the first has an effect.
type latch struct {
	once sync.Once
	ch   chan struct{}
}

func newLatch() *latch {
	return &latch{ch: make(chan struct{})}
}

func (l *latch) Set() {
	l.once.Do(func() { close(l.ch) })
}

func (l *latch) Done() <-chan struct{} {
	return l.ch
}

// scheduler toggles the target between GO and NOGO every interval until the
// round latch is set.
type scheduler struct {
	state    *TargetState
	clock    clock.Clock
	interval time.Duration
	tick     time.Duration
	redraw   func(model.TargetSnapshot)
}

// run returns the number of switches it made. It waits on the latch and the
// tick together, so a set latch is seen within one tick.
func (s *scheduler) run(done <-chan struct{}) int {
	switches := 0
	for {
		select {
		case <-done:
			return switches
		case <-s.clock.After(s.tick):
			snap, switched := s.state.switchIfDue(s.clock, s.interval)
			if !switched {
				continue
			}
			switches++
			if s.redraw != nil {
				s.redraw(snap)
			}
		}
	}
}
