package round

import (
	"sync"
	"time"

	"github.com/verte-zerg/reflex/internal/clock"
	"github.com/verte-zerg/reflex/internal/model"
)

// TargetState is the only mutable state shared inside a round. The
// scheduler is its single writer; the display and the controller read it.
// Color and switch instants change together under mu.
type TargetState struct {
	mu       sync.RWMutex
	color    model.Color
	appeared time.Time
	switches []time.Time
}

func newTargetState(appeared time.Time) *TargetState {
	return &TargetState{color: model.ColorGo, appeared: appeared}
}

// Snapshot returns a consistent copy of the current state.
func (s *TargetState) Snapshot() model.TargetSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *TargetState) snapshotLocked() model.TargetSnapshot {
	snap := model.TargetSnapshot{
		Color:      s.color,
		AppearedAt: s.appeared,
		SwitchedAt: s.appeared,
		Switches:   len(s.switches),
	}
	if n := len(s.switches); n > 0 {
		snap.SwitchedAt = s.switches[n-1]
	}
	return snap
}

// switchIfDue flips the color when interval has passed since the last
// switch. The switch is stamped with clk.Now() under the lock, so a shot
// read through ColorAt never sees a switch before it was made.
func (s *TargetState) switchIfDue(clk clock.Clock, interval time.Duration) (model.TargetSnapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := clk.Now()
	last := s.appeared
	if n := len(s.switches); n > 0 {
		last = s.switches[n-1]
	}
	if now.Sub(last) < interval {
		return model.TargetSnapshot{}, false
	}
	if s.color == model.ColorGo {
		s.color = model.ColorNoGo
	} else {
		s.color = model.ColorGo
	}
	s.switches = append(s.switches, now)
	return s.snapshotLocked(), true
}

// ColorAt returns the color after the last switch completed at or before t.
// Switches recorded later than t do not count, even if the scheduler made
// them before the caller got here.
func (s *TargetState) ColorAt(t time.Time) model.Color {
	if s.SwitchCount(t)%2 == 0 {
		return model.ColorGo
	}
	return model.ColorNoGo
}

// SwitchCount returns how many switches happened at or before t.
func (s *TargetState) SwitchCount(t time.Time) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, at := range s.switches {
		if at.After(t) {
			break
		}
		n++
	}
	return n
}
