// Package generator places the target and the shooter on the grid.
package generator

import (
	"math/rand"
	"time"

	"github.com/verte-zerg/reflex/internal/model"
)

// Target placement keeps clear of the edges and the shooter rows.
const (
	targetMarginX      = 5
	targetMarginTop    = 2
	targetMarginBottom = 6
	shooterOffsetY     = 2
)

// Generator produces randomized placements.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator for seed; 0 seeds from the current time.
func New(seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Placement returns a random target with the shooter at the bottom middle.
// Target x is in [5, W-5] and y in [2, H-6], both inclusive.
func (g *Generator) Placement(b model.Bounds) model.Placement {
	return model.Placement{
		Target: model.Point{
			X: g.between(targetMarginX, b.Width-targetMarginX),
			Y: g.between(targetMarginTop, b.Height-targetMarginBottom),
		},
		Shooter: Shooter(b),
	}
}

// Shooter returns the fixed shooter position for b.
func Shooter(b model.Bounds) model.Point {
	return model.Point{X: b.Width / 2, Y: b.Height - shooterOffsetY}
}

func (g *Generator) between(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + g.rnd.Intn(hi-lo+1)
}
