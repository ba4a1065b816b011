package generator

import (
	"testing"

	"github.com/verte-zerg/reflex/internal/model"
)

func TestPlacementWithinRange(t *testing.T) {
	b := model.Bounds{Width: model.GridWidth, Height: model.GridHeight}
	g := New(42)
	seenMinX, seenMaxX := false, false
	for i := 0; i < 5000; i++ {
		p := g.Placement(b)
		if p.Target.X < 5 || p.Target.X > 55 {
			t.Fatalf("target x out of range: %d", p.Target.X)
		}
		if p.Target.Y < 2 || p.Target.Y > 14 {
			t.Fatalf("target y out of range: %d", p.Target.Y)
		}
		if p.Shooter != (model.Point{X: 30, Y: 18}) {
			t.Fatalf("unexpected shooter position: %+v", p.Shooter)
		}
		seenMinX = seenMinX || p.Target.X == 5
		seenMaxX = seenMaxX || p.Target.X == 55
	}
	if !seenMinX || !seenMaxX {
		t.Fatalf("expected inclusive x range, saw min=%v max=%v", seenMinX, seenMaxX)
	}
}

func TestSameSeedSamePlacements(t *testing.T) {
	b := model.Bounds{Width: 60, Height: 20}
	a, c := New(7), New(7)
	for i := 0; i < 10; i++ {
		if a.Placement(b) != c.Placement(b) {
			t.Fatalf("placements diverged at %d", i)
		}
	}
}
