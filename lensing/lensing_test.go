package lensing

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func testLens() Lens {
	return New(1.8, 1.8, 0.001)
}

func TestApplyBehindBulgesOutward(t *testing.T) {
	l := testLens()

	got := l.Apply(r3.Vec{X: 40, Y: 0, Z: 10}, 50, 1)
	if got.X <= 40 {
		t.Errorf("displaced x = %v, want > 40", got.X)
	}
	if got.Y != 0 {
		t.Errorf("displaced y = %v, want 0", got.Y)
	}
	if got.Z != 10 {
		t.Errorf("depth should pass through, got %v", got.Z)
	}

	// ratio = (40 + 50*1.8*exp(-40/90)*1.2) / 40
	want := 40 + 50*1.8*math.Exp(-40.0/90.0)*1.2
	if math.Abs(got.X-want) > 1e-9 {
		t.Errorf("displaced x = %v, want %v", got.X, want)
	}
}

func TestApplyInFrontUnchanged(t *testing.T) {
	l := testLens()
	tests := []struct {
		name     string
		p        r3.Vec
		strength float64
	}{
		{"in front", r3.Vec{X: 40, Y: 0, Z: -10}, 1},
		{"on plane", r3.Vec{X: 40, Y: 5, Z: 0}, 1},
		{"far in front half strength", r3.Vec{X: -3, Y: 7, Z: -500}, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := l.Apply(tt.p, 50, tt.strength)
			if got != tt.p {
				t.Errorf("Apply(%v) = %v, want unchanged", tt.p, got)
			}
		})
	}
}

func TestApplyZeroStrengthIsIdentity(t *testing.T) {
	l := testLens()
	p := r3.Vec{X: 12, Y: -9, Z: 30}
	if got := l.Apply(p, 50, 0); got != p {
		t.Errorf("zero strength changed point: %v", got)
	}
}

func TestApplyAtOriginIsFinite(t *testing.T) {
	l := testLens()
	got := l.Apply(r3.Vec{X: 0, Y: 0, Z: 5}, 50, 1)
	if math.IsNaN(got.X) || math.IsInf(got.X, 0) || math.IsNaN(got.Y) || math.IsInf(got.Y, 0) {
		t.Errorf("degenerate radius produced %v", got)
	}
}

func TestApplyPreservesDirection(t *testing.T) {
	l := testLens()
	p := r3.Vec{X: 30, Y: 40, Z: 1}
	got := l.Apply(p, 50, 1)

	if math.Abs(math.Atan2(got.Y, got.X)-math.Atan2(p.Y, p.X)) > 1e-9 {
		t.Errorf("direction changed: %v -> %v", p, got)
	}
	if math.Hypot(got.X, got.Y) <= 50 {
		t.Errorf("expected outward displacement, got radius %v", math.Hypot(got.X, got.Y))
	}
}

func TestDisplacementFallsOff(t *testing.T) {
	l := testLens()
	near := l.Displacement(10, 50, 1)
	far := l.Displacement(1000, 50, 1)
	if near <= far {
		t.Errorf("displacement should fall off with radius: near=%v far=%v", near, far)
	}
	if far < 0 {
		t.Errorf("displacement should never be inward, got %v", far)
	}
}
