// Package ramp provides typed eased interpolation for smoothly ramped values.
//
// A Ramp is owned by whichever component needs it and is advanced explicitly
// each tick; nothing is mutated behind the owner's back.
package ramp

import "math"

// Easing maps normalized time in [0, 1] to normalized progress.
type Easing func(t float64) float64

// Linear is the identity easing.
func Linear(t float64) float64 { return t }

// EaseInQuad accelerates from zero velocity.
func EaseInQuad(t float64) float64 { return t * t }

// EaseOutQuad decelerates to zero velocity.
func EaseOutQuad(t float64) float64 { return t * (2 - t) }

// EaseOutCubic decelerates more sharply than EaseOutQuad.
func EaseOutCubic(t float64) float64 {
	u := 1 - t
	return 1 - u*u*u
}

// EaseInOutSine accelerates then decelerates along a sine curve.
func EaseInOutSine(t float64) float64 {
	return -(math.Cos(math.Pi*t) - 1) / 2
}

// Ramp interpolates from Start to End over Duration seconds.
type Ramp struct {
	Start    float64
	End      float64
	Elapsed  float64
	Duration float64
	Ease     Easing
}

// New creates a ramp that starts immediately.
func New(start, end, duration float64, ease Easing) Ramp {
	return Ramp{Start: start, End: end, Duration: duration, Ease: ease}
}

// Hold creates a finished ramp resting at v.
func Hold(v float64) Ramp {
	return Ramp{Start: v, End: v}
}

// Advance moves the ramp forward by dt and returns the new value.
func (r *Ramp) Advance(dt float64) float64 {
	if dt > 0 && r.Elapsed < r.Duration {
		r.Elapsed += dt
		if r.Elapsed > r.Duration {
			r.Elapsed = r.Duration
		}
	}
	return r.Value()
}

// Value returns the current interpolated value.
func (r Ramp) Value() float64 {
	if r.Duration <= 0 || r.Elapsed >= r.Duration {
		return r.End
	}
	t := r.Elapsed / r.Duration
	if t < 0 {
		t = 0
	}
	ease := r.Ease
	if ease == nil {
		ease = Linear
	}
	return r.Start + (r.End-r.Start)*ease(t)
}

// Done reports whether the ramp has reached End.
func (r Ramp) Done() bool {
	return r.Duration <= 0 || r.Elapsed >= r.Duration
}

// Retarget starts a new ramp from the current value toward end.
func (r *Ramp) Retarget(end, duration float64, ease Easing) {
	*r = New(r.Value(), end, duration, ease)
}
