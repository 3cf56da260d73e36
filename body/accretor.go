// Package body holds the mass and orbit models of the two celestial bodies.
package body

import (
	"math"

	"github.com/pthm-cable/tidal/config"
	"github.com/pthm-cable/tidal/ramp"
)

// Accretor is the central compact body. It grows by consuming particles.
type Accretor struct {
	cfg config.AccretorConfig

	mass     float64
	consumed float64 // Cumulative consumed mass since the last awakening
	radius   float64 // Current (smoothed) radius
	target   float64 // Radius implied by consumed mass

	activity    float64 // Feeding activity, 0-1
	glow        ramp.Ramp
	stabilizing bool
}

// NewAccretor creates a dormant accretor at its initial mass.
func NewAccretor(cfg config.AccretorConfig) *Accretor {
	a := &Accretor{cfg: cfg}
	a.Reset()
	return a
}

// Reset restores the initial mass and dormant state.
func (a *Accretor) Reset() {
	a.mass = a.cfg.InitialMass
	a.ResetAwakening()
}

// ResetAwakening restores the dormant radius and clears feeding activity.
func (a *Accretor) ResetAwakening() {
	a.consumed = 0
	a.radius = a.cfg.BaseRadius
	a.target = a.cfg.BaseRadius
	a.activity = 0
	a.glow = ramp.Hold(0)
	a.stabilizing = false
}

// AddConsumedMass feeds the accretor. Non-positive amounts are ignored.
func (a *Accretor) AddConsumedMass(amount float64) {
	if amount <= 0 {
		return
	}
	a.mass += amount
	a.consumed += amount
	a.target = a.RadiusFor(a.consumed)
	a.activity = math.Min(1, a.activity+amount*a.cfg.ActivityGain)
}

// RadiusFor returns the radius implied by a cumulative consumed mass.
// It saturates at BaseRadius + GrowthScale.
func (a *Accretor) RadiusFor(consumed float64) float64 {
	if consumed <= 0 {
		return a.cfg.BaseRadius
	}
	if a.cfg.GrowthMass <= 0 {
		return a.cfg.BaseRadius + a.cfg.GrowthScale
	}
	return a.cfg.BaseRadius + a.cfg.GrowthScale*(1-math.Exp(-consumed/a.cfg.GrowthMass))
}

// StartStabilizing eases the glow toward its resting value. Mass and radius
// are left untouched.
func (a *Accretor) StartStabilizing() {
	if a.stabilizing {
		return
	}
	a.stabilizing = true
	a.glow = ramp.New(a.Glow(), a.cfg.RestingGlow, a.cfg.StabilizeDuration, ramp.EaseOutCubic)
}

// Update advances radius smoothing, activity decay and the glow ramp.
func (a *Accretor) Update(dt float64) {
	if dt <= 0 {
		return
	}

	// Target never shrinks, so the eased radius never does either.
	if a.radius < a.target {
		k := 1 - math.Exp(-a.cfg.RadiusSmoothing*dt)
		a.radius += (a.target - a.radius) * k
		if a.target-a.radius < 1e-9 {
			a.radius = a.target
		}
	}

	if a.stabilizing {
		a.glow.Advance(dt)
		return
	}
	a.activity = math.Max(0, a.activity-a.cfg.ActivityDecay*dt)
}

// Mass returns the current mass.
func (a *Accretor) Mass() float64 { return a.mass }

// InitialMass returns the configured starting mass.
func (a *Accretor) InitialMass() float64 { return a.cfg.InitialMass }

// Radius returns the current radius.
func (a *Accretor) Radius() float64 { return a.radius }

// TargetRadius returns the radius the accretor is easing toward.
func (a *Accretor) TargetRadius() float64 { return a.target }

// Consumed returns the mass consumed since the last awakening.
func (a *Accretor) Consumed() float64 { return a.consumed }

// Activity returns the feeding activity in [0,1].
func (a *Accretor) Activity() float64 { return a.activity }

// Stabilizing reports whether the accretor is settling to rest.
func (a *Accretor) Stabilizing() bool { return a.stabilizing }

// Glow returns the halo intensity in [0,1].
func (a *Accretor) Glow() float64 {
	if a.stabilizing {
		return a.glow.Value()
	}
	return a.activity
}
