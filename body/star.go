package body

import (
	"math"

	"github.com/pthm-cable/tidal/config"
	"gonum.org/v1/gonum/spatial/r3"
)

// minOrbit keeps Keplerian terms finite if the configured floor is zero.
const minOrbit = 1e-3

// Orbit holds the phase-dependent decay parameters for one tick.
type Orbit struct {
	StateTime float64 // Seconds since the current phase was entered
	DecayRate float64 // Exponential decay rate of the orbital radius (1/s)
	Wobble    float64 // Wobble amplitude scale, usually grows with progress
}

// Star is the disrupted body. Its orbit decays phase by phase and it sheds
// mass into the tidal stream until depleted.
type Star struct {
	cfg config.StarConfig

	mass                 float64
	initialMass          float64
	orbitalRadius        float64 // Including radial wobble
	baseRadius           float64 // Decayed radius before wobble
	entryRadius          float64 // baseRadius when the current phase was entered
	initialOrbitalRadius float64
	phi                  float64
	rotation             float64
	clock                float64 // Total simulated time, drives wobble oscillators

	pos r3.Vec
	vel r3.Vec

	depleted bool
}

// NewStar creates a star on its initial orbit.
func NewStar(cfg config.StarConfig) *Star {
	s := &Star{cfg: cfg}
	s.Reset()
	return s
}

// Reset restores the initial mass and orbit.
func (s *Star) Reset() {
	s.mass = s.cfg.InitialMass
	s.initialMass = s.cfg.InitialMass
	s.initialOrbitalRadius = s.cfg.InitialOrbitalRadius
	s.orbitalRadius = s.initialOrbitalRadius
	s.baseRadius = s.initialOrbitalRadius
	s.entryRadius = s.initialOrbitalRadius
	s.phi = s.cfg.InitialPhi
	s.rotation = 0
	s.clock = 0
	s.depleted = false

	r := s.initialOrbitalRadius
	speed := s.cfg.AngularSpeed * r
	s.Teleport(
		r3.Vec{X: r * math.Cos(s.phi), Z: r * math.Sin(s.phi)},
		r3.Vec{X: -speed * math.Sin(s.phi), Z: speed * math.Cos(s.phi)},
	)
}

// Teleport places the star and sets its velocity explicitly, so the next
// tick does not derive a spike from the jump.
func (s *Star) Teleport(pos, vel r3.Vec) {
	s.pos = pos
	s.vel = vel
}

// EnterPhase anchors orbital decay at the current radius.
func (s *Star) EnterPhase() {
	s.entryRadius = s.baseRadius
}

// Advance integrates the orbit by dt. floor is the closest allowed orbital
// radius; accretorMass and accretorInitialMass scale the angular speed.
func (s *Star) Advance(dt float64, orbit Orbit, floor, accretorMass, accretorInitialMass float64) {
	if dt <= 0 {
		return
	}
	s.clock += dt
	s.rotation = math.Mod(s.rotation+s.cfg.SpinRate*dt, 2*math.Pi)

	floor = math.Max(floor, minOrbit)
	s.baseRadius = math.Max(floor, s.entryRadius*math.Exp(-orbit.DecayRate*orbit.StateTime))

	w := orbit.Wobble
	radial := 1 + s.cfg.RadialWobble*w*math.Sin(s.cfg.RadialWobbleFreq*s.clock)
	s.orbitalRadius = math.Max(floor, s.baseRadius*radial)

	// omega ~ 1/sqrt(r), matching AngularSpeed at the initial orbit and mass.
	omega := s.cfg.AngularSpeed * math.Sqrt(s.initialOrbitalRadius/s.orbitalRadius)
	if accretorInitialMass > 0 && accretorMass > 0 {
		omega *= math.Sqrt(accretorMass / accretorInitialMass)
	}
	s.phi = math.Mod(s.phi+omega*dt, 2*math.Pi)

	theta := s.phi + s.cfg.AngularWobble*w*math.Sin(s.cfg.AngularWobbleFreq*s.clock)
	r := s.orbitalRadius
	next := r3.Vec{
		X: r * math.Cos(theta),
		Y: s.cfg.VerticalWobble * w * r * math.Sin(s.cfg.VerticalWobbleFreq*s.clock),
		Z: r * math.Sin(theta),
	}
	s.vel = r3.Scale(1/dt, r3.Sub(next, s.pos))
	s.pos = next
}

// ShedMass removes mass from the star. It returns true exactly once, on
// the call that depletes it.
func (s *Star) ShedMass(amount float64) bool {
	if s.depleted || amount <= 0 {
		return false
	}
	s.mass -= amount
	if s.mass <= 0 {
		s.mass = 0
		s.depleted = true
		return true
	}
	return false
}

// EmissionRadius returns the radius particles are emitted from, stretched
// by disruption progress in [0,1].
func (s *Star) EmissionRadius(stretch float64) float64 {
	return s.cfg.Radius * (1 + s.cfg.StretchFactor*stretch)
}

// VisibleRadius returns the painted radius, shrinking as mass is shed.
func (s *Star) VisibleRadius() float64 {
	if s.initialMass <= 0 {
		return 0
	}
	return s.cfg.Radius * math.Sqrt(s.mass/s.initialMass)
}

// Mass returns the remaining mass.
func (s *Star) Mass() float64 { return s.mass }

// InitialMass returns the mass the star started with.
func (s *Star) InitialMass() float64 { return s.initialMass }

// Depleted reports whether all mass has been shed.
func (s *Star) Depleted() bool { return s.depleted }

// OrbitalRadius returns the current orbital radius including wobble.
func (s *Star) OrbitalRadius() float64 { return s.orbitalRadius }

// InitialOrbitalRadius returns the starting orbital radius.
func (s *Star) InitialOrbitalRadius() float64 { return s.initialOrbitalRadius }

// Phi returns the orbital angle.
func (s *Star) Phi() float64 { return s.phi }

// Rotation returns the spin angle.
func (s *Star) Rotation() float64 { return s.rotation }

// Position returns the world position.
func (s *Star) Position() r3.Vec { return s.pos }

// Velocity returns the world velocity.
func (s *Star) Velocity() r3.Vec { return s.vel }
