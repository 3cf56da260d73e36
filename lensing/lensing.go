// Package lensing applies a stylized gravitational-lensing displacement to
// camera-space points that pass behind the central body.
package lensing

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Lens holds the projector constants. The zero value is not useful; use
// New or fill every field.
type Lens struct {
	Falloff    float64 // exponential falloff in units of R
	RingFactor float64 // peak displacement in units of R
	MinRadius  float64 // substituted for a planar radius of ~0
}

// ringBoost sharpens the ring peak relative to RingFactor.
const ringBoost = 1.2

// New creates a lens with the given constants.
func New(falloff, ringFactor, minRadius float64) Lens {
	return Lens{Falloff: falloff, RingFactor: ringFactor, MinRadius: minRadius}
}

// Apply displaces p outward in the camera plane. p is in camera space where
// z > 0 lies behind the central body; points at or in front of it are
// returned unchanged. radius is the central body radius and strength is
// clamped to [0, 1].
func (l Lens) Apply(p r3.Vec, radius, strength float64) r3.Vec {
	if p.Z <= 0 || strength <= 0 || radius <= 0 {
		return p
	}
	if strength > 1 {
		strength = 1
	}

	r := math.Hypot(p.X, p.Y)
	if r < l.MinRadius || r == 0 {
		r = l.MinRadius
		if r <= 0 {
			return p
		}
	}

	falloff := l.Falloff
	if falloff <= 0 {
		falloff = 1
	}
	f := math.Exp(-r / (radius * falloff))
	ratio := (r + radius*l.RingFactor*f*ringBoost*strength) / r

	return r3.Vec{X: p.X * ratio, Y: p.Y * ratio, Z: p.Z}
}

// Displacement returns how far Apply would push a point at planar radius r
// behind the body. Used by painters to size the photon ring.
func (l Lens) Displacement(r, radius, strength float64) float64 {
	if r <= 0 {
		r = l.MinRadius
	}
	p := l.Apply(r3.Vec{X: r, Z: 1}, radius, strength)
	return p.X - r
}
