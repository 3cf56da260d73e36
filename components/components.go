// Package components defines ECS components for the scene's celestial bodies.
package components

import (
	"image/color"

	"gonum.org/v1/gonum/spatial/r3"
)

// BodyKind identifies which celestial body an entity represents.
type BodyKind uint8

const (
	BodyAccretor BodyKind = iota // Central compact body
	BodyStar                     // Disrupted body
)

func (k BodyKind) String() string {
	switch k {
	case BodyAccretor:
		return "accretor"
	case BodyStar:
		return "star"
	}
	return "unknown"
}

// Position represents an entity's world position.
type Position struct {
	X, Y, Z float64
}

// Vec returns the position as a vector.
func (p Position) Vec() r3.Vec {
	return r3.Vec{X: p.X, Y: p.Y, Z: p.Z}
}

// Set copies a vector into the position.
func (p *Position) Set(v r3.Vec) {
	p.X, p.Y, p.Z = v.X, v.Y, v.Z
}

// Velocity represents an entity's velocity in world units per second.
type Velocity struct {
	X, Y, Z float64
}

// Vec returns the velocity as a vector.
func (v Velocity) Vec() r3.Vec {
	return r3.Vec{X: v.X, Y: v.Y, Z: v.Z}
}

// Set copies a vector into the velocity.
func (v *Velocity) Set(w r3.Vec) {
	v.X, v.Y, v.Z = w.X, w.Y, w.Z
}

// Sprite describes how a body is painted.
type Sprite struct {
	Kind    BodyKind
	Radius  float64 // World units
	Color   color.RGBA
	Glow    float64 // 0-1 halo intensity
	Visible bool
}
