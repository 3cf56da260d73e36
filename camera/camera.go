// Package camera provides an orbiting perspective camera around the origin.
package camera

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// nearPlane keeps the perspective divide away from the camera position.
const nearPlane = 1.0

// maxPitch keeps the camera from flipping over the poles.
const maxPitch = math.Pi/2 - 0.05

// Camera orbits the origin, looking at it from Distance/Zoom away.
// Camera space has +x right, +y up and +z away from the viewer, so z > 0
// lies behind the origin.
type Camera struct {
	// Orientation in radians
	Yaw, Pitch float64

	// Distance from the origin at zoom 1
	Distance float64

	// Focal length in pixels
	Focal float64

	// Zoom level (1.0 = default distance, 2.0 = half the distance)
	Zoom float64

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float64

	// Zoom constraints
	MinZoom, MaxZoom float64

	// Automatic yaw drift in radians per second
	OrbitSpeed float64

	defaultYaw, defaultPitch float64
}

// New creates a camera with the given orientation at zoom 1.
func New(viewportW, viewportH, distance, focal, yaw, pitch float64) *Camera {
	return &Camera{
		Yaw:          yaw,
		Pitch:        clamp(pitch, -maxPitch, maxPitch),
		Distance:     distance,
		Focal:        focal,
		Zoom:         1.0,
		ViewportW:    viewportW,
		ViewportH:    viewportH,
		MinZoom:      0.25,
		MaxZoom:      4.0,
		defaultYaw:   yaw,
		defaultPitch: pitch,
	}
}

// ToCamera rotates a world point into camera space and returns it with the
// perspective scale factor for that depth.
func (c *Camera) ToCamera(world r3.Vec) (r3.Vec, float64) {
	// Yaw turns the world about +y, pitch tilts it about +x.
	p := r3.NewRotation(-c.Yaw, r3.Vec{Y: 1}).Rotate(world)
	p = r3.NewRotation(-c.Pitch, r3.Vec{X: 1}).Rotate(p)
	return p, c.scaleAt(p.Z)
}

// ToScreen maps a camera-space point to screen pixels using its scale.
func (c *Camera) ToScreen(p r3.Vec, scale float64) (sx, sy float64) {
	sx = c.ViewportW/2 + p.X*scale
	sy = c.ViewportH/2 - p.Y*scale
	return sx, sy
}

// WorldToScreen projects a world point straight to screen pixels.
func (c *Camera) WorldToScreen(world r3.Vec) (sx, sy, scale float64) {
	p, scale := c.ToCamera(world)
	sx, sy = c.ToScreen(p, scale)
	return sx, sy, scale
}

// ViewDir returns the unit world-space direction from the camera toward the origin.
func (c *Camera) ViewDir() r3.Vec {
	d := r3.NewRotation(c.Pitch, r3.Vec{X: 1}).Rotate(r3.Vec{Z: 1})
	return r3.NewRotation(c.Yaw, r3.Vec{Y: 1}).Rotate(d)
}

func (c *Camera) scaleAt(z float64) float64 {
	depth := c.Distance/c.Zoom + z
	if depth < nearPlane {
		depth = nearPlane
	}
	return c.Focal / depth
}

// Update applies the automatic orbit drift.
func (c *Camera) Update(dt float64) {
	c.Yaw = wrapAngle(c.Yaw + c.OrbitSpeed*dt)
}

// Resize updates viewport dimensions.
func (c *Camera) Resize(viewportW, viewportH float64) {
	c.ViewportW = viewportW
	c.ViewportH = viewportH
}

// Orbit turns the camera by the given yaw and pitch deltas in radians.
func (c *Camera) Orbit(dYaw, dPitch float64) {
	c.Yaw = wrapAngle(c.Yaw + dYaw)
	c.Pitch = clamp(c.Pitch+dPitch, -maxPitch, maxPitch)
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Camera) SetZoom(zoom float64) {
	c.Zoom = clamp(zoom, c.MinZoom, c.MaxZoom)
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float64) {
	c.SetZoom(c.Zoom * factor)
}

// Reset returns the camera to its initial orientation and zoom.
func (c *Camera) Reset() {
	c.Yaw = c.defaultYaw
	c.Pitch = clamp(c.defaultPitch, -maxPitch, maxPitch)
	c.Zoom = 1.0
}

// wrapAngle wraps an angle to [-pi, pi].
func wrapAngle(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}

// clamp restricts a value to a range.
func clamp(x, min, max float64) float64 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
