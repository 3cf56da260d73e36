package systems

import (
	"image/color"
	"math"
	"slices"

	"github.com/pthm-cable/tidal/lensing"
	"gonum.org/v1/gonum/spatial/r3"
)

// RecordKind identifies what produced a render record.
type RecordKind uint8

const (
	KindStream RecordKind = iota
	KindDisk
	KindJet
	KindStar
	KindAccretor
)

// RenderRecord is one screen-space primitive for the painter.
type RenderRecord struct {
	X, Y  float64 // Screen pixels
	Size  float64 // Radius in pixels
	Color color.RGBA
	Alpha float64 // 0-1
	Depth float64 // Camera-space z, larger is farther
	Kind  RecordKind
	Glow  float64 // Halo intensity, bodies only
}

// Projector maps world points through a camera.
type Projector interface {
	ToCamera(world r3.Vec) (r3.Vec, float64)
	ToScreen(p r3.Vec, scale float64) (float64, float64)
}

// View bundles what particle systems need to build render records.
type View struct {
	Camera Projector
	Lens   lensing.Lens
	Radius float64 // Central body radius for lensing
}

// Project rotates a world point into camera space, bends it around the
// central body and maps it to the screen.
func (v View) Project(world r3.Vec, strength float64) (sx, sy, scale, depth float64) {
	p, scale := v.Camera.ToCamera(world)
	p = v.Lens.Apply(p, v.Radius, strength)
	sx, sy = v.Camera.ToScreen(p, scale)
	return sx, sy, scale, p.Z
}

// SortBackToFront orders records so the farthest is painted first.
func SortBackToFront(records []RenderRecord) {
	slices.SortStableFunc(records, func(a, b RenderRecord) int {
		switch {
		case a.Depth > b.Depth:
			return -1
		case a.Depth < b.Depth:
			return 1
		}
		return 0
	})
}

// Brighten scales a color's channels, saturating at 255.
func Brighten(c color.RGBA, k float64) color.RGBA {
	scale := func(v uint8) uint8 {
		return uint8(math.Min(255, math.Max(0, float64(v)*k)))
	}
	return color.RGBA{R: scale(c.R), G: scale(c.G), B: scale(c.B), A: c.A}
}

// LerpColor blends a toward b by t in [0,1].
func LerpColor(a, b color.RGBA, t float64) color.RGBA {
	t = clamp01(t)
	mix := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*t))
	}
	return color.RGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: mix(a.A, b.A)}
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
