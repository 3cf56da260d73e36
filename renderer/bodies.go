package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/tidal/systems"
)

var (
	haloColor   = rl.Color{R: 255, G: 170, B: 90, A: 255}
	ringColor   = rl.Color{R: 255, G: 225, B: 170, A: 255}
	shadowColor = rl.Color{R: 0, G: 0, B: 0, A: 255}
)

// glowLayers are the stacked discs of a halo, outermost first, as multiples
// of the body radius and alpha at full intensity.
var glowLayers = []struct {
	scale float32
	alpha float32
}{
	{2.6, 10},
	{2.0, 18},
	{1.6, 30},
	{1.3, 55},
}

// drawAccretor renders the halo, the photon ring and the shadow disc.
func drawAccretor(r *systems.RenderRecord, lens float64, layers Layers) {
	center := rl.Vector2{X: float32(r.X), Y: float32(r.Y)}
	radius := float32(r.Size)

	if layers.Halo {
		drawGlow(center, radius, haloColor, float32(r.Glow))
	}

	if layers.LensRing && lens > 0 {
		width := max(1, radius*0.08)
		inner := radius * 1.1
		rl.DrawRing(center, inner, inner+width, 0, 360, 64, rl.Fade(ringColor, float32(0.6*lens)))
	}

	rl.DrawCircleV(center, radius, shadowColor)
}

// drawStar renders the star's disc with a halo that grows as it is torn apart.
func drawStar(r *systems.RenderRecord, layers Layers) {
	center := rl.Vector2{X: float32(r.X), Y: float32(r.Y)}
	radius := float32(math.Max(r.Size, 1))

	if layers.Halo {
		drawGlow(center, radius, r.Color, float32(0.25+0.5*r.Glow))
	}
	rl.DrawCircleV(center, radius, rl.Fade(r.Color, float32(r.Alpha)))

	// Bright core
	rl.DrawCircleV(center, radius*0.45, rl.Color{R: 255, G: 250, B: 235, A: uint8(200 * (1 - 0.5*r.Glow))})
}

// drawGlow draws the halo layers around a body.
func drawGlow(center rl.Vector2, radius float32, color rl.Color, intensity float32) {
	if intensity <= 0 || radius <= 0 {
		return
	}
	for _, layer := range glowLayers {
		alpha := min(255, layer.alpha*intensity)
		c := color
		c.A = uint8(alpha)
		rl.DrawCircleV(center, radius*layer.scale, c)
	}
}
