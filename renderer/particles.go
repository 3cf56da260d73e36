package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/tidal/systems"
)

// minParticleSize keeps far particles visible as single pixels.
const minParticleSize = 0.5

// drawParticle renders one stream, disk or jet record as a circle.
func drawParticle(r *systems.RenderRecord) {
	alpha := r.Alpha
	if alpha <= 0 {
		return
	}
	if alpha > 1 {
		alpha = 1
	}

	size := float32(r.Size)
	if size < minParticleSize {
		size = minParticleSize
	}

	color := r.Color
	color.A = uint8(alpha * float64(r.Color.A))
	rl.DrawCircleV(rl.Vector2{X: float32(r.X), Y: float32(r.Y)}, size, color)
}
