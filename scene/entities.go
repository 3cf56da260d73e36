package scene

import (
	"image/color"
	"math"

	"github.com/pthm-cable/tidal/components"
	"github.com/pthm-cable/tidal/systems"
)

var (
	starColor     = color.RGBA{R: 255, G: 244, B: 214, A: 255}
	starTornColor = color.RGBA{R: 255, G: 150, B: 70, A: 255}
	accretorColor = color.RGBA{R: 0, G: 0, B: 0, A: 255}
)

// spawnBodies creates the accretor and star entities.
func (s *Scene) spawnBodies() {
	var pos components.Position
	var vel components.Velocity

	sprite := components.Sprite{Kind: components.BodyAccretor, Color: accretorColor, Visible: true}
	s.accretorE = s.bodyMapper.NewEntity(&pos, &vel, &sprite)

	sprite = components.Sprite{Kind: components.BodyStar, Color: starColor, Visible: true}
	s.starE = s.bodyMapper.NewEntity(&pos, &vel, &sprite)
}

// syncBodies copies body model state into the entity components.
func (s *Scene) syncBodies() {
	// The accretor stays at the origin.
	_, _, sprite := s.bodyMapper.Get(s.accretorE)
	sprite.Radius = s.accretor.Radius()
	sprite.Glow = s.accretor.Glow()

	pos, vel, sprite := s.bodyMapper.Get(s.starE)
	pos.Set(s.star.Position())
	vel.Set(s.star.Velocity())
	sprite.Radius = s.star.VisibleRadius()
	sprite.Visible = !s.star.Depleted()
	torn := 1.0
	if m0 := s.star.InitialMass(); m0 > 0 {
		torn = 1 - s.star.Mass()/m0
	}
	sprite.Color = systems.LerpColor(starColor, starTornColor, torn)
	sprite.Glow = math.Min(1, s.stretch())
}

// appendBodies appends a record for every visible body entity. The star
// bends around the accretor like any particle; the accretor sits at the
// lens center and is never displaced.
func (s *Scene) appendBodies(dst []systems.RenderRecord, view systems.View) []systems.RenderRecord {
	query := s.bodyFilter.Query()
	for query.Next() {
		pos, _, sprite := query.Get()
		if !sprite.Visible {
			continue
		}

		kind := systems.KindAccretor
		strength := 0.0
		if sprite.Kind == components.BodyStar {
			kind = systems.KindStar
			strength = 1
		}

		sx, sy, scale, depth := view.Project(pos.Vec(), strength)
		dst = append(dst, systems.RenderRecord{
			X:     sx,
			Y:     sy,
			Size:  sprite.Radius * scale,
			Color: sprite.Color,
			Alpha: 1,
			Depth: depth,
			Kind:  kind,
			Glow:  sprite.Glow,
		})
	}
	return dst
}
