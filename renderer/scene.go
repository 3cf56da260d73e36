// Package renderer paints scene frames with raylib.
package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/tidal/scene"
	"github.com/pthm-cable/tidal/systems"
)

// Layers selects which parts of a frame are painted.
type Layers struct {
	Starfield bool
	Stream    bool
	Disk      bool
	Jets      bool
	Halo      bool
	LensRing  bool
}

// AllLayers enables everything.
func AllLayers() Layers {
	return Layers{Starfield: true, Stream: true, Disk: true, Jets: true, Halo: true, LensRing: true}
}

// ViewState is the camera orientation the background drifts with.
type ViewState struct {
	Time       float32
	Yaw, Pitch float32
}

// SceneRenderer paints frames built by the scene.
type SceneRenderer struct {
	background *BackgroundRenderer
	width      float32
	height     float32
}

// NewSceneRenderer creates a renderer for a screen of the given size.
func NewSceneRenderer(width, height int32) *SceneRenderer {
	return &SceneRenderer{
		background: NewBackgroundRenderer(width, height, 3, 4, 10),
		width:      float32(width),
		height:     float32(height),
	}
}

// Resize updates the screen size.
func (r *SceneRenderer) Resize(width, height float32) {
	r.width = width
	r.height = height
	r.background.Resize(width, height)
}

// Draw paints one frame. Records are drawn in order, so a back-to-front
// frame lets the accretor's shadow hide what lies behind it.
func (r *SceneRenderer) Draw(frame scene.Frame, layers Layers, view ViewState) {
	if layers.Starfield {
		r.background.Draw(view.Time, view.Yaw, view.Pitch)
	}

	for i := range frame.Records {
		rec := &frame.Records[i]
		switch rec.Kind {
		case systems.KindAccretor:
			drawAccretor(rec, frame.LensStrength, layers)
		case systems.KindStar:
			drawStar(rec, layers)
		case systems.KindStream:
			if layers.Stream {
				drawParticle(rec)
			}
		case systems.KindDisk:
			if layers.Disk {
				drawParticle(rec)
			}
		case systems.KindJet:
			if layers.Jets {
				drawParticle(rec)
			}
		}
	}

	if frame.Flash > 0 {
		alpha := uint8(min(1, 0.85*frame.Flash) * 255)
		rl.DrawRectangle(0, 0, int32(r.width), int32(r.height), rl.Color{R: 255, G: 255, B: 255, A: alpha})
	}
}

// Unload frees GPU resources.
func (r *SceneRenderer) Unload() {
	r.background.Unload()
}
