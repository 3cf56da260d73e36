package scene

import (
	"github.com/pthm-cable/tidal/phase"
	"github.com/pthm-cable/tidal/systems"
)

// Frame is everything a painter needs to draw one picture of the scene.
type Frame struct {
	// Records are sorted back to front; the slice is reused by the next
	// BuildFrame call.
	Records []systems.RenderRecord

	Flash        float64 // Full-screen flash alpha
	Glow         float64 // Accretor halo intensity
	LensStrength float64
	JetIntensity float64

	Readout     phase.Readout
	CanRestart  bool
	StarInFront bool
}

// BuildFrame projects every particle and body through cam, lenses them
// around the accretor and sorts the result by camera depth.
func (s *Scene) BuildFrame(cam systems.Projector) Frame {
	view := systems.View{Camera: cam, Lens: s.lens, Radius: s.accretor.Radius()}

	records := s.records[:0]
	records = s.stream.AppendRender(records, view, 1)
	records = s.disk.AppendRender(records, view)
	records = s.jets.AppendRender(records, view, 1)
	records = s.appendBodies(records, view)
	systems.SortBackToFront(records)
	s.records = records

	return Frame{
		Records:      records,
		Flash:        s.flash.Value(),
		Glow:         s.accretor.Glow(),
		LensStrength: s.disk.LensStrength(),
		JetIntensity: s.jets.Intensity(),
		Readout:      s.Readout(),
		CanRestart:   s.CanRestart(),
		StarInFront:  s.StarInFront(cam),
	}
}

// StarInFront reports whether the star is between the camera and the accretor.
func (s *Scene) StarInFront(cam systems.Projector) bool {
	p, _ := cam.ToCamera(s.star.Position())
	return p.Z < 0
}
