package scene

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/tidal/telemetry"
)

// Sample captures the scene state a stats window reports at its end.
func (s *Scene) Sample() telemetry.Sample {
	radii := make([]float64, len(s.disk.Particles))
	for i := range s.disk.Particles {
		radii[i] = s.disk.Particles[i].Distance
	}
	speeds := make([]float64, len(s.stream.Particles))
	for i := range s.stream.Particles {
		speeds[i] = r3.Norm(s.stream.Particles[i].Vel)
	}

	return telemetry.Sample{
		Phase:          s.phases.Phase().String(),
		StateTime:      s.phases.StateTime(),
		Progress:       s.progress(),
		AccretorMass:   s.accretor.Mass(),
		AccretorRadius: s.accretor.Radius(),
		AccretorGlow:   s.accretor.Glow(),
		StarMass:       s.star.Mass(),
		StarOrbit:      s.star.OrbitalRadius(),
		StreamCount:    s.stream.Count(),
		DiskCount:      s.disk.Count(),
		JetCount:       s.jets.Count(),
		DiskRadii:      radii,
		StreamSpeeds:   speeds,
	}
}

// Snapshot serializes the scene, tagged with an optional bookmark.
func (s *Scene) Snapshot(bookmark *telemetry.Bookmark) *telemetry.Snapshot {
	snap := &telemetry.Snapshot{
		Version:    telemetry.SnapshotVersion,
		Seed:       s.seed,
		Tick:       s.tick,
		SimTimeSec: s.simTime,
		Phase:      s.phases.Phase().String(),
		StateTime:  s.phases.StateTime(),
		Accretor: telemetry.AccretorState{
			Mass:     s.accretor.Mass(),
			Radius:   s.accretor.Radius(),
			Consumed: s.accretor.Consumed(),
			Glow:     s.accretor.Glow(),
		},
		Star: telemetry.StarState{
			Mass:     s.star.Mass(),
			Orbit:    s.star.OrbitalRadius(),
			Phi:      s.star.Phi(),
			Pos:      vec3(s.star.Position()),
			Vel:      vec3(s.star.Velocity()),
			Depleted: s.star.Depleted(),
		},
		Stream:   make([]telemetry.StreamState, 0, s.stream.Count()),
		Disk:     make([]telemetry.DiskState, 0, s.disk.Count()),
		Jets:     s.jets.Count(),
		Bookmark: bookmark,
	}

	for i := range s.stream.Particles {
		p := &s.stream.Particles[i]
		snap.Stream = append(snap.Stream, telemetry.StreamState{
			ID:  p.ID,
			Pos: vec3(p.Pos),
			Vel: vec3(p.Vel),
			Age: p.Age,
		})
	}
	for i := range s.disk.Particles {
		p := &s.disk.Particles[i]
		snap.Disk = append(snap.Disk, telemetry.DiskState{
			ID:       p.ID,
			Angle:    p.Angle,
			Distance: p.Distance,
			Offset:   p.VerticalOffset,
			Age:      p.Age,
			Falling:  p.Falling,
		})
	}
	return snap
}

func vec3(v r3.Vec) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}
