package systems

import (
	"image/color"
	"math"
	"math/rand"

	"github.com/pthm-cable/tidal/config"
	"gonum.org/v1/gonum/spatial/r3"
)

// minDistance replaces distances to the origin that would blow up 1/r terms.
const minDistance = 1e-3

var up = r3.Vec{Y: 1}

// StreamParticle is a piece of the star being torn away.
type StreamParticle struct {
	ID              uint64
	Pos             r3.Vec
	Vel             r3.Vec
	Age             float64
	Size            float64
	InitialDistance float64
}

// StreamEvents reports what one Update removed from the stream.
type StreamEvents struct {
	Consumed     int
	ConsumedMass float64
	Expired      int
}

// Receiver accepts particles handed off from the stream.
type Receiver interface {
	// Bounds returns the planar radial band that particles are offered in.
	Bounds() (inner, outer float64)
	// Capture takes ownership of p, or refuses it.
	Capture(p StreamParticle) bool
}

// TidalStream integrates particles falling from the star toward the
// central body.
type TidalStream struct {
	Particles []StreamParticle

	cfg          config.StreamConfig
	maxParticles int
	refStep      float64
	bhRadius     float64

	ids *IDs
	rng *rand.Rand
}

// NewTidalStream creates an empty stream. refStep is the step that Drag is
// expressed per.
func NewTidalStream(cfg config.StreamConfig, refStep float64, ids *IDs, rng *rand.Rand) *TidalStream {
	return &TidalStream{
		Particles:    make([]StreamParticle, 0, cfg.MaxParticles),
		cfg:          cfg,
		maxParticles: cfg.MaxParticles,
		refStep:      refStep,
		ids:          ids,
		rng:          rng,
	}
}

// UpdateBHRadius sets the central body radius used for consumption.
// Particles already inside it are removed on the next Update.
func (s *TidalStream) UpdateBHRadius(radius float64) {
	s.bhRadius = radius
}

// AccretionRadius returns the distance below which particles are consumed.
func (s *TidalStream) AccretionRadius() float64 {
	return s.bhRadius * s.cfg.AccretionFactor
}

// Count returns the number of live particles.
func (s *TidalStream) Count() int {
	return len(s.Particles)
}

// Emit creates a particle on the star's surface. The emission point swings
// with the star's spin and favors the side facing the central body. Returns
// false when the pool is full.
func (s *TidalStream) Emit(pos, vel r3.Vec, emitterRadius, emitterRotation float64) bool {
	if len(s.Particles) >= s.maxParticles {
		return false
	}

	d := r3.Norm(pos)
	toCenter := r3.Vec{X: -1}
	if d > minDistance {
		toCenter = r3.Scale(-1/d, pos)
	}

	swing := math.Sin(emitterRotation) * s.cfg.SpinInfluence
	dir := r3.NewRotation(swing, up).Rotate(toCenter)

	// Near side feeds the inner tail, far side the outer one.
	side := 1.0
	if s.rng.Float64() >= s.cfg.InnerSideChance {
		side = -1
	}

	j := s.cfg.Jitter * emitterRadius
	jitter := r3.Vec{
		X: (s.rng.Float64()*2 - 1) * j,
		Y: (s.rng.Float64()*2 - 1) * j,
		Z: (s.rng.Float64()*2 - 1) * j,
	}
	start := r3.Add(r3.Add(pos, r3.Scale(side*emitterRadius, dir)), jitter)

	tangent := r3.Cross(up, toCenter)
	if n := r3.Norm(tangent); n > 0 {
		tangent = r3.Scale(1/n, tangent)
	}

	inward := s.cfg.InwardSpeedMin + s.rng.Float64()*(s.cfg.InwardSpeedMax-s.cfg.InwardSpeedMin)
	v := r3.Scale(s.cfg.Inheritance, vel)
	v = r3.Add(v, r3.Scale(inward, toCenter))
	v = r3.Add(v, r3.Scale(side*s.cfg.TangentialSpeed, tangent))

	s.Particles = append(s.Particles, StreamParticle{
		ID:              s.ids.Next(),
		Pos:             start,
		Vel:             v,
		Size:            s.cfg.SizeMin + s.rng.Float64()*(s.cfg.SizeMax-s.cfg.SizeMin),
		InitialDistance: r3.Norm(start),
	})
	return true
}

// Update integrates every particle: acceleration toward the origin falling
// off as 1/r, drag, then position. Particles inside the accretion radius are
// consumed; those past their lifetime expire.
func (s *TidalStream) Update(dt float64) StreamEvents {
	var ev StreamEvents
	if dt <= 0 {
		return ev
	}

	drag := s.cfg.Drag
	if s.refStep > 0 {
		drag = math.Pow(s.cfg.Drag, dt/s.refStep)
	}
	threshold := s.AccretionRadius()

	alive := 0
	for i := range s.Particles {
		p := &s.Particles[i]

		p.Age += dt
		if p.Age >= s.cfg.Lifetime {
			ev.Expired++
			continue
		}

		d := r3.Norm(p.Pos)
		if d < minDistance {
			d = minDistance
		}
		accel := s.cfg.Gravity / d
		p.Vel = r3.Add(p.Vel, r3.Scale(-accel*dt/d, p.Pos))
		p.Vel = r3.Scale(drag, p.Vel)
		p.Pos = r3.Add(p.Pos, r3.Scale(dt, p.Vel))

		if r3.Norm(p.Pos) < threshold {
			ev.Consumed++
			ev.ConsumedMass += s.cfg.ParticleMass
			continue
		}

		s.Particles[alive] = s.Particles[i]
		alive++
	}
	s.Particles = s.Particles[:alive]
	return ev
}

// HandOff offers every particle inside the receiver's band to it. Accepted
// particles leave the stream in the same call; their IDs are returned.
func (s *TidalStream) HandOff(r Receiver) []uint64 {
	if r == nil {
		return nil
	}
	inner, outer := r.Bounds()

	var captured []uint64
	alive := 0
	for i := range s.Particles {
		p := s.Particles[i]
		planar := math.Hypot(p.Pos.X, p.Pos.Z)
		if planar >= inner && planar <= outer && r.Capture(p) {
			captured = append(captured, p.ID)
			continue
		}
		s.Particles[alive] = s.Particles[i]
		alive++
	}
	s.Particles = s.Particles[:alive]
	return captured
}

// Reset removes every particle.
func (s *TidalStream) Reset() {
	s.Particles = s.Particles[:0]
}

var (
	streamHot  = color.RGBA{R: 255, G: 236, B: 200, A: 255}
	streamCool = color.RGBA{R: 255, G: 122, B: 48, A: 255}
)

// AppendRender appends one record per particle to dst.
func (s *TidalStream) AppendRender(dst []RenderRecord, view View, strength float64) []RenderRecord {
	for i := range s.Particles {
		p := &s.Particles[i]
		sx, sy, scale, depth := view.Project(p.Pos, strength)

		life := clamp01(p.Age / s.cfg.Lifetime)
		dst = append(dst, RenderRecord{
			X:     sx,
			Y:     sy,
			Size:  p.Size * scale,
			Color: LerpColor(streamHot, streamCool, life),
			Alpha: 1 - life*life,
			Depth: depth,
			Kind:  KindStream,
		})
	}
	return dst
}
