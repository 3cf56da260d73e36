package systems

import (
	"image/color"
	"math/rand"

	"github.com/pthm-cable/tidal/config"
	"github.com/pthm-cable/tidal/ramp"
	"gonum.org/v1/gonum/spatial/r3"
)

// JetParticle travels outward along a pole.
type JetParticle struct {
	ID   uint64
	Pos  r3.Vec
	Vel  r3.Vec
	Age  float64
	Size float64
}

// Jets emits polar outflows once the flare begins. Jet particles are never
// captured or consumed; they only age out.
type Jets struct {
	Particles []JetParticle

	cfg          config.JetsConfig
	maxParticles int
	bhRadius     float64

	active    bool
	intensity ramp.Ramp
	emitAcc   float64

	ids *IDs
	rng *rand.Rand
}

// NewJets creates inactive jets.
func NewJets(cfg config.JetsConfig, ids *IDs, rng *rand.Rand) *Jets {
	j := &Jets{
		Particles:    make([]JetParticle, 0, cfg.MaxParticles),
		cfg:          cfg,
		maxParticles: cfg.MaxParticles,
		ids:          ids,
		rng:          rng,
	}
	j.Reset()
	return j
}

// Activate ramps the jets up to full intensity. Calling it again has no effect.
func (j *Jets) Activate() {
	if j.active {
		return
	}
	j.active = true
	j.intensity = ramp.New(0, 1, j.cfg.ActivationDuration, ramp.EaseOutQuad)
}

// Settle eases the intensity to its resting value over duration seconds.
func (j *Jets) Settle(duration float64) {
	if !j.active {
		return
	}
	j.intensity.Retarget(j.cfg.RestingIntensity, duration, ramp.EaseOutCubic)
}

// Active reports whether the jets have been activated.
func (j *Jets) Active() bool { return j.active }

// Intensity returns the current emission intensity in [0,1].
func (j *Jets) Intensity() float64 { return j.intensity.Value() }

// Count returns the number of live particles.
func (j *Jets) Count() int { return len(j.Particles) }

// UpdateBHRadius sets the radius jets are launched from.
func (j *Jets) UpdateBHRadius(radius float64) {
	j.bhRadius = radius
}

// Update emits and moves jet particles. Returns how many expired.
func (j *Jets) Update(dt float64) int {
	if dt <= 0 {
		return 0
	}
	intensity := j.intensity.Advance(dt)

	if j.active && intensity > 0 {
		j.emitAcc += j.cfg.EmitRate * intensity * dt
		for j.emitAcc >= 1 {
			j.emitAcc--
			if !j.emit() {
				j.emitAcc = 0
				break
			}
		}
	}

	expired := 0
	alive := 0
	for i := range j.Particles {
		p := &j.Particles[i]
		p.Age += dt
		if p.Age >= j.cfg.Lifetime {
			expired++
			continue
		}
		p.Pos = r3.Add(p.Pos, r3.Scale(dt, p.Vel))

		j.Particles[alive] = j.Particles[i]
		alive++
	}
	j.Particles = j.Particles[:alive]
	return expired
}

func (j *Jets) emit() bool {
	if len(j.Particles) >= j.maxParticles {
		return false
	}
	pole := 1.0
	if j.rng.Intn(2) == 0 {
		pole = -1
	}
	lateral := j.cfg.Spread * j.cfg.Speed
	j.Particles = append(j.Particles, JetParticle{
		ID:  j.ids.Next(),
		Pos: r3.Vec{Y: pole * j.bhRadius},
		Vel: r3.Vec{
			X: j.rng.NormFloat64() * lateral,
			Y: pole * j.cfg.Speed * (0.8 + 0.4*j.rng.Float64()),
			Z: j.rng.NormFloat64() * lateral,
		},
		Size: j.cfg.Size * (0.7 + 0.6*j.rng.Float64()),
	})
	return true
}

// Reset deactivates the jets and removes every particle.
func (j *Jets) Reset() {
	j.Particles = j.Particles[:0]
	j.active = false
	j.intensity = ramp.Hold(0)
	j.emitAcc = 0
}

var jetColor = color.RGBA{R: 170, G: 205, B: 255, A: 255}

// AppendRender appends one record per particle to dst.
func (j *Jets) AppendRender(dst []RenderRecord, view View, strength float64) []RenderRecord {
	intensity := j.intensity.Value()
	for i := range j.Particles {
		p := &j.Particles[i]
		sx, sy, scale, depth := view.Project(p.Pos, strength)
		dst = append(dst, RenderRecord{
			X:     sx,
			Y:     sy,
			Size:  p.Size * scale,
			Color: jetColor,
			Alpha: clamp01(intensity * (1 - p.Age/j.cfg.Lifetime)),
			Depth: depth,
			Kind:  KindJet,
		})
	}
	return dst
}
