package systems

import (
	"image/color"
	"math"
	"math/rand"

	"github.com/pthm-cable/tidal/config"
	"github.com/pthm-cable/tidal/ramp"
	"gonum.org/v1/gonum/spatial/r3"
)

// DiskParticle is debris orbiting in the disk plane (XZ).
type DiskParticle struct {
	ID             uint64
	Angle          float64
	Distance       float64
	VerticalOffset float64
	AngularSpeed   float64
	Age            float64
	Lifetime       float64
	Size           float64
	BaseColor      color.RGBA
	Falling        bool
}

// DiskEvents reports what one Update did to the disk.
type DiskEvents struct {
	Spawned      int
	Consumed     int
	ConsumedMass float64
	Expired      int
	Falling      int // Particles that started falling this tick
}

// AccretionDisk keeps debris in quasi-Keplerian orbit around the central
// body until it decays inward and is consumed or ages out.
type AccretionDisk struct {
	Particles []DiskParticle

	cfg          config.DiskConfig
	maxParticles int
	refStep      float64

	centralRadius float64
	inner, outer  float64

	active    bool
	scale     ramp.Ramp
	lens      ramp.Ramp
	spawnRate float64
	spawnAcc  float64

	ids *IDs
	rng *rand.Rand
}

// NewAccretionDisk creates an inactive disk sized for the given central radius.
func NewAccretionDisk(cfg config.DiskConfig, refStep, centralRadius float64, ids *IDs, rng *rand.Rand) *AccretionDisk {
	d := &AccretionDisk{
		Particles:    make([]DiskParticle, 0, cfg.MaxParticles),
		cfg:          cfg,
		maxParticles: cfg.MaxParticles,
		refStep:      refStep,
		ids:          ids,
		rng:          rng,
	}
	d.Reset()
	d.UpdateBHRadius(centralRadius)
	return d
}

// UpdateBHRadius rescales the disk bounds to the central body radius.
func (d *AccretionDisk) UpdateBHRadius(radius float64) {
	d.centralRadius = radius
	d.inner = radius * d.cfg.InnerFactor
	d.outer = radius * d.cfg.OuterFactor
}

// Bounds returns the inner and outer disk radii.
func (d *AccretionDisk) Bounds() (inner, outer float64) {
	return d.inner, d.outer
}

// Activate starts the scale and lensing ramps and enables spawning and
// capture. Calling it again has no effect.
func (d *AccretionDisk) Activate() {
	if d.active {
		return
	}
	d.active = true
	d.scale = ramp.New(0, 1, d.cfg.ActivationDuration, ramp.EaseOutCubic)
	d.lens = ramp.New(0, 1, d.cfg.ActivationDuration, ramp.EaseInOutSine)
}

// Active reports whether the disk has been activated.
func (d *AccretionDisk) Active() bool { return d.active }

// Scale returns the visual expansion factor in [0,1].
func (d *AccretionDisk) Scale() float64 { return d.scale.Value() }

// LensStrength returns the lensing strength in [0,1].
func (d *AccretionDisk) LensStrength() float64 { return d.lens.Value() }

// SetSpawnRate sets how many particles per second the disk spawns on its own.
func (d *AccretionDisk) SetSpawnRate(rate float64) {
	d.spawnRate = math.Max(0, rate)
}

// Count returns the number of live particles.
func (d *AccretionDisk) Count() int {
	return len(d.Particles)
}

// KeplerSpeed returns the Keplerian angular speed at a distance.
func (d *AccretionDisk) KeplerSpeed(distance float64) float64 {
	if distance < minDistance {
		distance = minDistance
	}
	return d.cfg.Kepler / math.Pow(distance, 1.5)
}

// SpawnParticle adds a particle at a random radius biased toward the inner
// edge. Returns false when inactive or full.
func (d *AccretionDisk) SpawnParticle() bool {
	if !d.active || len(d.Particles) >= d.maxParticles {
		return false
	}

	u := math.Pow(d.rng.Float64(), d.cfg.InnerBias)
	dist := d.inner + (d.outer-d.inner)*u

	d.Particles = append(d.Particles, DiskParticle{
		ID:             d.ids.Next(),
		Angle:          d.rng.Float64() * 2 * math.Pi,
		Distance:       dist,
		VerticalOffset: (d.rng.Float64()*2 - 1) * d.cfg.Thickness,
		AngularSpeed:   d.KeplerSpeed(dist),
		Lifetime:       d.lifetime(),
		Size:           d.cfg.SizeMin + d.rng.Float64()*(d.cfg.SizeMax-d.cfg.SizeMin),
		BaseColor:      d.colorAt(dist),
	})
	return true
}

// Capture converts a stream particle into a disk particle. It refuses
// particles outside the bounds, and any while inactive or full.
func (d *AccretionDisk) Capture(p StreamParticle) bool {
	if !d.active || len(d.Particles) >= d.maxParticles {
		return false
	}
	planar := math.Hypot(p.Pos.X, p.Pos.Z)
	if planar < d.inner || planar > d.outer || planar < minDistance {
		return false
	}

	// Angular speed from the tangential velocity, blended toward Keplerian.
	fromVel := (p.Pos.X*p.Vel.Z - p.Pos.Z*p.Vel.X) / (planar * planar)
	blend := d.cfg.CaptureBlend
	omega := (1-blend)*fromVel + blend*d.KeplerSpeed(planar)

	lifetime := d.lifetime()
	if lifetime <= p.Age {
		lifetime = p.Age + d.cfg.LifetimeMin
	}

	d.Particles = append(d.Particles, DiskParticle{
		ID:             p.ID,
		Angle:          math.Atan2(p.Pos.Z, p.Pos.X),
		Distance:       planar,
		VerticalOffset: p.Pos.Y,
		AngularSpeed:   omega,
		Age:            p.Age,
		Lifetime:       lifetime,
		Size:           p.Size,
		BaseColor:      d.colorAt(planar),
	})
	return true
}

// Update spawns, orbits, decays and consumes disk particles.
func (d *AccretionDisk) Update(dt float64) DiskEvents {
	var ev DiskEvents
	if dt <= 0 {
		return ev
	}

	d.scale.Advance(dt)
	d.lens.Advance(dt)

	if d.active && d.spawnRate > 0 {
		d.spawnAcc += d.spawnRate * dt
		for d.spawnAcc >= 1 {
			d.spawnAcc--
			if !d.SpawnParticle() {
				d.spawnAcc = 0
				break
			}
			ev.Spawned++
		}
	}

	// Per-reference-step factors for this dt.
	steps := 1.0
	if d.refStep > 0 {
		steps = dt / d.refStep
	}
	decay := math.Pow(d.cfg.DecayFactor, steps)
	spinUp := math.Pow(d.cfg.FallSpinUp, steps)
	flatten := math.Pow(d.cfg.FallFlatten, steps)
	circularize := 1 - math.Exp(-d.cfg.Circularize*dt)
	consumeAt := d.centralRadius * d.cfg.ConsumeFactor

	alive := 0
	for i := range d.Particles {
		p := &d.Particles[i]

		p.Age += dt
		if p.Age >= p.Lifetime {
			ev.Expired++
			continue
		}

		if !p.Falling && d.checkDecay(p, dt) {
			p.Falling = true
			ev.Falling++
		}

		if p.Falling {
			p.Distance *= decay
			p.AngularSpeed *= spinUp
			p.VerticalOffset *= flatten
		} else {
			p.AngularSpeed += (d.KeplerSpeed(p.Distance) - p.AngularSpeed) * circularize
		}
		p.Angle = math.Mod(p.Angle+p.AngularSpeed*dt, 2*math.Pi)

		if p.Distance < consumeAt {
			ev.Consumed++
			ev.ConsumedMass += d.cfg.ParticleMass
			continue
		}

		d.Particles[alive] = d.Particles[i]
		alive++
	}
	d.Particles = d.Particles[:alive]
	return ev
}

// checkDecay rolls whether p starts falling this tick. The chance grows
// toward the inner edge and with age.
func (d *AccretionDisk) checkDecay(p *DiskParticle, dt float64) bool {
	if d.cfg.DecayChance <= 0 {
		return false
	}
	proximity := 0.0
	if span := d.outer - d.inner; span > 0 {
		proximity = clamp01((d.outer - p.Distance) / span)
	}
	aged := 0.0
	if p.Lifetime > 0 {
		aged = clamp01(p.Age / p.Lifetime)
	}
	chance := d.cfg.DecayChance * dt * (1 + 2*proximity) * (1 + aged)
	return d.rng.Float64() < chance
}

// Reset deactivates the disk and removes every particle.
func (d *AccretionDisk) Reset() {
	d.Particles = d.Particles[:0]
	d.active = false
	d.scale = ramp.Hold(0)
	d.lens = ramp.Hold(0)
	d.spawnRate = 0
	d.spawnAcc = 0
}

func (d *AccretionDisk) lifetime() float64 {
	return d.cfg.LifetimeMin + d.rng.Float64()*(d.cfg.LifetimeMax-d.cfg.LifetimeMin)
}

var (
	diskHot  = color.RGBA{R: 235, G: 245, B: 255, A: 255}
	diskWarm = color.RGBA{R: 255, G: 196, B: 92, A: 255}
	diskCool = color.RGBA{R: 196, G: 64, B: 28, A: 255}
)

// colorAt maps a radius to a color: white-hot at the inner edge, red at the
// outer edge.
func (d *AccretionDisk) colorAt(distance float64) color.RGBA {
	t := 0.0
	if span := d.outer - d.inner; span > 0 {
		t = clamp01((distance - d.inner) / span)
	}
	if t < 0.4 {
		return LerpColor(diskHot, diskWarm, t/0.4)
	}
	return LerpColor(diskWarm, diskCool, (t-0.4)/0.6)
}

// WorldPosition returns a particle's world position at the current scale.
func (d *AccretionDisk) WorldPosition(p *DiskParticle) r3.Vec {
	s := d.scale.Value()
	return r3.Vec{
		X: math.Cos(p.Angle) * p.Distance * s,
		Y: p.VerticalOffset * s,
		Z: math.Sin(p.Angle) * p.Distance * s,
	}
}

// AppendRender appends one record per particle to dst. Particles moving
// toward the camera are brightened and receding ones dimmed.
func (d *AccretionDisk) AppendRender(dst []RenderRecord, view View) []RenderRecord {
	if len(d.Particles) == 0 {
		return dst
	}
	scale := d.scale.Value()
	strength := d.lens.Value()

	for i := range d.Particles {
		p := &d.Particles[i]
		sx, sy, persp, depth := view.Project(d.WorldPosition(p), strength)

		// Orbital velocity direction in camera space; -z points at the viewer.
		tangent := r3.Vec{X: -math.Sin(p.Angle), Z: math.Cos(p.Angle)}
		if p.AngularSpeed < 0 {
			tangent = r3.Scale(-1, tangent)
		}
		v, _ := view.Camera.ToCamera(tangent)
		brightness := 1 + d.cfg.Doppler*(-v.Z)

		alpha := 1.0
		if d.cfg.FadeIn > 0 {
			alpha = clamp01(p.Age / d.cfg.FadeIn)
		}
		if fade := p.Lifetime * d.cfg.FadeOutFraction; fade > 0 {
			alpha *= clamp01((p.Lifetime - p.Age) / fade)
		}

		dst = append(dst, RenderRecord{
			X:     sx,
			Y:     sy,
			Size:  p.Size * persp * math.Max(scale, 0.2),
			Color: Brighten(p.BaseColor, brightness),
			Alpha: alpha * scale,
			Depth: depth,
			Kind:  KindDisk,
		})
	}
	return dst
}
