package systems

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pthm-cable/tidal/config"
	"gonum.org/v1/gonum/spatial/r3"
)

const refStep = 1.0 / 60.0

func newTestStream(mutate func(*config.StreamConfig)) *TidalStream {
	cfg := config.Default().Stream
	if mutate != nil {
		mutate(&cfg)
	}
	return NewTidalStream(cfg, refStep, &IDs{}, rand.New(rand.NewSource(1)))
}

func TestStreamEmitBounded(t *testing.T) {
	s := newTestStream(func(c *config.StreamConfig) { c.MaxParticles = 5 })

	accepted := 0
	for i := 0; i < 20; i++ {
		if s.Emit(r3.Vec{X: 400}, r3.Vec{}, 20, 0) {
			accepted++
		}
		if s.Count() > 5 {
			t.Fatalf("pool exceeded capacity: %d", s.Count())
		}
	}
	if accepted != 5 {
		t.Errorf("expected 5 accepted emissions, got %d", accepted)
	}
}

func TestStreamEmitVelocity(t *testing.T) {
	s := newTestStream(func(c *config.StreamConfig) {
		c.Inheritance = 0
		c.Jitter = 0
	})

	for i := 0; i < 50; i++ {
		s.Emit(r3.Vec{X: 400}, r3.Vec{Z: 200}, 20, 0)
	}
	for _, p := range s.Particles {
		if p.Vel.X > -s.cfg.InwardSpeedMin+1e-9 {
			t.Errorf("particle %d lacks inward speed: %v", p.ID, p.Vel)
		}
		if math.Abs(math.Abs(p.Vel.Z)-s.cfg.TangentialSpeed) > 1e-9 {
			t.Errorf("particle %d tangential speed %f, want %f", p.ID, math.Abs(p.Vel.Z), s.cfg.TangentialSpeed)
		}
		if d := math.Abs(p.Pos.X - 400); math.Abs(d-20) > 1e-9 {
			t.Errorf("particle %d not on the emitter surface: x=%f", p.ID, p.Pos.X)
		}
	}
}

func TestStreamEmitFavorsNearSide(t *testing.T) {
	s := newTestStream(func(c *config.StreamConfig) {
		c.Jitter = 0
		c.InnerSideChance = 1
	})
	for i := 0; i < 20; i++ {
		s.Emit(r3.Vec{X: 400}, r3.Vec{}, 20, 0)
	}
	for _, p := range s.Particles {
		if p.Pos.X >= 400 {
			t.Errorf("expected emission from the near side, got x=%f", p.Pos.X)
		}
	}
}

func TestStreamEmitInheritsVelocity(t *testing.T) {
	s := newTestStream(func(c *config.StreamConfig) {
		c.Inheritance = 1
		c.TangentialSpeed = 0
		c.InwardSpeedMin = 0
		c.InwardSpeedMax = 0
	})
	s.Emit(r3.Vec{X: 400}, r3.Vec{Y: 7, Z: 30}, 20, 0)
	if got := s.Particles[0].Vel; got != (r3.Vec{Y: 7, Z: 30}) {
		t.Errorf("expected inherited velocity, got %v", got)
	}
}

func TestStreamGravityLinearFalloff(t *testing.T) {
	s := newTestStream(func(c *config.StreamConfig) {
		c.Gravity = 100
		c.Drag = 1
	})
	s.Particles = append(s.Particles, StreamParticle{ID: 1, Pos: r3.Vec{X: 100}})

	s.Update(0.1)

	p := s.Particles[0]
	if math.Abs(p.Vel.X+0.1) > 1e-12 {
		t.Errorf("expected vx = -0.1 (accel 100/100), got %f", p.Vel.X)
	}
	if math.Abs(p.Pos.X-99.99) > 1e-12 {
		t.Errorf("expected x = 99.99, got %f", p.Pos.X)
	}
}

func TestStreamDrag(t *testing.T) {
	s := newTestStream(func(c *config.StreamConfig) {
		c.Gravity = 0
		c.Drag = 0.5
	})
	s.Particles = append(s.Particles, StreamParticle{ID: 1, Pos: r3.Vec{X: 300}, Vel: r3.Vec{Z: 40}})

	s.Update(refStep)
	if math.Abs(s.Particles[0].Vel.Z-20) > 1e-9 {
		t.Errorf("expected drag to halve speed per reference step, got %f", s.Particles[0].Vel.Z)
	}

	s.Update(2 * refStep)
	if math.Abs(s.Particles[0].Vel.Z-5) > 1e-9 {
		t.Errorf("drag should compound with dt, got %f", s.Particles[0].Vel.Z)
	}
}

func TestStreamConsumption(t *testing.T) {
	s := newTestStream(nil)
	s.UpdateBHRadius(10)
	s.Particles = append(s.Particles,
		StreamParticle{ID: 1, Pos: r3.Vec{X: 5}},
		StreamParticle{ID: 2, Pos: r3.Vec{X: 300}},
	)

	ev := s.Update(refStep)

	if ev.Consumed != 1 {
		t.Errorf("expected 1 consumed, got %d", ev.Consumed)
	}
	if math.Abs(ev.ConsumedMass-s.cfg.ParticleMass) > 1e-12 {
		t.Errorf("expected consumed mass %f, got %f", s.cfg.ParticleMass, ev.ConsumedMass)
	}
	if s.Count() != 1 || s.Particles[0].ID != 2 {
		t.Errorf("expected only particle 2 to remain, got %+v", s.Particles)
	}
}

func TestStreamExpiry(t *testing.T) {
	s := newTestStream(nil)
	s.Particles = append(s.Particles, StreamParticle{ID: 1, Pos: r3.Vec{X: 300}})

	ev := s.Update(s.cfg.Lifetime + 1)
	if ev.Expired != 1 || ev.Consumed != 0 || s.Count() != 0 {
		t.Errorf("expected silent expiry, got %+v with %d left", ev, s.Count())
	}
}

func TestStreamOriginIsFinite(t *testing.T) {
	s := newTestStream(nil)
	s.Particles = append(s.Particles, StreamParticle{ID: 1})

	s.Update(refStep)

	p := s.Particles[0]
	for _, v := range []float64{p.Pos.X, p.Pos.Y, p.Pos.Z, p.Vel.X, p.Vel.Y, p.Vel.Z} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("particle at origin produced non-finite state: %+v", p)
		}
	}

	// Emitting from the origin must not divide by zero either.
	s.Emit(r3.Vec{}, r3.Vec{}, 10, 0)
	q := s.Particles[len(s.Particles)-1]
	if math.IsNaN(q.Vel.X) || math.IsNaN(q.Pos.X) {
		t.Errorf("emission at origin produced NaN: %+v", q)
	}
}

func TestStreamAgeNonDecreasing(t *testing.T) {
	s := newTestStream(nil)
	s.UpdateBHRadius(30)
	for i := 0; i < 50; i++ {
		s.Emit(r3.Vec{X: 400, Z: float64(i)}, r3.Vec{Z: 100}, 20, float64(i))
	}

	ages := map[uint64]float64{}
	for tick := 0; tick < 300; tick++ {
		s.Update(refStep)
		for _, p := range s.Particles {
			if prev, ok := ages[p.ID]; ok && p.Age < prev {
				t.Fatalf("particle %d age went backwards: %f -> %f", p.ID, prev, p.Age)
			}
			ages[p.ID] = p.Age
		}
	}
}

type fakeReceiver struct {
	inner, outer float64
	accept       bool
	got          []StreamParticle
}

func (r *fakeReceiver) Bounds() (float64, float64) { return r.inner, r.outer }

func (r *fakeReceiver) Capture(p StreamParticle) bool {
	if !r.accept {
		return false
	}
	r.got = append(r.got, p)
	return true
}

func TestStreamHandOff(t *testing.T) {
	tests := []struct {
		name         string
		accept       bool
		wantCaptured int
		wantLeft     int
	}{
		{"accepted", true, 2, 1},
		{"refused", false, 0, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStream(nil)
			s.Particles = append(s.Particles,
				StreamParticle{ID: 1, Pos: r3.Vec{X: 100, Y: 50}},
				StreamParticle{ID: 2, Pos: r3.Vec{Z: -150}},
				StreamParticle{ID: 3, Pos: r3.Vec{X: 400}},
			)
			r := &fakeReceiver{inner: 60, outer: 180, accept: tt.accept}

			captured := s.HandOff(r)

			if len(captured) != tt.wantCaptured {
				t.Errorf("captured %d, want %d", len(captured), tt.wantCaptured)
			}
			if s.Count() != tt.wantLeft {
				t.Errorf("stream holds %d, want %d", s.Count(), tt.wantLeft)
			}
			for _, id := range captured {
				for _, p := range s.Particles {
					if p.ID == id {
						t.Errorf("particle %d owned by both pools", id)
					}
				}
			}
		})
	}
}

func TestStreamHandOffNilReceiver(t *testing.T) {
	s := newTestStream(nil)
	s.Particles = append(s.Particles, StreamParticle{ID: 1, Pos: r3.Vec{X: 100}})
	if got := s.HandOff(nil); got != nil || s.Count() != 1 {
		t.Errorf("nil receiver should be a no-op, got %v", got)
	}
}

func TestStreamReset(t *testing.T) {
	s := newTestStream(nil)
	for i := 0; i < 10; i++ {
		s.Emit(r3.Vec{X: 400}, r3.Vec{}, 20, 0)
	}
	s.Reset()
	if s.Count() != 0 {
		t.Errorf("expected empty stream after reset, got %d", s.Count())
	}
}
