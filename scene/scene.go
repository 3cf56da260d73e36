// Package scene orchestrates one tidal disruption encounter: the phase
// timeline, both celestial bodies, and the particle systems between them.
package scene

import (
	"log/slog"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/tidal/body"
	"github.com/pthm-cable/tidal/components"
	"github.com/pthm-cable/tidal/config"
	"github.com/pthm-cable/tidal/lensing"
	"github.com/pthm-cable/tidal/phase"
	"github.com/pthm-cable/tidal/ramp"
	"github.com/pthm-cable/tidal/systems"
	"github.com/pthm-cable/tidal/telemetry"
)

// Scene holds the complete simulation state.
type Scene struct {
	cfg  *config.Config
	seed int64
	rng  *rand.Rand

	phases   *phase.Controller
	accretor *body.Accretor
	star     *body.Star

	ids    systems.IDs
	stream *systems.TidalStream
	disk   *systems.AccretionDisk
	jets   *systems.Jets
	lens   lensing.Lens

	flash   ramp.Ramp
	emitAcc float64

	wobble      float64 // Wobble amplitude applied last tick
	wobbleCarry float64 // Amplitude left over from the previous phase

	// Celestial bodies as entities, synced from the body models each tick
	world      *ecs.World
	bodyMapper *ecs.Map3[components.Position, components.Velocity, components.Sprite]
	bodyFilter *ecs.Filter3[components.Position, components.Velocity, components.Sprite]
	accretorE  ecs.Entity
	starE      ecs.Entity

	// Telemetry
	collector *telemetry.Collector
	perf      *telemetry.PerfCollector
	phaseLog  *telemetry.PhaseLog

	tick    int32
	simTime float64

	records []systems.RenderRecord
}

// New creates a scene in the approach phase.
func New(cfg *config.Config, seed int64) *Scene {
	world := ecs.NewWorld()

	s := &Scene{
		cfg:        cfg,
		seed:       seed,
		rng:        rand.New(rand.NewSource(seed)),
		phases:     phase.NewController(tableFor(cfg)),
		accretor:   body.NewAccretor(cfg.Accretor),
		star:       body.NewStar(cfg.Star),
		lens:       lensing.New(cfg.Lensing.Falloff, cfg.Lensing.RingFactor, cfg.Lensing.MinRadius),
		flash:      ramp.Hold(0),
		world:      world,
		bodyMapper: ecs.NewMap3[components.Position, components.Velocity, components.Sprite](world),
		bodyFilter: ecs.NewFilter3[components.Position, components.Velocity, components.Sprite](world),
		collector:  telemetry.NewCollector(cfg.Telemetry.StatsWindow, cfg.Physics.DT),
		perf:       telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		phaseLog:   telemetry.NewPhaseLog(),
	}

	refStep := cfg.Derived.ReferenceStep
	s.stream = systems.NewTidalStream(cfg.Stream, refStep, &s.ids, s.rng)
	s.disk = systems.NewAccretionDisk(cfg.Disk, refStep, s.accretor.Radius(), &s.ids, s.rng)
	s.jets = systems.NewJets(cfg.Jets, &s.ids, s.rng)

	s.spawnBodies()
	s.reset()

	return s
}

// tableFor builds the phase table from configured durations.
func tableFor(cfg *config.Config) phase.Table {
	return phase.DefaultTable(phase.Durations{
		Approach: cfg.Phases.Approach.Duration,
		Stretch:  cfg.Phases.Stretch.Duration,
		Accrete:  cfg.Phases.Accrete.Duration,
		Flare:    cfg.Phases.Flare.Duration,
	})
}

// Restart clears every pool, restores both bodies and the timeline, and
// reseeds the RNG. Safe to call at any time.
func (s *Scene) Restart() {
	from := s.phases.Phase()
	t := s.reset()
	t.From = from
	slog.Info("restart", "tick", s.tick, "seed", s.seed, "from", from.String())
	s.recordTransition(t)
}

func (s *Scene) reset() phase.Transition {
	s.rng.Seed(s.seed)
	s.ids = systems.IDs{}

	s.stream.Reset()
	s.disk.Reset()
	s.jets.Reset()
	s.accretor.Reset()
	s.star.Reset()

	s.flash = ramp.Hold(0)
	s.emitAcc = 0
	s.wobble = s.cfg.Phases.Approach.WobbleBase
	s.wobbleCarry = 0

	t := s.phases.Reset()
	s.applyEffects(t.Enter)
	s.propagateRadius()
	s.syncBodies()
	return t
}

// propagateRadius pushes the accretor's radius to every particle system.
func (s *Scene) propagateRadius() {
	r := s.accretor.Radius()
	s.stream.UpdateBHRadius(r)
	s.disk.UpdateBHRadius(r)
	s.jets.UpdateBHRadius(r)
}

// Tick returns the number of completed updates.
func (s *Scene) Tick() int32 { return s.tick }

// SimTime returns the simulated seconds since the scene was created.
func (s *Scene) SimTime() float64 { return s.simTime }

// Seed returns the RNG seed.
func (s *Scene) Seed() int64 { return s.seed }

// Config returns the scene configuration.
func (s *Scene) Config() *config.Config { return s.cfg }

// Phase returns the active phase.
func (s *Scene) Phase() phase.Phase { return s.phases.Phase() }

// Readout returns the phase label state for the UI.
func (s *Scene) Readout() phase.Readout {
	return s.phases.Readout(s.cfg.Phases.DisruptReference)
}

// CanRestart reports whether the encounter has reached its resting state.
func (s *Scene) CanRestart() bool { return s.phases.CanRestart() }

// Accretor returns the central body.
func (s *Scene) Accretor() *body.Accretor { return s.accretor }

// Star returns the disrupted star.
func (s *Scene) Star() *body.Star { return s.star }

// Stream returns the tidal stream pool.
func (s *Scene) Stream() *systems.TidalStream { return s.stream }

// Disk returns the accretion disk pool.
func (s *Scene) Disk() *systems.AccretionDisk { return s.disk }

// Jets returns the polar jet pool.
func (s *Scene) Jets() *systems.Jets { return s.jets }

// Lens returns the lensing model used for projection.
func (s *Scene) Lens() lensing.Lens { return s.lens }

// Perf returns the step timing collector.
func (s *Scene) Perf() *telemetry.PerfCollector { return s.perf }

// PhaseLog returns the log of phase transitions and restarts.
func (s *Scene) PhaseLog() *telemetry.PhaseLog { return s.phaseLog }

// Flash returns the flash overlay alpha in [0,1].
func (s *Scene) Flash() float64 { return s.flash.Value() }
