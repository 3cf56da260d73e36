package scene

import (
	"log/slog"
	"math"

	"github.com/pthm-cable/tidal/body"
	"github.com/pthm-cable/tidal/config"
	"github.com/pthm-cable/tidal/phase"
	"github.com/pthm-cable/tidal/ramp"
	"github.com/pthm-cable/tidal/systems"
	"github.com/pthm-cable/tidal/telemetry"
)

// TickReport lists everything one Update did.
type TickReport struct {
	Tick        int32
	Transitions []phase.Transition

	Emitted int // Stream particles created
	Refused int // Emission attempts dropped by a full pool

	Stream      systems.StreamEvents
	Disk        systems.DiskEvents
	JetsExpired int
	Captured    []uint64 // IDs moved from the stream to the disk

	Depleted bool // The star ran out of mass this tick

	Stats *telemetry.WindowStats // Set when a stats window closed
}

// ConsumedMass returns the mass delivered to the accretor this tick.
func (r TickReport) ConsumedMass() float64 {
	return r.Stream.ConsumedMass + r.Disk.ConsumedMass
}

// Update advances the scene by dt seconds: phase timeline, bodies and
// their radius, emission, particle systems, consumption, radius
// propagation, then stream-to-disk hand-off.
func (s *Scene) Update(dt float64) TickReport {
	rep := TickReport{Tick: s.tick}
	if dt <= 0 {
		return rep
	}

	s.perf.StartTick()

	s.perf.StartStage(telemetry.StagePhase)
	s.flash.Advance(dt)
	if t, ok := s.phases.Update(dt); ok {
		s.applyTransition(t)
		rep.Transitions = append(rep.Transitions, t)
	}

	s.perf.StartStage(telemetry.StageBodies)
	floor := s.accretor.Radius() * s.cfg.Star.MinOrbitFactor
	orbit := s.orbit()
	s.wobble = orbit.Wobble
	s.star.Advance(dt, orbit, floor, s.accretor.Mass(), s.accretor.InitialMass())
	s.accretor.Update(dt)
	s.propagateRadius()

	s.perf.StartStage(telemetry.StageEmission)
	rep.Emitted, rep.Refused, rep.Depleted = s.emit(dt)
	if rep.Depleted {
		slog.Info("star_depleted", "tick", s.tick, "phase", s.phases.Phase().String())
	}
	// The event is only declared in disrupt, so a star depleted earlier
	// completes the disruption on the first tick of that phase.
	if len(rep.Transitions) == 0 && s.star.Depleted() {
		if t, ok := s.phases.Trigger(phase.EventDisruptionComplete); ok {
			s.applyTransition(t)
			rep.Transitions = append(rep.Transitions, t)
		}
	}

	s.perf.StartStage(telemetry.StageStream)
	rep.Stream = s.stream.Update(dt)

	s.perf.StartStage(telemetry.StageDisk)
	rep.Disk = s.disk.Update(dt)

	s.perf.StartStage(telemetry.StageJets)
	rep.JetsExpired = s.jets.Update(dt)

	s.accretor.AddConsumedMass(rep.ConsumedMass())
	s.propagateRadius()

	s.perf.StartStage(telemetry.StageHandOff)
	rep.Captured = s.stream.HandOff(s.disk)
	s.syncBodies()

	s.perf.StartStage(telemetry.StageTelemetry)
	s.collector.RecordEmission(rep.Emitted, rep.Refused)
	s.collector.RecordCaptured(len(rep.Captured))
	s.collector.RecordStream(rep.Stream.Consumed, rep.Stream.Expired, rep.Stream.ConsumedMass)
	s.collector.RecordDisk(rep.Disk.Spawned, rep.Disk.Consumed, rep.Disk.Expired, rep.Disk.Falling, rep.Disk.ConsumedMass)

	s.tick++
	s.simTime += dt
	rep.Tick = s.tick

	if s.collector.ShouldFlush(s.tick) {
		stats := s.collector.Flush(s.tick, s.Sample())
		rep.Stats = &stats
	}

	s.perf.EndTick()
	return rep
}

// phaseConfig returns the configured parameters of p. The terminal phase
// has none.
func (s *Scene) phaseConfig(p phase.Phase) config.PhaseConfig {
	switch p {
	case phase.Approach:
		return s.cfg.Phases.Approach
	case phase.Stretch:
		return s.cfg.Phases.Stretch
	case phase.Disrupt:
		return s.cfg.Phases.Disrupt
	case phase.Accrete:
		return s.cfg.Phases.Accrete
	case phase.Flare:
		return s.cfg.Phases.Flare
	}
	return config.PhaseConfig{}
}

// progress returns the active phase's progress, measuring disrupt against
// its reference duration.
func (s *Scene) progress() float64 {
	return s.phases.ProgressWith(s.cfg.Phases.DisruptReference)
}

// wobbleSettle is the time constant (seconds) over which a wobble amplitude
// carried across a transition fades into the new phase's own.
const wobbleSettle = 2.0

// orbit returns this tick's decay parameters for the star.
func (s *Scene) orbit() body.Orbit {
	pc := s.phaseConfig(s.phases.Phase())
	stateTime := s.phases.StateTime()
	wobble := pc.WobbleBase + (pc.Wobble-pc.WobbleBase)*s.progress()
	wobble += s.wobbleCarry * math.Exp(-stateTime/wobbleSettle)
	return body.Orbit{
		StateTime: stateTime,
		DecayRate: pc.DecayRate,
		Wobble:    wobble,
	}
}

// stretch returns how far the star is pulled apart, 0 before the stretch
// phase and 1 at the end of the disrupt reference time.
func (s *Scene) stretch() float64 {
	switch s.phases.Phase() {
	case phase.Approach:
		return 0
	case phase.Stretch:
		return 0.5 * s.progress()
	case phase.Disrupt:
		return 0.5 + 0.5*s.progress()
	}
	return 1
}

// emit sheds mass from the star into the stream. Every attempt costs mass,
// even one the full pool refuses, so the disruption always completes.
func (s *Scene) emit(dt float64) (accepted, refused int, depleted bool) {
	rate := s.phaseConfig(s.phases.Phase()).EmitRate
	if rate <= 0 || s.star.Depleted() {
		s.emitAcc = 0
		return 0, 0, false
	}

	s.emitAcc += rate * (0.5 + 0.5*s.progress()) * dt
	radius := s.star.EmissionRadius(s.stretch())
	pos, vel := s.star.Position(), s.star.Velocity()

	for s.emitAcc >= 1 && !depleted {
		s.emitAcc--
		if s.stream.Emit(pos, vel, radius, s.star.Rotation()) {
			accepted++
		} else {
			refused++
		}
		depleted = s.star.ShedMass(s.cfg.Star.MassPerParticle)
	}
	if depleted {
		s.emitAcc = 0
	}
	return accepted, refused, depleted
}

// applyTransition runs a transition's enter effects and records it.
func (s *Scene) applyTransition(t phase.Transition) {
	s.applyEffects(t.Enter)
	s.recordTransition(t)
}

// applyEffects performs the side effects a phase requests on entry.
func (s *Scene) applyEffects(e phase.Effect) {
	s.star.EnterPhase()
	s.wobbleCarry = s.wobble - s.phaseConfig(s.phases.Phase()).WobbleBase

	if e.Has(phase.EffectAwaken) {
		s.accretor.ResetAwakening()
	}
	if e.Has(phase.EffectFlash) {
		s.flash = ramp.New(1, 0, s.cfg.Phases.FlashDuration, ramp.EaseOutQuad)
	}
	if e.Has(phase.EffectActivateDisk) {
		s.disk.Activate()
	}
	if e.Has(phase.EffectFeed) {
		s.disk.SetSpawnRate(s.cfg.Disk.SpawnRate)
	}
	if e.Has(phase.EffectActivateJets) {
		s.jets.Activate()
	}
	if e.Has(phase.EffectStabilize) {
		s.accretor.StartStabilizing()
		s.jets.Settle(s.cfg.Accretor.StabilizeDuration)
	}
}

func (s *Scene) recordTransition(t phase.Transition) {
	slog.Info("phase_transition",
		"from", t.From.String(),
		"to", t.To.String(),
		"effects", t.Enter.String(),
		"tick", s.tick,
	)
	s.phaseLog.Record(telemetry.PhaseRecord{
		Tick:       s.tick,
		SimTimeSec: s.simTime,
		From:       t.From.String(),
		To:         t.To.String(),
		Effects:    t.Enter.String(),
		StarMass:   s.star.Mass(),
		Accretor:   s.accretor.Mass(),
	})
	s.collector.RecordTransition()
}
