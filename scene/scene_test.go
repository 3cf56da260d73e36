package scene

import (
	"math"
	"testing"

	"github.com/pthm-cable/tidal/camera"
	"github.com/pthm-cable/tidal/config"
	"github.com/pthm-cable/tidal/phase"
	"github.com/pthm-cable/tidal/systems"
	"gonum.org/v1/gonum/spatial/r3"
)

const dt = 1.0 / 60.0

// testConfig shortens the timeline so a full encounter runs in a few
// hundred ticks.
func testConfig(mutate func(*config.Config)) *config.Config {
	cfg := config.Default()
	cfg.Phases.Approach.Duration = 1
	cfg.Phases.Stretch.Duration = 1
	cfg.Phases.Accrete.Duration = 2
	cfg.Phases.Flare.Duration = 1
	cfg.Star.InitialMass = 6
	if mutate != nil {
		mutate(cfg)
	}
	return cfg
}

// runUntil steps s until done returns true. It fails the test if maxTicks
// elapse first.
func runUntil(t *testing.T, s *Scene, maxTicks int, done func(TickReport) bool) {
	t.Helper()
	for i := 0; i < maxTicks; i++ {
		if done(s.Update(dt)) {
			return
		}
	}
	t.Fatalf("condition not met after %d ticks, phase %s", maxTicks, s.Phase())
}

func TestNewSceneStartsInApproach(t *testing.T) {
	s := New(testConfig(nil), 1)

	if s.Phase() != phase.Approach {
		t.Errorf("expected approach, got %s", s.Phase())
	}
	if s.Stream().Count() != 0 || s.Disk().Count() != 0 || s.Jets().Count() != 0 {
		t.Error("expected empty pools")
	}
	if s.Disk().Active() {
		t.Error("disk should start inactive")
	}
	if s.Tick() != 0 {
		t.Errorf("expected tick 0, got %d", s.Tick())
	}
	if s.PhaseLog().Total() != 0 {
		t.Errorf("construction should not log a transition, got %d", s.PhaseLog().Total())
	}
}

func TestPhaseSequence(t *testing.T) {
	s := New(testConfig(nil), 7)

	var visited []phase.Phase
	runUntil(t, s, 5000, func(rep TickReport) bool {
		if len(rep.Transitions) > 1 {
			t.Fatalf("tick %d made %d transitions", rep.Tick, len(rep.Transitions))
		}
		for _, tr := range rep.Transitions {
			visited = append(visited, tr.To)
		}
		return s.Phase() == phase.Stable
	})

	want := []phase.Phase{phase.Stretch, phase.Disrupt, phase.Accrete, phase.Flare, phase.Stable}
	if len(visited) != len(want) {
		t.Fatalf("visited %v, want %v", visited, want)
	}
	for i := range want {
		if visited[i] != want[i] {
			t.Errorf("transition %d: got %s, want %s", i, visited[i], want[i])
		}
	}

	// Stable never leaves on its own.
	for i := 0; i < 600; i++ {
		if rep := s.Update(dt); len(rep.Transitions) != 0 {
			t.Fatalf("stable transitioned to %s", rep.Transitions[0].To)
		}
	}
	if !s.CanRestart() {
		t.Error("expected restart affordance in stable")
	}
}

func TestDisruptEndsOnDepletion(t *testing.T) {
	s := New(testConfig(nil), 3)

	depletedTick := int32(-1)
	runUntil(t, s, 5000, func(rep TickReport) bool {
		if rep.Depleted {
			depletedTick = rep.Tick
		}
		return s.Phase() == phase.Accrete
	})
	if depletedTick < 0 {
		t.Fatal("star never depleted")
	}
	if !s.Star().Depleted() || s.Star().Mass() > 0 {
		t.Errorf("expected a depleted star, mass %f", s.Star().Mass())
	}
}

func TestMassDirection(t *testing.T) {
	s := New(testConfig(nil), 11)

	prevAccretor := s.Accretor().Mass()
	prevStar := s.Star().Mass()
	runUntil(t, s, 2000, func(rep TickReport) bool {
		if m := s.Accretor().Mass(); m < prevAccretor {
			t.Fatalf("tick %d: accretor mass fell from %f to %f", rep.Tick, prevAccretor, m)
		}
		if m := s.Star().Mass(); m > prevStar {
			t.Fatalf("tick %d: star mass rose from %f to %f", rep.Tick, prevStar, m)
		}
		prevAccretor = s.Accretor().Mass()
		prevStar = s.Star().Mass()
		return s.Phase() == phase.Stable
	})

	if s.Accretor().Mass() <= s.Accretor().InitialMass() {
		t.Error("accretor should have gained mass over the encounter")
	}
}

func TestRadiusMonotonicAndBoundsLinear(t *testing.T) {
	cfg := testConfig(nil)
	s := New(cfg, 5)

	prev := s.Accretor().Radius()
	runUntil(t, s, 2000, func(rep TickReport) bool {
		r := s.Accretor().Radius()
		if r < prev {
			t.Fatalf("tick %d: radius shrank from %f to %f", rep.Tick, prev, r)
		}
		prev = r

		inner, outer := s.Disk().Bounds()
		if inner != r*cfg.Disk.InnerFactor || outer != r*cfg.Disk.OuterFactor {
			t.Fatalf("tick %d: bounds (%f, %f) not linear in radius %f", rep.Tick, inner, outer, r)
		}
		if s.Stream().AccretionRadius() != r*cfg.Stream.AccretionFactor {
			t.Fatalf("tick %d: stale accretion radius", rep.Tick)
		}
		return s.Phase() == phase.Stable
	})

	if s.Accretor().Radius() <= cfg.Accretor.BaseRadius {
		t.Error("accretor should have grown while feeding")
	}
}

func TestConsumptionUsesThisTicksRadius(t *testing.T) {
	cfg := testConfig(func(c *config.Config) { c.Stream.Gravity = 0 })
	s := New(cfg, 5)
	s.accretor.AddConsumedMass(1000)

	next := *s.accretor
	next.Update(dt)
	before, after := s.accretor.Radius(), next.Radius()
	if after <= before {
		t.Fatalf("expected the radius to grow, %f -> %f", before, after)
	}

	// Inside this tick's accretion radius but outside last tick's.
	d := 0.5 * (before + after) * cfg.Stream.AccretionFactor
	s.stream.Particles = append(s.stream.Particles, systems.StreamParticle{ID: 1 << 40, Pos: r3.Vec{X: d}, Size: 1})

	rep := s.Update(dt)
	if rep.Stream.Consumed != 1 {
		t.Errorf("expected the particle at %f to be consumed by radius %f, got %d consumed",
			d, s.Accretor().Radius(), rep.Stream.Consumed)
	}
}

func TestStarSpeedContinuous(t *testing.T) {
	tests := []struct {
		name string
		cfg  *config.Config
	}{
		{"short", testConfig(nil)},
		{"default", config.Default()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(tt.cfg, 9)

			prev := r3.Norm(s.Star().Velocity())
			worst, worstPhase := 0.0, s.Phase()
			runUntil(t, s, 6000, func(rep TickReport) bool {
				speed := r3.Norm(s.Star().Velocity())
				if jump := math.Abs(speed-prev) / prev; jump > worst {
					worst, worstPhase = jump, s.Phase()
				}
				prev = speed
				return s.Phase() == phase.Stable
			})
			if worst > 0.1 {
				t.Errorf("star speed changed by %.0f%% in one tick during %s", worst*100, worstPhase)
			}
		})
	}
}

func TestParticleOwnershipExclusive(t *testing.T) {
	s := New(testConfig(nil), 13)

	captured := 0
	runUntil(t, s, 2000, func(rep TickReport) bool {
		inStream := make(map[uint64]bool, s.Stream().Count())
		for _, p := range s.Stream().Particles {
			if inStream[p.ID] {
				t.Fatalf("tick %d: duplicate stream id %d", rep.Tick, p.ID)
			}
			inStream[p.ID] = true
		}
		inDisk := make(map[uint64]bool, s.Disk().Count())
		for _, p := range s.Disk().Particles {
			if inStream[p.ID] {
				t.Fatalf("tick %d: id %d owned by stream and disk", rep.Tick, p.ID)
			}
			inDisk[p.ID] = true
		}
		for _, id := range rep.Captured {
			if !inDisk[id] {
				t.Fatalf("tick %d: captured id %d missing from disk", rep.Tick, id)
			}
		}
		captured += len(rep.Captured)
		return s.Phase() == phase.Stable
	})

	if captured == 0 {
		t.Error("expected some stream particles to be captured by the disk")
	}
}

func TestBoundedPools(t *testing.T) {
	cfg := testConfig(func(c *config.Config) {
		c.Stream.MaxParticles = 50
		c.Disk.MaxParticles = 40
		c.Jets.MaxParticles = 30
	})
	s := New(cfg, 17)

	refused := 0
	runUntil(t, s, 2000, func(rep TickReport) bool {
		if s.Stream().Count() > 50 || s.Disk().Count() > 40 || s.Jets().Count() > 30 {
			t.Fatalf("tick %d: pools over capacity: stream=%d disk=%d jets=%d",
				rep.Tick, s.Stream().Count(), s.Disk().Count(), s.Jets().Count())
		}
		refused += rep.Refused
		return s.Phase() == phase.Stable
	})

	if refused == 0 {
		t.Error("expected a 50 particle stream to refuse emissions")
	}
	if s.Phase() != phase.Stable {
		t.Error("refused emissions must still drain the star")
	}
}

func TestRestartIdempotent(t *testing.T) {
	cfg := testConfig(nil)
	s := New(cfg, 21)
	runUntil(t, s, 2000, func(TickReport) bool { return s.Phase() == phase.Accrete })

	type state struct {
		phase          phase.Phase
		accretorMass   float64
		accretorRadius float64
		starMass       float64
		starX, starZ   float64
		pools          int
		flash          float64
		diskActive     bool
	}
	capture := func() state {
		pos := s.Star().Position()
		return state{
			phase:          s.Phase(),
			accretorMass:   s.Accretor().Mass(),
			accretorRadius: s.Accretor().Radius(),
			starMass:       s.Star().Mass(),
			starX:          pos.X,
			starZ:          pos.Z,
			pools:          s.Stream().Count() + s.Disk().Count() + s.Jets().Count(),
			flash:          s.Flash(),
			diskActive:     s.Disk().Active(),
		}
	}

	s.Restart()
	first := capture()
	s.Restart()
	second := capture()

	if first != second {
		t.Errorf("restart not idempotent:\n first  %+v\n second %+v", first, second)
	}
	if first.phase != phase.Approach || first.pools != 0 || first.diskActive {
		t.Errorf("unexpected state after restart: %+v", first)
	}
	if first.accretorMass != cfg.Accretor.InitialMass || first.starMass != cfg.Star.InitialMass {
		t.Errorf("bodies not restored: %+v", first)
	}
}

func TestRestartReplaysRun(t *testing.T) {
	cfg := testConfig(nil)

	fresh := New(cfg, 99)
	for i := 0; i < 150; i++ {
		fresh.Update(dt)
	}

	replay := New(cfg, 99)
	for i := 0; i < 400; i++ {
		replay.Update(dt)
	}
	replay.Restart()
	for i := 0; i < 150; i++ {
		replay.Update(dt)
	}

	if fresh.Phase() != replay.Phase() {
		t.Fatalf("phase %s vs %s", fresh.Phase(), replay.Phase())
	}
	if fresh.Star().Position() != replay.Star().Position() {
		t.Errorf("star position %v vs %v", fresh.Star().Position(), replay.Star().Position())
	}
	if fresh.Stream().Count() != replay.Stream().Count() {
		t.Fatalf("stream count %d vs %d", fresh.Stream().Count(), replay.Stream().Count())
	}
	for i := range fresh.Stream().Particles {
		a, b := fresh.Stream().Particles[i], replay.Stream().Particles[i]
		if a != b {
			t.Fatalf("stream particle %d differs: %+v vs %+v", i, a, b)
		}
	}
}

func TestRestartLogsTransition(t *testing.T) {
	s := New(testConfig(nil), 2)
	runUntil(t, s, 2000, func(TickReport) bool { return s.Phase() == phase.Disrupt })
	s.PhaseLog().Drain()

	s.Restart()
	recs := s.PhaseLog().Drain()
	if len(recs) != 1 {
		t.Fatalf("expected one record, got %d", len(recs))
	}
	if recs[0].From != "disrupt" || recs[0].To != "approach" {
		t.Errorf("unexpected restart record %+v", recs[0])
	}
}

func TestEnterEffects(t *testing.T) {
	s := New(testConfig(nil), 4)

	runUntil(t, s, 2000, func(TickReport) bool { return s.Phase() == phase.Disrupt })
	if !s.Disk().Active() {
		t.Error("disrupt should activate the disk")
	}
	if s.Flash() <= 0.9 {
		t.Errorf("disrupt should start a flash, got %f", s.Flash())
	}
	if s.Jets().Active() {
		t.Error("jets should wait for the flare")
	}

	runUntil(t, s, 2000, func(TickReport) bool { return s.Phase() == phase.Flare })
	if !s.Jets().Active() {
		t.Error("flare should activate the jets")
	}

	runUntil(t, s, 2000, func(TickReport) bool { return s.Phase() == phase.Stable })
	if !s.Accretor().Stabilizing() {
		t.Error("stable should start stabilizing the accretor")
	}
}

func TestUpdateIgnoresNonPositiveDT(t *testing.T) {
	s := New(testConfig(nil), 1)
	before := s.Star().Position()

	for _, step := range []float64{0, -1} {
		rep := s.Update(step)
		if rep.Tick != 0 || s.Tick() != 0 {
			t.Errorf("dt=%v advanced the tick", step)
		}
	}
	if s.Star().Position() != before {
		t.Error("non-positive dt moved the star")
	}
}

func TestStatsWindowFlush(t *testing.T) {
	cfg := testConfig(func(c *config.Config) { c.Telemetry.StatsWindow = 0.5 })
	s := New(cfg, 1)

	flushes := 0
	for i := 0; i < 90; i++ {
		if rep := s.Update(dt); rep.Stats != nil {
			flushes++
			if rep.Stats.WindowEndTick != rep.Tick {
				t.Errorf("window end %d != tick %d", rep.Stats.WindowEndTick, rep.Tick)
			}
		}
	}
	if flushes != 3 {
		t.Errorf("expected 3 flushes in 90 ticks, got %d", flushes)
	}
}

func newTestCamera(cfg *config.Config) *camera.Camera {
	return camera.New(1280, 720, cfg.Camera.Distance, cfg.Camera.Focal, 0, 0)
}

func TestBuildFrameSorted(t *testing.T) {
	cfg := testConfig(nil)
	s := New(cfg, 8)
	runUntil(t, s, 2000, func(TickReport) bool { return s.Phase() == phase.Disrupt && s.Stream().Count() > 0 })

	frame := s.BuildFrame(newTestCamera(cfg))
	if len(frame.Records) == 0 {
		t.Fatal("expected records")
	}

	kinds := make(map[systems.RecordKind]int)
	for i, r := range frame.Records {
		kinds[r.Kind]++
		if i > 0 && r.Depth > frame.Records[i-1].Depth {
			t.Fatalf("record %d is farther than record %d", i, i-1)
		}
		if math.IsNaN(r.X) || math.IsNaN(r.Y) || math.IsNaN(r.Size) {
			t.Fatalf("record %d has NaN fields: %+v", i, r)
		}
	}
	if kinds[systems.KindAccretor] != 1 {
		t.Errorf("expected one accretor record, got %d", kinds[systems.KindAccretor])
	}
	if kinds[systems.KindStream] != s.Stream().Count() || kinds[systems.KindDisk] != s.Disk().Count() {
		t.Errorf("record counts %v do not match pools", kinds)
	}
	if frame.Readout.Phase != "disrupt" {
		t.Errorf("unexpected readout %+v", frame.Readout)
	}
}

func TestStarHiddenOnceDepleted(t *testing.T) {
	cfg := testConfig(nil)
	s := New(cfg, 8)
	cam := newTestCamera(cfg)

	if !hasKind(s.BuildFrame(cam).Records, systems.KindStar) {
		t.Error("expected a star record before depletion")
	}
	runUntil(t, s, 2000, func(TickReport) bool { return s.Star().Depleted() })
	if hasKind(s.BuildFrame(cam).Records, systems.KindStar) {
		t.Error("depleted star should not be drawn")
	}
}

func hasKind(records []systems.RenderRecord, kind systems.RecordKind) bool {
	for _, r := range records {
		if r.Kind == kind {
			return true
		}
	}
	return false
}

func TestStarInFront(t *testing.T) {
	tests := []struct {
		name  string
		phi   float64
		front bool
	}{
		{"toward camera", -math.Pi / 2, true},
		{"behind accretor", math.Pi / 2, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(func(c *config.Config) { c.Star.InitialPhi = tt.phi })
			s := New(cfg, 1)
			if got := s.StarInFront(newTestCamera(cfg)); got != tt.front {
				t.Errorf("StarInFront = %v, want %v", got, tt.front)
			}
		})
	}
}

func TestSnapshotMatchesScene(t *testing.T) {
	s := New(testConfig(nil), 6)
	runUntil(t, s, 2000, func(TickReport) bool { return s.Phase() == phase.Disrupt && s.Stream().Count() > 0 })

	snap := s.Snapshot(nil)
	if snap.Phase != "disrupt" || snap.Tick != s.Tick() || snap.Seed != 6 {
		t.Errorf("unexpected snapshot header %+v", snap)
	}
	if len(snap.Stream) != s.Stream().Count() || len(snap.Disk) != s.Disk().Count() {
		t.Errorf("snapshot pools %d/%d, scene %d/%d",
			len(snap.Stream), len(snap.Disk), s.Stream().Count(), s.Disk().Count())
	}
	if snap.Accretor.Mass != s.Accretor().Mass() {
		t.Errorf("accretor mass %f vs %f", snap.Accretor.Mass, s.Accretor().Mass())
	}
}
