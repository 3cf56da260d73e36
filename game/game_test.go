package game

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/tidal/config"
	"github.com/pthm-cable/tidal/telemetry"
)

func newHeadlessGame(t *testing.T, opts Options) *Game {
	t.Helper()
	config.MustInit("")
	config.Cfg().Phases.Approach.Duration = 0.5

	opts.Headless = true
	g, err := NewGameWithOptions(opts)
	if err != nil {
		t.Fatalf("NewGameWithOptions failed: %v", err)
	}
	return g
}

func TestHeadlessRunWritesOutputs(t *testing.T) {
	out := t.TempDir()
	snaps := t.TempDir()
	g := newHeadlessGame(t, Options{
		Seed:           7,
		OutputDir:      out,
		SnapshotDir:    snaps,
		StatsWindowSec: 0.5,
		StepsPerUpdate: 3,
	})

	windows := 0
	g.SetStatsCallback(func(telemetry.WindowStats) { windows++ })

	for g.Tick() < 90 {
		g.UpdateHeadless()
	}
	g.Unload()

	if windows < 2 {
		t.Errorf("stats windows = %d, want at least 2", windows)
	}

	for _, name := range []string{"config.yaml", "telemetry.csv", "perf.csv", "phases.csv"} {
		info, err := os.Stat(filepath.Join(out, name))
		if err != nil {
			t.Errorf("%s: %v", name, err)
			continue
		}
		if info.Size() == 0 {
			t.Errorf("%s is empty", name)
		}
	}

	phases, err := os.ReadFile(filepath.Join(out, "phases.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(phases), "approach,stretch") {
		t.Errorf("phases.csv missing approach->stretch row:\n%s", phases)
	}

	matches, err := filepath.Glob(filepath.Join(snaps, "snapshot_*_stretch.json"))
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 {
		t.Fatalf("stretch snapshots = %v, want exactly one", matches)
	}
	snap, err := telemetry.LoadSnapshot(matches[0])
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	if snap.Seed != 7 || snap.Phase != "stretch" {
		t.Errorf("snapshot seed=%d phase=%s", snap.Seed, snap.Phase)
	}
}

func TestStepsPerUpdate(t *testing.T) {
	g := newHeadlessGame(t, Options{Seed: 1, StepsPerUpdate: 4})
	defer g.Unload()

	g.UpdateHeadless()
	if g.Tick() != 4 {
		t.Errorf("tick = %d, want 4", g.Tick())
	}

	g = newHeadlessGame(t, Options{Seed: 1})
	defer g.Unload()
	g.UpdateHeadless()
	if g.Tick() != 1 {
		t.Errorf("tick with default steps = %d, want 1", g.Tick())
	}
}

func TestRestartReturnsToApproach(t *testing.T) {
	g := newHeadlessGame(t, Options{Seed: 3, StepsPerUpdate: 10})
	defer g.Unload()

	for g.Scene().Phase().String() == "approach" {
		g.UpdateHeadless()
	}
	g.Restart()

	if got := g.Scene().Phase().String(); got != "approach" {
		t.Errorf("phase after restart = %s", got)
	}
	if g.Scene().Stream().Count() != 0 || g.Scene().Disk().Count() != 0 {
		t.Errorf("pools not cleared: stream=%d disk=%d", g.Scene().Stream().Count(), g.Scene().Disk().Count())
	}
}

func TestFramesExportedHeadless(t *testing.T) {
	dir := t.TempDir()
	config.MustInit("")
	cfg := config.Cfg()
	cfg.Frames.Width, cfg.Frames.Height, cfg.Frames.Every = 64, 36, 5

	g, err := NewGameWithOptions(Options{Seed: 2, Headless: true, FramesDir: dir})
	if err != nil {
		t.Fatalf("NewGameWithOptions failed: %v", err)
	}
	for g.Tick() < 20 {
		g.UpdateHeadless()
	}
	g.Unload()

	matches, _ := filepath.Glob(filepath.Join(dir, "frame_*.png"))
	if len(matches) != 4 {
		t.Errorf("exported %d frames, want 4", len(matches))
	}
}
