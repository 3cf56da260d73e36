package game

import (
	"log/slog"

	"github.com/pthm-cable/tidal/scene"
	"github.com/pthm-cable/tidal/telemetry"
)

// handleReport routes one tick's report to the telemetry outputs.
func (g *Game) handleReport(rep scene.TickReport) {
	if len(rep.Transitions) > 0 {
		g.writePhases()
		if g.snapshotDir != "" {
			g.saveSnapshot(nil)
		}
	}

	if rep.Stats != nil {
		g.flushTelemetry(*rep.Stats)
	}
}

// flushTelemetry handles a closed stats window: logging, CSV output and bookmarks.
func (g *Game) flushTelemetry(stats telemetry.WindowStats) {
	perfStats := g.scene.Perf().Stats()

	// Call stats callback if provided
	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	// Log stats if enabled (console output)
	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if err := g.outputManager.WriteTelemetry(stats); err != nil {
		slog.Warn("failed to write telemetry", "error", err)
	}
	if err := g.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
		slog.Warn("failed to write perf", "error", err)
	}

	for _, bm := range g.bookmarkDetector.Check(stats) {
		if g.logStats {
			bm.LogBookmark()
		}

		// Save snapshot on bookmark
		if g.snapshotDir != "" {
			g.saveSnapshot(&bm)
		}
	}
}

// writePhases drains the scene's transition log into phases.csv.
func (g *Game) writePhases() {
	records := g.scene.PhaseLog().Drain()
	if err := g.outputManager.WritePhases(records); err != nil {
		slog.Warn("failed to write phases", "error", err)
	}
}

// saveSnapshot creates and saves a snapshot to disk.
func (g *Game) saveSnapshot(bookmark *telemetry.Bookmark) {
	path, err := telemetry.SaveSnapshot(g.scene.Snapshot(bookmark), g.snapshotDir)
	if err != nil {
		slog.Warn("failed to save snapshot", "error", err)
		return
	}

	slog.Info("snapshot saved", "path", path, "tick", g.scene.Tick())
}
