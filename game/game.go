// Package game runs a scene interactively with raylib or headless, and wires
// it to telemetry output, snapshots and frame export.
package game

import (
	"fmt"
	"log/slog"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/tidal/camera"
	"github.com/pthm-cable/tidal/config"
	"github.com/pthm-cable/tidal/frames"
	"github.com/pthm-cable/tidal/renderer"
	"github.com/pthm-cable/tidal/scene"
	"github.com/pthm-cable/tidal/telemetry"
	"github.com/pthm-cable/tidal/ui"
)

// Game holds the complete game state.
type Game struct {
	cfg    *config.Config
	scene  *scene.Scene
	camera *camera.Camera

	// Rendering (graphical mode only)
	renderer    *renderer.SceneRenderer
	overlays    *ui.OverlayRegistry
	hud         *ui.HUD
	controls    *ui.ControlsPanel
	bodiesPanel *ui.BodiesPanel
	perfPanel   *ui.PerfPanel

	// Telemetry
	outputManager    *telemetry.OutputManager
	bookmarkDetector *telemetry.BookmarkDetector
	statsCallback    func(telemetry.WindowStats)
	logStats         bool
	snapshotDir      string

	// Frame export
	frames       *frames.Exporter
	framesCamera *camera.Camera

	perf *PerfStats

	paused         bool
	headless       bool
	stepsPerUpdate int

	screenWidth, screenHeight float32
}

// NewGameWithOptions creates a game from the global config. In graphical
// mode the raylib window must already be open.
func NewGameWithOptions(opts Options) (*Game, error) {
	cfg := config.Cfg()
	if opts.StatsWindowSec > 0 {
		cfg = cfg.WithStatsWindow(opts.StatsWindowSec)
	}

	steps := opts.StepsPerUpdate
	if steps < 1 {
		steps = 1
	}

	g := &Game{
		cfg:              cfg,
		scene:            scene.New(cfg, opts.Seed),
		bookmarkDetector: telemetry.NewBookmarkDetector(10),
		logStats:         opts.LogStats,
		snapshotDir:      opts.SnapshotDir,
		perf:             NewPerfStats(),
		headless:         opts.Headless,
		stepsPerUpdate:   steps,
	}

	var err error
	if g.outputManager, err = telemetry.NewOutputManager(opts.OutputDir); err != nil {
		return nil, fmt.Errorf("creating output manager: %w", err)
	}
	if err := g.outputManager.WriteConfig(cfg); err != nil {
		g.outputManager.Close()
		return nil, fmt.Errorf("writing config copy: %w", err)
	}

	if g.frames, err = frames.NewExporter(opts.FramesDir, cfg.Frames); err != nil {
		g.outputManager.Close()
		return nil, fmt.Errorf("creating frame exporter: %w", err)
	}
	if g.frames != nil {
		g.framesCamera = g.frames.Camera(cfg)
	}

	g.screenWidth = float32(cfg.Screen.Width)
	g.screenHeight = float32(cfg.Screen.Height)
	if g.screenWidth <= 0 || g.screenHeight <= 0 {
		g.screenWidth, g.screenHeight = ScreenWidth, ScreenHeight
	}
	g.camera = newCamera(cfg, float64(g.screenWidth), float64(g.screenHeight))

	if !g.headless {
		w, h := int32(g.screenWidth), int32(g.screenHeight)
		g.renderer = renderer.NewSceneRenderer(w, h)
		g.overlays = ui.NewOverlayRegistry()
		g.hud = ui.NewHUD()
		g.controls = ui.NewControlsPanel(10, 80, 220)
		g.bodiesPanel = ui.NewBodiesPanel(w-230, 80, 220)
		g.perfPanel = ui.NewPerfPanel(w-230, 330)
	}

	slog.Info("game_created",
		"seed", opts.Seed,
		"headless", opts.Headless,
		"steps_per_update", steps,
		"output_dir", g.outputManager.Dir(),
		"frames", g.frames != nil,
	)

	return g, nil
}

// newCamera builds the orbit camera from config.
func newCamera(cfg *config.Config, width, height float64) *camera.Camera {
	c := cfg.Camera
	cam := camera.New(width, height, c.Distance, c.Focal, c.Yaw, c.Pitch)
	cam.OrbitSpeed = c.OrbitSpeed
	if c.MinZoom > 0 {
		cam.MinZoom = c.MinZoom
	}
	if c.MaxZoom > 0 {
		cam.MaxZoom = c.MaxZoom
	}
	return cam
}

// SetStatsCallback registers a function called with every flushed window.
func (g *Game) SetStatsCallback(fn func(telemetry.WindowStats)) {
	g.statsCallback = fn
}

// Update handles input and advances the simulation by stepsPerUpdate ticks.
func (g *Game) Update() {
	g.handleInput()

	if g.paused {
		return
	}

	g.camera.Update(float64(rl.GetFrameTime()))
	for i := 0; i < g.stepsPerUpdate; i++ {
		g.simulationStep()
	}
}

// UpdateHeadless advances the simulation without touching raylib.
func (g *Game) UpdateHeadless() {
	for i := 0; i < g.stepsPerUpdate; i++ {
		g.simulationStep()
	}
}

// simulationStep runs a single tick of the simulation.
func (g *Game) simulationStep() {
	rep := g.scene.Update(g.cfg.Physics.DT)
	g.handleReport(rep)
	if g.framesCamera != nil {
		g.framesCamera.Update(g.cfg.Physics.DT)
	}
	g.exportFrame()
}

// Restart replays the encounter from the approach phase.
func (g *Game) Restart() {
	g.scene.Restart()
	g.bookmarkDetector.Reset()
	g.writePhases()
}

// exportFrame writes a PNG when the exporter is due.
func (g *Game) exportFrame() {
	tick := g.scene.Tick()
	if !g.frames.ShouldExport(tick) {
		return
	}

	start := time.Now()
	path, err := g.frames.Export(tick, g.scene.BuildFrame(g.framesCamera))
	g.perf.Record("export", time.Since(start))
	if err != nil {
		slog.Warn("frame_export_failed", "tick", tick, "error", err)
		return
	}
	slog.Debug("frame_exported", "path", path, "tick", tick)
}

// Scene returns the running scene.
func (g *Game) Scene() *scene.Scene {
	return g.scene
}

// Tick returns the current simulation tick.
func (g *Game) Tick() int32 {
	return g.scene.Tick()
}

// Paused reports whether the simulation is paused.
func (g *Game) Paused() bool {
	return g.paused
}

// Unload flushes outputs and frees resources.
func (g *Game) Unload() {
	g.writePhases()
	if err := g.outputManager.Close(); err != nil {
		slog.Warn("failed to close output", "error", err)
	}
	if g.renderer != nil {
		g.renderer.Unload()
	}
	if g.frames != nil {
		slog.Info("frames_exported", "count", g.frames.Count())
	}
}
