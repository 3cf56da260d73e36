package game

import (
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/tidal/renderer"
	"github.com/pthm-cable/tidal/scene"
	"github.com/pthm-cable/tidal/telemetry"
	"github.com/pthm-cable/tidal/ui"
)

const controlsLegend = "[Space] pause  [R] restart  [</>] speed  [Arrows/RMB] orbit  [+/-] zoom  [Home] camera  [H] panel"

// Draw renders the game.
func (g *Game) Draw() {
	g.scene.Perf().RecordFrame()

	start := time.Now()
	frame := g.scene.BuildFrame(g.camera)
	g.perf.Record("frame", time.Since(start))

	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	start = time.Now()
	g.renderer.Draw(frame, g.layers(), renderer.ViewState{
		Time:  float32(g.scene.SimTime()),
		Yaw:   float32(g.camera.Yaw),
		Pitch: float32(g.camera.Pitch),
	})
	g.perf.Record("paint", time.Since(start))

	g.drawUI(frame)

	rl.EndDrawing()
}

// layers maps overlay toggles to renderer layers.
func (g *Game) layers() renderer.Layers {
	o := g.overlays
	return renderer.Layers{
		Starfield: o.IsEnabled(ui.OverlayStarfield),
		Stream:    o.IsEnabled(ui.OverlayStream),
		Disk:      o.IsEnabled(ui.OverlayDisk),
		Jets:      o.IsEnabled(ui.OverlayJets),
		Halo:      o.IsEnabled(ui.OverlayHalo),
		LensRing:  o.IsEnabled(ui.OverlayLensRing),
	}
}

// drawUI draws the HUD and panels and applies the controls' actions.
func (g *Game) drawUI(frame scene.Frame) {
	w, h := int32(g.screenWidth), int32(g.screenHeight)

	g.hud.Draw(ui.HUDData{
		Title:     "Tidal Disruption",
		Phase:     frame.Readout.Phase,
		StateTime: frame.Readout.StateTime,
		Progress:  frame.Readout.Progress,
		Tick:      g.scene.Tick(),
		SimTime:   g.scene.SimTime(),
		Speed:     g.stepsPerUpdate,
		FPS:       rl.GetFPS(),
		Paused:    g.paused,
		Restart:   frame.CanRestart,
	}, w)
	g.hud.DrawControls(h, controlsLegend)

	if g.overlays.IsEnabled(ui.OverlayBodies) {
		g.bodiesPanel.Draw(g.bodiesData(frame))
	}
	if g.overlays.IsEnabled(ui.OverlayPerf) {
		stats := g.scene.Perf().Stats()
		g.perfPanel.Draw(ui.PerfPanelData{
			StageAvg:       stats.StageAvg,
			StagePct:       stats.StagePct,
			AvgTick:        stats.AvgTickDuration,
			TicksPerSecond: stats.TicksPerSecond,
			FrameTimes:     g.perf.Averages(),
		}, telemetry.Stages(), g.perf.SortedNames())
	}

	act := g.controls.Draw(g.overlays, ui.ControlsState{
		Paused:     g.paused,
		CanRestart: frame.CanRestart,
		Steps:      g.stepsPerUpdate,
	})
	if act.TogglePause {
		g.paused = !g.paused
	}
	if act.Restart {
		g.Restart()
	}
	if act.Steps >= 1 && act.Steps <= ui.MaxSteps {
		g.stepsPerUpdate = act.Steps
	}
}

// bodiesData collects the bodies panel readout.
func (g *Game) bodiesData(frame scene.Frame) ui.BodiesData {
	acc, star := g.scene.Accretor(), g.scene.Star()
	cfg := g.cfg

	frac := 0.0
	if m0 := star.InitialMass(); m0 > 0 {
		frac = star.Mass() / m0
	}
	return ui.BodiesData{
		AccretorMass:   acc.Mass(),
		AccretorRadius: acc.Radius(),
		Consumed:       acc.Consumed(),
		Glow:           acc.Glow(),
		StarMass:       star.Mass(),
		StarMassFrac:   frac,
		StarOrbit:      star.OrbitalRadius(),
		StarInFront:    frame.StarInFront,
		Stream:         g.scene.Stream().Count(),
		StreamMax:      cfg.Stream.MaxParticles,
		Disk:           g.scene.Disk().Count(),
		DiskMax:        cfg.Disk.MaxParticles,
		Jets:           g.scene.Jets().Count(),
	}
}
