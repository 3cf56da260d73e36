package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/tidal/ui"
)

// orbitSpeed is the keyboard orbit rate in radians per second.
const orbitSpeed = 1.2

// handleInput processes keyboard input.
func (g *Game) handleInput() {
	// Window resize propagation
	g.handleResize()

	// Fullscreen toggle
	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		g.paused = !g.paused
	}

	if rl.IsKeyPressed(rl.KeyR) {
		g.Restart()
	}

	// Steps-per-update control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) && g.stepsPerUpdate > 1 {
		g.stepsPerUpdate--
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && g.stepsPerUpdate < ui.MaxSteps {
		g.stepsPerUpdate++
	}

	if rl.IsKeyPressed(rl.KeyH) {
		g.controls.Toggle()
	}
	for _, key := range g.overlays.Keys() {
		if rl.IsKeyPressed(key) {
			g.overlays.HandleKeyPress(key)
		}
	}

	// Camera controls
	g.handleCameraInput()
}

// handleResize checks for window resize and propagates new dimensions.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == g.screenWidth && h == g.screenHeight {
		return
	}
	g.screenWidth = w
	g.screenHeight = h

	g.camera.Resize(float64(w), float64(h))
	g.renderer.Resize(w, h)
	g.bodiesPanel.SetPosition(int32(w)-230, 80)
	g.perfPanel.SetPosition(int32(w)-230, 330)
}

// handleCameraInput processes camera orbit/zoom controls.
func (g *Game) handleCameraInput() {
	step := orbitSpeed * float64(rl.GetFrameTime())

	// Arrow keys orbit around the accretor
	if rl.IsKeyDown(rl.KeyRight) {
		g.camera.Orbit(step, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		g.camera.Orbit(-step, 0)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		g.camera.Orbit(0, step)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		g.camera.Orbit(0, -step)
	}

	// Right-drag orbits too
	if rl.IsMouseButtonDown(rl.MouseButtonRight) {
		d := rl.GetMouseDelta()
		g.camera.Orbit(float64(d.X)*0.005, float64(d.Y)*0.005)
	}

	// Zoom controls: mouse wheel or +/- keys
	if wheelMove := rl.GetMouseWheelMove(); wheelMove != 0 {
		g.camera.ZoomBy(1.0 + float64(wheelMove)*0.1)
	}
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		g.camera.ZoomBy(1.25)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		g.camera.ZoomBy(0.8)
	}

	// Home key to reset camera
	if rl.IsKeyPressed(rl.KeyHome) {
		g.camera.Reset()
	}
}
