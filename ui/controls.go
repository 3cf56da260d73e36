package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// MaxSteps is the largest steps-per-update the speed slider offers.
const MaxSteps = 10

// ControlsState is what the controls panel shows.
type ControlsState struct {
	Paused     bool
	CanRestart bool
	Steps      int
}

// Actions are the requests made through the controls this frame.
type Actions struct {
	Restart     bool
	TogglePause bool
	Steps       int // Requested steps per update
}

// ControlsPanel renders the left-side controls panel with overlay toggles
// and the run buttons.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		visible:  true,
	}
}

// SetPosition updates the panel position.
func (c *ControlsPanel) SetPosition(x, y int32) {
	c.x = x
	c.y = y
}

// IsVisible returns whether the panel is shown.
func (c *ControlsPanel) IsVisible() bool {
	return c.visible
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// Draw renders the controls panel and returns the actions taken.
func (c *ControlsPanel) Draw(overlays *OverlayRegistry, state ControlsState) Actions {
	act := Actions{Steps: state.Steps}
	if !c.visible {
		return act
	}

	r := c.renderer
	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight

	categories := overlays.Categories()
	totalItems := 0
	for _, cat := range categories {
		totalItems += len(overlays.ByCategory(cat)) + 1 // +1 for category header
	}
	const buttonsHeight = 30 + 8 + 20 + 8
	panelHeight := int32(totalItems)*lineHeight + padding*4 + lineHeight + buttonsHeight

	r.DrawPanel(c.x, c.y, c.width, panelHeight)

	y := c.y + padding

	// Run controls
	bx := float32(c.x + padding)
	bw := float32(c.width-padding*3) / 2
	pauseText := "Pause"
	if state.Paused {
		pauseText = "Resume"
	}
	if gui.Button(rl.Rectangle{X: bx, Y: float32(y), Width: bw, Height: 30}, pauseText) {
		act.TogglePause = true
	}
	restartText := "Restart"
	if state.CanRestart {
		restartText = "Replay"
	}
	if gui.Button(rl.Rectangle{X: bx + bw + float32(padding), Y: float32(y), Width: bw, Height: 30}, restartText) {
		act.Restart = true
	}
	y += 30 + 8

	steps := gui.SliderBar(
		rl.Rectangle{X: bx + 40, Y: float32(y), Width: float32(c.width-padding*2) - 80, Height: 20},
		"Speed", fmt.Sprintf("%dx", state.Steps),
		float32(state.Steps), 1, MaxSteps,
	)
	act.Steps = int(steps + 0.5)
	y += 20 + 8

	for _, category := range categories {
		rl.DrawText(categoryLabel(category), c.x+padding, y, r.Theme.HeaderFontSize, r.Theme.SectionHeader)
		y += lineHeight

		for _, desc := range overlays.ByCategory(category) {
			c.drawToggle(c.x+padding, y, desc, overlays.IsEnabled(desc.ID), c.width-padding*2)
			y += lineHeight
		}

		y += 4 // Gap between categories
	}

	return act
}

// drawToggle draws a single overlay toggle line.
func (c *ControlsPanel) drawToggle(x, y int32, desc OverlayDescriptor, enabled bool, width int32) {
	r := c.renderer

	// Status indicator
	statusColor := rl.Color{R: 80, G: 80, B: 80, A: 255}
	if enabled {
		statusColor = rl.Color{R: 255, G: 170, B: 90, A: 255}
	}
	rl.DrawRectangle(x, y+2, 8, 8, statusColor)

	nameColor := r.Theme.LabelColor
	if enabled {
		nameColor = rl.White
	}
	rl.DrawText(desc.Name, x+14, y, r.Theme.FontSize, nameColor)

	// Key binding (right aligned)
	if desc.KeyLabel != "" {
		keyText := fmt.Sprintf("[%s]", desc.KeyLabel)
		keyWidth := rl.MeasureText(keyText, r.Theme.FontSize)
		rl.DrawText(keyText, x+width-keyWidth, y, r.Theme.FontSize, rl.Color{R: 150, G: 150, B: 150, A: 255})
	}
}

// categoryLabel returns a display label for a category.
func categoryLabel(cat string) string {
	switch cat {
	case "layers":
		return "Layers"
	case "panels":
		return "Panels"
	default:
		return cat
	}
}
