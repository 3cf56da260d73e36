package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title     string
	Phase     string
	StateTime float64
	Progress  float64
	Tick      int32
	SimTime   float64
	Speed     int
	FPS       int32
	Paused    bool
	Restart   bool // Restart affordance is offered
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the HUD centered along the top edge.
func (h *HUD) Draw(data HUDData, screenWidth int32) {
	r := h.renderer

	label := fmt.Sprintf("%s  %.1fs", data.Phase, data.StateTime)
	w := rl.MeasureText(label, 24)
	rl.DrawText(label, (screenWidth-w)/2, 12, 24, rl.RayWhite)

	barW := int32(240)
	barX := (screenWidth - barW) / 2
	rl.DrawRectangle(barX, 42, barW, 4, r.Theme.BarBg)
	rl.DrawRectangle(barX, 42, int32(float64(barW)*min(1, max(0, data.Progress))), 4, r.Theme.BarFill)

	rl.DrawText(data.Title, 10, 10, 20, rl.White)
	rl.DrawText(
		fmt.Sprintf("Tick: %d | Time: %.1fs | Speed: %dx | FPS: %d", data.Tick, data.SimTime, data.Speed, data.FPS),
		10, 35, 16, rl.LightGray,
	)

	if data.Paused {
		rl.DrawText("PAUSED", 10, 55, 16, rl.Yellow)
	}
	if data.Restart {
		msg := "Press R to replay"
		w := rl.MeasureText(msg, 16)
		rl.DrawText(msg, (screenWidth-w)/2, 54, 16, r.Theme.SectionHeader)
	}
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// BodiesData holds the body and pool readout.
type BodiesData struct {
	AccretorMass   float64
	AccretorRadius float64
	Consumed       float64
	Glow           float64
	StarMass       float64
	StarMassFrac   float64
	StarOrbit      float64
	StarInFront    bool
	Stream         int
	StreamMax      int
	Disk           int
	DiskMax        int
	Jets           int
}

// BodiesPanel renders the accretor, star and particle pool readout.
type BodiesPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewBodiesPanel creates a new bodies panel.
func NewBodiesPanel(x, y, width int32) *BodiesPanel {
	return &BodiesPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (b *BodiesPanel) SetPosition(x, y int32) {
	b.x = x
	b.y = y
}

// Draw renders the panel.
func (b *BodiesPanel) Draw(data BodiesData) {
	r := b.renderer
	padding := r.Theme.Padding
	inner := b.width - padding*2

	r.DrawPanel(b.x, b.y, b.width, r.Theme.LineHeight*14+padding*2)

	x := b.x + padding
	y := b.y + padding

	y = r.DrawSectionHeader(x, y, "Accretor")
	y = r.DrawLabelValue(x, y, "Mass", fmt.Sprintf("%.1f", data.AccretorMass))
	y = r.DrawLabelValue(x, y, "Radius", fmt.Sprintf("%.2f", data.AccretorRadius))
	y = r.DrawLabelValue(x, y, "Consumed", fmt.Sprintf("%.2f", data.Consumed))
	y = r.DrawBar(x, y, "Glow", float32(data.Glow), inner)

	y = r.DrawSectionHeader(x, y+4, "Star")
	y = r.DrawBar(x, y, "Mass", float32(data.StarMassFrac), inner)
	y = r.DrawLabelValue(x, y, "Orbit", fmt.Sprintf("%.1f", data.StarOrbit))
	side := "behind"
	if data.StarInFront {
		side = "in front"
	}
	y = r.DrawLabelValue(x, y, "Side", side)

	y = r.DrawSectionHeader(x, y+4, "Particles")
	y = r.DrawLabelValue(x, y, "Stream", fmt.Sprintf("%d / %d", data.Stream, data.StreamMax))
	y = r.DrawLabelValue(x, y, "Disk", fmt.Sprintf("%d / %d", data.Disk, data.DiskMax))
	r.DrawLabelValue(x, y, "Jets", fmt.Sprintf("%d", data.Jets))
}

// PerfPanelData holds performance metrics for display.
type PerfPanelData struct {
	StageAvg       map[string]time.Duration
	StagePct       map[string]float64
	AvgTick        time.Duration
	TicksPerSecond float64
	FrameTimes     map[string]time.Duration // Viewer-side costs
}

// PerfPanel renders the system performance panel.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel. Stages are listed in the given order.
func (p *PerfPanel) Draw(data PerfPanelData, stages []string, frameNames []string) {
	x := p.x
	y := p.y

	rl.DrawText("Performance", x, y, 16, rl.White)
	y += 20

	rl.DrawText(fmt.Sprintf("Tick: %s  TPS: %.0f", data.AvgTick.Round(time.Microsecond), data.TicksPerSecond), x, y, 14, rl.Yellow)
	y += 16

	for _, name := range stages {
		pct := data.StagePct[name]
		color := rl.LightGray
		if pct > 40 {
			color = rl.Red
		} else if pct > 20 {
			color = rl.Orange
		}
		rl.DrawText(
			fmt.Sprintf("%-10s %8s %5.1f%%", name, data.StageAvg[name].Round(time.Microsecond), pct),
			x, y, 12, color,
		)
		y += 14
	}

	y += 4
	for _, name := range frameNames {
		rl.DrawText(
			fmt.Sprintf("%-10s %8s", name, data.FrameTimes[name].Round(time.Microsecond)),
			x, y, 12, rl.Gray,
		)
		y += 14
	}
}
