package main

import (
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/tidal/config"
	"github.com/pthm-cable/tidal/phase"
	"github.com/pthm-cable/tidal/scene"
	"github.com/pthm-cable/tidal/systems"
)

func newTestScreen(t *testing.T) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("init screen: %v", err)
	}
	screen.SetSize(80, 24)
	t.Cleanup(screen.Fini)
	return screen
}

func cellAt(screen tcell.Screen, x, y int) (rune, tcell.Color) {
	r, _, style, _ := screen.GetContent(x, y)
	_, bg, _ := style.Decompose()
	return r, bg
}

func rowText(screen tcell.Screen, y int) string {
	cols, _ := screen.Size()
	var b strings.Builder
	for x := 0; x < cols; x++ {
		r, _ := cellAt(screen, x, y)
		b.WriteRune(r)
	}
	return b.String()
}

func TestCellOf(t *testing.T) {
	tests := []struct {
		name   string
		x, y   float64
		wantX  int
		wantY  int
		wantOK bool
	}{
		{"center", 40, 24, 40, 12, true},
		{"readout row", 10, 1, 0, 0, false},
		{"left edge", -0.5, 10, 0, 0, false},
		{"bottom edge", 10, 48, 0, 0, false},
		{"last cell", 79.9, 47.9, 79, 23, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y, ok := cellOf(tt.x, tt.y, 80, 24)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && (x != tt.wantX || y != tt.wantY) {
				t.Errorf("cell = (%d, %d), want (%d, %d)", x, y, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestPaintAccretorHidesParticlesBehind(t *testing.T) {
	screen := newTestScreen(t)
	p := NewPainter(screen)

	frame := scene.Frame{
		Records: []systems.RenderRecord{
			{X: 40, Y: 24, Size: 1, Alpha: 1, Kind: systems.KindDisk, Color: ringColor},
			{X: 40, Y: 24, Size: 6, Kind: systems.KindAccretor},
			{X: 60, Y: 24, Size: 2, Alpha: 1, Kind: systems.KindDisk, Color: ringColor},
		},
	}
	p.Paint(frame)

	if r, bg := cellAt(screen, 40, 12); r != ' ' || bg != tcell.ColorBlack {
		t.Errorf("accretor center = %q on %v, want blank on black", r, bg)
	}
	if _, bg := cellAt(screen, 45, 12); bg != tcell.ColorBlack {
		t.Errorf("cell inside the accretor radius has background %v", bg)
	}
	if _, bg := cellAt(screen, 48, 12); bg != spaceColor {
		t.Errorf("cell outside the accretor radius has background %v", bg)
	}
	if r, _ := cellAt(screen, 60, 12); r != '*' {
		t.Errorf("disk particle glyph = %q, want '*'", r)
	}
}

func TestPaintFlash(t *testing.T) {
	screen := newTestScreen(t)
	p := NewPainter(screen)

	p.Paint(scene.Frame{Flash: 1})
	_, bg := cellAt(screen, 79, 23)
	r, g, b := bg.RGB()
	if r < 200 || g < 200 || b < 200 {
		t.Errorf("flash background = (%d, %d, %d), want near white", r, g, b)
	}

	p.Paint(scene.Frame{})
	if _, bg := cellAt(screen, 79, 23); bg != spaceColor {
		t.Errorf("background without flash = %v, want space color", bg)
	}
}

func TestReadoutLine(t *testing.T) {
	frame := scene.Frame{Readout: phase.Readout{Phase: "disrupt", StateTime: 3.25, Progress: 0.5}}
	got := readoutLine(frame)
	if !strings.HasPrefix(got, "disrupt") {
		t.Errorf("readout %q does not start with the phase", got)
	}
	if n := strings.Count(got, "#"); n != progressWidth/2 {
		t.Errorf("readout %q has %d filled cells, want %d", got, n, progressWidth/2)
	}
	if !strings.HasSuffix(got, "3.2s") && !strings.HasSuffix(got, "3.3s") {
		t.Errorf("readout %q does not end with the state time", got)
	}
}

func TestViewerShowsPhase(t *testing.T) {
	screen := newTestScreen(t)
	cfg := config.Default()

	v := NewViewer(screen, cfg, 7, nil)
	for i := 0; i < 30; i++ {
		v.Step()
	}
	v.Draw()

	if row := rowText(screen, 0); !strings.HasPrefix(row, "approach") {
		t.Errorf("readout row = %q, want approach phase", row)
	}
}

func TestViewerQuitKeys(t *testing.T) {
	screen := newTestScreen(t)
	v := NewViewer(screen, config.Default(), 1, nil)

	if !v.HandleEvent(tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone)) {
		t.Fatal("space should not quit")
	}
	if !v.paused {
		t.Error("space should pause")
	}
	if v.HandleEvent(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)) {
		t.Error("q should quit")
	}
	if v.HandleEvent(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)) {
		t.Error("escape should quit")
	}
}
