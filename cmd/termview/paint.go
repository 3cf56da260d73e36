package main

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/tidal/camera"
	"github.com/pthm-cable/tidal/config"
	"github.com/pthm-cable/tidal/scene"
	"github.com/pthm-cable/tidal/systems"
)

// cellAspect is how many camera pixels one terminal row covers. Cells are
// roughly twice as tall as they are wide.
const cellAspect = 2.0

// progressWidth is the number of cells in the readout progress bar.
const progressWidth = 20

var (
	spaceColor = tcell.NewRGBColor(3, 4, 10)
	ringColor  = color.RGBA{R: 255, G: 190, B: 110, A: 255}
)

// newTermCamera frames the window camera for a cols x rows terminal.
func newTermCamera(cfg *config.Config, cols, rows int) *camera.Camera {
	w, h := float64(cols), float64(rows)*cellAspect
	focal := cfg.Camera.Focal
	if cfg.Screen.Height > 0 {
		focal *= h / float64(cfg.Screen.Height)
	}
	cam := camera.New(w, h, cfg.Camera.Distance, focal, cfg.Camera.Yaw, cfg.Camera.Pitch)
	cam.OrbitSpeed = cfg.Camera.OrbitSpeed
	return cam
}

// Painter draws scene frames as terminal cells.
type Painter struct {
	screen tcell.Screen
}

// NewPainter creates a painter for screen.
func NewPainter(screen tcell.Screen) *Painter {
	return &Painter{screen: screen}
}

// Paint draws frame and a one-line phase readout. It does not call Show.
func (p *Painter) Paint(frame scene.Frame) {
	cols, rows := p.screen.Size()

	bg := flashBackground(frame.Flash)
	p.screen.Fill(' ', tcell.StyleDefault.Background(bg))

	for i := range frame.Records {
		rec := &frame.Records[i]
		switch rec.Kind {
		case systems.KindAccretor:
			p.paintAccretor(rec, frame.LensStrength, bg, cols, rows)
		case systems.KindStar:
			p.paintDisc(rec, '@', shade(rec.Color, 1), bg, cols, rows)
		default:
			x, y, ok := cellOf(rec.X, rec.Y, cols, rows)
			if !ok {
				continue
			}
			style := tcell.StyleDefault.Foreground(shade(rec.Color, rec.Alpha)).Background(bg)
			p.screen.SetContent(x, y, glyphFor(rec), nil, style)
		}
	}

	p.paintReadout(frame, bg, cols)
}

// paintAccretor blanks the accretor's disc and rims it with the photon ring
// once the disk is lensing.
func (p *Painter) paintAccretor(rec *systems.RenderRecord, lens float64, bg tcell.Color, cols, rows int) {
	if lens > 0 {
		ring := *rec
		ring.Size = rec.Size * 1.35
		p.paintDisc(&ring, '·', shade(ringColor, clamp01(lens)), bg, cols, rows)
	}
	p.paintDisc(rec, ' ', tcell.ColorBlack, tcell.ColorBlack, cols, rows)
}

// paintDisc fills the cells whose centers lie inside the record's radius.
// A disc smaller than one cell still covers its center cell.
func (p *Painter) paintDisc(rec *systems.RenderRecord, r rune, fg, bg tcell.Color, cols, rows int) {
	style := tcell.StyleDefault.Foreground(fg).Background(bg)
	cx, cy := rec.X, rec.Y/cellAspect
	rx := rec.Size
	ry := rec.Size / cellAspect

	if x, y, ok := cellOf(rec.X, rec.Y, cols, rows); ok {
		p.screen.SetContent(x, y, r, nil, style)
	}
	if rx < 0.5 {
		return
	}

	for y := int(math.Floor(cy - ry)); y <= int(math.Ceil(cy+ry)); y++ {
		if y < 1 || y >= rows {
			continue
		}
		for x := int(math.Floor(cx - rx)); x <= int(math.Ceil(cx+rx)); x++ {
			if x < 0 || x >= cols {
				continue
			}
			dx := (float64(x) + 0.5 - cx) / rx
			dy := (float64(y) + 0.5 - cy) / ry
			if dx*dx+dy*dy <= 1 {
				p.screen.SetContent(x, y, r, nil, style)
			}
		}
	}
}

// paintReadout writes the phase label and progress bar on the top row.
func (p *Painter) paintReadout(frame scene.Frame, bg tcell.Color, cols int) {
	style := tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(bg)
	text := readoutLine(frame)
	if frame.CanRestart {
		text += "  [r] restart"
	}
	x := 0
	for _, r := range text {
		if x >= cols {
			break
		}
		p.screen.SetContent(x, 0, r, nil, style)
		x++
	}
}

// readoutLine formats the phase readout, e.g. "disrupt    [#####.....] 3.2s".
func readoutLine(frame scene.Frame) string {
	ro := frame.Readout
	filled := int(clamp01(ro.Progress)*progressWidth + 0.5)
	bar := strings.Repeat("#", filled) + strings.Repeat(".", progressWidth-filled)
	return fmt.Sprintf("%-10s [%s] %.1fs", ro.Phase, bar, ro.StateTime)
}

// cellOf maps a screen point in camera pixels to a cell. Row 0 is
// reserved for the readout.
func cellOf(x, y float64, cols, rows int) (int, int, bool) {
	cx := int(math.Floor(x))
	cy := int(math.Floor(y / cellAspect))
	if cx < 0 || cx >= cols || cy < 1 || cy >= rows {
		return 0, 0, false
	}
	return cx, cy, true
}

// glyphFor picks a particle glyph by kind and apparent size.
func glyphFor(rec *systems.RenderRecord) rune {
	switch rec.Kind {
	case systems.KindDisk:
		if rec.Size >= 1.5 {
			return '*'
		}
		return '·'
	case systems.KindJet:
		return ':'
	default:
		if rec.Alpha < 0.35 {
			return '.'
		}
		return '∙'
	}
}

// shade scales c by alpha against black.
func shade(c color.RGBA, alpha float64) tcell.Color {
	a := clamp01(alpha)
	return tcell.NewRGBColor(
		int32(float64(c.R)*a),
		int32(float64(c.G)*a),
		int32(float64(c.B)*a),
	)
}

// flashBackground lifts the background toward white while the flash is up.
func flashBackground(flash float64) tcell.Color {
	if flash <= 0 {
		return spaceColor
	}
	v := int32(clamp01(0.85*flash) * 255)
	return tcell.NewRGBColor(max(3, v), max(4, v), max(10, v))
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
