// Package frames paints scene frames into images without a window and
// saves them as numbered PNG files.
package frames

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"github.com/gogpu/gg"

	"github.com/pthm-cable/tidal/camera"
	"github.com/pthm-cable/tidal/config"
	"github.com/pthm-cable/tidal/scene"
	"github.com/pthm-cable/tidal/systems"
)

var (
	background = gg.RGBA2(0.01, 0.01, 0.03, 1)
	haloColor  = color.RGBA{R: 255, G: 170, B: 80, A: 255}
	ringColor  = color.RGBA{R: 255, G: 225, B: 180, A: 255}
)

// Exporter writes every Nth frame of a run to a directory.
type Exporter struct {
	dir    string
	width  int
	height int
	every  int
	count  int
}

// NewExporter prepares dir for frame output. Returns nil if dir is empty
// (export disabled).
func NewExporter(dir string, cfg config.FramesConfig) (*Exporter, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating frames directory: %w", err)
	}
	every := cfg.Every
	if every < 1 {
		every = 1
	}
	return &Exporter{dir: dir, width: cfg.Width, height: cfg.Height, every: every}, nil
}

// Size returns the exported image dimensions.
func (e *Exporter) Size() (width, height int) {
	return e.width, e.height
}

// Camera returns a camera framed like the window camera at the export size.
func (e *Exporter) Camera(cfg *config.Config) *camera.Camera {
	focal := cfg.Camera.Focal
	if cfg.Screen.Height > 0 {
		focal *= float64(e.height) / float64(cfg.Screen.Height)
	}
	cam := camera.New(float64(e.width), float64(e.height), cfg.Camera.Distance, focal, cfg.Camera.Yaw, cfg.Camera.Pitch)
	cam.OrbitSpeed = cfg.Camera.OrbitSpeed
	return cam
}

// ShouldExport reports whether the frame at tick is due.
func (e *Exporter) ShouldExport(tick int32) bool {
	return e != nil && int(tick)%e.every == 0
}

// Count returns how many frames have been written.
func (e *Exporter) Count() int {
	if e == nil {
		return 0
	}
	return e.count
}

// Export paints frame and saves it as frame_<tick>.png. Returns the path.
func (e *Exporter) Export(tick int32, frame scene.Frame) (string, error) {
	if e == nil {
		return "", nil
	}
	dc := gg.NewContext(e.width, e.height)
	defer dc.Close()

	Paint(dc, frame)

	path := filepath.Join(e.dir, fmt.Sprintf("frame_%06d.png", tick))
	if err := dc.SavePNG(path); err != nil {
		return "", fmt.Errorf("saving frame %d: %w", tick, err)
	}
	e.count++
	return path, nil
}

// Paint draws a frame onto dc. Records are painted in order, so a sorted
// frame puts the accretor's shadow over whatever lies behind it.
func Paint(dc *gg.Context, frame scene.Frame) {
	dc.ClearWithColor(background)

	for i := range frame.Records {
		r := &frame.Records[i]
		switch r.Kind {
		case systems.KindAccretor:
			paintAccretor(dc, r, frame.LensStrength)
		case systems.KindStar:
			paintHalo(dc, r.X, r.Y, r.Size, r.Color, 0.25+0.5*r.Glow)
			setColor(dc, r.Color, r.Alpha)
			dc.DrawCircle(r.X, r.Y, math.Max(r.Size, 1))
			dc.Fill()
		default:
			setColor(dc, r.Color, r.Alpha)
			dc.DrawCircle(r.X, r.Y, math.Max(r.Size, 0.5))
			dc.Fill()
		}
	}

	if frame.Flash > 0 {
		dc.SetRGBA(1, 1, 1, 0.85*frame.Flash)
		dc.DrawRectangle(0, 0, float64(dc.Width()), float64(dc.Height()))
		dc.Fill()
	}
}

// paintAccretor draws the glow halo, the photon ring and the shadow.
func paintAccretor(dc *gg.Context, r *systems.RenderRecord, lens float64) {
	paintHalo(dc, r.X, r.Y, r.Size*1.4, haloColor, r.Glow)

	if lens > 0 {
		setColor(dc, ringColor, 0.6*lens)
		dc.SetLineWidth(math.Max(1, r.Size*0.08))
		dc.DrawCircle(r.X, r.Y, r.Size*1.15)
		dc.Stroke()
	}

	setColor(dc, r.Color, 1)
	dc.DrawCircle(r.X, r.Y, r.Size)
	dc.Fill()
}

// paintHalo approximates a radial falloff with stacked translucent discs.
func paintHalo(dc *gg.Context, x, y, radius float64, c color.RGBA, intensity float64) {
	if intensity <= 0 || radius <= 0 {
		return
	}
	const rings = 6
	for i := rings; i >= 1; i-- {
		t := float64(i) / rings
		setColor(dc, c, intensity*0.12*(1-t*0.7))
		dc.DrawCircle(x, y, radius*(1+t))
		dc.Fill()
	}
}

func setColor(dc *gg.Context, c color.RGBA, alpha float64) {
	dc.SetRGBA(float64(c.R)/255, float64(c.G)/255, float64(c.B)/255, clamp01(alpha)*float64(c.A)/255)
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
