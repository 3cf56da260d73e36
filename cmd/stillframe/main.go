// Still frame tool - advances an encounter headlessly and renders one frame
// to a PNG file for inspection.
//
// Usage: go run ./cmd/stillframe -phase disrupt -out disrupt.png
package main

import (
	"flag"
	"fmt"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/tidal/camera"
	"github.com/pthm-cable/tidal/config"
	"github.com/pthm-cable/tidal/phase"
	"github.com/pthm-cable/tidal/renderer"
	"github.com/pthm-cable/tidal/scene"
)

func main() {
	configPath := flag.String("config", "", "Path to config YAML file (empty = use defaults)")
	seed := flag.Int64("seed", 1, "Encounter seed")
	phaseName := flag.String("phase", "", "Advance until this phase is entered (empty = use -ticks)")
	ticks := flag.Int("ticks", 600, "Ticks to advance (cap when -phase is set)")
	settle := flag.Float64("settle", 1.0, "Extra seconds to advance after -phase is entered")
	outPath := flag.String("out", "frame.png", "Output PNG path")
	width := flag.Int("width", 1280, "Render width")
	height := flag.Int("height", 720, "Render height")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	var target phase.Phase
	if *phaseName != "" {
		target, err = phase.Parse(*phaseName)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
	}

	sc := scene.New(cfg, *seed)
	reached := *phaseName == ""
	settleTicks := int(*settle / cfg.Physics.DT)
	for i := 0; i < *ticks; i++ {
		if *phaseName != "" && reached {
			if settleTicks == 0 {
				break
			}
			settleTicks--
		}
		sc.Update(cfg.Physics.DT)
		if !reached && sc.Phase() == target {
			reached = true
		}
	}
	if !reached {
		fmt.Fprintf(os.Stderr, "Phase %s not reached within %d ticks (at %s)\n", *phaseName, *ticks, sc.Phase())
		os.Exit(1)
	}

	// Initialize raylib with hidden window
	rl.SetConfigFlags(rl.FlagWindowHidden)
	rl.InitWindow(int32(*width), int32(*height), "Still Frame")
	defer rl.CloseWindow()

	c := cfg.Camera
	cam := camera.New(float64(*width), float64(*height), c.Distance, c.Focal, c.Yaw, c.Pitch)
	painter := renderer.NewSceneRenderer(int32(*width), int32(*height))
	defer painter.Unload()

	texture := rl.LoadRenderTexture(int32(*width), int32(*height))
	defer rl.UnloadRenderTexture(texture)

	frame := sc.BuildFrame(cam)

	rl.BeginTextureMode(texture)
	rl.ClearBackground(rl.Black)
	painter.Draw(frame, renderer.AllLayers(), renderer.ViewState{
		Time:  float32(sc.SimTime()),
		Yaw:   float32(cam.Yaw),
		Pitch: float32(cam.Pitch),
	})
	rl.EndTextureMode()

	// Get image from texture and flip it (OpenGL convention)
	img := rl.LoadImageFromTexture(texture.Texture)
	rl.ImageFlipVertical(img)

	success := rl.ExportImage(*img, *outPath)
	rl.UnloadImage(img)

	if success {
		fmt.Printf("Frame rendered to: %s (%dx%d, tick %d, %s)\n", *outPath, *width, *height, sc.Tick(), sc.Phase())
	} else {
		fmt.Fprintf(os.Stderr, "Failed to export image\n")
		os.Exit(1)
	}
}
