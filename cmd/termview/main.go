// Terminal viewer - plays an encounter in a terminal with tcell, chiming on
// disruption and flare.
//
// Usage: go run ./cmd/termview -seed 7
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/tidal/camera"
	"github.com/pthm-cable/tidal/config"
	"github.com/pthm-cable/tidal/scene"
)

// Viewer runs one scene against a terminal screen.
type Viewer struct {
	screen  tcell.Screen
	scene   *scene.Scene
	camera  *camera.Camera
	painter *Painter
	chime   *Chime
	cfg     *config.Config
	paused  bool
}

// NewViewer creates a viewer for an initialized screen. chime may be nil.
func NewViewer(screen tcell.Screen, cfg *config.Config, seed int64, chime *Chime) *Viewer {
	cols, rows := screen.Size()
	return &Viewer{
		screen:  screen,
		scene:   scene.New(cfg, seed),
		camera:  newTermCamera(cfg, cols, rows),
		painter: NewPainter(screen),
		chime:   chime,
		cfg:     cfg,
	}
}

// Step advances the scene by one tick and queues transition tones.
func (v *Viewer) Step() {
	dt := v.cfg.Physics.DT
	rep := v.scene.Update(dt)
	v.camera.Update(dt)
	if v.chime == nil {
		return
	}
	for _, t := range rep.Transitions {
		v.chime.OnTransition(t)
	}
}

// Draw paints the current frame.
func (v *Viewer) Draw() {
	v.painter.Paint(v.scene.BuildFrame(v.camera))
	v.screen.Show()
}

// HandleEvent applies one terminal event and reports whether to keep running.
func (v *Viewer) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyLeft:
			v.camera.Orbit(-0.1, 0)
		case tcell.KeyRight:
			v.camera.Orbit(0.1, 0)
		case tcell.KeyUp:
			v.camera.Orbit(0, 0.05)
		case tcell.KeyDown:
			v.camera.Orbit(0, -0.05)
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return false
			case ' ':
				v.paused = !v.paused
			case 'r':
				v.scene.Restart()
			case '+', '=':
				v.camera.ZoomBy(1.1)
			case '-':
				v.camera.ZoomBy(1 / 1.1)
			case '0':
				v.camera.Reset()
			}
		}
	case *tcell.EventResize:
		cols, rows := v.screen.Size()
		v.camera.Resize(float64(cols), float64(rows)*cellAspect)
		v.screen.Sync()
	}
	return true
}

// Run drives the viewer at the configured frame rate until quit.
func (v *Viewer) Run() {
	fps := v.cfg.Screen.TargetFPS
	if fps <= 0 {
		fps = 60
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	quit := make(chan struct{})
	go v.screen.ChannelEvents(events, quit)
	defer close(quit)

	for {
		select {
		case ev := <-events:
			if ev == nil || !v.HandleEvent(ev) {
				return
			}
		case <-ticker.C:
			if !v.paused {
				v.Step()
			}
			v.Draw()
		}
	}
}

func main() {
	configPath := flag.String("config", "", "Path to config YAML file (empty = use defaults)")
	seed := flag.Int64("seed", 0, "Encounter seed (0 = time based)")
	mute := flag.Bool("mute", false, "Disable transition tones")
	logPath := flag.String("log", "", "Write JSON logs to this file (default: discard)")
	flag.Parse()

	// The terminal belongs to tcell, so logs go to a file or nowhere.
	if *logPath != "" {
		f, err := os.Create(*logPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		slog.SetDefault(slog.New(slog.NewJSONHandler(f, nil)))
	} else {
		slog.SetDefault(slog.New(slog.DiscardHandler))
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create screen: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize screen: %v\n", err)
		os.Exit(1)
	}
	defer screen.Fini()

	var chime *Chime
	if !*mute {
		chime = NewChime()
		if err := chime.Init(); err != nil {
			// Non-fatal, the viewer runs without sound
			slog.Warn("audio_init_failed", "error", err)
			chime = nil
		} else {
			defer chime.Close()
		}
	}

	slog.Info("termview_started", "seed", *seed)
	NewViewer(screen, cfg, *seed, chime).Run()
}
