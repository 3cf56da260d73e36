package game

// Screen dimensions used when the config leaves them unset.
const (
	ScreenWidth  = 1280
	ScreenHeight = 720
)

// Options configures a game run.
type Options struct {
	Seed           int64
	LogStats       bool    // Log window and perf stats via slog
	StatsWindowSec float64 // 0 = use config
	SnapshotDir    string  // Snapshots on bookmarks and phase transitions
	OutputDir      string  // CSV telemetry and config copy
	FramesDir      string  // PNG frame export
	Headless       bool
	StepsPerUpdate int
}
