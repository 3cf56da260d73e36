package telemetry

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Phase at window end
	Phase     string  `csv:"phase"`
	StateTime float64 `csv:"state_time"`
	Progress  float64 `csv:"progress"`

	// Events during window
	Emitted        int     `csv:"emitted"`
	Refused        int     `csv:"refused"`
	Captured       int     `csv:"captured"`
	StreamConsumed int     `csv:"stream_consumed"`
	DiskConsumed   int     `csv:"disk_consumed"`
	ConsumedMass   float64 `csv:"consumed_mass"`
	StreamExpired  int     `csv:"stream_expired"`
	DiskExpired    int     `csv:"disk_expired"`
	DiskSpawned    int     `csv:"disk_spawned"`
	DiskFalling    int     `csv:"disk_falling"`
	Transitions    int     `csv:"transitions"`

	// Body state at window end
	AccretorMass   float64 `csv:"accretor_mass"`
	AccretorRadius float64 `csv:"accretor_radius"`
	AccretorGlow   float64 `csv:"accretor_glow"`
	StarMass       float64 `csv:"star_mass"`
	StarOrbit      float64 `csv:"star_orbit"`

	// Pool sizes at window end
	StreamCount int `csv:"stream"`
	DiskCount   int `csv:"disk"`
	JetCount    int `csv:"jets"`

	// Disk radial distribution (sampled at window end)
	DiskRadiusP10 float64 `csv:"disk_radius_p10"`
	DiskRadiusP50 float64 `csv:"disk_radius_p50"`
	DiskRadiusP90 float64 `csv:"disk_radius_p90"`

	// Stream speed distribution
	StreamSpeedMean float64 `csv:"stream_speed_mean"`
	StreamSpeedStd  float64 `csv:"stream_speed_std"`
}

// Sample is the scene state captured when a window closes.
type Sample struct {
	Phase     string
	StateTime float64
	Progress  float64

	AccretorMass   float64
	AccretorRadius float64
	AccretorGlow   float64
	StarMass       float64
	StarOrbit      float64

	StreamCount int
	DiskCount   int
	JetCount    int

	DiskRadii    []float64 // Unsorted; sorted in place by Flush
	StreamSpeeds []float64
}

// Quantiles returns the p10, p50 and p90 empirical quantiles of values.
// values is sorted in place. Returns zeros if empty.
func Quantiles(values []float64) (p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0
	}
	sort.Float64s(values)
	p10 = stat.Quantile(0.10, stat.Empirical, values, nil)
	p50 = stat.Quantile(0.50, stat.Empirical, values, nil)
	p90 = stat.Quantile(0.90, stat.Empirical, values, nil)
	return p10, p50, p90
}

// MeanStd returns the mean and sample standard deviation of values.
func MeanStd(values []float64) (mean, std float64) {
	switch len(values) {
	case 0:
		return 0, 0
	case 1:
		return values[0], 0
	}
	mean, std = stat.MeanStdDev(values, nil)
	if math.IsNaN(std) {
		std = 0
	}
	return mean, std
}

// LogStats logs the window summary.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"tick", s.WindowEndTick,
		"phase", s.Phase,
		"emitted", s.Emitted,
		"captured", s.Captured,
		"consumed", s.StreamConsumed+s.DiskConsumed,
		"accretor_mass", s.AccretorMass,
		"accretor_radius", s.AccretorRadius,
		"star_mass", s.StarMass,
		"stream", s.StreamCount,
		"disk", s.DiskCount,
	)
}
