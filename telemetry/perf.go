package telemetry

import (
	"log/slog"
	"time"
)

// Stage names for the simulation step.
const (
	StagePhase     = "phase"
	StageBodies    = "bodies"
	StageEmission  = "emission"
	StageStream    = "stream"
	StageDisk      = "disk"
	StageJets      = "jets"
	StageHandOff   = "handoff"
	StageTelemetry = "telemetry"
)

// stageOrder fixes the column and log order of stages.
var stageOrder = []string{
	StagePhase, StageBodies, StageEmission, StageStream,
	StageDisk, StageJets, StageHandOff, StageTelemetry,
}

// Stages returns the stage names in step order.
func Stages() []string {
	return append([]string(nil), stageOrder...)
}

// PerfSample holds timing data for a single tick.
type PerfSample struct {
	TickDuration time.Duration
	Stages       map[string]time.Duration
}

// PerfCollector tracks step timing over a rolling window.
type PerfCollector struct {
	windowSize    int
	samples       []PerfSample
	writeIndex    int
	sampleCount   int
	currentStages map[string]time.Duration
	tickStart     time.Time
	stageStart    time.Time
	lastStage     string

	// Frame timing (for graphics mode)
	lastFrameTime time.Time
	frameDuration time.Duration

	now func() time.Time
}

// NewPerfCollector creates a new performance collector.
// windowSize: number of ticks to average over (e.g., 60 for 1 second at 60fps).
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		windowSize:    windowSize,
		samples:       make([]PerfSample, windowSize),
		currentStages: make(map[string]time.Duration),
		now:           time.Now,
	}
}

// StartTick begins timing a new simulation tick.
func (p *PerfCollector) StartTick() {
	p.tickStart = p.now()
	p.currentStages = make(map[string]time.Duration, len(stageOrder))
	p.lastStage = ""
}

// StartStage ends the running stage, if any, and begins timing the next.
func (p *PerfCollector) StartStage(stage string) {
	now := p.now()
	if p.lastStage != "" {
		p.currentStages[p.lastStage] += now.Sub(p.stageStart)
	}
	p.stageStart = now
	p.lastStage = stage
}

// EndTick finishes timing the current tick and records the sample.
func (p *PerfCollector) EndTick() {
	now := p.now()
	if p.lastStage != "" {
		p.currentStages[p.lastStage] += now.Sub(p.stageStart)
	}

	p.samples[p.writeIndex] = PerfSample{
		TickDuration: now.Sub(p.tickStart),
		Stages:       p.currentStages,
	}
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
	p.lastStage = ""
}

// RecordFrame records frame timing for graphics mode.
func (p *PerfCollector) RecordFrame() {
	now := p.now()
	if !p.lastFrameTime.IsZero() {
		p.frameDuration = now.Sub(p.lastFrameTime)
	}
	p.lastFrameTime = now
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	AvgTickDuration time.Duration
	MinTickDuration time.Duration
	MaxTickDuration time.Duration

	// Stage breakdown (average durations and share of tick time)
	StageAvg map[string]time.Duration
	StagePct map[string]float64

	TicksPerSecond float64

	// Frame timing (graphics mode)
	FrameDuration time.Duration
	FPS           float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	var fps float64
	if p.frameDuration > 0 {
		fps = float64(time.Second) / float64(p.frameDuration)
	}

	stats := PerfStats{
		StageAvg:      make(map[string]time.Duration),
		StagePct:      make(map[string]float64),
		FrameDuration: p.frameDuration,
		FPS:           fps,
	}
	if p.sampleCount == 0 {
		return stats
	}

	var total time.Duration
	sums := make(map[string]time.Duration)
	for i := 0; i < p.sampleCount; i++ {
		s := p.samples[i]
		total += s.TickDuration
		if i == 0 || s.TickDuration < stats.MinTickDuration {
			stats.MinTickDuration = s.TickDuration
		}
		if s.TickDuration > stats.MaxTickDuration {
			stats.MaxTickDuration = s.TickDuration
		}
		for stage, d := range s.Stages {
			sums[stage] += d
		}
	}

	n := time.Duration(p.sampleCount)
	stats.AvgTickDuration = total / n
	for stage, sum := range sums {
		stats.StageAvg[stage] = sum / n
		if stats.AvgTickDuration > 0 {
			stats.StagePct[stage] = float64(stats.StageAvg[stage]) / float64(stats.AvgTickDuration) * 100
		}
	}
	if stats.AvgTickDuration > 0 {
		stats.TicksPerSecond = float64(time.Second) / float64(stats.AvgTickDuration)
	}
	return stats
}

// LogStats logs performance statistics.
func (s PerfStats) LogStats() {
	attrs := []any{
		"avg_tick_us", s.AvgTickDuration.Microseconds(),
		"max_tick_us", s.MaxTickDuration.Microseconds(),
		"ticks_per_sec", int(s.TicksPerSecond),
	}
	if s.FPS > 0 {
		attrs = append(attrs, "fps", int(s.FPS))
	}
	for _, stage := range stageOrder {
		if pct, ok := s.StagePct[stage]; ok && pct > 0.1 {
			attrs = append(attrs, stage+"_pct", int(pct*10)/10.0)
		}
	}
	slog.Info("perf", attrs...)
}

// PerfStatsCSV is a flat struct for CSV export of performance stats.
type PerfStatsCSV struct {
	WindowEnd    int32   `csv:"window_end"`
	AvgTickUS    int64   `csv:"avg_tick_us"`
	MinTickUS    int64   `csv:"min_tick_us"`
	MaxTickUS    int64   `csv:"max_tick_us"`
	TicksPerSec  float64 `csv:"ticks_per_sec"`
	FPS          float64 `csv:"fps"`
	PhasePct     float64 `csv:"phase_pct"`
	BodiesPct    float64 `csv:"bodies_pct"`
	EmissionPct  float64 `csv:"emission_pct"`
	StreamPct    float64 `csv:"stream_pct"`
	DiskPct      float64 `csv:"disk_pct"`
	JetsPct      float64 `csv:"jets_pct"`
	HandOffPct   float64 `csv:"handoff_pct"`
	TelemetryPct float64 `csv:"telemetry_pct"`
}

// ToCSV converts PerfStats to a flat CSV-friendly struct.
func (s PerfStats) ToCSV(windowEnd int32) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:    windowEnd,
		AvgTickUS:    s.AvgTickDuration.Microseconds(),
		MinTickUS:    s.MinTickDuration.Microseconds(),
		MaxTickUS:    s.MaxTickDuration.Microseconds(),
		TicksPerSec:  s.TicksPerSecond,
		FPS:          s.FPS,
		PhasePct:     s.StagePct[StagePhase],
		BodiesPct:    s.StagePct[StageBodies],
		EmissionPct:  s.StagePct[StageEmission],
		StreamPct:    s.StagePct[StageStream],
		DiskPct:      s.StagePct[StageDisk],
		JetsPct:      s.StagePct[StageJets],
		HandOffPct:   s.StagePct[StageHandOff],
		TelemetryPct: s.StagePct[StageTelemetry],
	}
}
