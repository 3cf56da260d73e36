package telemetry

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/tidal/config"
)

func TestQuantiles(t *testing.T) {
	tests := []struct {
		name          string
		values        []float64
		p10, p50, p90 float64
	}{
		{"empty", nil, 0, 0, 0},
		{"single", []float64{5}, 5, 5, 5},
		{"unsorted ten", []float64{10, 3, 7, 1, 9, 2, 8, 4, 6, 5}, 1, 5, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p10, p50, p90 := Quantiles(tt.values)
			if p10 != tt.p10 || p50 != tt.p50 || p90 != tt.p90 {
				t.Errorf("Quantiles = (%v, %v, %v), want (%v, %v, %v)", p10, p50, p90, tt.p10, tt.p50, tt.p90)
			}
		})
	}
}

func TestMeanStd(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		mean   float64
		std    float64
	}{
		{"empty", nil, 0, 0},
		{"single", []float64{4}, 4, 0},
		{"spread", []float64{2, 4, 4, 4, 5, 5, 7, 9}, 5, math.Sqrt(32.0 / 7.0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mean, std := MeanStd(tt.values)
			if math.Abs(mean-tt.mean) > 1e-9 || math.Abs(std-tt.std) > 1e-9 {
				t.Errorf("MeanStd = (%v, %v), want (%v, %v)", mean, std, tt.mean, tt.std)
			}
		})
	}
}

func TestCollectorWindow(t *testing.T) {
	c := NewCollector(1.0, 1.0/60.0)
	if c.WindowDurationTicks() != 60 {
		t.Fatalf("expected 60 ticks per window, got %d", c.WindowDurationTicks())
	}

	c.RecordEmission(10, 2)
	c.RecordCaptured(4)
	c.RecordStream(3, 1, 0.15)
	c.RecordDisk(5, 2, 1, 6, 0.04)
	c.RecordTransition()

	if c.ShouldFlush(59) {
		t.Error("window should not close before 60 ticks")
	}
	if !c.ShouldFlush(60) {
		t.Error("window should close at 60 ticks")
	}

	stats := c.Flush(60, Sample{
		Phase:        "disrupt",
		AccretorMass: 1000.19,
		StreamCount:  7,
		DiskRadii:    []float64{100, 80, 120},
		StreamSpeeds: []float64{10, 20},
	})

	if stats.Emitted != 10 || stats.Refused != 2 || stats.Captured != 4 {
		t.Errorf("unexpected emission counters: %+v", stats)
	}
	if stats.StreamConsumed != 3 || stats.DiskConsumed != 2 || math.Abs(stats.ConsumedMass-0.19) > 1e-12 {
		t.Errorf("unexpected consumption: %+v", stats)
	}
	if stats.DiskRadiusP50 != 100 || stats.StreamSpeedMean != 15 {
		t.Errorf("unexpected distributions: p50=%v mean=%v", stats.DiskRadiusP50, stats.StreamSpeedMean)
	}
	if math.Abs(stats.SimTimeSec-1.0) > 1e-9 {
		t.Errorf("expected sim time 1s, got %v", stats.SimTimeSec)
	}

	next := c.Flush(120, Sample{})
	if next.Emitted != 0 || next.Transitions != 0 || next.WindowStartTick != 60 {
		t.Errorf("counters not reset after flush: %+v", next)
	}
}

func TestPhaseLogDrain(t *testing.T) {
	l := NewPhaseLog()
	l.Record(PhaseRecord{Tick: 1, From: "approach", To: "stretch"})
	l.Record(PhaseRecord{Tick: 2, From: "stretch", To: "disrupt"})

	if got := l.Drain(); len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got := l.Drain(); len(got) != 0 {
		t.Errorf("expected empty drain, got %d", len(got))
	}
	if l.Total() != 2 {
		t.Errorf("expected total 2, got %d", l.Total())
	}
}

func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("expected disabled output, got %v, %v", om, err)
	}
	if err := om.WriteTelemetry(WindowStats{}); err != nil {
		t.Errorf("nil manager should ignore writes: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Errorf("nil manager close: %v", err)
	}
}

func TestOutputManagerWritesCSV(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}

	for i := int32(1); i <= 3; i++ {
		if err := om.WriteTelemetry(WindowStats{WindowEndTick: i * 60, Phase: "approach"}); err != nil {
			t.Fatalf("WriteTelemetry: %v", err)
		}
	}
	if err := om.WritePerf(PerfStats{}, 60); err != nil {
		t.Fatalf("WritePerf: %v", err)
	}
	if err := om.WritePhases([]PhaseRecord{{Tick: 360, From: "approach", To: "stretch", Effects: "none"}}); err != nil {
		t.Fatalf("WritePhases: %v", err)
	}
	if err := om.WriteConfig(config.Default()); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "telemetry.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header + 3 rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "window_end,sim_time,phase") {
		t.Errorf("unexpected header %q", lines[0])
	}

	phases, err := os.ReadFile(filepath.Join(dir, "phases.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(phases), "approach,stretch,none") {
		t.Errorf("phases.csv missing transition: %q", phases)
	}

	if _, err := os.Stat(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("config.yaml not written: %v", err)
	}
}
