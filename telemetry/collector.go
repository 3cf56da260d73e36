// Package telemetry provides run statistics, bookmarks, and snapshots.
package telemetry

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int32
	dt                  float64

	// Current window tracking
	windowStartTick int32

	// Event counters for current window
	emitted        int
	refused        int
	captured       int
	streamConsumed int
	diskConsumed   int
	consumedMass   float64
	streamExpired  int
	diskExpired    int
	diskSpawned    int
	diskFalling    int
	transitions    int
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec, dt float64) *Collector {
	ticksPerWindow := int32(1)
	if dt > 0 {
		ticksPerWindow = int32(windowDurationSec / dt)
	}
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// RecordEmission records stream emission attempts that were accepted or refused.
func (c *Collector) RecordEmission(accepted, refused int) {
	c.emitted += accepted
	c.refused += refused
}

// RecordCaptured records stream particles handed to the disk.
func (c *Collector) RecordCaptured(n int) {
	c.captured += n
}

// RecordStream records consumption and expiry from the stream.
func (c *Collector) RecordStream(consumed, expired int, mass float64) {
	c.streamConsumed += consumed
	c.streamExpired += expired
	c.consumedMass += mass
}

// RecordDisk records disk activity.
func (c *Collector) RecordDisk(spawned, consumed, expired, falling int, mass float64) {
	c.diskSpawned += spawned
	c.diskConsumed += consumed
	c.diskExpired += expired
	c.diskFalling += falling
	c.consumedMass += mass
}

// RecordTransition records a phase change.
func (c *Collector) RecordTransition() {
	c.transitions++
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int32, s Sample) WindowStats {
	p10, p50, p90 := Quantiles(s.DiskRadii)
	speedMean, speedStd := MeanStd(s.StreamSpeeds)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * c.dt,

		Phase:     s.Phase,
		StateTime: s.StateTime,
		Progress:  s.Progress,

		Emitted:        c.emitted,
		Refused:        c.refused,
		Captured:       c.captured,
		StreamConsumed: c.streamConsumed,
		DiskConsumed:   c.diskConsumed,
		ConsumedMass:   c.consumedMass,
		StreamExpired:  c.streamExpired,
		DiskExpired:    c.diskExpired,
		DiskSpawned:    c.diskSpawned,
		DiskFalling:    c.diskFalling,
		Transitions:    c.transitions,

		AccretorMass:   s.AccretorMass,
		AccretorRadius: s.AccretorRadius,
		AccretorGlow:   s.AccretorGlow,
		StarMass:       s.StarMass,
		StarOrbit:      s.StarOrbit,

		StreamCount: s.StreamCount,
		DiskCount:   s.DiskCount,
		JetCount:    s.JetCount,

		DiskRadiusP10: p10,
		DiskRadiusP50: p50,
		DiskRadiusP90: p90,

		StreamSpeedMean: speedMean,
		StreamSpeedStd:  speedStd,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.emitted = 0
	c.refused = 0
	c.captured = 0
	c.streamConsumed = 0
	c.diskConsumed = 0
	c.consumedMass = 0
	c.streamExpired = 0
	c.diskExpired = 0
	c.diskSpawned = 0
	c.diskFalling = 0
	c.transitions = 0

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
