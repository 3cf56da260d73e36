package game

import (
	"slices"
	"strings"
	"time"
)

// perfWindow is how many samples each viewer stage averages over, about two
// seconds at 60fps.
const perfWindow = 120

// stageTimes is a fixed ring of durations with a running sum.
type stageTimes struct {
	ring [perfWindow]time.Duration
	next int
	n    int
	sum  time.Duration
}

func (s *stageTimes) add(d time.Duration) {
	if s.n == perfWindow {
		s.sum -= s.ring[s.next]
	} else {
		s.n++
	}
	s.ring[s.next] = d
	s.sum += d
	s.next = (s.next + 1) % perfWindow
}

func (s *stageTimes) avg() time.Duration {
	if s.n == 0 {
		return 0
	}
	return s.sum / time.Duration(s.n)
}

// PerfStats tracks viewer-side costs (frame building, painting, exports)
// that happen outside the scene's own stage timing.
type PerfStats struct {
	stages map[string]*stageTimes
}

// NewPerfStats creates an empty tracker.
func NewPerfStats() *PerfStats {
	return &PerfStats{stages: make(map[string]*stageTimes)}
}

// Record adds one sample for the named stage.
func (p *PerfStats) Record(name string, d time.Duration) {
	st, ok := p.stages[name]
	if !ok {
		st = &stageTimes{}
		p.stages[name] = st
	}
	st.add(d)
}

// Avg returns the windowed average for the named stage.
func (p *PerfStats) Avg(name string) time.Duration {
	if st, ok := p.stages[name]; ok {
		return st.avg()
	}
	return 0
}

// Averages returns the windowed average of every recorded stage.
func (p *PerfStats) Averages() map[string]time.Duration {
	out := make(map[string]time.Duration, len(p.stages))
	for name, st := range p.stages {
		out[name] = st.avg()
	}
	return out
}

// SortedNames returns stage names, slowest first. Ties sort by name.
func (p *PerfStats) SortedNames() []string {
	names := make([]string, 0, len(p.stages))
	for name := range p.stages {
		names = append(names, name)
	}
	slices.SortFunc(names, func(a, b string) int {
		da, db := p.Avg(a), p.Avg(b)
		switch {
		case da > db:
			return -1
		case da < db:
			return 1
		}
		return strings.Compare(a, b)
	})
	return names
}
