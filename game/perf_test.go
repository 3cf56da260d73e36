package game

import (
	"testing"
	"time"
)

func TestPerfStatsWindow(t *testing.T) {
	p := NewPerfStats()

	if got := p.Avg("paint"); got != 0 {
		t.Errorf("avg of unknown stage = %v, want 0", got)
	}

	for i := 0; i < perfWindow; i++ {
		p.Record("paint", time.Millisecond)
	}
	if got := p.Avg("paint"); got != time.Millisecond {
		t.Errorf("avg = %v, want 1ms", got)
	}

	// A full window of newer samples replaces the old ones entirely.
	for i := 0; i < perfWindow; i++ {
		p.Record("paint", 3*time.Millisecond)
	}
	if got := p.Avg("paint"); got != 3*time.Millisecond {
		t.Errorf("avg after rollover = %v, want 3ms", got)
	}
}

func TestPerfStatsSortedNames(t *testing.T) {
	p := NewPerfStats()
	p.Record("frame", 2*time.Millisecond)
	p.Record("paint", 5*time.Millisecond)
	p.Record("export", 2*time.Millisecond)

	got := p.SortedNames()
	want := []string{"paint", "export", "frame"}
	if len(got) != len(want) {
		t.Fatalf("names = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("names = %v, want %v", got, want)
			break
		}
	}

	avgs := p.Averages()
	if avgs["paint"] != 5*time.Millisecond {
		t.Errorf("averages[paint] = %v, want 5ms", avgs["paint"])
	}
}
