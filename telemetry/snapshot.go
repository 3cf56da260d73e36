package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds the scene state at one tick for offline inspection.
type Snapshot struct {
	Version int   `json:"version"`
	Seed    int64 `json:"seed"`

	Tick       int32   `json:"tick"`
	SimTimeSec float64 `json:"sim_time"`
	Phase      string  `json:"phase"`
	StateTime  float64 `json:"state_time"`

	Accretor AccretorState `json:"accretor"`
	Star     StarState     `json:"star"`

	Stream []StreamState `json:"stream"`
	Disk   []DiskState   `json:"disk"`
	Jets   int           `json:"jets"`

	Bookmark *Bookmark `json:"bookmark,omitempty"`
}

// AccretorState is the serialized central body.
type AccretorState struct {
	Mass     float64 `json:"mass"`
	Radius   float64 `json:"radius"`
	Consumed float64 `json:"consumed"`
	Glow     float64 `json:"glow"`
}

// StarState is the serialized star.
type StarState struct {
	Mass     float64    `json:"mass"`
	Orbit    float64    `json:"orbit"`
	Phi      float64    `json:"phi"`
	Pos      [3]float64 `json:"pos"`
	Vel      [3]float64 `json:"vel"`
	Depleted bool       `json:"depleted"`
}

// StreamState holds one stream particle.
type StreamState struct {
	ID  uint64     `json:"id"`
	Pos [3]float64 `json:"pos"`
	Vel [3]float64 `json:"vel"`
	Age float64    `json:"age"`
}

// DiskState holds one disk particle in polar form.
type DiskState struct {
	ID       uint64  `json:"id"`
	Angle    float64 `json:"angle"`
	Distance float64 `json:"distance"`
	Offset   float64 `json:"offset"`
	Age      float64 `json:"age"`
	Falling  bool    `json:"falling"`
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	name := fmt.Sprintf("snapshot_%d_%s", snapshot.Tick, snapshot.Phase)
	if snapshot.Bookmark != nil {
		sanitized := strings.ReplaceAll(string(snapshot.Bookmark.Type), " ", "_")
		name = fmt.Sprintf("snapshot_%d_%s", snapshot.Tick, sanitized)
	}
	name += ".json"

	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}

	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", snapshot.Version)
	}

	return &snapshot, nil
}
