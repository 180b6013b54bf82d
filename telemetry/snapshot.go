package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds a grid state at a given step so a run can be inspected or
// resumed with direct simulation.
type Snapshot struct {
	Version int    `json:"version"`
	RunID   string `json:"run_id"`
	Source  string `json:"source,omitempty"`

	Step int `json:"step"`
	Load int `json:"load"`

	// Rows are rendered with the three symbols below.
	Rows    []string `json:"rows"`
	Empty   string   `json:"empty"`
	Movable string   `json:"movable"`
	Fixed   string   `json:"fixed"`

	CycleStart  int `json:"cycle_start,omitempty"`
	CycleLength int `json:"cycle_length,omitempty"`
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	name := fmt.Sprintf("snapshot_%d.json", snapshot.Step)
	if snapshot.RunID != "" {
		name = fmt.Sprintf("snapshot_%s_%d.json", snapshot.RunID, snapshot.Step)
	}
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
		return nil, fmt.Errorf("snapshot version %d, want %d", snapshot.Version, SnapshotVersion)
	}

	return &snapshot, nil
}
