package telemetry

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestNewRunID(t *testing.T) {
	a, b := NewRunID(), NewRunID()
	if a == "" || b == "" {
		t.Fatal("expected non-empty run ids")
	}
	if a == b {
		t.Errorf("run ids collide: %q", a)
	}
	if len(a) != 36 {
		t.Errorf("run id %q is not a canonical uuid", a)
	}
}

func TestRunStatsAccelerated(t *testing.T) {
	if (RunStats{Outcome: OutcomeDirect}).Accelerated() {
		t.Error("direct run reported as accelerated")
	}
	if !(RunStats{Outcome: OutcomeAccelerated}).Accelerated() {
		t.Error("accelerated run not reported")
	}
}

func TestRunStatsLogValue(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	stats := RunStats{
		RunID:       "abc",
		Rows:        10,
		Cols:        10,
		Target:      1_000_000_000,
		Simulated:   10,
		Outcome:     OutcomeAccelerated,
		CycleStart:  3,
		CycleLength: 7,
		Load:        64,
	}
	logger.Info("run", "stats", stats)

	var line struct {
		Stats map[string]any `json:"stats"`
	}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if line.Stats["run_id"] != "abc" {
		t.Errorf("run_id = %v, want abc", line.Stats["run_id"])
	}
	if line.Stats["load"] != float64(64) {
		t.Errorf("load = %v, want 64", line.Stats["load"])
	}
	if line.Stats["cycle_length"] != float64(7) {
		t.Errorf("cycle_length = %v, want 7", line.Stats["cycle_length"])
	}
}
