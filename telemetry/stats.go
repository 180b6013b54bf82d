// Package telemetry provides run statistics, step traces, perf timing,
// state snapshots and batch summaries for the tilt engine.
package telemetry

import (
	"log/slog"

	"github.com/google/uuid"
)

// Outcome labels used in RunStats.
const (
	OutcomeDirect      = "direct"
	OutcomeAccelerated = "accelerated"
)

// NewRunID returns a fresh identifier that ties a run's stats, trace rows
// and snapshot together.
func NewRunID() string {
	return uuid.NewString()
}

// RunStats holds the summary of one engine run.
type RunStats struct {
	RunID  string `csv:"run_id"`
	Source string `csv:"source"`

	// Grid shape
	Rows      int `csv:"rows"`
	Cols      int `csv:"cols"`
	Particles int `csv:"particles"`

	// Step accounting
	Target    int    `csv:"target"`
	Simulated int    `csv:"simulated"`
	Outcome   string `csv:"outcome"`

	// Cycle found (zero when Outcome is direct)
	CycleStart  int `csv:"cycle_start"`
	CycleLength int `csv:"cycle_length"`

	Load        int     `csv:"load"`
	Fingerprint string  `csv:"fingerprint"`
	ElapsedMS   float64 `csv:"elapsed_ms"`
}

// Accelerated reports whether the run finished by projecting through a cycle.
func (s RunStats) Accelerated() bool {
	return s.Outcome == OutcomeAccelerated
}

// LogValue implements slog.LogValuer for structured logging.
func (s RunStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("run_id", s.RunID),
		slog.String("source", s.Source),
		slog.Int("rows", s.Rows),
		slog.Int("cols", s.Cols),
		slog.Int("particles", s.Particles),
		slog.Int("target", s.Target),
		slog.Int("simulated", s.Simulated),
		slog.String("outcome", s.Outcome),
		slog.Int("cycle_start", s.CycleStart),
		slog.Int("cycle_length", s.CycleLength),
		slog.Int("load", s.Load),
		slog.String("fingerprint", s.Fingerprint),
		slog.Float64("elapsed_ms", s.ElapsedMS),
	)
}

// LogStats logs the run stats using slog.
func (s RunStats) LogStats() {
	slog.Info("run", "stats", s)
}

// StepRecord is one row of the per-step trace. FirstSeen is the earlier step
// with the same fingerprint, or -1 when the state is new.
type StepRecord struct {
	RunID     string `csv:"run_id"`
	Step      int    `csv:"step"`
	Load      int    `csv:"load"`
	Digest    string `csv:"digest"`
	FirstSeen int    `csv:"first_seen"`
}
