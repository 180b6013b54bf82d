package telemetry

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"time"
)

func TestPerfCollector_BasicTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	// Simulate a few steps
	for i := 0; i < 5; i++ {
		pc.StartStep()
		pc.StartPhase(PhaseSpin)
		time.Sleep(100 * time.Microsecond)
		pc.StartPhase(PhaseFingerprint)
		time.Sleep(200 * time.Microsecond)
		pc.EndStep()
	}

	stats := pc.Stats()

	if stats.AvgStepDuration <= 0 {
		t.Error("expected positive average step duration")
	}
	if stats.TotalSteps != 5 {
		t.Errorf("TotalSteps = %d, want 5", stats.TotalSteps)
	}
	if _, ok := stats.PhaseAvg[PhaseSpin]; !ok {
		t.Error("expected spin phase to be tracked")
	}
	if _, ok := stats.PhaseAvg[PhaseFingerprint]; !ok {
		t.Error("expected fingerprint phase to be tracked")
	}
	if stats.MinStepDuration > stats.MaxStepDuration {
		t.Errorf("min %v > max %v", stats.MinStepDuration, stats.MaxStepDuration)
	}
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	pc := NewPerfCollector(5) // Small window

	for i := 0; i < 10; i++ {
		pc.StartStep()
		pc.StartPhase(PhaseSpin)
		time.Sleep(10 * time.Microsecond)
		pc.EndStep()
	}

	stats := pc.Stats()

	if stats.AvgStepDuration <= 0 {
		t.Error("expected positive average step duration after window filled")
	}
	if stats.StepsPerSecond <= 0 {
		t.Error("expected positive steps per second")
	}
	// Total counts every step, not just the window.
	if stats.TotalSteps != 10 {
		t.Errorf("TotalSteps = %d, want 10", stats.TotalSteps)
	}
}

func TestPerfCollector_PhasePercentages(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartStep()
		pc.StartPhase(PhaseScore)
		time.Sleep(10 * time.Microsecond)
		pc.StartPhase(PhaseHistory)
		time.Sleep(2 * time.Millisecond)
		pc.EndStep()
	}

	stats := pc.Stats()

	if stats.PhasePct[PhaseHistory] <= stats.PhasePct[PhaseScore] {
		t.Errorf("expected history (%v%%) > score (%v%%)", stats.PhasePct[PhaseHistory], stats.PhasePct[PhaseScore])
	}

	row := stats.ToCSV("run-1")
	if row.RunID != "run-1" || row.TotalSteps != 5 {
		t.Errorf("ToCSV = %+v", row)
	}
	if row.HistoryPct != stats.PhasePct[PhaseHistory] {
		t.Errorf("HistoryPct = %v, want %v", row.HistoryPct, stats.PhasePct[PhaseHistory])
	}
}

func TestPerfCollector_EmptyStats(t *testing.T) {
	pc := NewPerfCollector(10)

	stats := pc.Stats()

	if stats.AvgStepDuration != 0 {
		t.Error("expected zero avg step duration for empty collector")
	}
	if stats.PhaseAvg == nil {
		t.Error("expected non-nil PhaseAvg map")
	}
	if stats.PhasePct == nil {
		t.Error("expected non-nil PhasePct map")
	}
}

func TestPerfCollector_Nil(t *testing.T) {
	var pc *PerfCollector

	// Disabled collectors must be safe to drive.
	pc.StartStep()
	pc.StartPhase(PhaseSpin)
	pc.EndStep()

	if stats := pc.Stats(); stats.TotalSteps != 0 {
		t.Errorf("TotalSteps = %d, want 0", stats.TotalSteps)
	}
}

func TestPerfStats_LogStats(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	stats := PerfStats{
		AvgStepDuration: 200 * time.Microsecond,
		MaxStepDuration: 300 * time.Microsecond,
		StepsPerSecond:  5000,
		TotalSteps:      12,
		PhasePct:        map[string]float64{PhaseSpin: 80.26, PhaseScore: 0.05},
	}
	stats.LogStats(logger, "run-1")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if line["msg"] != "perf" || line["level"] != "DEBUG" {
		t.Errorf("msg/level = %v/%v, want perf/DEBUG", line["msg"], line["level"])
	}
	if line["run_id"] != "run-1" || line["total_steps"] != float64(12) {
		t.Errorf("run_id/total_steps = %v/%v", line["run_id"], line["total_steps"])
	}
	if line["avg_step_us"] != float64(200) {
		t.Errorf("avg_step_us = %v, want 200", line["avg_step_us"])
	}
	if line["spin_pct"] != 80.2 {
		t.Errorf("spin_pct = %v, want 80.2", line["spin_pct"])
	}
	// Phases under 0.1% are left out.
	if _, ok := line["score_pct"]; ok {
		t.Error("score_pct should be omitted")
	}
}

func TestPerfStats_LogStatsFiltered(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	PerfStats{TotalSteps: 1}.LogStats(logger, "run-2")
	if buf.Len() != 0 {
		t.Errorf("debug perf line written at info level: %s", buf.String())
	}
}
