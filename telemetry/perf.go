package telemetry

import (
	"log/slog"
	"time"
)

// Phase names for one engine step.
const (
	PhaseSpin        = "spin"
	PhaseScore       = "score"
	PhaseFingerprint = "fingerprint"
	PhaseHistory     = "history"
)

// PerfSample holds timing data for a single step.
type PerfSample struct {
	StepDuration time.Duration
	Phases       map[string]time.Duration
}

// PerfCollector tracks performance metrics over a rolling window.
// It belongs to a single run and is not safe for concurrent use.
type PerfCollector struct {
	windowSize    int
	samples       []PerfSample
	writeIndex    int
	sampleCount   int
	totalSteps    int
	currentPhases map[string]time.Duration
	stepStart     time.Time
	phaseStart    time.Time
	lastPhase     string
}

// NewPerfCollector creates a new performance collector.
// windowSize: number of steps to average over.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 64
	}
	return &PerfCollector{
		windowSize:    windowSize,
		samples:       make([]PerfSample, windowSize),
		currentPhases: make(map[string]time.Duration),
	}
}

// StartStep begins timing a new engine step.
func (p *PerfCollector) StartStep() {
	if p == nil {
		return
	}
	p.stepStart = time.Now()
	p.currentPhases = make(map[string]time.Duration, 4)
	p.lastPhase = ""
}

// StartPhase begins timing a specific phase, ending the previous one.
func (p *PerfCollector) StartPhase(phase string) {
	if p == nil {
		return
	}
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}
	p.phaseStart = now
	p.lastPhase = phase
}

// EndStep finishes timing the current step and records the sample.
func (p *PerfCollector) EndStep() {
	if p == nil {
		return
	}
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}

	p.samples[p.writeIndex] = PerfSample{
		StepDuration: now.Sub(p.stepStart),
		Phases:       p.currentPhases,
	}
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
	p.totalSteps++
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	// Step timing
	AvgStepDuration time.Duration
	MinStepDuration time.Duration
	MaxStepDuration time.Duration

	// Phase breakdown (average durations)
	PhaseAvg map[string]time.Duration

	// Phase percentages of total step time
	PhasePct map[string]float64

	// Throughput
	StepsPerSecond float64
	TotalSteps     int
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	if p == nil || p.sampleCount == 0 {
		return PerfStats{
			PhaseAvg: make(map[string]time.Duration),
			PhasePct: make(map[string]float64),
		}
	}

	var totalStep time.Duration
	var minStep, maxStep time.Duration
	phaseSum := make(map[string]time.Duration)

	for i := 0; i < p.sampleCount; i++ {
		s := p.samples[i]
		totalStep += s.StepDuration

		if i == 0 || s.StepDuration < minStep {
			minStep = s.StepDuration
		}
		if s.StepDuration > maxStep {
			maxStep = s.StepDuration
		}

		for phase, dur := range s.Phases {
			phaseSum[phase] += dur
		}
	}

	avgStep := totalStep / time.Duration(p.sampleCount)

	phaseAvg := make(map[string]time.Duration)
	phasePct := make(map[string]float64)
	for phase, sum := range phaseSum {
		phaseAvg[phase] = sum / time.Duration(p.sampleCount)
		if avgStep > 0 {
			phasePct[phase] = float64(phaseAvg[phase]) / float64(avgStep) * 100
		}
	}

	var stepsPerSec float64
	if avgStep > 0 {
		stepsPerSec = float64(time.Second) / float64(avgStep)
	}

	return PerfStats{
		AvgStepDuration: avgStep,
		MinStepDuration: minStep,
		MaxStepDuration: maxStep,
		PhaseAvg:        phaseAvg,
		PhasePct:        phasePct,
		StepsPerSecond:  stepsPerSec,
		TotalSteps:      p.totalSteps,
	}
}

// LogStats logs performance statistics for a run at debug level.
// A nil logger means slog.Default().
func (s PerfStats) LogStats(logger *slog.Logger, runID string) {
	if logger == nil {
		logger = slog.Default()
	}
	attrs := []any{
		"run_id", runID,
		"avg_step_us", s.AvgStepDuration.Microseconds(),
		"min_step_us", s.MinStepDuration.Microseconds(),
		"max_step_us", s.MaxStepDuration.Microseconds(),
		"steps_per_sec", int(s.StepsPerSecond),
		"total_steps", s.TotalSteps,
	}

	for _, phase := range []string{PhaseSpin, PhaseScore, PhaseFingerprint, PhaseHistory} {
		if pct, ok := s.PhasePct[phase]; ok && pct > 0.1 {
			attrs = append(attrs, phase+"_pct", float64(int(pct*10))/10)
		}
	}

	logger.Debug("perf", attrs...)
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_step_us", s.AvgStepDuration.Microseconds()),
		slog.Int64("min_step_us", s.MinStepDuration.Microseconds()),
		slog.Int64("max_step_us", s.MaxStepDuration.Microseconds()),
		slog.Float64("steps_per_sec", s.StepsPerSecond),
		slog.Int("total_steps", s.TotalSteps),
	}

	for phase, pct := range s.PhasePct {
		attrs = append(attrs, slog.Float64(phase+"_pct", pct))
	}

	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is a flat struct for CSV export of performance stats.
type PerfStatsCSV struct {
	RunID          string  `csv:"run_id"`
	AvgStepUS      int64   `csv:"avg_step_us"`
	MinStepUS      int64   `csv:"min_step_us"`
	MaxStepUS      int64   `csv:"max_step_us"`
	StepsPerSec    float64 `csv:"steps_per_sec"`
	TotalSteps     int     `csv:"total_steps"`
	SpinPct        float64 `csv:"spin_pct"`
	ScorePct       float64 `csv:"score_pct"`
	FingerprintPct float64 `csv:"fingerprint_pct"`
	HistoryPct     float64 `csv:"history_pct"`
}

// ToCSV converts PerfStats to a flat CSV-friendly struct.
func (s PerfStats) ToCSV(runID string) PerfStatsCSV {
	return PerfStatsCSV{
		RunID:          runID,
		AvgStepUS:      s.AvgStepDuration.Microseconds(),
		MinStepUS:      s.MinStepDuration.Microseconds(),
		MaxStepUS:      s.MaxStepDuration.Microseconds(),
		StepsPerSec:    s.StepsPerSecond,
		TotalSteps:     s.TotalSteps,
		SpinPct:        s.PhasePct[PhaseSpin],
		ScorePct:       s.PhasePct[PhaseScore],
		FingerprintPct: s.PhasePct[PhaseFingerprint],
		HistoryPct:     s.PhasePct[PhaseHistory],
	}
}
