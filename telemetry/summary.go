package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// BatchSummary aggregates the RunStats of a batch.
type BatchSummary struct {
	Runs        int
	Accelerated int
	Failed      int

	LoadMean float64
	LoadStd  float64
	LoadP10  float64
	LoadP50  float64
	LoadP90  float64

	CycleLengthMean float64
	CycleLengthMax  int

	SimulatedMean  float64
	SimulatedTotal int
}

// Quantile returns the p-quantile of sorted using linear interpolation.
// Returns 0 for an empty slice.
func Quantile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	return stat.Quantile(p, stat.LinInterp, sorted, nil)
}

// Summarize computes a BatchSummary. failed counts jobs that produced no stats.
func Summarize(runs []RunStats, failed int) BatchSummary {
	s := BatchSummary{Runs: len(runs), Failed: failed}
	if len(runs) == 0 {
		return s
	}

	loads := make([]float64, 0, len(runs))
	simulated := make([]float64, 0, len(runs))
	var cycles []float64
	for _, r := range runs {
		loads = append(loads, float64(r.Load))
		simulated = append(simulated, float64(r.Simulated))
		s.SimulatedTotal += r.Simulated
		if r.Accelerated() {
			s.Accelerated++
			cycles = append(cycles, float64(r.CycleLength))
			s.CycleLengthMax = max(s.CycleLengthMax, r.CycleLength)
		}
	}

	s.LoadMean, s.LoadStd = stat.MeanStdDev(loads, nil)
	if len(loads) < 2 {
		s.LoadStd = 0
	}
	sort.Float64s(loads)
	s.LoadP10 = Quantile(loads, 0.1)
	s.LoadP50 = Quantile(loads, 0.5)
	s.LoadP90 = Quantile(loads, 0.9)

	s.SimulatedMean = stat.Mean(simulated, nil)
	if len(cycles) > 0 {
		s.CycleLengthMean = stat.Mean(cycles, nil)
	}
	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s BatchSummary) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("runs", s.Runs),
		slog.Int("accelerated", s.Accelerated),
		slog.Int("failed", s.Failed),
		slog.Float64("load_mean", s.LoadMean),
		slog.Float64("load_std", s.LoadStd),
		slog.Float64("load_p10", s.LoadP10),
		slog.Float64("load_p50", s.LoadP50),
		slog.Float64("load_p90", s.LoadP90),
		slog.Float64("cycle_length_mean", s.CycleLengthMean),
		slog.Int("cycle_length_max", s.CycleLengthMax),
		slog.Float64("simulated_mean", s.SimulatedMean),
		slog.Int("simulated_total", s.SimulatedTotal),
	)
}
