package telemetry

import (
	"math"
	"testing"
)

func TestQuantile(t *testing.T) {
	if got := Quantile(nil, 0.5); got != 0 {
		t.Errorf("Quantile(nil) = %v, want 0", got)
	}
	if got := Quantile([]float64{5}, 0.5); got != 5 {
		t.Errorf("single element = %v, want 5", got)
	}

	sorted := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	if got := Quantile(sorted, 0); got != 1 {
		t.Errorf("p0 = %v, want 1", got)
	}
	if got := Quantile(sorted, 1); got != 10 {
		t.Errorf("p100 = %v, want 10", got)
	}
	prev := math.Inf(-1)
	for _, p := range []float64{0.1, 0.25, 0.5, 0.75, 0.9} {
		q := Quantile(sorted, p)
		if q < prev || q < 1 || q > 10 {
			t.Errorf("Quantile(%v) = %v out of order or range", p, q)
		}
		prev = q
	}
}

func TestSummarize(t *testing.T) {
	runs := []RunStats{
		{Load: 64, Simulated: 10, Outcome: OutcomeAccelerated, CycleLength: 7},
		{Load: 136, Simulated: 4, Outcome: OutcomeDirect},
		{Load: 100, Simulated: 16, Outcome: OutcomeAccelerated, CycleLength: 9},
	}

	s := Summarize(runs, 1)

	if s.Runs != 3 || s.Failed != 1 || s.Accelerated != 2 {
		t.Errorf("counts = %d/%d/%d, want 3/1/2", s.Runs, s.Failed, s.Accelerated)
	}
	if math.Abs(s.LoadMean-100) > 1e-9 {
		t.Errorf("LoadMean = %v, want 100", s.LoadMean)
	}
	// Sample standard deviation of 64, 136, 100.
	if math.Abs(s.LoadStd-36) > 1e-9 {
		t.Errorf("LoadStd = %v, want 36", s.LoadStd)
	}
	if s.CycleLengthMean != 8 || s.CycleLengthMax != 9 {
		t.Errorf("cycle mean/max = %v/%d, want 8/9", s.CycleLengthMean, s.CycleLengthMax)
	}
	if s.SimulatedTotal != 30 || s.SimulatedMean != 10 {
		t.Errorf("simulated total/mean = %d/%v, want 30/10", s.SimulatedTotal, s.SimulatedMean)
	}
	if s.LoadP10 > s.LoadP50 || s.LoadP50 > s.LoadP90 {
		t.Errorf("quantiles out of order: %v %v %v", s.LoadP10, s.LoadP50, s.LoadP90)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil, 2)
	if s.Runs != 0 || s.Failed != 2 || s.LoadMean != 0 {
		t.Errorf("empty summary = %+v", s)
	}
}

func TestSummarizeSingle(t *testing.T) {
	s := Summarize([]RunStats{{Load: 42, Outcome: OutcomeDirect}}, 0)
	if s.LoadMean != 42 || s.LoadStd != 0 {
		t.Errorf("mean/std = %v/%v, want 42/0", s.LoadMean, s.LoadStd)
	}
	if s.CycleLengthMean != 0 {
		t.Errorf("CycleLengthMean = %v, want 0", s.CycleLengthMean)
	}
}
