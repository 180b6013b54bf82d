// Package engine runs spin cycles over a grid until a target step, using
// cycle detection to skip ahead when the target is far away.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pthm-cable/tilt/config"
	"github.com/pthm-cable/tilt/grid"
	"github.com/pthm-cable/tilt/systems"
	"github.com/pthm-cable/tilt/telemetry"
)

var (
	// ErrNegativeTarget is returned for a target or step count below zero.
	ErrNegativeTarget = errors.New("engine: target must be >= 0")

	// ErrNoCycleFound is returned when the direct-step budget runs out
	// before the target is reached and no state has repeated.
	ErrNoCycleFound = errors.New("engine: no repeated state within step budget")
)

// Engine evaluates grids under one configuration. Runs do not share
// mutable state, so an Engine may be used from several goroutines.
type Engine struct {
	symbols grid.Symbols
	order   []grid.Direction
	canon   systems.Canonicalizer
	scorer  systems.LoadScorer

	defaultSteps int
	maxDirect    int
	check        bool
	workers      int
	perfWindow   int
	logEvery     int

	logger *slog.Logger
	output *telemetry.OutputManager
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithOutput makes every run write its stats, perf and step trace to om.
func WithOutput(om *telemetry.OutputManager) Option {
	return func(e *Engine) { e.output = om }
}

// New builds an Engine from cfg. A nil cfg uses the embedded defaults.
func New(cfg *config.Config, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	order, err := grid.ParseDirections(cfg.Engine.CycleOrder)
	if err != nil {
		return nil, fmt.Errorf("engine: cycle order: %w", err)
	}
	// Validate the order once so runs cannot fail on it.
	if _, err := systems.NewSpinCycle(order); err != nil {
		return nil, err
	}

	canon, err := systems.NewCanonicalizer(cfg.Engine.Fingerprint)
	if err != nil {
		return nil, err
	}

	scorer, err := newScorer(cfg.Scoring)
	if err != nil {
		return nil, err
	}

	sym := grid.Symbols{
		Empty:   cfg.Derived.EmptyRune,
		Movable: cfg.Derived.MovableRune,
		Fixed:   cfg.Derived.FixedRune,
	}
	if err := sym.Validate(); err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	e := &Engine{
		symbols:      sym,
		order:        order,
		canon:        canon,
		scorer:       scorer,
		defaultSteps: cfg.Engine.DefaultSteps,
		maxDirect:    cfg.Engine.MaxDirectSteps,
		check:        cfg.Engine.CheckInvariants,
		workers:      cfg.Engine.Workers,
		perfWindow:   cfg.Telemetry.PerfWindow,
		logEvery:     cfg.Telemetry.LogEvery,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

func newScorer(sc config.ScoringConfig) (systems.LoadScorer, error) {
	edge, err := grid.ParseDirection(sc.Edge)
	if err != nil {
		return systems.LoadScorer{}, fmt.Errorf("engine: scoring edge: %w", err)
	}
	weights := make(map[grid.Cell]int, len(sc.Weights))
	for name, w := range sc.Weights {
		switch name {
		case "empty":
			weights[grid.Empty] = w
		case "movable":
			weights[grid.Movable] = w
		case "fixed":
			weights[grid.Fixed] = w
		default:
			return systems.LoadScorer{}, fmt.Errorf("engine: unknown weight %q", name)
		}
	}
	return systems.LoadScorer{Edge: edge, Weights: weights}, nil
}

// Symbols returns the layout symbols the engine parses and formats with.
func (e *Engine) Symbols() grid.Symbols { return e.symbols }

// DefaultSteps returns the configured target used when none is given.
func (e *Engine) DefaultSteps() int { return e.defaultSteps }

// Parse reads a layout with the engine's symbols.
func (e *Engine) Parse(layout string) (*grid.Grid, error) {
	return grid.Parse(layout, e.symbols)
}

// Score returns the load of g under the configured scorer.
func (e *Engine) Score(g *grid.Grid) int {
	return e.scorer.Score(g)
}

// Fingerprint returns the canonical form of g.
func (e *Engine) Fingerprint(g *grid.Grid) systems.Fingerprint {
	return e.canon.Fingerprint(g)
}

// spin applies one cycle, verifying every tilt when checks are enabled.
func (e *Engine) spin(s *systems.SpinCycle, g *grid.Grid) error {
	if !e.check {
		s.Apply(g)
		return nil
	}
	_, err := s.ApplyChecked(g)
	return err
}

func (e *Engine) newSpin() *systems.SpinCycle {
	// order was validated in New.
	s, _ := systems.NewSpinCycle(e.order)
	return s
}

// Run evaluates initial after target spin cycles. The input grid is not
// modified.
func (e *Engine) Run(initial *grid.Grid, target int) (Result, error) {
	return e.RunSource("", initial, target)
}

// RunSource is Run with a source label that is carried into the run's
// stats.
func (e *Engine) RunSource(source string, initial *grid.Grid, target int) (Result, error) {
	if target < 0 {
		return Result{}, fmt.Errorf("%w: got %d", ErrNegativeTarget, target)
	}

	start := time.Now()
	runID := telemetry.NewRunID()
	perf := telemetry.NewPerfCollector(e.perfWindow)
	spin := e.newSpin()

	g := initial.Clone()
	h := NewHistory()
	load := e.scorer.Score(g)
	fp := e.canon.Fingerprint(g)
	h.Append(fp, load)

	step := 0
	for step < target {
		if step >= e.maxDirect {
			return Result{}, fmt.Errorf("%w: %d steps", ErrNoCycleFound, step)
		}

		perf.StartStep()
		perf.StartPhase(telemetry.PhaseSpin)
		if err := e.spin(spin, g); err != nil {
			return Result{}, fmt.Errorf("engine: step %d: %w", step+1, err)
		}
		step++

		perf.StartPhase(telemetry.PhaseScore)
		load = e.scorer.Score(g)
		perf.StartPhase(telemetry.PhaseFingerprint)
		fp = e.canon.Fingerprint(g)

		perf.StartPhase(telemetry.PhaseHistory)
		if first, ok := h.Lookup(fp); ok {
			perf.EndStep()
			c := Cycle{Start: first, Length: step - first}
			repeat := Entry{Step: step, Fingerprint: fp, Load: load}
			res, err := e.accelerate(spin, g, h, c, target)
			if err != nil {
				return Result{}, err
			}
			res.RunID = runID
			res.Simulated += step
			res.Elapsed = time.Since(start)
			e.logger.Info("cycle detected",
				"run_id", runID,
				"start", c.Start,
				"length", c.Length,
				"target", target,
				"equivalent", c.Equivalent(target),
			)
			e.finish(source, res, h, &repeat, perf)
			return res, nil
		}
		h.Append(fp, load)
		perf.EndStep()

		if e.logEvery > 0 && step%e.logEvery == 0 {
			e.logger.Debug("progress", "run_id", runID, "step", step, "target", target, "load", load)
		}
	}

	res := Result{
		RunID:       runID,
		Grid:        g,
		Load:        load,
		Target:      target,
		Simulated:   step,
		Outcome:     OutcomeDirect,
		Fingerprint: fp,
		Elapsed:     time.Since(start),
	}
	e.finish(source, res, h, nil, perf)
	return res, nil
}

// accelerate projects the load through c and advances g, which holds the
// repeated state, to the state at target.
func (e *Engine) accelerate(spin *systems.SpinCycle, g *grid.Grid, h *History, c Cycle, target int) (Result, error) {
	load, err := FastForward(c, h, target)
	if err != nil {
		return Result{}, err
	}

	offset := c.Offset(target)
	for i := 0; i < offset; i++ {
		if err := e.spin(spin, g); err != nil {
			return Result{}, fmt.Errorf("engine: advancing into cycle: %w", err)
		}
	}

	fp := e.canon.Fingerprint(g)
	if e.check {
		want, _ := h.At(c.Equivalent(target))
		if got := e.scorer.Score(g); got != load || fp != want.Fingerprint {
			return Result{}, fmt.Errorf("%w: projected load %d, grid load %d", systems.ErrInvariantViolation, load, got)
		}
	}

	return Result{
		Grid:        g,
		Load:        load,
		Target:      target,
		Simulated:   offset,
		Outcome:     OutcomeAccelerated,
		Cycle:       c,
		Fingerprint: fp,
	}, nil
}

// finish logs a run and writes its telemetry. Output failures are logged,
// not returned.
func (e *Engine) finish(source string, res Result, h *History, repeat *Entry, perf *telemetry.PerfCollector) {
	stats := res.Stats(source)
	ps := perf.Stats()
	e.logger.Debug("run", "stats", stats)
	ps.LogStats(e.logger, res.RunID)

	if e.output == nil {
		return
	}
	if err := e.output.WriteSteps(h.Trace(res.RunID, repeat)); err != nil {
		e.logger.Error("failed to write steps", "run_id", res.RunID, "error", err)
	}
	if err := e.output.WriteRun(stats); err != nil {
		e.logger.Error("failed to write run", "run_id", res.RunID, "error", err)
	}
	if err := e.output.WritePerf(ps, res.RunID); err != nil {
		e.logger.Error("failed to write perf", "run_id", res.RunID, "error", err)
	}
}

// Evaluate parses layout and returns its load after target spin cycles.
func (e *Engine) Evaluate(layout string, target int) (int, error) {
	g, err := e.Parse(layout)
	if err != nil {
		return 0, fmt.Errorf("engine: %w", err)
	}
	res, err := e.Run(g, target)
	if err != nil {
		return 0, err
	}
	return res.Load, nil
}

// Simulate applies n spin cycles to g in place without cycle detection.
func (e *Engine) Simulate(g *grid.Grid, n int) (*grid.Grid, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrNegativeTarget, n)
	}
	spin := e.newSpin()
	for i := 0; i < n; i++ {
		if err := e.spin(spin, g); err != nil {
			return g, fmt.Errorf("engine: step %d: %w", i+1, err)
		}
		if e.logEvery > 0 && (i+1)%e.logEvery == 0 {
			e.logger.Debug("progress", "step", i+1, "target", n)
		}
	}
	return g, nil
}

// Tilt compacts g toward d in place and returns the resulting load.
// It panics if d is not a valid direction.
func (e *Engine) Tilt(g *grid.Grid, d grid.Direction) int {
	systems.NewCompactor().Compact(g, d)
	return e.scorer.Score(g)
}
