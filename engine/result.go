package engine

import (
	"time"

	"github.com/pthm-cable/tilt/grid"
	"github.com/pthm-cable/tilt/systems"
	"github.com/pthm-cable/tilt/telemetry"
)

// Outcome says how a run reached its target.
type Outcome uint8

const (
	// OutcomeDirect means every step up to the target was simulated.
	OutcomeDirect Outcome = iota
	// OutcomeAccelerated means a repeat was found and the target was
	// projected through the cycle.
	OutcomeAccelerated
)

func (o Outcome) String() string {
	if o == OutcomeAccelerated {
		return telemetry.OutcomeAccelerated
	}
	return telemetry.OutcomeDirect
}

// Result is the output of one run.
type Result struct {
	RunID string

	// Grid is the state at Target. It is owned by the caller.
	Grid *grid.Grid
	Load int

	Target int
	// Simulated counts the spin cycles actually applied.
	Simulated int
	Outcome   Outcome
	// Cycle is zero unless Outcome is OutcomeAccelerated.
	Cycle Cycle

	Fingerprint systems.Fingerprint
	Elapsed     time.Duration
}

// Stats flattens the result for logging and CSV output.
func (r Result) Stats(source string) telemetry.RunStats {
	s := telemetry.RunStats{
		RunID:       r.RunID,
		Source:      source,
		Target:      r.Target,
		Simulated:   r.Simulated,
		Outcome:     r.Outcome.String(),
		CycleStart:  r.Cycle.Start,
		CycleLength: r.Cycle.Length,
		Load:        r.Load,
		Fingerprint: r.Fingerprint.Digest(),
		ElapsedMS:   float64(r.Elapsed.Microseconds()) / 1000,
	}
	if r.Grid != nil {
		s.Rows, s.Cols = r.Grid.Dimensions()
		s.Particles = r.Grid.Count(grid.Movable)
	}
	return s
}
