package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrTargetBeforeCycle is returned when projecting to a step that
	// precedes the cycle start.
	ErrTargetBeforeCycle = errors.New("engine: target precedes cycle start")

	// ErrInvalidCycle is returned for a non-positive cycle length or a cycle
	// the history does not cover.
	ErrInvalidCycle = errors.New("engine: invalid cycle")
)

// Cycle is a detected period: the state at Start+Length equals the state
// at Start, and so every step from Start on repeats with period Length.
type Cycle struct {
	Start  int
	Length int
}

// Offset returns how far into the cycle target lands.
// Requires Length > 0 and target >= Start.
func (c Cycle) Offset(target int) int {
	return (target - c.Start) % c.Length
}

// Equivalent returns the earliest step whose state equals the state at
// target. Steps before the cycle are their own equivalent.
func (c Cycle) Equivalent(target int) int {
	if c.Length < 1 || target < c.Start {
		return target
	}
	return c.Start + c.Offset(target)
}

// FastForward returns the load at target by reading the history entry at
// the equivalent step inside the cycle.
func FastForward(c Cycle, h *History, target int) (int, error) {
	if c.Length < 1 || c.Start < 0 {
		return 0, fmt.Errorf("%w: start %d length %d", ErrInvalidCycle, c.Start, c.Length)
	}
	if target < c.Start {
		return 0, fmt.Errorf("%w: target %d, start %d", ErrTargetBeforeCycle, target, c.Start)
	}
	step := c.Equivalent(target)
	e, ok := h.At(step)
	if !ok {
		return 0, fmt.Errorf("%w: step %d not in history of %d", ErrInvalidCycle, step, h.Len())
	}
	return e.Load, nil
}
