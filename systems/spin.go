package systems

import (
	"errors"
	"fmt"

	"github.com/pthm-cable/tilt/grid"
)

// ErrInvalidCycleOrder indicates a spin order that is not a permutation of
// the four directions.
var ErrInvalidCycleOrder = errors.New("systems: spin cycle must tilt each direction exactly once")

// DefaultOrder is north, west, south, east.
var DefaultOrder = []grid.Direction{grid.North, grid.West, grid.South, grid.East}

// SpinCycle is one full step: four tilts in a fixed order.
type SpinCycle struct {
	order     [4]grid.Direction
	compactor *Compactor
}

// NewSpinCycle validates order and returns a SpinCycle that always applies
// it in the same sequence.
func NewSpinCycle(order []grid.Direction) (*SpinCycle, error) {
	if len(order) != 4 {
		return nil, fmt.Errorf("%w: got %d directions", ErrInvalidCycleOrder, len(order))
	}
	s := &SpinCycle{compactor: NewCompactor()}
	var seen [4]bool
	for i, d := range order {
		if !d.Valid() {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCycleOrder, d)
		}
		if seen[d] {
			return nil, fmt.Errorf("%w: %v repeated", ErrInvalidCycleOrder, d)
		}
		seen[d] = true
		s.order[i] = d
	}
	return s, nil
}

// Order returns a copy of the tilt sequence.
func (s *SpinCycle) Order() []grid.Direction {
	out := make([]grid.Direction, len(s.order))
	copy(out, s.order[:])
	return out
}

// Apply runs the four tilts on g in place and returns g.
func (s *SpinCycle) Apply(g *grid.Grid) *grid.Grid {
	for _, d := range s.order {
		s.compactor.Compact(g, d)
	}
	return g
}

// ApplyChecked is Apply with CheckCompaction run after every tilt.
func (s *SpinCycle) ApplyChecked(g *grid.Grid) (*grid.Grid, error) {
	for _, d := range s.order {
		before := g.Clone()
		s.compactor.Compact(g, d)
		if err := CheckCompaction(before, g, d); err != nil {
			return g, err
		}
	}
	return g, nil
}
