package systems

import (
	"errors"
	"fmt"

	"github.com/pthm-cable/tilt/grid"
)

// ErrInvariantViolation is wrapped by every CheckCompaction failure. It
// always points at a compactor bug.
var ErrInvariantViolation = errors.New("systems: compaction invariant violated")

// CheckCompaction verifies that after is a legal result of tilting before
// toward d:
//   - dimensions match
//   - the movable count is unchanged
//   - every fixed cell is where it was, and no new fixed cell appeared
//   - each obstacle-bounded segment of a line keeps its movable count
//   - every movable cell is settled: the next cell toward the edge is the
//     boundary, a fixed cell or another movable cell
func CheckCompaction(before, after *grid.Grid, d grid.Direction) error {
	br, bc := before.Dimensions()
	ar, ac := after.Dimensions()
	if br != ar || bc != ac {
		return fmt.Errorf("%w: dimensions %dx%d became %dx%d", ErrInvariantViolation, br, bc, ar, ac)
	}
	if nb, na := before.Count(grid.Movable), after.Count(grid.Movable); nb != na {
		return fmt.Errorf("%w: movable count %d became %d", ErrInvariantViolation, nb, na)
	}

	if err := checkSegments(before, after, d); err != nil {
		return err
	}

	dr, dc := step(d)
	for r := 0; r < ar; r++ {
		for c := 0; c < ac; c++ {
			was, now := before.Get(r, c), after.Get(r, c)
			if (was == grid.Fixed) != (now == grid.Fixed) {
				return fmt.Errorf("%w: fixed cell changed at (%d,%d)", ErrInvariantViolation, r, c)
			}
			if now != grid.Movable {
				continue
			}
			nr, nc := r+dr, c+dc
			if after.InBounds(nr, nc) && after.Get(nr, nc) == grid.Empty {
				return fmt.Errorf("%w: movable cell at (%d,%d) not settled %v", ErrInvariantViolation, r, c, d)
			}
		}
	}
	return nil
}

// checkSegments compares movable counts between fixed cells along every
// line parallel to d. Segments are bounded by the fixed cells of before.
func checkSegments(before, after *grid.Grid, d grid.Direction) error {
	rows, cols := before.Dimensions()
	lines, length := cols, rows
	if !d.Vertical() {
		lines, length = rows, cols
	}
	for i := 0; i < lines; i++ {
		nb, na, from := 0, 0, 0
		for k := 0; k <= length; k++ {
			var r, c int
			if k < length {
				r, c = i, k
				if d.Vertical() {
					r, c = k, i
				}
			}
			if k == length || before.Get(r, c) == grid.Fixed {
				if nb != na {
					return fmt.Errorf("%w: line %d segment %d..%d held %d movable cells, now %d",
						ErrInvariantViolation, i, from, k-1, nb, na)
				}
				nb, na, from = 0, 0, k+1
				continue
			}
			if before.Get(r, c) == grid.Movable {
				nb++
			}
			if after.Get(r, c) == grid.Movable {
				na++
			}
		}
	}
	return nil
}

// step returns the unit (row, col) offset of one move toward d.
func step(d grid.Direction) (int, int) {
	switch d {
	case grid.North:
		return -1, 0
	case grid.South:
		return 1, 0
	case grid.West:
		return 0, -1
	default:
		return 0, 1
	}
}
