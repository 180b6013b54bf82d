// Package systems holds the per-step grid transforms: directional
// compaction, the four-pass spin cycle, state fingerprints and load scoring.
package systems

import (
	"fmt"

	"github.com/pthm-cable/tilt/grid"
)

// Compactor slides every movable cell toward one edge of a grid.
// It keeps two line buffers between calls, so one Compactor must not be
// shared between goroutines.
type Compactor struct {
	src []grid.Cell
	dst []grid.Cell
}

// NewCompactor returns a Compactor with empty scratch buffers.
func NewCompactor() *Compactor {
	return &Compactor{}
}

// Compact tilts g toward d in place and returns g.
//
// Each line parallel to the direction of travel is handled on its own. The
// line is read into src ordered from the target edge inward, settled into
// dst, and dst is written back. Fixed cells split a line into independent
// segments. Compact panics if d is not one of the four directions.
func (c *Compactor) Compact(g *grid.Grid, d grid.Direction) *grid.Grid {
	if !d.Valid() {
		panic(fmt.Sprintf("systems: invalid direction %d", uint8(d)))
	}
	rows, cols := g.Dimensions()
	lines, length := cols, rows
	if !d.Vertical() {
		lines, length = rows, cols
	}
	c.grow(length)
	src, dst := c.src[:length], c.dst[:length]

	for i := 0; i < lines; i++ {
		for k := 0; k < length; k++ {
			r, col := position(d, i, k, rows, cols)
			src[k] = g.Get(r, col)
		}
		SettleLine(dst, src)
		for k := 0; k < length; k++ {
			r, col := position(d, i, k, rows, cols)
			g.Set(r, col, dst[k])
		}
	}
	return g
}

func (c *Compactor) grow(n int) {
	if cap(c.src) < n {
		c.src = make([]grid.Cell, n)
		c.dst = make([]grid.Cell, n)
	}
}

// position maps line i, offset k from the target edge, to (row, col).
func position(d grid.Direction, i, k, rows, cols int) (int, int) {
	switch d {
	case grid.North:
		return k, i
	case grid.South:
		return rows - 1 - k, i
	case grid.West:
		return i, k
	default:
		return i, cols - 1 - k
	}
}

// SettleLine writes into dst the result of compacting src toward index 0.
// Cells are visited from index 0 outward so the particle nearest the edge
// settles first and later ones stack behind it. dst and src must have the
// same length and must not overlap.
func SettleLine(dst, src []grid.Cell) {
	next := 0
	for k := range dst {
		dst[k] = grid.Empty
	}
	for k, cell := range src {
		switch cell {
		case grid.Fixed:
			dst[k] = grid.Fixed
			next = k + 1
		case grid.Movable:
			dst[next] = grid.Movable
			next++
		}
	}
}
