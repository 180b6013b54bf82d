package systems

import "github.com/pthm-cable/tilt/grid"

// LoadScorer reduces a grid to a single weighted sum. Each cell adds
// Weights[kind] times its distance from the edge opposite Edge, counted so
// that the row or column touching Edge is worth the full span and the far
// one is worth 1.
type LoadScorer struct {
	Edge    grid.Direction
	Weights map[grid.Cell]int
}

// DefaultLoadScorer scores movable cells against the north edge.
func DefaultLoadScorer() LoadScorer {
	return LoadScorer{
		Edge:    grid.North,
		Weights: map[grid.Cell]int{grid.Movable: 1},
	}
}

// Score returns the load of g. It does not modify g.
func (s LoadScorer) Score(g *grid.Grid) int {
	rows, cols := g.Dimensions()
	var weights [3]int
	for kind, w := range s.Weights {
		if kind.Valid() {
			weights[kind] = w
		}
	}

	total := 0
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			w := weights[g.Get(r, c)]
			if w == 0 {
				continue
			}
			total += w * s.distance(r, c, rows, cols)
		}
	}
	return total
}

func (s LoadScorer) distance(r, c, rows, cols int) int {
	switch s.Edge {
	case grid.South:
		return r + 1
	case grid.West:
		return cols - c
	case grid.East:
		return c + 1
	default:
		return rows - r
	}
}
