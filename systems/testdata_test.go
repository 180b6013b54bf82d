package systems_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/tilt/grid"
)

// example is the sample platform from the puzzle statement.
const example = `O....#....
O.OO#....#
.....##...
OO.#O....O
.O.....O#.
O.#..O.#.#
..O..#O..O
.......O..
#....###..
#OO..#....`

func mustParse(t testing.TB, text string) *grid.Grid {
	t.Helper()
	g, err := grid.Parse(text, grid.DefaultSymbols())
	require.NoError(t, err)
	return g
}

// randomGrid fills a rows×cols grid with roughly 30% movable and 15% fixed
// cells from a seeded source.
func randomGrid(t testing.TB, rng *rand.Rand, rows, cols int) *grid.Grid {
	t.Helper()
	g, err := grid.New(rows, cols)
	require.NoError(t, err)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			switch p := rng.Float64(); {
			case p < 0.30:
				g.Set(r, c, grid.Movable)
			case p < 0.45:
				g.Set(r, c, grid.Fixed)
			}
		}
	}
	return g
}
