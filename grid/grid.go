package grid

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Cell is the content of one grid position.
type Cell uint8

const (
	Empty   Cell = iota // nothing here
	Movable             // a round rock, slides when tilted
	Fixed               // a cube rock, never moves
)

// Valid reports whether c is one of the three cell kinds.
func (c Cell) Valid() bool {
	return c <= Fixed
}

func (c Cell) String() string {
	switch c {
	case Empty:
		return "empty"
	case Movable:
		return "movable"
	case Fixed:
		return "fixed"
	}
	return fmt.Sprintf("Cell(%d)", uint8(c))
}

// Symbols maps each cell kind to the rune used in textual layouts.
type Symbols struct {
	Empty   rune
	Movable rune
	Fixed   rune
}

// DefaultSymbols returns the puzzle notation: '.', 'O' and '#'.
func DefaultSymbols() Symbols {
	return Symbols{Empty: '.', Movable: 'O', Fixed: '#'}
}

// Validate rejects tables where two kinds share a rune.
func (s Symbols) Validate() error {
	if s.Empty == s.Movable || s.Empty == s.Fixed || s.Movable == s.Fixed {
		return fmt.Errorf("grid: symbols must be distinct, got %q %q %q", s.Empty, s.Movable, s.Fixed)
	}
	return nil
}

// Cell returns the kind for r, or false if r is not in the table.
func (s Symbols) Cell(r rune) (Cell, bool) {
	switch r {
	case s.Empty:
		return Empty, true
	case s.Movable:
		return Movable, true
	case s.Fixed:
		return Fixed, true
	}
	return 0, false
}

// TrimPadding removes trailing whitespace from line, keeping any rune that
// is one of the symbols.
func (s Symbols) TrimPadding(line string) string {
	return strings.TrimRightFunc(line, func(r rune) bool {
		_, isSymbol := s.Cell(r)
		return unicode.IsSpace(r) && !isSymbol
	})
}

// Rune returns the rune for c.
func (s Symbols) Rune(c Cell) rune {
	switch c {
	case Movable:
		return s.Movable
	case Fixed:
		return s.Fixed
	}
	return s.Empty
}

// Grid is a rows×cols buffer of cells stored row-major. Dimensions never
// change after construction; only the compactor mutates cell contents.
type Grid struct {
	rows, cols int
	cells      []Cell
}

// New returns an all-empty grid.
func New(rows, cols int) (*Grid, error) {
	if rows < 1 || cols < 1 {
		return nil, ErrEmptyGrid
	}
	return &Grid{rows: rows, cols: cols, cells: make([]Cell, rows*cols)}, nil
}

// Parse builds a Grid from a newline-separated layout.
func Parse(text string, sym Symbols) (*Grid, error) {
	return FromLines(strings.Split(text, "\n"), sym)
}

// FromLines builds a Grid from one string per row. Carriage returns and
// trailing blank lines are ignored; every other line must have the same
// rune count and contain only the three symbols.
func FromLines(lines []string, sym Symbols) (*Grid, error) {
	if err := sym.Validate(); err != nil {
		return nil, err
	}

	rows := make([]string, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, strings.TrimRight(l, "\r"))
	}
	for len(rows) > 0 && sym.TrimPadding(rows[len(rows)-1]) == "" {
		rows = rows[:len(rows)-1]
	}
	if len(rows) == 0 {
		return nil, &MalformedGridError{Reason: "no rows"}
	}

	cols := utf8.RuneCountInString(rows[0])
	g := &Grid{rows: len(rows), cols: cols, cells: make([]Cell, 0, len(rows)*cols)}
	for i, row := range rows {
		n := utf8.RuneCountInString(row)
		if n == 0 {
			return nil, &MalformedGridError{Line: i + 1, Reason: "empty row"}
		}
		if n != cols {
			return nil, &MalformedGridError{
				Line:   i + 1,
				Reason: fmt.Sprintf("row has %d cells, want %d", n, cols),
			}
		}
		col := 0
		for _, r := range row {
			col++
			c, ok := sym.Cell(r)
			if !ok {
				return nil, &MalformedGridError{Line: i + 1, Column: col, Rune: r, Reason: "unrecognised cell symbol"}
			}
			g.cells = append(g.cells, c)
		}
	}
	return g, nil
}

// Dimensions returns (rows, cols).
func (g *Grid) Dimensions() (rows, cols int) {
	return g.rows, g.cols
}

// InBounds reports whether (row, col) lies inside the grid.
func (g *Grid) InBounds(row, col int) bool {
	return row >= 0 && row < g.rows && col >= 0 && col < g.cols
}

func (g *Grid) index(row, col int) int {
	if !g.InBounds(row, col) {
		panic(fmt.Sprintf("grid: (%d,%d) out of range %dx%d", row, col, g.rows, g.cols))
	}
	return row*g.cols + col
}

// Get returns the cell at (row, col). It panics when out of range.
func (g *Grid) Get(row, col int) Cell {
	return g.cells[g.index(row, col)]
}

// Set stores c at (row, col). It panics when out of range or c is not a
// valid kind.
func (g *Grid) Set(row, col int, c Cell) {
	if !c.Valid() {
		panic(fmt.Sprintf("grid: invalid cell kind %d", uint8(c)))
	}
	g.cells[g.index(row, col)] = c
}

// Cells exposes the row-major buffer. Callers must not modify it.
func (g *Grid) Cells() []Cell {
	return g.cells
}

// Count returns how many cells hold kind c.
func (g *Grid) Count(c Cell) int {
	n := 0
	for _, v := range g.cells {
		if v == c {
			n++
		}
	}
	return n
}

// Clone returns a deep copy.
func (g *Grid) Clone() *Grid {
	cells := make([]Cell, len(g.cells))
	copy(cells, g.cells)
	return &Grid{rows: g.rows, cols: g.cols, cells: cells}
}

// Equal reports whether o has the same dimensions and cell layout.
func (g *Grid) Equal(o *Grid) bool {
	if o == nil || g.rows != o.rows || g.cols != o.cols {
		return false
	}
	for i, c := range g.cells {
		if o.cells[i] != c {
			return false
		}
	}
	return true
}

// Lines renders each row with sym.
func (g *Grid) Lines(sym Symbols) []string {
	out := make([]string, g.rows)
	var b strings.Builder
	for r := 0; r < g.rows; r++ {
		b.Reset()
		for _, c := range g.cells[r*g.cols : (r+1)*g.cols] {
			b.WriteRune(sym.Rune(c))
		}
		out[r] = b.String()
	}
	return out
}

// Format renders the grid with sym, one row per line, no trailing newline.
func (g *Grid) Format(sym Symbols) string {
	return strings.Join(g.Lines(sym), "\n")
}

func (g *Grid) String() string {
	return g.Format(DefaultSymbols())
}
