package grid

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyGrid indicates a grid with no rows or no columns.
	ErrEmptyGrid = errors.New("grid: grid must have at least one row and one column")
	// ErrMalformedGrid is wrapped by every MalformedGridError.
	ErrMalformedGrid = errors.New("grid: malformed layout")
	// ErrUnknownDirection indicates a direction name that is not north, south, west or east.
	ErrUnknownDirection = errors.New("grid: unknown direction")
)

// MalformedGridError describes why a textual layout could not become a Grid.
// Line and Column are 1-based; Column and Rune are zero when the problem is
// the shape of a whole line.
type MalformedGridError struct {
	Line   int
	Column int
	Rune   rune
	Reason string
}

func (e *MalformedGridError) Error() string {
	if e.Column > 0 {
		return fmt.Sprintf("grid: malformed layout at line %d column %d (%q): %s", e.Line, e.Column, e.Rune, e.Reason)
	}
	if e.Line > 0 {
		return fmt.Sprintf("grid: malformed layout at line %d: %s", e.Line, e.Reason)
	}
	return "grid: malformed layout: " + e.Reason
}

// Unwrap lets errors.Is match ErrMalformedGrid.
func (e *MalformedGridError) Unwrap() error {
	return ErrMalformedGrid
}
