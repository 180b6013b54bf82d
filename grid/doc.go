// Package grid holds the fixed-size cell buffer the tilt engine operates on.
//
// What:
//
//   - Grid is a rectangular, row-major buffer of Cells with immutable
//     dimensions. Each cell is Empty, Movable (a round rock) or Fixed
//     (a cube rock).
//   - Parse/FromLines build a Grid from text using a Symbols table; any
//     ragged row or unknown rune is a MalformedGridError.
//   - Direction names the four tilt directions.
//
// Complexity:
//
//   - Parse, Clone, Equal, Count, Format: O(rows×cols).
//   - Get, Set, InBounds: O(1).
//
// Errors:
//
//   - ErrEmptyGrid: a dimension is zero.
//   - ErrMalformedGrid: wrapped by every *MalformedGridError.
//   - ErrUnknownDirection: ParseDirection got an unrecognised name.
package grid
