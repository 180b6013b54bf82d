package grid

import (
	"fmt"
	"strings"
)

// Direction is the edge particles slide toward during a tilt.
type Direction uint8

const (
	North Direction = iota // toward row 0
	South                  // toward the last row
	West                   // toward column 0
	East                   // toward the last column
)

// Directions lists every direction once, in declaration order.
var Directions = [...]Direction{North, South, West, East}

func (d Direction) String() string {
	switch d {
	case North:
		return "north"
	case South:
		return "south"
	case West:
		return "west"
	case East:
		return "east"
	}
	return fmt.Sprintf("Direction(%d)", uint8(d))
}

// Vertical reports whether tilting in d moves particles along columns.
func (d Direction) Vertical() bool {
	return d == North || d == South
}

// Valid reports whether d is one of the four named directions.
func (d Direction) Valid() bool {
	return d <= East
}

// ParseDirection accepts the full lower-case name or its first letter,
// case-insensitively.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "north", "n":
		return North, nil
	case "south", "s":
		return South, nil
	case "west", "w":
		return West, nil
	case "east", "e":
		return East, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownDirection, s)
}

// ParseDirections parses each name in order.
func ParseDirections(names []string) ([]Direction, error) {
	out := make([]Direction, 0, len(names))
	for _, name := range names {
		d, err := ParseDirection(name)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}
