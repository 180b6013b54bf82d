package systems

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/cespare/xxhash/v2"

	"github.com/pthm-cable/tilt/grid"
)

// Fingerprint is a comparable encoding of a grid layout, usable as a map key.
type Fingerprint string

// Canonicalizer names for config and CLI.
const (
	CanonRaw     = "raw"
	CanonRLE     = "rle"
	CanonXXHash  = "xxhash"
	DefaultCanon = CanonRaw
)

// ErrUnknownCanonicalizer indicates a fingerprint strategy name that is not
// raw, rle or xxhash.
var ErrUnknownCanonicalizer = errors.New("systems: unknown fingerprint strategy")

// Canonicalizer turns a grid into a Fingerprint. Every implementation depends
// only on cell contents and runs in time linear in the cell count; they differ
// in key size, never in which states compare equal.
type Canonicalizer interface {
	Fingerprint(g *grid.Grid) Fingerprint
	Name() string
}

// NewCanonicalizer returns the strategy registered under name.
func NewCanonicalizer(name string) (Canonicalizer, error) {
	switch name {
	case CanonRaw, "":
		return RawCanonicalizer{}, nil
	case CanonRLE:
		return RunLengthCanonicalizer{}, nil
	case CanonXXHash:
		return HashCanonicalizer{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCanonicalizer, name)
}

// cellBytes copies the row-major cells into a byte slice.
func cellBytes(g *grid.Grid) []byte {
	cells := g.Cells()
	buf := make([]byte, len(cells))
	for i, c := range cells {
		buf[i] = byte(c)
	}
	return buf
}

// RawCanonicalizer uses the row-major cell bytes as the key.
type RawCanonicalizer struct{}

func (RawCanonicalizer) Name() string { return CanonRaw }

func (RawCanonicalizer) Fingerprint(g *grid.Grid) Fingerprint {
	return Fingerprint(cellBytes(g))
}

// RunLengthCanonicalizer encodes the flattened grid as (uvarint run length,
// cell byte) pairs. Grids dominated by long empty stretches give much shorter
// keys than RawCanonicalizer.
type RunLengthCanonicalizer struct{}

func (RunLengthCanonicalizer) Name() string { return CanonRLE }

func (RunLengthCanonicalizer) Fingerprint(g *grid.Grid) Fingerprint {
	cells := g.Cells()
	if len(cells) == 0 {
		return ""
	}
	buf := make([]byte, 0, 64)
	last, run := cells[0], uint64(0)
	for _, c := range cells {
		if c == last {
			run++
			continue
		}
		buf = binary.AppendUvarint(buf, run)
		buf = append(buf, byte(last))
		last, run = c, 1
	}
	buf = binary.AppendUvarint(buf, run)
	buf = append(buf, byte(last))
	return Fingerprint(buf)
}

// HashCanonicalizer keys on the 64-bit xxhash of the cell bytes. Distinct
// layouts collide only with negligible probability.
type HashCanonicalizer struct{}

func (HashCanonicalizer) Name() string { return CanonXXHash }

func (HashCanonicalizer) Fingerprint(g *grid.Grid) Fingerprint {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], xxhash.Sum64(cellBytes(g)))
	return Fingerprint(buf[:])
}

// Digest is a short printable form of any fingerprint for logs and traces.
func (f Fingerprint) Digest() string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(string(f)))
}
