package engine

import (
	"github.com/pthm-cable/tilt/systems"
	"github.com/pthm-cable/tilt/telemetry"
)

// Entry is the recorded state after Step spin cycles.
type Entry struct {
	Step        int
	Fingerprint systems.Fingerprint
	Load        int
}

// History is the step trace of one run. Entries are indexed by step, so
// entry 0 is the initial grid, and every fingerprint maps to the first
// step it was seen at.
type History struct {
	entries []Entry
	seen    map[systems.Fingerprint]int
}

// NewHistory returns an empty history.
func NewHistory() *History {
	return &History{seen: make(map[systems.Fingerprint]int)}
}

// Append records the next step and returns its index.
// The fingerprint must not have been recorded before.
func (h *History) Append(fp systems.Fingerprint, load int) int {
	step := len(h.entries)
	h.entries = append(h.entries, Entry{Step: step, Fingerprint: fp, Load: load})
	h.seen[fp] = step
	return step
}

// Lookup returns the step at which fp was first recorded.
func (h *History) Lookup(fp systems.Fingerprint) (int, bool) {
	step, ok := h.seen[fp]
	return step, ok
}

// At returns the entry for step.
func (h *History) At(step int) (Entry, bool) {
	if step < 0 || step >= len(h.entries) {
		return Entry{}, false
	}
	return h.entries[step], true
}

// Len returns the number of recorded steps.
func (h *History) Len() int {
	return len(h.entries)
}

// Loads returns the recorded load of every step in order.
func (h *History) Loads() []int {
	out := make([]int, len(h.entries))
	for i, e := range h.entries {
		out[i] = e.Load
	}
	return out
}

// Trace converts the history to step records. When repeat is non-nil it is
// appended as the final row, pointing back at its first occurrence.
func (h *History) Trace(runID string, repeat *Entry) []telemetry.StepRecord {
	out := make([]telemetry.StepRecord, 0, len(h.entries)+1)
	for _, e := range h.entries {
		out = append(out, telemetry.StepRecord{
			RunID:     runID,
			Step:      e.Step,
			Load:      e.Load,
			Digest:    e.Fingerprint.Digest(),
			FirstSeen: -1,
		})
	}
	if repeat != nil {
		first, _ := h.Lookup(repeat.Fingerprint)
		out = append(out, telemetry.StepRecord{
			RunID:     runID,
			Step:      repeat.Step,
			Load:      repeat.Load,
			Digest:    repeat.Fingerprint.Digest(),
			FirstSeen: first,
		})
	}
	return out
}
