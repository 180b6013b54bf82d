package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/tilt/systems"
)

// historyOf records loads as steps 0..len-1 with distinct fingerprints.
func historyOf(loads ...int) *History {
	h := NewHistory()
	for i, l := range loads {
		h.Append(systems.Fingerprint(fmt.Sprintf("s%d", i)), l)
	}
	return h
}

func TestHistory(t *testing.T) {
	h := NewHistory()
	assert.Equal(t, 0, h.Len())

	assert.Equal(t, 0, h.Append("a", 10))
	assert.Equal(t, 1, h.Append("b", 20))

	step, ok := h.Lookup("b")
	assert.True(t, ok)
	assert.Equal(t, 1, step)
	_, ok = h.Lookup("c")
	assert.False(t, ok)

	e, ok := h.At(0)
	require.True(t, ok)
	assert.Equal(t, Entry{Step: 0, Fingerprint: "a", Load: 10}, e)
	_, ok = h.At(2)
	assert.False(t, ok)
	_, ok = h.At(-1)
	assert.False(t, ok)

	assert.Equal(t, []int{10, 20}, h.Loads())
}

func TestHistoryTrace(t *testing.T) {
	h := historyOf(5, 6, 7)
	trace := h.Trace("run", &Entry{Step: 3, Fingerprint: "s1", Load: 6})

	require.Len(t, trace, 4)
	for i := 0; i < 3; i++ {
		assert.Equal(t, i, trace[i].Step)
		assert.Equal(t, -1, trace[i].FirstSeen)
		assert.Equal(t, "run", trace[i].RunID)
	}
	assert.Equal(t, 3, trace[3].Step)
	assert.Equal(t, 1, trace[3].FirstSeen)
	assert.Equal(t, trace[1].Digest, trace[3].Digest)

	assert.Len(t, h.Trace("run", nil), 3)
}

func TestCycleOffsetEquivalent(t *testing.T) {
	c := Cycle{Start: 3, Length: 7}

	assert.Equal(t, 0, c.Offset(3))
	assert.Equal(t, 0, c.Offset(10))
	assert.Equal(t, 3, c.Offset(1_000_000_000))

	assert.Equal(t, 6, c.Equivalent(1_000_000_000))
	assert.Equal(t, 2, c.Equivalent(2), "steps before the cycle map to themselves")
	assert.Equal(t, 9, c.Equivalent(9))
	assert.Equal(t, 3, c.Equivalent(10))
}

func TestFastForward(t *testing.T) {
	// Steps 0..9 of the sample platform; step 10 repeats step 3.
	h := historyOf(104, 87, 69, 69, 69, 65, 64, 65, 63, 68)
	c := Cycle{Start: 3, Length: 7}

	load, err := FastForward(c, h, 1_000_000_000)
	require.NoError(t, err)
	assert.Equal(t, 64, load)

	load, err = FastForward(c, h, 50)
	require.NoError(t, err)
	assert.Equal(t, 63, load)

	// load(t) == load(j + (t-j) mod L) for every t past the cycle start.
	for target := 3; target < 200; target++ {
		got, err := FastForward(c, h, target)
		require.NoError(t, err)
		e, _ := h.At(3 + (target-3)%7)
		assert.Equal(t, e.Load, got, "target %d", target)
	}
}

func TestFastForwardErrors(t *testing.T) {
	h := historyOf(1, 2, 3)

	_, err := FastForward(Cycle{Start: 1, Length: 2}, h, 0)
	assert.ErrorIs(t, err, ErrTargetBeforeCycle)

	_, err = FastForward(Cycle{Start: 0, Length: 0}, h, 5)
	assert.ErrorIs(t, err, ErrInvalidCycle)

	_, err = FastForward(Cycle{Start: -1, Length: 2}, h, 5)
	assert.ErrorIs(t, err, ErrInvalidCycle)

	// Cycle runs past the recorded history.
	_, err = FastForward(Cycle{Start: 2, Length: 5}, h, 6)
	assert.ErrorIs(t, err, ErrInvalidCycle)
}
