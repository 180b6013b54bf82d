package engine_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/gocarina/gocsv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/tilt/config"
	"github.com/pthm-cable/tilt/engine"
	"github.com/pthm-cable/tilt/telemetry"
)

func TestRun_WritesTelemetry(t *testing.T) {
	dir := t.TempDir()
	om, err := telemetry.NewOutputManager(dir)
	require.NoError(t, err)

	e, err := engine.New(config.Default(),
		engine.WithLogger(slog.New(slog.DiscardHandler)),
		engine.WithOutput(om),
	)
	require.NoError(t, err)

	res, err := e.RunSource("example.txt", parse(t, e, example), 1_000_000_000)
	require.NoError(t, err)
	require.NoError(t, om.Close())

	data, err := os.ReadFile(filepath.Join(dir, "steps.csv"))
	require.NoError(t, err)
	var steps []telemetry.StepRecord
	require.NoError(t, gocsv.UnmarshalBytes(data, &steps))

	// Steps 0..9 plus the repeat at step 10.
	require.Len(t, steps, 11)
	for i, want := range exampleLoads {
		assert.Equal(t, want, steps[i].Load, "step %d", i)
		assert.Equal(t, -1, steps[i].FirstSeen)
	}
	assert.Equal(t, 10, steps[10].Step)
	assert.Equal(t, 3, steps[10].FirstSeen)
	assert.Equal(t, steps[3].Digest, steps[10].Digest)

	data, err = os.ReadFile(filepath.Join(dir, "runs.csv"))
	require.NoError(t, err)
	var runs []telemetry.RunStats
	require.NoError(t, gocsv.UnmarshalBytes(data, &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, res.RunID, runs[0].RunID)
	assert.Equal(t, "example.txt", runs[0].Source)
	assert.Equal(t, 64, runs[0].Load)
	assert.Equal(t, telemetry.OutcomeAccelerated, runs[0].Outcome)
	assert.Equal(t, 10, runs[0].Rows)
	assert.Equal(t, 18, runs[0].Particles)

	_, err = os.Stat(filepath.Join(dir, "perf.csv"))
	assert.NoError(t, err)
}
