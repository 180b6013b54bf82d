package telemetry

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/tilt/config"
)

// OutputManager handles structured run output with CSV logging.
// All methods are safe to call on a nil receiver (output disabled) and from
// concurrent batch workers.
type OutputManager struct {
	dir string

	mu        sync.Mutex
	stepsFile *os.File
	runsFile  *os.File
	perfFile  *os.File

	// Track if headers have been written
	stepsHeaderWritten bool
	runsHeaderWritten  bool
	perfHeaderWritten  bool
}

// NewOutputManager creates a new output manager and initializes the output directory.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}

	f, err := os.Create(filepath.Join(dir, "steps.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating steps.csv: %w", err)
	}
	om.stepsFile = f

	f, err = os.Create(filepath.Join(dir, "runs.csv"))
	if err != nil {
		om.stepsFile.Close()
		return nil, fmt.Errorf("creating runs.csv: %w", err)
	}
	om.runsFile = f

	f, err = os.Create(filepath.Join(dir, "perf.csv"))
	if err != nil {
		om.stepsFile.Close()
		om.runsFile.Close()
		return nil, fmt.Errorf("creating perf.csv: %w", err)
	}
	om.perfFile = f

	return om, nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// writeRecords marshals records to f, with headers only on the first call.
func writeRecords(f *os.File, headerWritten *bool, records any) error {
	if !*headerWritten {
		if err := gocsv.Marshal(records, f); err != nil {
			return err
		}
		*headerWritten = true
		return nil
	}
	return gocsv.MarshalWithoutHeaders(records, f)
}

// WriteSteps appends a run's step trace to steps.csv.
func (om *OutputManager) WriteSteps(records []StepRecord) error {
	if om == nil || len(records) == 0 {
		return nil
	}
	om.mu.Lock()
	defer om.mu.Unlock()

	if err := writeRecords(om.stepsFile, &om.stepsHeaderWritten, records); err != nil {
		return fmt.Errorf("writing steps: %w", err)
	}
	return nil
}

// WriteRun appends one run summary to runs.csv.
func (om *OutputManager) WriteRun(stats RunStats) error {
	if om == nil {
		return nil
	}
	om.mu.Lock()
	defer om.mu.Unlock()

	if err := writeRecords(om.runsFile, &om.runsHeaderWritten, []RunStats{stats}); err != nil {
		return fmt.Errorf("writing run: %w", err)
	}
	return nil
}

// WritePerf appends a run's performance stats to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, runID string) error {
	if om == nil {
		return nil
	}
	om.mu.Lock()
	defer om.mu.Unlock()

	if err := writeRecords(om.perfFile, &om.perfHeaderWritten, []PerfStatsCSV{stats.ToCSV(runID)}); err != nil {
		return fmt.Errorf("writing perf: %w", err)
	}
	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}
	om.mu.Lock()
	defer om.mu.Unlock()

	var firstErr error
	for _, f := range []*os.File{om.stepsFile, om.runsFile, om.perfFile} {
		if f == nil {
			continue
		}
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
