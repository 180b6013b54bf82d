package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pthm-cable/tilt/config"
	"github.com/pthm-cable/tilt/engine"
	"github.com/pthm-cable/tilt/grid"
	"github.com/pthm-cable/tilt/telemetry"
)

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:          "tilt",
		Short:        "Tilt a platform of rolling rocks and report the load",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var level slog.Level
			if err := level.UnmarshalText([]byte(opts.logLevel)); err != nil {
				return fmt.Errorf("invalid --log-level %q: %w", opts.logLevel, err)
			}
			// Logs go to stderr; stdout carries only answers.
			logger := slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			slog.SetDefault(logger)

			if err := config.Init(opts.configPath); err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to config.yaml (empty = use defaults)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "Log level: debug, info, warn, error")

	root.AddCommand(
		newRunCmd(),
		newOnceCmd(),
		newSimulateCmd(),
		newBatchCmd(),
	)
	return root
}

// readLayout reads an input file as lines with trailing padding removed.
// Whitespace that is one of the symbols is kept.
func readLayout(path string, sym grid.Symbols) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading input: %w", err)
	}
	lines := strings.Split(string(data), "\n")
	for i, line := range lines {
		lines[i] = sym.TrimPadding(line)
	}
	return strings.Join(lines, "\n"), nil
}

func newEngine(outputDir string) (*engine.Engine, *telemetry.OutputManager, error) {
	cfg := config.Cfg()
	om, err := telemetry.NewOutputManager(outputDir)
	if err != nil {
		return nil, nil, err
	}
	if err := om.WriteConfig(cfg); err != nil {
		om.Close()
		return nil, nil, err
	}
	e, err := engine.New(cfg, engine.WithLogger(slog.Default()), engine.WithOutput(om))
	if err != nil {
		om.Close()
		return nil, nil, err
	}
	return e, om, nil
}

func newRunCmd() *cobra.Command {
	var (
		steps       int
		outputDir   string
		snapshotDir string
	)
	cmd := &cobra.Command{
		Use:   "run <input>",
		Short: "Evaluate the load after many spin cycles using cycle detection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			e, om, err := newEngine(outputDir)
			if err != nil {
				return err
			}
			defer func() {
				if cerr := om.Close(); cerr != nil && err == nil {
					err = cerr
				}
			}()

			layout, err := readLayout(args[0], e.Symbols())
			if err != nil {
				return err
			}
			g, err := e.Parse(layout)
			if err != nil {
				return err
			}
			if steps < 0 {
				steps = e.DefaultSteps()
			}

			res, err := e.RunSource(filepath.Base(args[0]), g, steps)
			if err != nil {
				return err
			}
			res.Stats(filepath.Base(args[0])).LogStats()

			if snapshotDir != "" {
				snap := newSnapshot(e, res, filepath.Base(args[0]))
				path, err := telemetry.SaveSnapshot(snap, snapshotDir)
				if err != nil {
					return err
				}
				slog.Info("snapshot saved", "path", path, "step", res.Target)
			}

			fmt.Fprintln(cmd.OutOrStdout(), res.Load)
			return nil
		},
	}
	cmd.Flags().IntVar(&steps, "steps", -1, "Spin cycles to evaluate (negative = engine.default_steps)")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "Output directory for CSV logs and config snapshot")
	cmd.Flags().StringVar(&snapshotDir, "snapshot-dir", "", "Directory for the final state snapshot")
	return cmd
}

func newSnapshot(e *engine.Engine, res engine.Result, source string) *telemetry.Snapshot {
	sym := e.Symbols()
	return &telemetry.Snapshot{
		Version:     telemetry.SnapshotVersion,
		RunID:       res.RunID,
		Source:      source,
		Step:        res.Target,
		Load:        res.Load,
		Rows:        res.Grid.Lines(sym),
		Empty:       string(sym.Empty),
		Movable:     string(sym.Movable),
		Fixed:       string(sym.Fixed),
		CycleStart:  res.Cycle.Start,
		CycleLength: res.Cycle.Length,
	}
}

func newOnceCmd() *cobra.Command {
	var direction string
	cmd := &cobra.Command{
		Use:   "once <input>",
		Short: "Tilt once and print the load",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := grid.ParseDirection(direction)
			if err != nil {
				return err
			}
			e, err := engine.New(config.Cfg())
			if err != nil {
				return err
			}
			layout, err := readLayout(args[0], e.Symbols())
			if err != nil {
				return err
			}
			g, err := e.Parse(layout)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), e.Tilt(g, d))
			return nil
		},
	}
	cmd.Flags().StringVar(&direction, "direction", "north", "Tilt direction: north, south, west, east")
	return cmd
}

func newSimulateCmd() *cobra.Command {
	var (
		steps        int
		fromSnapshot string
		printGrid    bool
	)
	cmd := &cobra.Command{
		Use:   "simulate [input]",
		Short: "Apply spin cycles one by one without cycle detection",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (len(args) == 1) == (fromSnapshot != "") {
				return fmt.Errorf("simulate needs exactly one of <input> or --from-snapshot")
			}
			e, err := engine.New(config.Cfg())
			if err != nil {
				return err
			}

			var g *grid.Grid
			if fromSnapshot != "" {
				g, err = loadSnapshotGrid(fromSnapshot)
			} else {
				var layout string
				if layout, err = readLayout(args[0], e.Symbols()); err == nil {
					g, err = e.Parse(layout)
				}
			}
			if err != nil {
				return err
			}

			if _, err := e.Simulate(g, steps); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, e.Score(g))
			if printGrid {
				fmt.Fprintln(out, g.Format(e.Symbols()))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&steps, "steps", 0, "Spin cycles to apply")
	cmd.Flags().StringVar(&fromSnapshot, "from-snapshot", "", "Start from a saved snapshot instead of an input file")
	cmd.Flags().BoolVar(&printGrid, "print", false, "Print the final grid")
	return cmd
}

func loadSnapshotGrid(path string) (*grid.Grid, error) {
	snap, err := telemetry.LoadSnapshot(path)
	if err != nil {
		return nil, err
	}
	sym := grid.DefaultSymbols()
	for _, s := range []struct {
		src string
		dst *rune
	}{{snap.Empty, &sym.Empty}, {snap.Movable, &sym.Movable}, {snap.Fixed, &sym.Fixed}} {
		if r := []rune(s.src); len(r) == 1 {
			*s.dst = r[0]
		}
	}
	return grid.FromLines(snap.Rows, sym)
}

func newBatchCmd() *cobra.Command {
	var (
		steps     int
		outputDir string
	)
	cmd := &cobra.Command{
		Use:   "batch <inputs...>",
		Short: "Evaluate several inputs in parallel",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			e, om, err := newEngine(outputDir)
			if err != nil {
				return err
			}
			defer func() {
				if cerr := om.Close(); cerr != nil && err == nil {
					err = cerr
				}
			}()
			if steps < 0 {
				steps = e.DefaultSteps()
			}

			jobs := make([]engine.Job, 0, len(args))
			for _, path := range args {
				layout, err := readLayout(path, e.Symbols())
				if err != nil {
					return err
				}
				jobs = append(jobs, engine.Job{Name: filepath.Base(path), Layout: layout, Target: steps})
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			results, err := e.EvaluateBatch(ctx, jobs)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			failed := 0
			for _, r := range results {
				if r.Err != nil {
					failed++
					slog.Error("job failed", "job", r.Job.Name, "error", r.Err)
					fmt.Fprintf(out, "%s\terror\n", r.Job.Name)
					continue
				}
				fmt.Fprintf(out, "%s\t%d\n", r.Job.Name, r.Result.Load)
			}
			slog.Info("batch", "summary", engine.Summarize(results))

			if failed > 0 {
				return fmt.Errorf("%d of %d jobs failed", failed, len(jobs))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&steps, "steps", -1, "Spin cycles to evaluate (negative = engine.default_steps)")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "Output directory for CSV logs and config snapshot")
	return cmd
}
