// Package config provides configuration loading and access for the engine.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all engine configuration parameters.
type Config struct {
	Engine    EngineConfig    `yaml:"engine"`
	Symbols   SymbolsConfig   `yaml:"symbols"`
	Scoring   ScoringConfig   `yaml:"scoring"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// EngineConfig holds the step loop parameters.
type EngineConfig struct {
	CycleOrder      []string `yaml:"cycle_order"`      // Tilt directions of one spin, in order
	Fingerprint     string   `yaml:"fingerprint"`      // raw | rle | xxhash
	DefaultSteps    int      `yaml:"default_steps"`    // Target when the caller gives none
	MaxDirectSteps  int      `yaml:"max_direct_steps"` // Give up if no repeat is seen by this step
	CheckInvariants bool     `yaml:"check_invariants"` // Verify every tilt (slow; debugging only)
	Workers         int      `yaml:"workers"`          // Batch parallelism (0 = GOMAXPROCS)
}

// SymbolsConfig holds the layout characters for each cell kind.
type SymbolsConfig struct {
	Empty   string `yaml:"empty"`
	Movable string `yaml:"movable"`
	Fixed   string `yaml:"fixed"`
}

// ScoringConfig holds load metric parameters.
type ScoringConfig struct {
	Edge    string         `yaml:"edge"`    // Edge the load is measured against
	Weights map[string]int `yaml:"weights"` // Per cell kind: empty, movable, fixed
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	PerfWindow int `yaml:"perf_window"` // Steps averaged by the perf collector
	LogEvery   int `yaml:"log_every"`   // Debug progress log interval in steps (0 = off)
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	EmptyRune   rune
	MovableRune rune
	FixedRune   rune
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns a fresh copy of the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.computeDerived(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() error {
	var err error
	if c.Derived.EmptyRune, err = singleRune("symbols.empty", c.Symbols.Empty); err != nil {
		return err
	}
	if c.Derived.MovableRune, err = singleRune("symbols.movable", c.Symbols.Movable); err != nil {
		return err
	}
	if c.Derived.FixedRune, err = singleRune("symbols.fixed", c.Symbols.Fixed); err != nil {
		return err
	}
	return nil
}

func singleRune(field, s string) (rune, error) {
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("config: %s must be exactly one character, got %q", field, s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}

// Validate checks the ranges that the engine relies on. Names such as
// directions and fingerprint strategies are checked by the packages that
// own them.
func (c *Config) Validate() error {
	var errs []error
	if len(c.Engine.CycleOrder) != 4 {
		errs = append(errs, fmt.Errorf("config: engine.cycle_order needs 4 directions, got %d", len(c.Engine.CycleOrder)))
	}
	if c.Engine.DefaultSteps < 0 {
		errs = append(errs, fmt.Errorf("config: engine.default_steps must be >= 0, got %d", c.Engine.DefaultSteps))
	}
	if c.Engine.MaxDirectSteps < 1 {
		errs = append(errs, fmt.Errorf("config: engine.max_direct_steps must be >= 1, got %d", c.Engine.MaxDirectSteps))
	}
	if c.Engine.Workers < 0 {
		errs = append(errs, fmt.Errorf("config: engine.workers must be >= 0, got %d", c.Engine.Workers))
	}
	d := c.Derived
	if d.EmptyRune == d.MovableRune || d.EmptyRune == d.FixedRune || d.MovableRune == d.FixedRune {
		errs = append(errs, errors.New("config: symbols must be distinct"))
	}
	for kind := range c.Scoring.Weights {
		switch kind {
		case "empty", "movable", "fixed":
		default:
			errs = append(errs, fmt.Errorf("config: scoring.weights has unknown cell kind %q", kind))
		}
	}
	if c.Telemetry.PerfWindow < 0 || c.Telemetry.LogEvery < 0 {
		errs = append(errs, errors.New("config: telemetry values must be >= 0"))
	}
	return errors.Join(errs...)
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
