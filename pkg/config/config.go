// Package config holds the process-wide runner configuration: defaults, an
// optional YAML file, and the REPS environment variable. Parsed once and
// passed explicitly into runners; tests override by constructing their own.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrBadRepsMultiplier is returned for REPS values outside the accepted
// grammar: "N%", "Nx", or "0".
var ErrBadRepsMultiplier = errors.New(`config: REPS must be "N%", "Nx" or "0"`)

// Config represents the repcheck configuration
type Config struct {
	Framework FrameworkConfig `yaml:"framework"`
	Runner    RunnerConfig    `yaml:"runner"`
	Coverage  CoverageConfig  `yaml:"coverage"`
}

// FrameworkConfig contains general settings
type FrameworkConfig struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// RunnerConfig contains test execution settings
type RunnerConfig struct {
	// Reps is the baseline random-rep count before the REPS multiplier.
	Reps int `yaml:"reps"`
	// MaxTries bounds pruned playouts per generated value.
	MaxTries int `yaml:"max_tries"`
	// MaxPicks caps the pick log of one playout.
	MaxPicks int `yaml:"max_picks"`
	// DepthLimit narrows pick requests to constants past this depth,
	// bounding recursive generators. 0 means unlimited.
	DepthLimit int `yaml:"depth_limit"`
}

// CoverageConfig contains coverage analysis settings
type CoverageConfig struct {
	// Multiplier scales the rep count. Below 1 the sometimes-validity
	// check is skipped; above 1 threshold analysis runs. Set from the
	// REPS environment variable, not the file.
	Multiplier float64 `yaml:"-"`
	// MinRepsForStats is the observation floor for threshold analysis.
	MinRepsForStats int `yaml:"min_reps_for_stats"`
	// Threshold flags keys rarely true or rarely false.
	Threshold float64 `yaml:"threshold"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Framework: FrameworkConfig{
			LogLevel:  "info",
			LogFormat: "text",
		},
		Runner: RunnerConfig{
			Reps:     1000,
			MaxTries: 1000,
			MaxPicks: 10000,
		},
		Coverage: CoverageConfig{
			Multiplier:      1,
			MinRepsForStats: 1000,
			Threshold:       0.05,
		},
	}
}

// FromEnv returns the default configuration with the REPS environment
// variable applied. A malformed REPS value is a fatal error for the caller.
func FromEnv() (*Config, error) {
	cfg := DefaultConfig()
	mult, err := ParseRepsMultiplier(os.Getenv("REPS"))
	if err != nil {
		return nil, err
	}
	cfg.Coverage.Multiplier = mult
	return cfg, nil
}

// Load loads configuration from a YAML file, layered over defaults, then
// applies the REPS environment variable.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = "config.yaml"
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	mult, err := ParseRepsMultiplier(os.Getenv("REPS"))
	if err != nil {
		return nil, err
	}
	cfg.Coverage.Multiplier = mult
	return cfg, nil
}

// Save writes configuration to a YAML file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Runner.Reps < 1 {
		return fmt.Errorf("runner.reps must be at least 1")
	}
	if c.Runner.MaxTries < 1 {
		return fmt.Errorf("runner.max_tries must be at least 1")
	}
	if c.Runner.MaxPicks < 1 {
		return fmt.Errorf("runner.max_picks must be at least 1")
	}
	if c.Coverage.Multiplier < 0 {
		return fmt.Errorf("coverage multiplier must be non-negative")
	}
	return nil
}

// ParseRepsMultiplier parses the REPS environment variable.
// Accepted forms: "N%" (multiplier N/100), "Nx" (multiplier N), and "0".
// The empty string means multiplier 1.
func ParseRepsMultiplier(s string) (float64, error) {
	s = strings.TrimSpace(s)
	switch s {
	case "":
		return 1, nil
	case "0":
		return 0, nil
	}

	var numStr string
	var scale float64
	switch {
	case strings.HasSuffix(s, "%"):
		numStr, scale = strings.TrimSuffix(s, "%"), 0.01
	case strings.HasSuffix(s, "x"):
		numStr, scale = strings.TrimSuffix(s, "x"), 1
	default:
		return 0, fmt.Errorf("%w: got %q", ErrBadRepsMultiplier, s)
	}

	n, err := strconv.ParseFloat(numStr, 64)
	if err != nil || n < 0 || n != n || n > 1e12 {
		return 0, fmt.Errorf("%w: got %q", ErrBadRepsMultiplier, s)
	}
	return n * scale, nil
}
