// Package config provides process-level runtime configuration for the
// dpdsim binary: worker-pool sizing, checkpoint cadence, log verbosity,
// and output directory. Physical simulation parameters (box geometry,
// integrator choice, interaction tables, ...) live in sim.Params,
// sourced from the out-of-scope input-file parser instead (spec.md §9
// NEW 4.15).
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds the process-level knobs for one dpdsim invocation.
type Config struct {
	Worker  WorkerConfig  `yaml:"worker"`
	Output  OutputConfig  `yaml:"output"`
	Log     LogConfig     `yaml:"log"`
	Restart RestartConfig `yaml:"restart"`
}

// WorkerConfig controls the shared pair/bond worker pool.
type WorkerConfig struct {
	// PoolSize is the number of goroutines in the process-wide worker
	// pool. 0 means runtime.GOMAXPROCS(0).
	PoolSize int `yaml:"pool_size"`
}

// OutputConfig controls where and how often property output is written.
type OutputConfig struct {
	Directory     string `yaml:"directory"`
	PropertyFile  string `yaml:"property_file"`
	StepFrequency int64  `yaml:"step_frequency"`
}

// LogConfig controls log/slog verbosity.
type LogConfig struct {
	// Level is one of "debug", "info", "warn", "error".
	Level string `yaml:"level"`
}

// RestartConfig controls checkpoint cadence.
type RestartConfig struct {
	File          string `yaml:"file"`
	StepFrequency int64  `yaml:"step_frequency"`
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults
// if path is empty. Must be called before Cfg().
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

// Load loads configuration from a YAML file, merging with embedded
// defaults. If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	return cfg, nil
}
