// Package config handles tool configuration loading and management.
package config

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all tool settings.
type Config struct {
	Paths   PathsConfig   `yaml:"paths"`
	Run     RunConfig     `yaml:"run"`
	Logging LoggingConfig `yaml:"logging"`
}

// PathsConfig holds the input and output directories.
type PathsConfig struct {
	Rules  string `yaml:"rules"`  // Directory of rule documents
	Meshes string `yaml:"meshes"` // Directory of meshes to patch
	Output string `yaml:"output"` // Directory patched meshes are written to
}

// RunConfig holds batch run settings.
type RunConfig struct {
	Workers int  `yaml:"workers"` // 0 means one per CPU
	DryRun  bool `yaml:"dry_run"` // Patch in memory only, write nothing
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			Rules:  "PBRNifPatcher",
			Meshes: "meshes",
			Output: "pbr_output",
		},
		Run: RunConfig{
			Workers: 0,
			DryRun:  false,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks that the config can drive a run.
func (c *Config) Validate() error {
	switch {
	case c.Paths.Rules == "":
		return fmt.Errorf("%w: rules directory not set", ErrInvalidConfig)
	case c.Paths.Meshes == "":
		return fmt.Errorf("%w: meshes directory not set", ErrInvalidConfig)
	case c.Paths.Output == "":
		return fmt.Errorf("%w: output directory not set", ErrInvalidConfig)
	case c.Run.Workers < 0:
		return fmt.Errorf("%w: workers must not be negative, got %d", ErrInvalidConfig, c.Run.Workers)
	}
	return nil
}
