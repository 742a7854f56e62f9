// SPDX-License-Identifier: EPL-2.0

// Package config loads transcode job files.
package config

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config represents a complete job file
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Output  OutputConfig  `yaml:"output"`
	Metrics MetricsConfig `yaml:"metrics"`
	Jobs    []JobConfig   `yaml:"jobs"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or console
	Output string `yaml:"output"` // stderr, stdout or a file path
}

// OutputConfig contains settings shared by every job
type OutputConfig struct {
	Codec string `yaml:"codec"` // empty selects the container default
}

// MetricsConfig controls the metrics written after the jobs ran
type MetricsConfig struct {
	Textfile string `yaml:"textfile"` // empty disables metrics
}

// JobConfig describes one transcode
type JobConfig struct {
	Input   string `yaml:"input"`
	Output  string `yaml:"output"`
	StartMs int64  `yaml:"start_ms"`
	EndMs   int64  `yaml:"end_ms"` // 0 means the end of the input
}

// Default returns the configuration used for unset fields.
func Default() Config {
	return Config{
		Logging: LoggingConfig{Level: "info", Format: "json", Output: "stderr"},
	}
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a job file held in memory and validates it.
func Parse(data []byte) (*Config, error) {
	config := Default()
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// Validate checks every section
func (c *Config) Validate() error {
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	if len(c.Jobs) == 0 {
		return fmt.Errorf("jobs: at least one job is required")
	}
	for i := range c.Jobs {
		if err := c.Jobs[i].Validate(); err != nil {
			return fmt.Errorf("job %d: %w", i, err)
		}
	}

	return nil
}

// Validate validates logging configuration
func (l *LoggingConfig) Validate() error {
	if _, err := zapcore.ParseLevel(l.Level); err != nil {
		return fmt.Errorf("invalid log level %q", l.Level)
	}

	switch l.Format {
	case "json", "console":
	default:
		return fmt.Errorf("format must be json or console, got %q", l.Format)
	}

	if l.Output == "" {
		return fmt.Errorf("output cannot be empty")
	}

	return nil
}

// Build creates a production logger with the configured level, encoding and
// output.
func (l *LoggingConfig) Build() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(l.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", l.Level, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.Encoding = l.Format
	cfg.OutputPaths = []string{l.Output}
	if l.Format == "console" {
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}

// Validate validates one job
func (j *JobConfig) Validate() error {
	if j.Input == "" {
		return fmt.Errorf("input cannot be empty")
	}

	if j.Output == "" {
		return fmt.Errorf("output cannot be empty")
	}

	if j.Input == j.Output {
		return fmt.Errorf("input and output must differ, both are %q", j.Input)
	}

	if j.StartMs < 0 {
		return fmt.Errorf("start_ms must not be negative, got %d", j.StartMs)
	}

	if j.EndMs != 0 && j.EndMs <= j.StartMs {
		return fmt.Errorf("end_ms must be after start_ms (%d), got %d", j.StartMs, j.EndMs)
	}

	return nil
}
