package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	env "github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Error policies for transactions the engine rejects.
const (
	OnErrorSkip  = "skip"
	OnErrorAbort = "abort"
)

// Config represents the settle.yaml configuration.
type Config struct {
	Processing ProcessingConfig `yaml:"processing"`
	Logging    LoggingConfig    `yaml:"logging"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

// ProcessingConfig controls how the feed is applied.
type ProcessingConfig struct {
	OnError string `yaml:"on_error" env:"SETTLE_ON_ERROR"` // skip | abort
	// RejectsFile receives a CSV row for every feed row that was not
	// applied. Empty disables it.
	RejectsFile string `yaml:"rejects_file" env:"SETTLE_REJECTS_FILE"`
}

// LoggingConfig controls diagnostic output on stderr.
type LoggingConfig struct {
	Level  string `yaml:"level" env:"SETTLE_LOG_LEVEL"`
	Format string `yaml:"format" env:"SETTLE_LOG_FORMAT"` // console | json
}

// MetricsConfig controls the Prometheus textfile export.
type MetricsConfig struct {
	Textfile string `yaml:"textfile" env:"SETTLE_METRICS_TEXTFILE"` // empty = disabled
}

// Load reads a settle.yaml file from disk on top of the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Processing: ProcessingConfig{
			OnError: OnErrorSkip,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "console",
		},
	}
}

// ApplyEnv overrides fields from SETTLE_* environment variables that are set.
func (c *Config) ApplyEnv() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("parsing environment: %w", err)
	}
	return nil
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	var errs []error
	switch c.Processing.OnError {
	case OnErrorSkip, OnErrorAbort:
	default:
		errs = append(errs, fmt.Errorf("processing.on_error %q: want %s or %s", c.Processing.OnError, OnErrorSkip, OnErrorAbort))
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("logging.level %q: want debug, info, warn or error", c.Logging.Level))
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format %q: want console or json", c.Logging.Format))
	}
	return errors.Join(errs...)
}
