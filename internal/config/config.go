// Package config loads and validates the YAML configuration shared by the
// command-line front ends. Every field has a default, so a config file only
// needs the values it overrides.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete application configuration.
type Config struct {
	Audio    AudioConfig    `yaml:"audio"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Tuner    TunerConfig    `yaml:"tuner"`
}

// AudioConfig describes the capture and windowing geometry.
type AudioConfig struct {
	SampleRate int `yaml:"sample_rate"`
	BlockSize  int `yaml:"block_size"`
	// WindowSize is the analysis window in samples. It is rounded up to a
	// power of two at engine construction.
	WindowSize int `yaml:"window_size"`
	// Device selects a capture device by name; empty means the system
	// default input.
	Device string `yaml:"device"`
}

// AnalysisConfig tunes the voicing gate, the pitch search, and the
// stability scoring.
type AnalysisConfig struct {
	MinFrequency     float64 `yaml:"min_frequency"`  // Hz
	MaxFrequency     float64 `yaml:"max_frequency"`  // Hz
	PitchThreshold   float64 `yaml:"pitch_threshold"`
	MinVolume        float64 `yaml:"min_volume"`     // 0..100 scale
	CentroidLow      float64 `yaml:"centroid_low"`   // Hz
	CentroidHigh     float64 `yaml:"centroid_high"`  // Hz
	HistoryWindowMs  int     `yaml:"history_window_ms"`
	StableConfidence float64 `yaml:"stable_confidence"`
	ToleranceCents   int     `yaml:"tolerance_cents"`
}

// LoggingConfig selects the log level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

// TunerConfig holds tuner front-end settings.
type TunerConfig struct {
	// ReferenceHz is the A4 tuning reference.
	ReferenceHz float64 `yaml:"reference_hz"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Audio: AudioConfig{
			SampleRate: 44100,
			BlockSize:  1024,
			WindowSize: 4096,
		},
		Analysis: AnalysisConfig{
			MinFrequency:     80,
			MaxFrequency:     800,
			PitchThreshold:   0.3,
			MinVolume:        5,
			CentroidLow:      80,
			CentroidHigh:     1000,
			HistoryWindowMs:  300,
			StableConfidence: 0.6,
			ToleranceCents:   10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Listen:  ":9101",
		},
		Tuner: TunerConfig{
			ReferenceHz: 440,
		},
	}
}

// Load reads a YAML file over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}

	return &cfg, nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Audio.Validate(); err != nil {
		return fmt.Errorf("audio: %w", err)
	}

	if err := c.Analysis.Validate(); err != nil {
		return fmt.Errorf("analysis: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}

	if err := c.Metrics.Validate(); err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	if err := c.Tuner.Validate(); err != nil {
		return fmt.Errorf("tuner: %w", err)
	}

	return nil
}

// Validate checks the capture geometry.
func (a *AudioConfig) Validate() error {
	if a.SampleRate < 8000 || a.SampleRate > 192000 {
		return fmt.Errorf("sample_rate must be between 8000 and 192000 Hz, got %d", a.SampleRate)
	}

	if a.BlockSize < 64 {
		return fmt.Errorf("block_size must be at least 64 samples, got %d", a.BlockSize)
	}

	if a.WindowSize < a.BlockSize {
		return fmt.Errorf("window_size (%d) must be at least block_size (%d)", a.WindowSize, a.BlockSize)
	}

	return nil
}

// Validate checks the analysis thresholds.
func (a *AnalysisConfig) Validate() error {
	if a.MinFrequency <= 0 {
		return fmt.Errorf("min_frequency must be positive, got %v", a.MinFrequency)
	}

	if a.MaxFrequency <= a.MinFrequency {
		return fmt.Errorf("max_frequency (%v) must be greater than min_frequency (%v)",
			a.MaxFrequency, a.MinFrequency)
	}

	if a.PitchThreshold < 0 || a.PitchThreshold > 1 {
		return fmt.Errorf("pitch_threshold must be between 0 and 1, got %v", a.PitchThreshold)
	}

	if a.MinVolume < 0 || a.MinVolume > 100 {
		return fmt.Errorf("min_volume must be between 0 and 100, got %v", a.MinVolume)
	}

	if a.CentroidLow <= 0 || a.CentroidHigh <= a.CentroidLow {
		return fmt.Errorf("centroid band must satisfy 0 < low < high, got %v..%v",
			a.CentroidLow, a.CentroidHigh)
	}

	if a.HistoryWindowMs < 1 {
		return fmt.Errorf("history_window_ms must be at least 1, got %d", a.HistoryWindowMs)
	}

	if a.StableConfidence <= 0 || a.StableConfidence >= 1 {
		return fmt.Errorf("stable_confidence must be between 0 and 1 exclusive, got %v", a.StableConfidence)
	}

	if a.ToleranceCents < 1 || a.ToleranceCents > 50 {
		return fmt.Errorf("tolerance_cents must be between 1 and 50, got %d", a.ToleranceCents)
	}

	return nil
}

// HistoryWindow returns the smoothing window as a time.Duration.
func (a *AnalysisConfig) HistoryWindow() time.Duration {
	return time.Duration(a.HistoryWindowMs) * time.Millisecond
}

// Validate checks the logging enums.
func (l *LoggingConfig) Validate() error {
	switch l.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("level must be one of [debug, info, warn, error], got %q", l.Level)
	}

	switch l.Format {
	case "text", "json":
	default:
		return fmt.Errorf("format must be text or json, got %q", l.Format)
	}

	return nil
}

// SlogLevel maps the configured level onto a slog.Level.
func (l *LoggingConfig) SlogLevel() slog.Level {
	switch l.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Validate checks the metrics endpoint.
func (m *MetricsConfig) Validate() error {
	if m.Enabled && m.Listen == "" {
		return fmt.Errorf("listen cannot be empty when metrics are enabled")
	}

	return nil
}

// Validate checks the tuner settings.
func (t *TunerConfig) Validate() error {
	if t.ReferenceHz < 200 || t.ReferenceHz > 1000 {
		return fmt.Errorf("reference_hz must be between 200 and 1000, got %v", t.ReferenceHz)
	}

	return nil
}
