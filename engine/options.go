package engine

import (
	"log/slog"
	"time"

	"github.com/cwbudde/algo-vocal/dsp/core"
	"github.com/cwbudde/algo-vocal/measure/level"
	"github.com/cwbudde/algo-vocal/measure/pitch"
	"github.com/cwbudde/algo-vocal/measure/voice"
	"github.com/cwbudde/algo-vocal/note"
	"github.com/cwbudde/algo-vocal/track"
)

// Config defines configuration for an analysis engine.
type Config struct {
	core.ProcessorConfig
	// WindowSize is the analysis window length in samples. It is the ring
	// capacity, the FFT size, and the pitch estimation window all at once.
	WindowSize int
	// SnapshotBuffer is the capacity of the snapshot delivery channel.
	SnapshotBuffer int

	// Per-stage options. The engine pins the shared geometry (sample rate,
	// block size) after applying these, so stage options cannot desync the
	// pipeline.
	LevelOptions []level.MeterOption
	PitchOptions []pitch.EstimatorOption
	VoiceOptions []voice.DetectorOption
	NoteOptions  []note.MapperOption
	TrackOptions []track.TrackerOption

	// Logger receives session lifecycle events; nil keeps the engine silent.
	Logger *slog.Logger
	// Now supplies wall-clock time for session accounting; nil uses time.Now.
	Now func() time.Time
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns defaults for live vocal analysis: 44.1 kHz capture
// in 1024-sample blocks over a 4096-sample window.
func DefaultConfig() Config {
	return Config{
		ProcessorConfig: core.DefaultProcessorConfig(),
		WindowSize:      4096,
		SnapshotBuffer:  16,
	}
}

// WithSampleRate sets the capture and analysis sample rate.
func WithSampleRate(sampleRate float64) Option {
	return func(cfg *Config) {
		if sampleRate > 0 {
			cfg.SampleRate = sampleRate
		}
	}
}

// WithBlockSize sets the per-callback block size in samples.
func WithBlockSize(blockSize int) Option {
	return func(cfg *Config) {
		if blockSize > 0 {
			cfg.BlockSize = blockSize
		}
	}
}

// WithWindowSize sets the analysis window length. Non-power-of-two values
// are rounded up so the window can feed the FFT directly.
func WithWindowSize(size int) Option {
	return func(cfg *Config) {
		if size > 0 {
			cfg.WindowSize = core.NextPowerOfTwo(size)
		}
	}
}

// WithSnapshotBuffer sets the snapshot channel capacity.
func WithSnapshotBuffer(size int) Option {
	return func(cfg *Config) {
		if size > 0 {
			cfg.SnapshotBuffer = size
		}
	}
}

// WithLevelOptions forwards options to the loudness meter.
func WithLevelOptions(opts ...level.MeterOption) Option {
	return func(cfg *Config) {
		cfg.LevelOptions = append(cfg.LevelOptions, opts...)
	}
}

// WithPitchOptions forwards options to the pitch estimator.
func WithPitchOptions(opts ...pitch.EstimatorOption) Option {
	return func(cfg *Config) {
		cfg.PitchOptions = append(cfg.PitchOptions, opts...)
	}
}

// WithVoiceOptions forwards options to the voice activity detector.
func WithVoiceOptions(opts ...voice.DetectorOption) Option {
	return func(cfg *Config) {
		cfg.VoiceOptions = append(cfg.VoiceOptions, opts...)
	}
}

// WithNoteOptions forwards options to the note mapper.
func WithNoteOptions(opts ...note.MapperOption) Option {
	return func(cfg *Config) {
		cfg.NoteOptions = append(cfg.NoteOptions, opts...)
	}
}

// WithTrackOptions forwards options to the stability tracker.
func WithTrackOptions(opts ...track.TrackerOption) Option {
	return func(cfg *Config) {
		cfg.TrackOptions = append(cfg.TrackOptions, opts...)
	}
}

// WithLogger sets the session logger.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *Config) {
		cfg.Logger = logger
	}
}

// WithClock sets the wall-clock source used for session accounting.
func WithClock(now func() time.Time) Option {
	return func(cfg *Config) {
		if now != nil {
			cfg.Now = now
		}
	}
}

// ApplyOptions applies zero or more options to the default config.
func ApplyOptions(opts ...Option) Config {
	cfg := DefaultConfig()

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg
}
