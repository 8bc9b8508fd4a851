package capture

import "github.com/cwbudde/algo-vocal/dsp/core"

// Config defines configuration shared by the capture sources. File sources
// take their sample rate from the file itself and ignore the configured one.
type Config struct {
	core.ProcessorConfig
	// Device selects a capture device by name; empty uses the default.
	Device string
	// Pace throttles file sources to real time.
	Pace bool
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns defaults matching live vocal capture.
func DefaultConfig() Config {
	return Config{
		ProcessorConfig: core.DefaultProcessorConfig(),
	}
}

// WithSampleRate sets the requested capture sample rate.
func WithSampleRate(sampleRate float64) Option {
	return func(cfg *Config) {
		if sampleRate > 0 {
			cfg.SampleRate = sampleRate
		}
	}
}

// WithBlockSize sets the number of frames delivered per callback.
func WithBlockSize(blockSize int) Option {
	return func(cfg *Config) {
		if blockSize > 0 {
			cfg.BlockSize = blockSize
		}
	}
}

// WithDevice selects a capture device by name.
func WithDevice(name string) Option {
	return func(cfg *Config) {
		cfg.Device = name
	}
}

// WithPacing throttles file sources to real-time delivery.
func WithPacing(pace bool) Option {
	return func(cfg *Config) {
		cfg.Pace = pace
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
