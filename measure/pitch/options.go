package pitch

import "github.com/cwbudde/algo-vocal/dsp/core"

// EstimatorConfig defines configuration for the pitch estimator.
type EstimatorConfig struct {
	core.ProcessorConfig
	// MinFrequency and MaxFrequency bound the lag scan to the vocal range.
	// Tight bounds keep the per-window cost constant and real-time safe.
	MinFrequency float64
	MaxFrequency float64
	// Threshold is the minimum normalized correlation for a voiced estimate.
	Threshold float64
}

// EstimatorOption mutates an EstimatorConfig.
type EstimatorOption func(*EstimatorConfig)

// DefaultEstimatorConfig returns defaults covering the sung vocal range.
func DefaultEstimatorConfig() EstimatorConfig {
	return EstimatorConfig{
		ProcessorConfig: core.DefaultProcessorConfig(),
		MinFrequency:    80,
		MaxFrequency:    800,
		Threshold:       0.3,
	}
}

// WithSampleRate overrides the capture sample rate. Non-positive values
// are ignored.
func WithSampleRate(sampleRate float64) EstimatorOption {
	return func(cfg *EstimatorConfig) {
		if sampleRate > 0 {
			cfg.SampleRate = sampleRate
		}
	}
}

// WithFrequencyRange sets the detectable frequency band in Hz.
func WithFrequencyRange(minHz, maxHz float64) EstimatorOption {
	return func(cfg *EstimatorConfig) {
		if minHz > 0 && maxHz > minHz {
			cfg.MinFrequency = minHz
			cfg.MaxFrequency = maxHz
		}
	}
}

// WithThreshold sets the minimum correlation strength for a voiced estimate.
func WithThreshold(threshold float64) EstimatorOption {
	return func(cfg *EstimatorConfig) {
		if threshold >= 0 && threshold <= 1 {
			cfg.Threshold = threshold
		}
	}
}

// ApplyEstimatorOptions folds opts over the defaults. Nil options are
// skipped.
func ApplyEstimatorOptions(opts ...EstimatorOption) EstimatorConfig {
	cfg := DefaultEstimatorConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg
}
