package track

import (
	"time"

	"github.com/cwbudde/algo-vocal/dsp/core"
)

// TrackerConfig defines configuration for the stability tracker.
type TrackerConfig struct {
	core.ProcessorConfig
	// Window bounds how far back the history reaches. The capacity is the
	// number of analysis frames that fit into the window at the block rate.
	Window time.Duration
	// SmoothingWeights weight the newest history samples, newest first.
	SmoothingWeights []float64
	// VarianceNormalizer is the frequency variance in Hz squared at which
	// the stability term of the confidence reaches zero.
	VarianceNormalizer float64
	// VolumeNormalizer is the average volume at which the volume term of
	// the confidence saturates.
	VolumeNormalizer float64
	// StableConfidence is the confidence a phonation must exceed to be
	// reported as stable.
	StableConfidence float64
	// MinSamples is the history length required before any confidence is
	// reported.
	MinSamples int
	// Grace is the number of consecutive unvoiced frames tolerated before
	// the history clears.
	Grace int
}

// TrackerOption mutates a TrackerConfig.
type TrackerOption func(*TrackerConfig)

// DefaultTrackerConfig returns defaults tuned for sung phrases: a 300 ms
// history at the default block rate, decaying smoothing weights, and
// empirically calibrated confidence normalizers.
func DefaultTrackerConfig() TrackerConfig {
	return TrackerConfig{
		ProcessorConfig:    core.DefaultProcessorConfig(),
		Window:             300 * time.Millisecond,
		SmoothingWeights:   []float64{0.4, 0.3, 0.2, 0.1},
		VarianceNormalizer: 100,
		VolumeNormalizer:   20,
		StableConfidence:   0.6,
		MinSamples:         3,
		Grace:              2,
	}
}

// WithSampleRate overrides the capture sample rate. Non-positive values
// are ignored.
func WithSampleRate(sampleRate float64) TrackerOption {
	return func(cfg *TrackerConfig) {
		if sampleRate > 0 {
			cfg.SampleRate = sampleRate
		}
	}
}

// WithBlockSize sets the number of samples per analysis frame.
func WithBlockSize(blockSize int) TrackerOption {
	return func(cfg *TrackerConfig) {
		if blockSize > 0 {
			cfg.BlockSize = blockSize
		}
	}
}

// WithWindow sets the history window duration.
func WithWindow(window time.Duration) TrackerOption {
	return func(cfg *TrackerConfig) {
		if window > 0 {
			cfg.Window = window
		}
	}
}

// WithSmoothingWeights sets the moving-average weights, newest first.
func WithSmoothingWeights(weights []float64) TrackerOption {
	return func(cfg *TrackerConfig) {
		if len(weights) == 0 {
			return
		}
		for _, w := range weights {
			if w <= 0 {
				return
			}
		}
		cfg.SmoothingWeights = append([]float64(nil), weights...)
	}
}

// WithVarianceNormalizer sets the variance at which stability reaches zero.
func WithVarianceNormalizer(normalizer float64) TrackerOption {
	return func(cfg *TrackerConfig) {
		if normalizer > 0 {
			cfg.VarianceNormalizer = normalizer
		}
	}
}

// WithVolumeNormalizer sets the volume at which the volume term saturates.
func WithVolumeNormalizer(normalizer float64) TrackerOption {
	return func(cfg *TrackerConfig) {
		if normalizer > 0 {
			cfg.VolumeNormalizer = normalizer
		}
	}
}

// WithStableConfidence sets the stability threshold.
func WithStableConfidence(confidence float64) TrackerOption {
	return func(cfg *TrackerConfig) {
		if confidence > 0 && confidence < 1 {
			cfg.StableConfidence = confidence
		}
	}
}

// WithMinSamples sets the history length required for a confidence score.
func WithMinSamples(minSamples int) TrackerOption {
	return func(cfg *TrackerConfig) {
		if minSamples > 0 {
			cfg.MinSamples = minSamples
		}
	}
}

// WithGrace sets how many unvoiced frames are tolerated before the history
// clears.
func WithGrace(frames int) TrackerOption {
	return func(cfg *TrackerConfig) {
		if frames >= 0 {
			cfg.Grace = frames
		}
	}
}

// ApplyTrackerOptions folds opts over the defaults. Nil options are
// skipped.
func ApplyTrackerOptions(opts ...TrackerOption) TrackerConfig {
	cfg := DefaultTrackerConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg
}
