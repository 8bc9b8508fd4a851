package level

import "github.com/cwbudde/algo-vocal/dsp/core"

// MeterConfig holds the volume meter settings.
type MeterConfig struct {
	core.ProcessorConfig
	// Gain maps raw RMS onto the display scale. The default was tuned so a
	// comfortably sung note lands mid-scale on a consumer microphone.
	Gain float64
	// Gate is the volume (display scale) below which input counts as silence.
	Gate float64
}

// MeterOption mutates a MeterConfig.
type MeterOption func(*MeterConfig)

// DefaultMeterConfig returns the capture defaults with gain 300 and gate 5.
func DefaultMeterConfig() MeterConfig {
	return MeterConfig{
		ProcessorConfig: core.DefaultProcessorConfig(),
		Gain:            300,
		Gate:            5,
	}
}

// WithSampleRate overrides the capture sample rate. Non-positive values are
// ignored.
func WithSampleRate(sampleRate float64) MeterOption {
	return func(cfg *MeterConfig) {
		if sampleRate > 0 {
			cfg.SampleRate = sampleRate
		}
	}
}

// WithGain overrides the RMS-to-volume scale factor. Non-positive values
// are ignored.
func WithGain(gain float64) MeterOption {
	return func(cfg *MeterConfig) {
		if gain > 0 {
			cfg.Gain = gain
		}
	}
}

// WithGate overrides the silence gate. Values outside the 0..100 display
// scale are ignored.
func WithGate(gate float64) MeterOption {
	return func(cfg *MeterConfig) {
		if gate >= 0 && gate <= 100 {
			cfg.Gate = gate
		}
	}
}

// ApplyMeterOptions folds opts over the defaults. Nil options are skipped.
func ApplyMeterOptions(opts ...MeterOption) MeterConfig {
	cfg := DefaultMeterConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg
}
