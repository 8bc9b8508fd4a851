package voice

// DetectorConfig defines configuration for the voice activity detector.
type DetectorConfig struct {
	// MinVolume is the gate on the 0..100 volume scale.
	MinVolume float64
	// CentroidLow and CentroidHigh bound the spectral centroid band, in Hz,
	// that counts as voiced sound.
	CentroidLow  float64
	CentroidHigh float64
}

// DetectorOption mutates a DetectorConfig.
type DetectorOption func(*DetectorConfig)

// DefaultDetectorConfig returns defaults covering the sung vocal band.
func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		MinVolume:    5,
		CentroidLow:  80,
		CentroidHigh: 1000,
	}
}

// WithMinVolume sets the volume gate.
func WithMinVolume(volume float64) DetectorOption {
	return func(cfg *DetectorConfig) {
		if volume >= 0 && volume <= 100 {
			cfg.MinVolume = volume
		}
	}
}

// WithCentroidBand sets the voiced spectral-centroid band in Hz.
func WithCentroidBand(lowHz, highHz float64) DetectorOption {
	return func(cfg *DetectorConfig) {
		if lowHz > 0 && highHz > lowHz {
			cfg.CentroidLow = lowHz
			cfg.CentroidHigh = highHz
		}
	}
}

// ApplyDetectorOptions applies zero or more options to the default config.
func ApplyDetectorOptions(opts ...DetectorOption) DetectorConfig {
	cfg := DefaultDetectorConfig()

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg
}
