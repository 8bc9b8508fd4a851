package note

// MapperConfig defines configuration for the note mapper.
type MapperConfig struct {
	// ReferenceHz is the concert pitch of A4.
	ReferenceHz float64
	// ToleranceCents is the deviation below which a note counts as in tune.
	ToleranceCents int
}

// MapperOption mutates a MapperConfig.
type MapperOption func(*MapperConfig)

// DefaultMapperConfig returns standard concert tuning.
func DefaultMapperConfig() MapperConfig {
	return MapperConfig{
		ReferenceHz:    440,
		ToleranceCents: 10,
	}
}

// WithReference sets the A4 reference frequency in Hz.
func WithReference(hz float64) MapperOption {
	return func(cfg *MapperConfig) {
		if hz > 0 {
			cfg.ReferenceHz = hz
		}
	}
}

// WithTolerance sets the in-tune tolerance in cents.
func WithTolerance(cents int) MapperOption {
	return func(cfg *MapperConfig) {
		if cents > 0 && cents <= 50 {
			cfg.ToleranceCents = cents
		}
	}
}

// ApplyMapperOptions applies zero or more options to the default config.
func ApplyMapperOptions(opts ...MapperOption) MapperConfig {
	cfg := DefaultMapperConfig()

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg
}
