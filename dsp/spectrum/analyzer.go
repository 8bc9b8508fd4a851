package spectrum

import (
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-vocal/dsp/core"
	"github.com/cwbudde/algo-vocal/dsp/window"
)

// AnalyzerConfig defines configuration for the streaming spectrum analyzer.
type AnalyzerConfig struct {
	core.ProcessorConfig
	FFTSize    int
	WindowType window.Type
	Overlap    float64 // fraction of the frame shared between hops, 0..0.95
}

// AnalyzerOption mutates an AnalyzerConfig.
type AnalyzerOption func(*AnalyzerConfig)

// DefaultAnalyzerConfig returns defaults matching the capture window used
// for vocal analysis.
func DefaultAnalyzerConfig() AnalyzerConfig {
	return AnalyzerConfig{
		ProcessorConfig: core.DefaultProcessorConfig(),
		FFTSize:         4096,
		WindowType:      window.TypeHann,
		Overlap:         0.5,
	}
}

// WithSampleRate sets the analysis sample rate.
func WithSampleRate(sampleRate float64) AnalyzerOption {
	return func(cfg *AnalyzerConfig) {
		if sampleRate > 0 {
			cfg.SampleRate = sampleRate
		}
	}
}

// WithFFTSize sets the FFT size. Non-power-of-two values are rounded up.
func WithFFTSize(size int) AnalyzerOption {
	return func(cfg *AnalyzerConfig) {
		if size > 0 {
			cfg.FFTSize = core.NextPowerOfTwo(size)
		}
	}
}

// WithWindowType sets the analysis window function.
func WithWindowType(t window.Type) AnalyzerOption {
	return func(cfg *AnalyzerConfig) {
		cfg.WindowType = t
	}
}

// WithOverlap sets the frame overlap fraction for streaming Process calls.
func WithOverlap(overlap float64) AnalyzerOption {
	return func(cfg *AnalyzerConfig) {
		if overlap >= 0 && overlap <= 0.95 {
			cfg.Overlap = overlap
		}
	}
}

// ApplyAnalyzerOptions applies zero or more options to the default config.
func ApplyAnalyzerOptions(opts ...AnalyzerOption) AnalyzerConfig {
	cfg := DefaultAnalyzerConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// Analyzer computes the one-sided magnitude spectrum of a capture window.
// It owns the FFT plan and all scratch memory, so a steady-state Analyze
// call performs no allocation.
type Analyzer struct {
	cfg     AnalyzerConfig
	plan    *algofft.Plan[complex128]
	win     []float64
	winGain float64
	input   []complex128
	output  []complex128
	re      []float64
	im      []float64
	mags    []float64

	// Streaming frame state for Process.
	hop    int
	ring   []float64
	write  int
	filled int
	toHop  int
}

// NewAnalyzer creates a configured spectrum analyzer.
func NewAnalyzer(opts ...AnalyzerOption) (*Analyzer, error) {
	cfg := ApplyAnalyzerOptions(opts...)

	if cfg.SampleRate <= 0 {
		return nil, fmt.Errorf("analyzer sample rate must be > 0: %f", cfg.SampleRate)
	}
	if cfg.FFTSize <= 0 {
		return nil, fmt.Errorf("analyzer fft size must be > 0: %d", cfg.FFTSize)
	}

	win := window.Generate(cfg.WindowType, cfg.FFTSize, window.WithPeriodic())

	winGain, err := window.CoherentGain(win)
	if err != nil {
		return nil, fmt.Errorf("analyzer window: %w", err)
	}

	plan, err := algofft.NewPlan64(cfg.FFTSize)
	if err != nil {
		return nil, fmt.Errorf("analyzer fft plan: %w", err)
	}

	bins := cfg.FFTSize/2 + 1

	hop := int(math.Round(float64(cfg.FFTSize) * (1 - cfg.Overlap)))
	if hop < 1 {
		hop = 1
	}

	return &Analyzer{
		cfg:     cfg,
		plan:    plan,
		win:     win,
		winGain: winGain,
		input:   make([]complex128, cfg.FFTSize),
		output:  make([]complex128, cfg.FFTSize),
		re:      make([]float64, bins),
		im:      make([]float64, bins),
		mags:    make([]float64, bins),
		hop:     hop,
		ring:    make([]float64, cfg.FFTSize),
	}, nil
}

// Config returns the analyzer configuration.
func (a *Analyzer) Config() AnalyzerConfig {
	return a.cfg
}

// BinCount returns the number of one-sided spectrum bins, FFTSize/2 + 1.
func (a *Analyzer) BinCount() int {
	return len(a.mags)
}

// BinFrequency returns the center frequency of bin i in Hz.
func (a *Analyzer) BinFrequency(i int) float64 {
	return float64(i) * a.cfg.SampleRate / float64(a.cfg.FFTSize)
}

// Hop returns the number of new samples between streamed frames.
func (a *Analyzer) Hop() int {
	return a.hop
}

// Analyze windows the samples, runs the FFT, and returns amplitude-normalized
// one-sided magnitudes. The sample count must equal the FFT size.
//
// The returned slice is owned by the Analyzer and is valid until the next
// Analyze call.
func (a *Analyzer) Analyze(samples []float64) ([]float64, error) {
	if len(samples) != a.cfg.FFTSize {
		return nil, fmt.Errorf("analyzer input length must be %d: %d", a.cfg.FFTSize, len(samples))
	}

	for i, s := range samples {
		a.input[i] = complex(s*a.win[i], 0)
	}

	if err := a.compute(); err != nil {
		return nil, err
	}

	return a.mags, nil
}

// Process pushes a block of capture samples into the analyzer's frame ring
// and recomputes the spectrum each time a full hop of new samples has
// accumulated over a filled frame. It returns the latest magnitudes and
// whether this call produced at least one new frame.
//
// The returned slice is owned by the Analyzer and is valid until the next
// Analyze or Process call.
func (a *Analyzer) Process(frame []float64) ([]float64, bool) {
	produced := false

	for _, s := range frame {
		a.ring[a.write] = s

		a.write++
		if a.write >= a.cfg.FFTSize {
			a.write = 0
		}

		if a.filled < a.cfg.FFTSize {
			a.filled++
		}

		a.toHop++
		if a.filled < a.cfg.FFTSize || a.toHop < a.hop {
			continue
		}

		a.toHop = 0

		read := a.write
		for i := 0; i < a.cfg.FFTSize; i++ {
			a.input[i] = complex(a.ring[read]*a.win[i], 0)

			read++
			if read >= a.cfg.FFTSize {
				read = 0
			}
		}

		if err := a.compute(); err == nil {
			produced = true
		}
	}

	return a.mags, produced
}

// Reset clears the streaming frame state. Scratch spectra are kept.
func (a *Analyzer) Reset() {
	core.Zero(a.ring)
	a.write = 0
	a.filled = 0
	a.toHop = 0
}

func (a *Analyzer) compute() error {
	if err := a.plan.Forward(a.output, a.input); err != nil {
		return fmt.Errorf("analyzer fft: %w", err)
	}

	bins := len(a.mags)
	for i := 0; i < bins; i++ {
		a.re[i] = real(a.output[i])
		a.im[i] = imag(a.output[i])
	}

	MagnitudeFromParts(a.mags, a.re, a.im)

	// One-sided spectrum: interior bins carry the energy of their mirrored
	// negative-frequency twins, so they are doubled. DC and Nyquist are not.
	norm := float64(a.cfg.FFTSize) * a.winGain
	vecmath.ScaleBlock(a.mags, a.mags, 2/norm)
	a.mags[0] *= 0.5
	a.mags[bins-1] *= 0.5

	return nil
}
