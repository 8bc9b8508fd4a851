package signal

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"slices"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-vocal/dsp/core"
)

// Generator renders deterministic test signals at a fixed sample rate.
type Generator struct {
	cfg  core.ProcessorConfig
	seed int64
}

// Option configures a Generator.
type Option func(*Generator)

// WithSeed fixes the seed used for noise rendering.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.seed = seed
	}
}

// NewGenerator returns a Generator with the given processor configuration
// and seed 1.
func NewGenerator(opts ...core.ProcessorOption) *Generator {
	return &Generator{cfg: core.ApplyProcessorOptions(opts...), seed: 1}
}

// NewGeneratorWithOptions is NewGenerator plus generator-specific options.
func NewGeneratorWithOptions(coreOpts []core.ProcessorOption, opts ...Option) *Generator {
	g := NewGenerator(coreOpts...)
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}

	return g
}

// Config returns the generator processor configuration.
func (g *Generator) Config() core.ProcessorConfig {
	return g.cfg
}

// SetSeed changes the seed for subsequent noise rendering.
func (g *Generator) SetSeed(seed int64) {
	g.seed = seed
}

// Seed returns the current noise seed.
func (g *Generator) Seed() int64 {
	return g.seed
}

// alloc validates the render request and returns the output buffer.
func (g *Generator) alloc(samples int) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("sample count must be positive, got %d", samples)
	}

	if g.cfg.SampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %g", g.cfg.SampleRate)
	}

	return make([]float64, samples), nil
}

// mix renders one sine per freqs[i] at amplitude amps[i] and sums them.
func (g *Generator) mix(freqs, amps []float64, samples int) ([]float64, error) {
	out, err := g.alloc(samples)
	if err != nil {
		return nil, err
	}

	for i, f := range freqs {
		partial, err := g.Sine(f, amps[i], samples)
		if err != nil {
			return nil, err
		}

		vecmath.AddBlockInPlace(out, partial)
	}

	return out, nil
}

// Sine renders amplitude*sin(2*pi*freqHz*t) starting at zero phase.
func (g *Generator) Sine(freqHz, amplitude float64, samples int) ([]float64, error) {
	out, err := g.alloc(samples)
	if err != nil {
		return nil, err
	}

	step := 2 * math.Pi * freqHz / g.cfg.SampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}

	return out, nil
}

// Multisine sums equal-weight sines at the given frequencies, scaled so the
// result stays within [-amplitude, amplitude].
func (g *Generator) Multisine(freqs []float64, amplitude float64, samples int) ([]float64, error) {
	if len(freqs) == 0 {
		return nil, errors.New("multisine needs at least one frequency")
	}

	amps := slices.Repeat([]float64{amplitude / float64(len(freqs))}, len(freqs))

	return g.mix(freqs, amps, samples)
}

// Harmonic renders a harmonic stack on the fundamental f0: partial k
// (1-based) sits at k*f0 with amplitude amps[k-1]. The shape approximates
// the spectral envelope of a sung vowel.
func (g *Generator) Harmonic(f0 float64, amps []float64, samples int) ([]float64, error) {
	if f0 <= 0 {
		return nil, fmt.Errorf("fundamental must be positive, got %g", f0)
	}

	if len(amps) == 0 {
		return nil, errors.New("harmonic needs at least one partial amplitude")
	}

	freqs := make([]float64, len(amps))
	for k := range freqs {
		freqs[k] = float64(k+1) * f0
	}

	return g.mix(freqs, amps, samples)
}

// Vibrato renders a sine whose instantaneous frequency swings around freqHz
// by +/- depthHz at rateHz.
func (g *Generator) Vibrato(freqHz, depthHz, rateHz, amplitude float64, samples int) ([]float64, error) {
	if depthHz < 0 {
		return nil, fmt.Errorf("vibrato depth must be >= 0, got %g", depthHz)
	}

	out, err := g.alloc(samples)
	if err != nil {
		return nil, err
	}

	var phase float64
	for i := range out {
		out[i] = amplitude * math.Sin(phase)
		mod := depthHz * math.Sin(2*math.Pi*rateHz*float64(i)/g.cfg.SampleRate)
		phase += 2 * math.Pi * (freqHz + mod) / g.cfg.SampleRate
	}

	return out, nil
}

// WhiteNoise renders uniform noise in [-amplitude, amplitude] from the
// generator's seed. Equal seeds reproduce equal output.
func (g *Generator) WhiteNoise(amplitude float64, samples int) ([]float64, error) {
	if amplitude < 0 {
		return nil, fmt.Errorf("noise amplitude must be >= 0, got %g", amplitude)
	}

	out, err := g.alloc(samples)
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(g.seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}

	return out, nil
}

// Normalize returns a copy of data rescaled so its absolute peak equals
// targetPeak. All-zero input comes back as silence.
func Normalize(data []float64, targetPeak float64) ([]float64, error) {
	if targetPeak < 0 {
		return nil, fmt.Errorf("target peak must be >= 0, got %g", targetPeak)
	}

	if len(data) == 0 {
		return nil, errors.New("cannot normalize an empty signal")
	}

	var peak float64
	for _, v := range data {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}

	out := make([]float64, len(data))
	if peak == 0 || targetPeak == 0 {
		return out, nil
	}

	vecmath.ScaleBlock(out, data, targetPeak/peak)

	return out, nil
}
