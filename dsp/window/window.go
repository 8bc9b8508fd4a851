package window

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// Type identifies a window function.
type Type int

const (
	TypeRectangular Type = iota
	TypeHann
	TypeHamming
	TypeBlackman
	TypeBlackmanHarris4Term
	TypeFlatTop
)

// Every non-rectangular type here is a cosine-sum window, fully described by
// its term coefficients. The value at normalized position x is
// sum(terms[k] * cos(k * 2*pi*x)).
var terms = map[Type][]float64{
	TypeHann:                {0.5, -0.5},
	TypeHamming:             {0.54, -0.46},
	TypeBlackman:            {0.42, -0.5, 0.08},
	TypeBlackmanHarris4Term: {0.35875, -0.48829, 0.14128, -0.01168},
	TypeFlatTop:             {0.21557895, -0.41663158, 0.277263158, -0.083578947, 0.006947368},
}

// Option configures window generation.
type Option func(*config)

type config struct {
	periodic bool
}

// WithPeriodic selects the periodic form used for FFT framing instead of the
// symmetric filter-design form.
func WithPeriodic() Option {
	return func(c *config) {
		c.periodic = true
	}
}

// Generate returns window coefficients of the given length. Types without a
// coefficient entry come out rectangular.
func Generate(t Type, length int, opts ...Option) []float64 {
	if length <= 0 {
		return nil
	}

	var cfg config

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	out := make([]float64, length)

	cs, ok := terms[t]
	if !ok {
		for i := range out {
			out[i] = 1
		}

		return out
	}

	// A symmetric window reaches its end points at x=1. The periodic form
	// stops one sample short so hopped frames tile without a seam.
	den := float64(length - 1)
	if cfg.periodic {
		den = float64(length)
	}

	if length == 1 {
		den = 1
	}

	for i := range out {
		out[i] = cosineSum(float64(i)/den, cs)
	}

	return out
}

func cosineSum(x float64, cs []float64) float64 {
	phase := 2 * math.Pi * x

	var v float64
	for k, c := range cs {
		v += c * math.Cos(float64(k)*phase)
	}

	return v
}

// Apply multiplies buf in place by the selected window.
func Apply(t Type, buf []float64, opts ...Option) {
	if len(buf) == 0 {
		return
	}

	vecmath.MulBlockInPlace(buf, Generate(t, len(buf), opts...))
}

func sized(t Type, size int, opts []Option) ([]float64, error) {
	return Generate(t, size, opts...), validateSize(size)
}

// Hann is the default analysis window for voiced frames.
func Hann(size int, opts ...Option) ([]float64, error) {
	return sized(TypeHann, size, opts)
}

// Hamming returns Hamming window coefficients.
func Hamming(size int, opts ...Option) ([]float64, error) {
	return sized(TypeHamming, size, opts)
}

// Blackman returns Blackman window coefficients.
func Blackman(size int, opts ...Option) ([]float64, error) {
	return sized(TypeBlackman, size, opts)
}

// BlackmanHarris4Term returns 4-term Blackman-Harris window coefficients.
func BlackmanHarris4Term(size int, opts ...Option) ([]float64, error) {
	return sized(TypeBlackmanHarris4Term, size, opts)
}

// FlatTop returns 5-term flat-top window coefficients. Flat-top trades main
// lobe width for amplitude accuracy on off-bin tones.
func FlatTop(size int, opts ...Option) ([]float64, error) {
	return sized(TypeFlatTop, size, opts)
}

// CoherentGain returns sum(w[n])/N, the window's DC amplitude response.
// Spectrum magnitudes are divided by it so levels stay comparable across
// window types.
func CoherentGain(coeffs []float64) (float64, error) {
	if len(coeffs) == 0 {
		return 0, errNoCoefficients
	}

	var acc float64
	for _, c := range coeffs {
		acc += c
	}

	gain := acc / float64(len(coeffs))
	if gain == 0 {
		return 0, errZeroGain
	}

	return gain, nil
}

// ApplyCoefficients returns samples multiplied element-wise by coeffs.
func ApplyCoefficients(samples, coeffs []float64) ([]float64, error) {
	if len(samples) != len(coeffs) {
		return nil, errLengthMismatch
	}

	out := make([]float64, len(samples))
	vecmath.MulBlock(out, samples, coeffs)

	return out, nil
}

// ApplyCoefficientsInPlace multiplies samples element-wise by coeffs.
func ApplyCoefficientsInPlace(samples, coeffs []float64) error {
	if len(samples) != len(coeffs) {
		return errLengthMismatch
	}

	vecmath.MulBlockInPlace(samples, coeffs)

	return nil
}
