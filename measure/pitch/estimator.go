// Package pitch extracts the fundamental frequency of a monophonic voice
// signal from a capture window using normalized autocorrelation with
// parabolic peak refinement.
package pitch

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-vocal/dsp/core"
)

// octaveBias is the fraction of the global correlation maximum an earlier
// local peak must reach to be preferred. Integer multiples of the true
// period correlate almost as strongly as the period itself; scanning for
// the earliest qualifying peak keeps the fundamental from losing to its
// subharmonic aliases.
const octaveBias = 0.9

// residualFloor is the fraction of the window's raw energy below which the
// mean-removed energy counts as rounding residue rather than signal. The
// residue of a constant window is itself constant and would correlate
// perfectly at every lag.
const residualFloor = 1e-12

// Estimate is the result of one pitch scan. Frequency 0 means no pitch.
type Estimate struct {
	Frequency float64 // fundamental in Hz, 0 when the peak is below threshold
	Lag       int     // unrefined period in samples
	Strength  float64 // normalized correlation peak height in [0,1]
}

// Estimator scans a capture window for the strongest vocal-range period.
// It owns all scratch memory, so a steady-state Estimate call performs no
// allocation. Identical windows produce bit-for-bit identical estimates.
type Estimator struct {
	cfg    EstimatorConfig
	minLag int
	maxLag int

	centered []float64
	squares  []float64
	prefix   []float64
	products []float64
	corr     []float64
}

// NewEstimator creates a configured pitch estimator.
func NewEstimator(opts ...EstimatorOption) (*Estimator, error) {
	cfg := ApplyEstimatorOptions(opts...)

	if cfg.SampleRate <= 0 {
		return nil, fmt.Errorf("estimator sample rate must be > 0: %f", cfg.SampleRate)
	}
	if cfg.MinFrequency <= 0 || cfg.MaxFrequency <= cfg.MinFrequency {
		return nil, fmt.Errorf("estimator frequency range invalid: %f..%f", cfg.MinFrequency, cfg.MaxFrequency)
	}
	if cfg.MaxFrequency >= cfg.SampleRate/2 {
		return nil, fmt.Errorf("estimator max frequency must stay below nyquist: %f", cfg.MaxFrequency)
	}

	minLag := int(math.Round(cfg.SampleRate / cfg.MaxFrequency))
	maxLag := int(math.Round(cfg.SampleRate / cfg.MinFrequency))

	// Lag 0 is the trivial maximum and lag 1 is barely distinguishable
	// from it; both stay out of the scan.
	if minLag < 2 {
		minLag = 2
	}
	if maxLag <= minLag {
		return nil, fmt.Errorf("estimator lag range collapsed: %d..%d", minLag, maxLag)
	}

	return &Estimator{cfg: cfg, minLag: minLag, maxLag: maxLag}, nil
}

// Config returns the estimator configuration.
func (e *Estimator) Config() EstimatorConfig {
	return e.cfg
}

// MinSamples returns the smallest window length Estimate accepts. Every lag
// correlates over the same fixed span, so the window must cover the largest
// scanned lag twice.
func (e *Estimator) MinSamples() int {
	return 2*e.maxLag + 1
}

// Estimate scans the window and returns the strongest vocal-range period.
// Windows shorter than MinSamples, constant windows, and windows with no
// positive correlation peak (silence, noise) yield the zero Estimate. A peak
// below the configured threshold reports Frequency 0 but keeps Lag and
// Strength for diagnostics.
func (e *Estimator) Estimate(samples []float64) Estimate {
	n := len(samples)
	if n <= 2*e.maxLag {
		return Estimate{}
	}

	w := n - e.maxLag

	// Remove DC: a constant offset correlates perfectly at every lag and
	// masks the vocal period.
	mean := 0.0
	for _, s := range samples {
		mean += s
	}
	mean /= float64(n)

	e.centered = core.EnsureLen(e.centered, n)
	for i, s := range samples {
		e.centered[i] = s - mean
	}

	// Prefix sums of squares give every lag's window energy in O(1).
	e.squares = core.EnsureLen(e.squares, n)
	vecmath.MulBlock(e.squares, e.centered, e.centered)

	e.prefix = core.EnsureLen(e.prefix, n+1)
	e.prefix[0] = 0
	for i, sq := range e.squares {
		e.prefix[i+1] = e.prefix[i] + sq
	}

	// Raw energy via the parallel-axis identity; no pass over the
	// uncentered samples needed.
	rawEnergy := e.prefix[n] + float64(n)*mean*mean

	energy0 := e.prefix[w]
	if energy0 <= rawEnergy*residualFloor {
		return Estimate{}
	}

	e.products = core.EnsureLen(e.products, w)
	e.corr = core.EnsureLen(e.corr, e.maxLag+1)

	for lag := e.minLag; lag <= e.maxLag; lag++ {
		energyLag := e.prefix[lag+w] - e.prefix[lag]
		if energyLag <= 0 {
			e.corr[lag] = 0
			continue
		}

		vecmath.MulBlock(e.products, e.centered[:w], e.centered[lag:lag+w])

		dot := 0.0
		for _, p := range e.products {
			dot += p
		}

		e.corr[lag] = dot / math.Sqrt(energy0*energyLag)
	}

	bestLag := 0
	bestVal := 0.0
	for lag := e.minLag; lag <= e.maxLag; lag++ {
		if e.corr[lag] > bestVal {
			bestVal = e.corr[lag]
			bestLag = lag
		}
	}

	if bestLag == 0 {
		// All correlations non-positive: silence or noise.
		return Estimate{}
	}

	// Prefer the earliest local peak within octaveBias of the maximum.
	floor := bestVal * octaveBias
	for lag := e.minLag + 1; lag < bestLag; lag++ {
		if e.corr[lag] >= floor && e.corr[lag] >= e.corr[lag-1] && e.corr[lag] >= e.corr[lag+1] {
			bestLag = lag
			bestVal = e.corr[lag]

			break
		}
	}

	strength := core.Clamp(bestVal, 0, 1)

	// Parabolic refinement recovers the fractional part of the period.
	// Peaks on the scan boundary have no usable neighbor and stay integer.
	adjusted := float64(bestLag)
	if bestLag > e.minLag && bestLag < e.maxLag {
		y1 := e.corr[bestLag-1]
		y2 := e.corr[bestLag]
		y3 := e.corr[bestLag+1]

		a := (y1 - 2*y2 + y3) / 2
		b := (y3 - y1) / 2

		if a != 0 {
			if refined := float64(bestLag) - b/(2*a); refined > 0 {
				adjusted = refined
			}
		}
	}

	freq := e.cfg.SampleRate / adjusted
	if math.IsNaN(freq) || math.IsInf(freq, 0) {
		return Estimate{}
	}

	result := Estimate{Frequency: freq, Lag: bestLag, Strength: strength}
	if strength < e.cfg.Threshold {
		result.Frequency = 0
	}

	return result
}

// Reset zeroes the scratch buffers. Estimate carries no state between calls,
// so this only scrubs stale sample data.
func (e *Estimator) Reset() {
	core.Zero(e.centered)
	core.Zero(e.squares)
	core.Zero(e.prefix)
	core.Zero(e.products)
	core.Zero(e.corr)
}
