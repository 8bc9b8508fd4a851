package testutil

import (
	"math"
	"math/rand"
	"slices"
)

// DeterministicSine renders length samples of a zero-phase sine at freqHz,
// the baseline fixture for pitch and level assertions.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// VibratoSine generates a sine wave whose frequency wobbles sinusoidally
// around freqHz by +/- depthHz at rateHz, mimicking vocal vibrato.
func VibratoSine(freqHz, depthHz, rateHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	phase := 0.0
	for i := range out {
		out[i] = amplitude * math.Sin(phase)
		mod := depthHz * math.Sin(2*math.Pi*rateHz*float64(i)/sampleRate)
		phase += 2 * math.Pi * (freqHz + mod) / sampleRate
	}
	return out
}

// DeterministicNoise generates seeded white noise in [-amplitude, amplitude).
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// NoisySine generates a deterministic sine with additive seeded noise,
// useful for exercising detection thresholds.
func NoisySine(freqHz, sampleRate, amplitude, noiseAmplitude float64, seed int64, length int) []float64 {
	out := DeterministicSine(freqHz, sampleRate, amplitude, length)
	noise := DeterministicNoise(seed, noiseAmplitude, length)
	for i := range out {
		out[i] += noise[i]
	}
	return out
}

// Silence returns an all-zero signal.
func Silence(length int) []float64 {
	return make([]float64, length)
}

// DC generates a constant-valued signal.
func DC(value float64, length int) []float64 {
	return slices.Repeat([]float64{value}, length)
}

// Blocks splits a signal into consecutive views of blockSize samples. The
// final block keeps whatever remains, so it may be shorter.
func Blocks(signal []float64, blockSize int) [][]float64 {
	if blockSize <= 0 || len(signal) == 0 {
		return nil
	}

	out := make([][]float64, 0, (len(signal)+blockSize-1)/blockSize)
	for len(signal) > blockSize {
		out = append(out, signal[:blockSize])
		signal = signal[blockSize:]
	}

	return append(out, signal)
}
