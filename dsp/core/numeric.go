package core

import (
	"math"
	"math/bits"
)

const defaultEpsilon = 1e-12

// Clamp limits value to the inclusive range [lo, hi]. Swapped bounds are
// reordered first.
func Clamp(value, lo, hi float64) float64 {
	if lo > hi {
		lo, hi = hi, lo
	}

	switch {
	case value < lo:
		return lo
	case value > hi:
		return hi
	default:
		return value
	}
}

// NearlyEqual reports whether a and b agree within eps, absolutely near zero
// and relatively elsewhere. Non-positive eps falls back to 1e-12.
func NearlyEqual(a, b, eps float64) bool {
	if eps <= 0 {
		eps = defaultEpsilon
	}

	diff := math.Abs(a - b)
	if diff <= eps {
		return true
	}

	scale := math.Max(math.Abs(a), math.Abs(b))

	return scale > 0 && diff/scale <= eps
}

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// NextPowerOfTwo returns the smallest power of two >= n. Values <= 1 map
// to 1.
func NextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}

	return 1 << bits.Len(uint(n-1))
}

// DBToLinear converts dB to linear amplitude (20*log10 convention).
func DBToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}

// LinearToDB converts linear amplitude to dB (20*log10 convention). Zero
// maps to -Inf, negative input to NaN.
func LinearToDB(linear float64) float64 {
	switch {
	case linear < 0:
		return math.NaN()
	case linear == 0:
		return math.Inf(-1)
	default:
		return 20 * math.Log10(linear)
	}
}
