package core

// EnsureLen returns a slice of length n, reusing buf's capacity when it
// suffices.
func EnsureLen(buf []float64, n int) []float64 {
	if n <= 0 {
		return buf[:0]
	}

	if cap(buf) < n {
		return make([]float64, n)
	}

	return buf[:n]
}

// EnsureComplexLen is EnsureLen for complex spectra.
func EnsureComplexLen(buf []complex128, n int) []complex128 {
	if n <= 0 {
		return buf[:0]
	}

	if cap(buf) < n {
		return make([]complex128, n)
	}

	return buf[:n]
}

// Zero clears buf in place.
func Zero(buf []float64) {
	clear(buf)
}

// CopyInto copies src into dst and reports how many samples landed.
func CopyInto(dst, src []float64) int {
	return copy(dst, src)
}
