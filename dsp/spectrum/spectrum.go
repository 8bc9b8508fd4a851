package spectrum

import (
	"sync"

	"github.com/cwbudde/algo-vecmath"
)

// scratch carries split real/imaginary planes between calls, so steady state
// allocates only the caller-visible output slice.
type scratch struct {
	planes []float64
}

var pool = sync.Pool{
	New: func() any { return &scratch{} },
}

// split unpacks interleaved complex bins into pooled re/im planes.
func split(in []complex128) (re, im []float64, s *scratch) {
	s = pool.Get().(*scratch)

	need := 2 * len(in)
	if cap(s.planes) < need {
		s.planes = make([]float64, need)
	} else {
		s.planes = s.planes[:need]
	}

	re, im = s.planes[:len(in)], s.planes[len(in):]
	for i, c := range in {
		re[i] = real(c)
		im[i] = imag(c)
	}

	return re, im, s
}

// Magnitude returns |X[k]| for each complex bin, dispatching to the SIMD
// kernels in vecmath.
func Magnitude(in []complex128) []float64 {
	if len(in) == 0 {
		return nil
	}

	out := make([]float64, len(in))
	re, im, s := split(in)
	vecmath.Magnitude(out, re, im)
	pool.Put(s)

	return out
}

// MagnitudeFromParts computes sqrt(re^2 + im^2) into dst for callers that
// already keep split planes, allocating nothing. All slices must share one
// length.
func MagnitudeFromParts(dst, re, im []float64) {
	vecmath.Magnitude(dst, re, im)
}

// Power returns |X[k]|^2 for each complex bin.
func Power(in []complex128) []float64 {
	if len(in) == 0 {
		return nil
	}

	out := make([]float64, len(in))
	re, im, s := split(in)
	vecmath.Power(out, re, im)
	pool.Put(s)

	return out
}

// PowerFromParts computes re^2 + im^2 into dst, the allocation-free variant
// of [Power]. All slices must share one length.
func PowerFromParts(dst, re, im []float64) {
	vecmath.Power(dst, re, im)
}
