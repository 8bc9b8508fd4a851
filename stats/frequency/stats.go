package frequency

import "math"

// Stats describes the shape of a magnitude spectrum. For sung vowels the
// centroid tracks brightness and flatness separates breath noise (near 1)
// from pitched tone (near 0).
type Stats struct {
	BinCount int
	Sum      float64 // sum of bin magnitudes
	Max      float64
	MaxBin   int
	Energy   float64 // sum of squared magnitudes
	Centroid float64 // amplitude-weighted mean frequency, Hz
	Spread   float64 // standard deviation around the centroid, Hz
	Flatness float64 // geometric over arithmetic mean, 0..1
}

// hzOfBin maps a one-sided spectrum index to Hz. A spectrum of n bins came
// from an FFT of size 2*(n-1).
func hzOfBin(i int, rate float64, n int) float64 {
	return float64(i) * rate / float64(2*(n-1))
}

func magSum(mags []float64) float64 {
	var total float64
	for _, v := range mags {
		total += v
	}

	return total
}

// Calculate computes all descriptors of a one-sided linear magnitude
// spectrum, bin 0 holding DC and the last bin Nyquist. Bin i sits at
// i*rate/(2*(len(mags)-1)) Hz.
func Calculate(mags []float64, rate float64) Stats {
	switch len(mags) {
	case 0:
		return Stats{}
	case 1:
		// DC alone has no shape to describe.
		return Stats{BinCount: 1, Sum: mags[0], Max: mags[0], Energy: mags[0] * mags[0]}
	}

	s := Stats{BinCount: len(mags), Max: mags[0]}
	for i, v := range mags {
		s.Sum += v
		s.Energy += v * v

		if v > s.Max {
			s.Max = v
			s.MaxBin = i
		}
	}

	s.Centroid = centroid(mags, rate, s.Sum)
	s.Spread = spread(mags, rate, s.Centroid, s.Sum)
	s.Flatness = flatness(mags)

	return s
}

// Centroid returns the amplitude-weighted mean frequency in Hz, the classic
// brightness measure. An empty or all-zero spectrum returns 0.
func Centroid(mags []float64, rate float64) float64 {
	return centroid(mags, rate, magSum(mags))
}

func centroid(mags []float64, rate, total float64) float64 {
	n := len(mags)
	if n < 2 || total == 0 {
		return 0
	}

	var acc float64
	for i, v := range mags {
		acc += hzOfBin(i, rate, n) * v
	}

	return acc / total
}

// Spread returns the standard deviation of the spectrum around its centroid
// in Hz. An empty or all-zero spectrum returns 0.
func Spread(mags []float64, rate float64) float64 {
	total := magSum(mags)

	return spread(mags, rate, centroid(mags, rate, total), total)
}

func spread(mags []float64, rate, mid, total float64) float64 {
	n := len(mags)
	if n < 2 || total == 0 {
		return 0
	}

	var acc float64
	for i, v := range mags {
		d := hzOfBin(i, rate, n) - mid
		acc += d * d * v
	}

	return math.Sqrt(acc / total)
}

// Flatness returns the Wiener entropy of the spectrum: the geometric mean
// over the arithmetic mean of the bins above DC. Breathy noise approaches 1,
// a clean tone approaches 0. Returns 0 when fewer than two bins exist or any
// bin above DC is empty.
func Flatness(mags []float64) float64 {
	return flatness(mags)
}

func flatness(mags []float64) float64 {
	n := len(mags)
	if n < 2 {
		return 0
	}

	var lin, logs float64
	for _, v := range mags[1:] {
		// One empty bin zeroes the geometric mean.
		if v <= 0 {
			return 0
		}

		lin += v
		logs += math.Log(v)
	}

	bins := float64(n - 1)

	return math.Exp(logs/bins) / (lin / bins)
}
