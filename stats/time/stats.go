package time

import "math"

// Stats summarizes the time-domain shape of captured audio, either one
// analysis window or a whole session.
//
//nolint:revive
type Stats struct {
	Length         int
	DC             float64 // mean sample value
	RMS            float64
	RMS_dB         float64
	Max            float64
	MaxPos         int
	Min            float64
	MinPos         int
	Peak           float64 // larger magnitude of Max and Min
	Peak_dB        float64
	Range          float64 // Max - Min
	CrestFactor    float64 // Peak / RMS
	CrestFactor_dB float64
	Energy         float64 // sum of squared samples
	Power          float64 // Energy per sample
	ZeroCrossings  int
	Variance       float64
}

// toDB converts a linear amplitude or ratio to decibels (20*log10).
// Silence maps to -Inf.
func toDB(v float64) float64 {
	a := math.Abs(v)
	if a == 0 {
		return math.Inf(-1)
	}

	return 20 * math.Log10(a)
}

// silenceStats is the result for zero samples: dB values at -Inf, the rest
// zero.
func silenceStats() Stats {
	return Stats{
		RMS_dB:         math.Inf(-1),
		Peak_dB:        math.Inf(-1),
		CrestFactor_dB: math.Inf(-1),
	}
}

// Calculate computes the statistics of samples in one pass. It feeds a
// throwaway [StreamingStats], so batch and streaming results agree down to
// the last bit.
func Calculate(samples []float64) Stats {
	var s StreamingStats
	s.Update(samples)

	return s.Result()
}

// RMS returns the root-mean-square amplitude of samples.
func RMS(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}

	var energy float64
	for _, v := range samples {
		energy += v * v
	}

	return math.Sqrt(energy / float64(len(samples)))
}

// DC returns the mean sample value, the constant offset a capture chain may
// add under the vocal signal.
func DC(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}

	// Kahan compensation keeps the mean stable over long sessions.
	var acc, lost float64
	for _, v := range samples {
		y := v - lost
		next := acc + y
		lost = (next - acc) - y
		acc = next
	}

	return acc / float64(len(samples))
}

// Peak returns the largest absolute sample value.
func Peak(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}

	peak := math.Abs(samples[0])
	for _, v := range samples[1:] {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}

	return peak
}

// CrestFactor returns Peak over RMS, or 0 for silence.
func CrestFactor(samples []float64) float64 {
	rms := RMS(samples)
	if rms == 0 {
		return 0
	}

	return Peak(samples) / rms
}

// ZeroCrossings counts sign changes between consecutive samples. Unvoiced
// frames cross far more often than pitched ones, which makes the rate a
// cheap voicing cue.
func ZeroCrossings(samples []float64) int {
	crossings := 0
	for i := 1; i < len(samples); i++ {
		if samples[i-1]*samples[i] < 0 {
			crossings++
		}
	}

	return crossings
}

// StreamingStats accumulates the same statistics block by block without
// keeping samples around. The engine feeds it every capture block and reads
// the session summary at shutdown.
//
// Variance uses Welford's recurrence, which stays stable over hours of audio
// where a naive sum of squares would cancel badly.
type StreamingStats struct {
	seen      int
	mu        float64 // running mean
	m2        float64 // sum of squared deviations from mu
	energy    float64
	hi, lo    float64
	hiAt      int
	loAt      int
	crossings int
	prev      float64
	primed    bool
}

// NewStreamingStats returns an empty accumulator ready for Update calls.
func NewStreamingStats() *StreamingStats {
	return &StreamingStats{}
}

// Update folds a block of samples into the running statistics.
func (s *StreamingStats) Update(samples []float64) {
	for _, v := range samples {
		s.seen++
		k := float64(s.seen)

		// Welford step: update mean, then the second moment against the
		// pre-update mean.
		d := v - s.mu
		dk := d / k
		s.m2 += d * dk * float64(s.seen-1)
		s.mu += dk

		s.energy += v * v

		if !s.primed {
			s.hi, s.lo = v, v
			s.hiAt, s.loAt = s.seen-1, s.seen-1
			s.primed = true
		} else {
			if v > s.hi {
				s.hi = v
				s.hiAt = s.seen - 1
			}

			if v < s.lo {
				s.lo = v
				s.loAt = s.seen - 1
			}
		}

		if s.seen > 1 && s.prev*v < 0 {
			s.crossings++
		}

		s.prev = v
	}
}

// Count reports how many samples have been accumulated.
func (s *StreamingStats) Count() int {
	return s.seen
}

// Result computes the statistics of everything accumulated so far.
func (s *StreamingStats) Result() Stats {
	if s.seen == 0 {
		return silenceStats()
	}

	nf := float64(s.seen)
	rms := math.Sqrt(s.energy / nf)
	peak := math.Max(math.Abs(s.hi), math.Abs(s.lo))

	var cf, cfDB float64
	if rms > 0 {
		cf = peak / rms
		cfDB = toDB(cf)
	}

	return Stats{
		Length:         s.seen,
		DC:             s.mu,
		RMS:            rms,
		RMS_dB:         toDB(rms),
		Max:            s.hi,
		MaxPos:         s.hiAt,
		Min:            s.lo,
		MinPos:         s.loAt,
		Peak:           peak,
		Peak_dB:        toDB(peak),
		Range:          s.hi - s.lo,
		CrestFactor:    cf,
		CrestFactor_dB: cfDB,
		Energy:         s.energy,
		Power:          s.energy / nf,
		ZeroCrossings:  s.crossings,
		Variance:       s.m2 / nf,
	}
}

// Reset drops all accumulated state so the instance can start a new session.
func (s *StreamingStats) Reset() {
	*s = StreamingStats{}
}
