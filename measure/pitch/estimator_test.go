package pitch_test

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-vocal/dsp/core"
	"github.com/cwbudde/algo-vocal/dsp/signal"
	"github.com/cwbudde/algo-vocal/internal/testutil"
	"github.com/cwbudde/algo-vocal/measure/pitch"
)

func newEstimator(t *testing.T, opts ...pitch.EstimatorOption) *pitch.Estimator {
	t.Helper()

	e, err := pitch.NewEstimator(opts...)
	if err != nil {
		t.Fatalf("NewEstimator error: %v", err)
	}

	return e
}

func TestEstimate440(t *testing.T) {
	e := newEstimator(t, pitch.WithSampleRate(44100))

	window := testutil.DeterministicSine(440, 44100, 0.5, 4096)
	est := e.Estimate(window)

	if math.Abs(est.Frequency-440) > 440*0.005 {
		t.Fatalf("Frequency = %v, want 440 within 0.5%%", est.Frequency)
	}
	if est.Lag != 100 {
		t.Fatalf("Lag = %d, want 100 (44100/440 rounded)", est.Lag)
	}
	if est.Strength < 0.9 {
		t.Fatalf("Strength = %v, want > 0.9 for a clean sine", est.Strength)
	}
}

// TestEstimateSweep verifies the accuracy contract across the supported
// range: pure sines must come back within one percent of their frequency.
func TestEstimateSweep(t *testing.T) {
	e := newEstimator(t, pitch.WithSampleRate(44100))

	const steps = 25
	for k := 0; k <= steps; k++ {
		freq := 80 * math.Pow(800.0/80.0, float64(k)/steps)
		window := testutil.DeterministicSine(freq, 44100, 0.5, 4096)

		est := e.Estimate(window)
		if est.Frequency == 0 {
			t.Fatalf("no pitch at %v Hz (strength %v)", freq, est.Strength)
		}

		relErr := math.Abs(est.Frequency-freq) / freq
		if relErr > 0.01 {
			t.Fatalf("at %v Hz: estimated %v Hz, relative error %v > 1%%",
				freq, est.Frequency, relErr)
		}
	}
}

func TestEstimateSilence(t *testing.T) {
	e := newEstimator(t)

	est := e.Estimate(testutil.Silence(4096))
	if est != (pitch.Estimate{}) {
		t.Fatalf("silence: got %+v, want zero estimate", est)
	}
}

func TestEstimateNoiseBelowThreshold(t *testing.T) {
	e := newEstimator(t, pitch.WithSampleRate(44100))

	est := e.Estimate(testutil.DeterministicNoise(7, 0.5, 4096))
	if est.Frequency != 0 {
		t.Fatalf("noise: Frequency = %v, want 0 (strength %v)", est.Frequency, est.Strength)
	}
	if est.Strength >= 0.3 {
		t.Fatalf("noise: Strength = %v, want < threshold 0.3", est.Strength)
	}
}

func TestEstimateNoisySine(t *testing.T) {
	e := newEstimator(t, pitch.WithSampleRate(44100))

	window := testutil.NoisySine(330, 44100, 0.5, 0.05, 11, 4096)
	est := e.Estimate(window)

	if math.Abs(est.Frequency-330) > 330*0.01 {
		t.Fatalf("Frequency = %v, want 330 within 1%%", est.Frequency)
	}
}

// TestEstimateHarmonicRich feeds a vowel-like stack of partials. The octave
// guard must keep the fundamental from losing to the two-period lag.
func TestEstimateHarmonicRich(t *testing.T) {
	e := newEstimator(t, pitch.WithSampleRate(44100))

	gen := signal.NewGenerator(core.WithSampleRate(44100))
	window, err := gen.Harmonic(180, []float64{1, 0.8, 0.5}, 4096)
	if err != nil {
		t.Fatalf("Harmonic error: %v", err)
	}

	est := e.Estimate(window)
	if math.Abs(est.Frequency-180) > 180*0.01 {
		t.Fatalf("Frequency = %v, want 180 within 1%%", est.Frequency)
	}
}

func TestEstimateVibrato(t *testing.T) {
	e := newEstimator(t, pitch.WithSampleRate(44100))

	// 220 Hz with a +-5 Hz, 6 Hz vibrato. The 93 ms window blurs the
	// period, so the estimate may land anywhere inside the excursion.
	window := testutil.VibratoSine(220, 5, 6, 44100, 0.5, 4096)
	est := e.Estimate(window)

	if est.Frequency < 210 || est.Frequency > 230 {
		t.Fatalf("Frequency = %v, want within 220 +- 10", est.Frequency)
	}
	if est.Strength < 0.5 {
		t.Fatalf("Strength = %v, want > 0.5 for vibrato", est.Strength)
	}
}

func TestEstimateShortWindow(t *testing.T) {
	e := newEstimator(t, pitch.WithSampleRate(44100))

	// MinSamples is 2*maxLag+1 = 1103 at the default range.
	if got := e.MinSamples(); got != 1103 {
		t.Fatalf("MinSamples = %d, want 1103", got)
	}

	est := e.Estimate(testutil.DeterministicSine(440, 44100, 0.5, 1102))
	if est != (pitch.Estimate{}) {
		t.Fatalf("short window: got %+v, want zero estimate", est)
	}
}

func TestEstimateDCOffsetRejected(t *testing.T) {
	e := newEstimator(t, pitch.WithSampleRate(44100))

	// A sine riding on a DC offset must still estimate the sine.
	window := testutil.DeterministicSine(261.63, 44100, 0.3, 4096)
	for i := range window {
		window[i] += 0.4
	}

	est := e.Estimate(window)
	if math.Abs(est.Frequency-261.63) > 261.63*0.01 {
		t.Fatalf("Frequency = %v, want 261.63 within 1%%", est.Frequency)
	}
}

func TestEstimatePureDC(t *testing.T) {
	e := newEstimator(t)

	est := e.Estimate(testutil.DC(0.7, 4096))
	if est != (pitch.Estimate{}) {
		t.Fatalf("DC input: got %+v, want zero estimate", est)
	}
}

func TestEstimateNonFiniteInput(t *testing.T) {
	e := newEstimator(t)

	window := testutil.DeterministicSine(440, 44100, 0.5, 4096)
	window[100] = math.NaN()

	est := e.Estimate(window)
	if est.Frequency != 0 || est.Strength != 0 {
		t.Fatalf("NaN input: got %+v, want zero estimate", est)
	}
	if math.IsNaN(est.Frequency) || math.IsNaN(est.Strength) {
		t.Fatalf("NaN leaked into estimate: %+v", est)
	}
}

func TestEstimateDeterministic(t *testing.T) {
	e := newEstimator(t, pitch.WithSampleRate(44100))

	window := testutil.NoisySine(440, 44100, 0.5, 0.02, 3, 4096)

	first := e.Estimate(window)
	for range 3 {
		if got := e.Estimate(window); got != first {
			t.Fatalf("estimates differ: %+v vs %+v", got, first)
		}
	}

	e.Reset()

	if got := e.Estimate(window); got != first {
		t.Fatalf("estimate after Reset differs: %+v vs %+v", got, first)
	}
}

func TestEstimateBelowThresholdKeepsDiagnostics(t *testing.T) {
	// Raise the threshold so even a clean sine fails it: the peak must
	// still be reported through Lag and Strength.
	e := newEstimator(t, pitch.WithSampleRate(44100), pitch.WithThreshold(0.999999))

	window := testutil.NoisySine(220, 44100, 0.4, 0.1, 5, 4096)
	est := e.Estimate(window)

	if est.Frequency != 0 {
		t.Fatalf("Frequency = %v, want 0 below threshold", est.Frequency)
	}
	if est.Lag == 0 || est.Strength == 0 {
		t.Fatalf("diagnostics dropped: %+v", est)
	}
}

func TestNewEstimatorValidation(t *testing.T) {
	cases := []struct {
		name string
		opts []pitch.EstimatorOption
	}{
		{"max_above_nyquist", []pitch.EstimatorOption{
			pitch.WithSampleRate(8000),
			pitch.WithFrequencyRange(80, 4000),
		}},
		{"range_collapsed", []pitch.EstimatorOption{
			pitch.WithSampleRate(44100),
			pitch.WithFrequencyRange(15000, 16000),
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := pitch.NewEstimator(tc.opts...); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestOptionGuards(t *testing.T) {
	cfg := pitch.ApplyEstimatorOptions(
		pitch.WithFrequencyRange(-10, 5),
		pitch.WithThreshold(2),
		pitch.WithSampleRate(0),
	)

	def := pitch.DefaultEstimatorConfig()
	if cfg != def {
		t.Fatalf("invalid options mutated config: %+v vs %+v", cfg, def)
	}
}
