package level

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-vocal/internal/testutil"
)

func TestMeasureSine(t *testing.T) {
	m := NewMeter()

	// Amplitude 0.1 sine: RMS = 0.1/sqrt(2), volume = RMS * 300 ≈ 21.2.
	signal := testutil.DeterministicSine(440, 44100, 0.1, 4096)
	got := m.Measure(signal)

	want := 0.1 / math.Sqrt2 * 300
	if math.Abs(got-want) > 0.5 {
		t.Fatalf("Measure: got %v, want ~%v", got, want)
	}
}

func TestMeasureClampsToScale(t *testing.T) {
	m := NewMeter()

	// A full-scale sine overdrives the gain and must clamp at 100.
	signal := testutil.DeterministicSine(440, 44100, 1.0, 4096)
	if got := m.Measure(signal); got != 100 {
		t.Fatalf("Measure full scale: got %v, want 100", got)
	}
}

func TestMeasureSilence(t *testing.T) {
	m := NewMeter()

	if got := m.Measure(testutil.Silence(4096)); got != 0 {
		t.Fatalf("Measure silence: got %v, want 0", got)
	}

	if got := m.Measure(nil); got != 0 {
		t.Fatalf("Measure empty: got %v, want 0", got)
	}
}

func TestMeasureNonFiniteInput(t *testing.T) {
	m := NewMeter()

	got := m.Measure([]float64{math.NaN(), 0.5, -0.5})
	if math.IsNaN(got) {
		t.Fatal("Measure returned NaN")
	}
	if got != 0 {
		t.Fatalf("Measure of non-finite input: got %v, want 0", got)
	}
}

func TestMeasureCustomGain(t *testing.T) {
	m := NewMeter(WithGain(100))

	// Square wave of +-0.2 has RMS exactly 0.2, volume = 20.
	signal := make([]float64, 1024)
	for i := range signal {
		if i%2 == 0 {
			signal[i] = 0.2
		} else {
			signal[i] = -0.2
		}
	}

	got := m.Measure(signal)
	if math.Abs(got-20) > 1e-9 {
		t.Fatalf("Measure with gain 100: got %v, want 20", got)
	}
}

func TestAboveGate(t *testing.T) {
	m := NewMeter()

	if m.AboveGate(3) {
		t.Fatal("volume 3 should not clear the default gate of 5")
	}
	if m.AboveGate(5) {
		t.Fatal("the gate is exclusive; volume 5 should not clear gate 5")
	}
	if !m.AboveGate(21) {
		t.Fatal("volume 21 should clear the default gate of 5")
	}
}

func TestRawValues(t *testing.T) {
	m := NewMeter()

	signal := []float64{0.3, -0.4}
	wantRMS := math.Sqrt((0.09 + 0.16) / 2)

	if got := m.RMS(signal); math.Abs(got-wantRMS) > 1e-12 {
		t.Fatalf("RMS: got %v, want %v", got, wantRMS)
	}
	if got := m.Peak(signal); got != 0.4 {
		t.Fatalf("Peak: got %v, want 0.4", got)
	}
}

func TestOptionValidation(t *testing.T) {
	cfg := ApplyMeterOptions(
		WithSampleRate(-1),
		WithGain(0),
		WithGate(200),
	)

	def := DefaultMeterConfig()
	if cfg.SampleRate != def.SampleRate {
		t.Fatalf("SampleRate: got %v, want default %v", cfg.SampleRate, def.SampleRate)
	}
	if cfg.Gain != def.Gain {
		t.Fatalf("Gain: got %v, want default %v", cfg.Gain, def.Gain)
	}
	if cfg.Gate != def.Gate {
		t.Fatalf("Gate: got %v, want default %v", cfg.Gate, def.Gate)
	}
}
