package window

import (
	"math"
	"testing"
)

func within(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestGenerateFiniteCoefficients(t *testing.T) {
	types := []Type{
		TypeRectangular,
		TypeHann,
		TypeHamming,
		TypeBlackman,
		TypeBlackmanHarris4Term,
		TypeFlatTop,
	}

	for _, typ := range types {
		w := Generate(typ, 64)
		if len(w) != 64 {
			t.Fatalf("type %v: len = %d, want 64", typ, len(w))
		}

		for i, v := range w {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("type %v: coefficient %d is %v", typ, i, v)
			}
		}
	}
}

func TestSymmetricShape(t *testing.T) {
	// On an odd symmetric window the center sample aligns every cosine term,
	// so it equals the coefficient sum, 1 for each type here (the flat-top
	// terms sum to 1 within 1e-8).
	for _, typ := range []Type{TypeHann, TypeHamming, TypeBlackman, TypeBlackmanHarris4Term, TypeFlatTop} {
		w := Generate(typ, 65)
		if !within(w[32], 1, 1e-8) {
			t.Errorf("type %v: center = %v, want 1", typ, w[32])
		}

		for i := range 32 {
			if !within(w[i], w[64-i], 1e-12) {
				t.Errorf("type %v: mirror pair %d: %v vs %v", typ, i, w[i], w[64-i])
			}
		}
	}
}

func TestPeriodicForm(t *testing.T) {
	sym := Generate(TypeHann, 16)
	per := Generate(TypeHann, 16, WithPeriodic())

	if sym[15] != 0 {
		t.Fatalf("symmetric Hann ends at %v, want 0", sym[15])
	}

	if per[15] == 0 {
		t.Fatal("periodic Hann must stop short of the zero end point")
	}
}

func TestApplyByType(t *testing.T) {
	buf := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	Apply(TypeRectangular, buf)

	for i, v := range buf {
		if v != float64(i+1) {
			t.Fatalf("rectangular changed sample %d to %v", i, v)
		}
	}

	Apply(TypeHann, buf)

	if buf[0] != 0 {
		t.Fatalf("Hann start = %v, want 0", buf[0])
	}
}

func TestCoherentGain(t *testing.T) {
	// Periodic Hann sums to exactly N/2, so the coherent gain is 0.5.
	w := Generate(TypeHann, 2048, WithPeriodic())

	gain, err := CoherentGain(w)
	if err != nil {
		t.Fatalf("CoherentGain: %v", err)
	}

	if !within(gain, 0.5, 1e-9) {
		t.Fatalf("Hann coherent gain = %v, want 0.5", gain)
	}

	gain, err = CoherentGain(Generate(TypeRectangular, 64))
	if err != nil {
		t.Fatalf("CoherentGain: %v", err)
	}

	if gain != 1 {
		t.Fatalf("rectangular coherent gain = %v, want 1", gain)
	}
}

func TestNamedConstructors(t *testing.T) {
	constructors := []struct {
		name string
		fn   func(int, ...Option) ([]float64, error)
	}{
		{"Hann", Hann},
		{"Hamming", Hamming},
		{"Blackman", Blackman},
		{"BlackmanHarris4Term", BlackmanHarris4Term},
		{"FlatTop", FlatTop},
	}
	for _, c := range constructors {
		w, err := c.fn(64)
		if err != nil || len(w) != 64 {
			t.Errorf("%s(64): len %d, err %v", c.name, len(w), err)
		}

		if _, err := c.fn(0); err == nil {
			t.Errorf("%s(0): want a size error", c.name)
		}
	}
}

func TestApplyCoefficientsProducts(t *testing.T) {
	out, err := ApplyCoefficients([]float64{1, 2, 3}, []float64{0.5, 0.5, 0.5})
	if err != nil {
		t.Fatal(err)
	}

	if out[0] != 0.5 || out[2] != 1.5 {
		t.Fatalf("out = %v, want [0.5 1 1.5]", out)
	}

	buf := []float64{2, 4}
	if err := ApplyCoefficientsInPlace(buf, []float64{0.25, 0.25}); err != nil {
		t.Fatal(err)
	}

	if buf[0] != 0.5 || buf[1] != 1 {
		t.Fatalf("buf = %v, want [0.5 1]", buf)
	}
}

func TestGoldenVectors(t *testing.T) {
	golden := []struct {
		name string
		typ  Type
		tol  float64
		want []float64
	}{
		{"hann", TypeHann, 1e-10, []float64{
			0.0, 0.1882550990706332, 0.6112604669781572, 0.9504844339512095,
			0.9504844339512095, 0.6112604669781573, 0.1882550990706333, 0.0,
		}},
		{"hamming", TypeHamming, 1e-10, []float64{
			0.08, 0.25319469114498255, 0.6423596296199047, 0.9544456792351128,
			0.9544456792351128, 0.6423596296199048, 0.25319469114498266, 0.08,
		}},
		{"blackman", TypeBlackman, 1e-9, []float64{
			0.0, 0.0904534243541281, 0.4591829575459636, 0.9203636180999082,
			0.9203636180999082, 0.4591829575459636, 0.0904534243541281, 0.0,
		}},
	}

	for _, g := range golden {
		got := Generate(g.typ, 8)
		for i := range got {
			if !within(got[i], g.want[i], g.tol) {
				t.Errorf("%s[%d] = %.16f, want %.16f", g.name, i, got[i], g.want[i])
			}
		}
	}
}

func TestErrorPaths(t *testing.T) {
	if got := Generate(TypeHann, 0); got != nil {
		t.Fatalf("Generate with length 0 = %v, want nil", got)
	}

	if _, err := CoherentGain(nil); err == nil {
		t.Error("CoherentGain(nil): want error")
	}

	if _, err := CoherentGain([]float64{1, -1}); err == nil {
		t.Error("CoherentGain of a zero-sum window: want error")
	}

	if _, err := ApplyCoefficients([]float64{1, 2}, []float64{1}); err == nil {
		t.Error("ApplyCoefficients with mismatched lengths: want error")
	}

	if err := ApplyCoefficientsInPlace([]float64{1, 2}, []float64{1}); err == nil {
		t.Error("ApplyCoefficientsInPlace with mismatched lengths: want error")
	}
}
