package testutil

import (
	"math"
	"slices"
	"testing"
)

func TestDeterministicSine(t *testing.T) {
	s := DeterministicSine(220, 44100, 1, 100)
	if len(s) != 100 {
		t.Fatalf("len = %d, want 100", len(s))
	}

	// Phase starts at zero.
	if math.Abs(s[0]) > 1e-15 {
		t.Fatalf("first sample = %v, want 0", s[0])
	}

	for i, v := range s {
		if v < -1 || v > 1 {
			t.Fatalf("sample %d = %v exceeds the amplitude", i, v)
		}
	}

	if !slices.Equal(s, DeterministicSine(220, 44100, 1, 100)) {
		t.Fatal("same arguments produced different samples")
	}
}

func TestVibratoSineStaysBounded(t *testing.T) {
	s := VibratoSine(220, 5, 6, 44100, 0.8, 4410)
	if len(s) != 4410 {
		t.Fatalf("len = %d, want 4410", len(s))
	}
	for i, v := range s {
		if v < -0.8 || v > 0.8 {
			t.Fatalf("s[%d] = %v out of range", i, v)
		}
	}
}

func TestVibratoSineZeroDepthMatchesSine(t *testing.T) {
	a := VibratoSine(440, 0, 6, 44100, 1.0, 64)
	b := DeterministicSine(440, 44100, 1.0, 64)
	for i := range a {
		if math.Abs(a[i]-b[i]) > 1e-12 {
			t.Fatalf("index %d: vibrato %v, sine %v", i, a[i], b[i])
		}
	}
}

func TestDeterministicNoise(t *testing.T) {
	a := DeterministicNoise(9, 0.5, 128)
	b := DeterministicNoise(9, 0.5, 128)

	if len(a) != 128 {
		t.Fatalf("len = %d, want 128", len(a))
	}

	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same seed diverged at sample %d", i)
		}

		if a[i] < -0.5 || a[i] >= 0.5 {
			t.Fatalf("sample %d = %v outside [-0.5, 0.5)", i, a[i])
		}
	}

	if slices.Equal(a, DeterministicNoise(10, 0.5, 128)) {
		t.Fatal("different seeds produced identical noise")
	}
}

func TestNoisySine(t *testing.T) {
	clean := DeterministicSine(440, 44100, 0.5, 64)
	noisy := NoisySine(440, 44100, 0.5, 0.01, 7, 64)
	if len(noisy) != 64 {
		t.Fatalf("len = %d, want 64", len(noisy))
	}

	same := true
	for i := range clean {
		if clean[i] != noisy[i] {
			same = false
		}
		if math.Abs(clean[i]-noisy[i]) > 0.01 {
			t.Fatalf("index %d: noise exceeds amplitude: %v vs %v", i, clean[i], noisy[i])
		}
	}
	if same {
		t.Fatal("noisy sine identical to clean sine")
	}
}

func TestSilence(t *testing.T) {
	s := Silence(16)
	if len(s) != 16 {
		t.Fatalf("len = %d, want 16", len(s))
	}

	for i, v := range s {
		if v != 0 {
			t.Fatalf("sample %d = %v, want 0", i, v)
		}
	}
}

func TestDC(t *testing.T) {
	for i, v := range DC(-0.3, 6) {
		if v != -0.3 {
			t.Fatalf("DC[%d] = %v, want -0.3", i, v)
		}
	}
}

func TestBlocks(t *testing.T) {
	signal := []float64{1, 2, 3, 4, 5}

	blocks := Blocks(signal, 2)
	if len(blocks) != 3 {
		t.Fatalf("block count = %d, want 3", len(blocks))
	}
	if len(blocks[2]) != 1 || blocks[2][0] != 5 {
		t.Fatalf("unexpected final block: %v", blocks[2])
	}

	if got := Blocks(signal, 5); len(got) != 1 {
		t.Fatalf("exact fit should yield one block, got %d", len(got))
	}

	if got := Blocks(signal, 0); got != nil {
		t.Fatalf("Blocks with zero size = %v, want nil", got)
	}
}
