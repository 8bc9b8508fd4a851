package spectrum_test

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-vocal/dsp/spectrum"
	"github.com/cwbudde/algo-vocal/internal/testutil"
)

func TestAnalyzerExactBinSine(t *testing.T) {
	a, err := spectrum.NewAnalyzer(
		spectrum.WithSampleRate(44100),
		spectrum.WithFFTSize(4096),
	)
	if err != nil {
		t.Fatalf("NewAnalyzer error: %v", err)
	}

	// Bin 20 sits exactly on the FFT grid, so only window leakage into
	// adjacent bins is expected.
	freq := a.BinFrequency(20)
	signal := testutil.DeterministicSine(freq, 44100, 0.5, 4096)

	mags, err := a.Analyze(signal)
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}

	testutil.RequireFinite(t, mags)

	peak := 0
	for i := range mags {
		if mags[i] > mags[peak] {
			peak = i
		}
	}
	if peak != 20 {
		t.Fatalf("peak bin = %d, want 20", peak)
	}

	if math.Abs(mags[20]-0.5) > 0.01 {
		t.Fatalf("peak magnitude = %v, want ~0.5", mags[20])
	}

	// Hann kernel puts half the peak amplitude into each neighbor.
	if math.Abs(mags[19]-0.25) > 0.01 || math.Abs(mags[21]-0.25) > 0.01 {
		t.Fatalf("neighbor magnitudes = %v, %v, want ~0.25", mags[19], mags[21])
	}

	// Far away from the tone the spectrum should be effectively empty.
	if mags[200] > 1e-6 {
		t.Fatalf("mags[200] = %v, want ~0", mags[200])
	}
}

func TestAnalyzerDCAmplitude(t *testing.T) {
	a, err := spectrum.NewAnalyzer(
		spectrum.WithSampleRate(44100),
		spectrum.WithFFTSize(1024),
	)
	if err != nil {
		t.Fatalf("NewAnalyzer error: %v", err)
	}

	mags, err := a.Analyze(testutil.DC(1.0, 1024))
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}

	if math.Abs(mags[0]-1) > 1e-9 {
		t.Fatalf("DC magnitude = %v, want 1", mags[0])
	}
}

func TestAnalyzerSilence(t *testing.T) {
	a, err := spectrum.NewAnalyzer(spectrum.WithFFTSize(1024))
	if err != nil {
		t.Fatalf("NewAnalyzer error: %v", err)
	}

	mags, err := a.Analyze(testutil.Silence(1024))
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}

	for i, v := range mags {
		if v != 0 {
			t.Fatalf("mags[%d] = %v, want 0 for silence", i, v)
		}
	}
}

func TestAnalyzerInputLengthMismatch(t *testing.T) {
	a, err := spectrum.NewAnalyzer(spectrum.WithFFTSize(1024))
	if err != nil {
		t.Fatalf("NewAnalyzer error: %v", err)
	}

	if _, err := a.Analyze(make([]float64, 512)); err == nil {
		t.Fatal("expected error for short input")
	}
}

func TestAnalyzerFFTSizeRoundsUp(t *testing.T) {
	a, err := spectrum.NewAnalyzer(spectrum.WithFFTSize(3000))
	if err != nil {
		t.Fatalf("NewAnalyzer error: %v", err)
	}

	if got := a.Config().FFTSize; got != 4096 {
		t.Fatalf("FFTSize = %d, want 4096", got)
	}
	if got := a.BinCount(); got != 2049 {
		t.Fatalf("BinCount() = %d, want 2049", got)
	}
}

func TestAnalyzerBinFrequency(t *testing.T) {
	a, err := spectrum.NewAnalyzer(
		spectrum.WithSampleRate(44100),
		spectrum.WithFFTSize(4096),
	)
	if err != nil {
		t.Fatalf("NewAnalyzer error: %v", err)
	}

	want := 44100.0 / 4096.0
	if got := a.BinFrequency(1); math.Abs(got-want) > 1e-12 {
		t.Fatalf("BinFrequency(1) = %v, want %v", got, want)
	}
	if got := a.BinFrequency(0); got != 0 {
		t.Fatalf("BinFrequency(0) = %v, want 0", got)
	}
}

func TestAnalyzerHopFromOverlap(t *testing.T) {
	a, err := spectrum.NewAnalyzer(
		spectrum.WithFFTSize(1024),
		spectrum.WithOverlap(0.75),
	)
	if err != nil {
		t.Fatalf("NewAnalyzer error: %v", err)
	}

	if got := a.Hop(); got != 256 {
		t.Fatalf("Hop() = %d, want 256", got)
	}
}

func TestAnalyzerProcessWaitsForFullFrame(t *testing.T) {
	a, err := spectrum.NewAnalyzer(
		spectrum.WithSampleRate(44100),
		spectrum.WithFFTSize(1024),
	)
	if err != nil {
		t.Fatalf("NewAnalyzer error: %v", err)
	}

	freq := a.BinFrequency(10)
	signal := testutil.DeterministicSine(freq, 44100, 0.5, 2048)

	// First three 256-sample blocks cannot fill the 1024-sample frame.
	var produced bool
	for _, block := range testutil.Blocks(signal[:768], 256) {
		_, produced = a.Process(block)
		if produced {
			t.Fatal("Process produced a frame before the ring filled")
		}
	}

	// The fourth block completes the frame.
	mags, produced := a.Process(signal[768:1024])
	if !produced {
		t.Fatal("Process did not produce a frame once filled")
	}

	peak := 0
	for i := range mags {
		if mags[i] > mags[peak] {
			peak = i
		}
	}
	if peak != 10 {
		t.Fatalf("peak bin = %d, want 10", peak)
	}
	if math.Abs(mags[10]-0.5) > 0.01 {
		t.Fatalf("peak magnitude = %v, want ~0.5", mags[10])
	}
}

func TestAnalyzerProcessHopCadence(t *testing.T) {
	a, err := spectrum.NewAnalyzer(
		spectrum.WithFFTSize(1024),
		spectrum.WithOverlap(0.5),
	)
	if err != nil {
		t.Fatalf("NewAnalyzer error: %v", err)
	}

	signal := testutil.DeterministicSine(440, 44100, 0.5, 1024)
	if _, produced := a.Process(signal); !produced {
		t.Fatal("expected a frame after a full FFT size of samples")
	}

	// A block shorter than the hop must not produce another frame.
	if _, produced := a.Process(signal[:256]); produced {
		t.Fatal("frame produced before a full hop accumulated")
	}

	// Completing the 512-sample hop produces the next frame.
	if _, produced := a.Process(signal[256:512]); !produced {
		t.Fatal("no frame produced after a full hop")
	}
}

func TestAnalyzerResetClearsFrameState(t *testing.T) {
	a, err := spectrum.NewAnalyzer(spectrum.WithFFTSize(1024))
	if err != nil {
		t.Fatalf("NewAnalyzer error: %v", err)
	}

	if _, produced := a.Process(testutil.DC(1.0, 1024)); !produced {
		t.Fatal("expected a frame after filling the ring")
	}

	a.Reset()

	// After Reset the ring is empty again, so a partial fill produces nothing.
	if _, produced := a.Process(testutil.DC(1.0, 512)); produced {
		t.Fatal("frame produced from a cleared ring")
	}
}
