package spectrum_test

import (
	"fmt"

	"github.com/cwbudde/algo-vocal/dsp/spectrum"
)

func ExampleMagnitude() {
	mag := spectrum.Magnitude([]complex128{3 + 4i, 5i})
	fmt.Printf("%.0f %.0f\n", mag[0], mag[1])
	// Output:
	// 5 5
}

func ExampleAnalyzer_BinFrequency() {
	a, _ := spectrum.NewAnalyzer(
		spectrum.WithSampleRate(44100),
		spectrum.WithFFTSize(4096),
	)
	fmt.Printf("%.2f Hz per bin, %d bins\n", a.BinFrequency(1), a.BinCount())
	// Output:
	// 10.77 Hz per bin, 2049 bins
}
