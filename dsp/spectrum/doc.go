// Package spectrum turns capture windows into one-sided magnitude spectra.
//
// The FFT itself comes from an external backend; this package owns the
// windowing, normalization, and bin extraction around it. The Analyzer is
// the per-tick entry point used by the voicing gate, while the free
// functions operate on complex bins produced elsewhere.
package spectrum
