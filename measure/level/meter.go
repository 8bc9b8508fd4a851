// Package level converts raw capture samples into the 0..100 volume scale
// shared by the voicing gate, the stability tracker, and the UIs.
package level

import (
	"math"

	"github.com/cwbudde/algo-vocal/dsp/core"
	timestats "github.com/cwbudde/algo-vocal/stats/time"
)

// Meter measures perceived input level. It holds no per-call state, so one
// instance can serve every analysis tick of a session.
type Meter struct {
	cfg MeterConfig
}

// NewMeter creates a volume meter with the given options.
func NewMeter(opts ...MeterOption) *Meter {
	return &Meter{cfg: ApplyMeterOptions(opts...)}
}

// Config returns the meter configuration.
func (m *Meter) Config() MeterConfig {
	return m.cfg
}

// Measure returns the volume of the samples on a 0..100 scale: the RMS
// scaled by the configured gain and clamped. Empty or all-zero input yields
// 0. The result is always finite.
func (m *Meter) Measure(samples []float64) float64 {
	rms := timestats.RMS(samples)
	if math.IsNaN(rms) || math.IsInf(rms, 0) {
		return 0
	}

	return core.Clamp(rms*m.cfg.Gain, 0, 100)
}

// RMS returns the unscaled root-mean-square of the samples.
func (m *Meter) RMS(samples []float64) float64 {
	return timestats.RMS(samples)
}

// Peak returns the largest absolute sample value.
func (m *Meter) Peak(samples []float64) float64 {
	return timestats.Peak(samples)
}

// AboveGate reports whether a measured volume clears the silence gate.
func (m *Meter) AboveGate(volume float64) bool {
	return volume > m.cfg.Gate
}
