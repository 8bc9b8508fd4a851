// Package track smooths successive pitch readings and scores how stable the
// current phonation is.
//
// One tracker follows one voice session. Voiced frames enter a bounded
// history covering the configured window; unvoiced frames start a grace
// countdown that clears the history, so the moving average never bridges two
// unrelated phonations.
package track

import (
	"math"

	"github.com/cwbudde/algo-vocal/dsp/core"
	timestats "github.com/cwbudde/algo-vocal/stats/time"
)

// Tracker folds voiced (frequency, volume) samples into a bounded history
// and derives a smoothed frequency and a confidence score from it. Methods
// are not safe for concurrent use; the analysis loop owns one tracker per
// session.
type Tracker struct {
	cfg      TrackerConfig
	capacity int

	// Time-ordered histories, oldest first. Length never exceeds capacity.
	freqs   []float64
	volumes []float64

	gap int
}

// NewTracker creates a stability tracker. The history capacity is the number
// of analysis frames that fit into the configured window at the block rate.
func NewTracker(opts ...TrackerOption) *Tracker {
	cfg := ApplyTrackerOptions(opts...)

	capacity := int(math.Ceil(cfg.Window.Seconds() * cfg.SampleRate / float64(cfg.BlockSize)))
	if capacity < 1 {
		capacity = 1
	}

	return &Tracker{
		cfg:      cfg,
		capacity: capacity,
		freqs:    make([]float64, 0, capacity),
		volumes:  make([]float64, 0, capacity),
	}
}

// Config returns the tracker configuration.
func (t *Tracker) Config() TrackerConfig {
	return t.cfg
}

// Capacity returns the bounded history length in frames.
func (t *Tracker) Capacity() int {
	return t.capacity
}

// Push records a voiced frame, evicting the oldest entry once the history is
// full. Non-finite samples would poison the variance and never enter the
// history.
func (t *Tracker) Push(freqHz, volume float64) {
	if !isFinite(freqHz) || !isFinite(volume) {
		return
	}

	t.gap = 0

	if len(t.freqs) == t.capacity {
		copy(t.freqs, t.freqs[1:])
		copy(t.volumes, t.volumes[1:])
		t.freqs[t.capacity-1] = freqHz
		t.volumes[t.capacity-1] = volume

		return
	}

	t.freqs = append(t.freqs, freqHz)
	t.volumes = append(t.volumes, volume)
}

// MarkUnvoiced records a frame without voicing. Once the grace period is
// exhausted the history clears.
func (t *Tracker) MarkUnvoiced() {
	if t.gap > t.cfg.Grace {
		return
	}

	t.gap++
	if t.gap > t.cfg.Grace {
		t.clear()
	}
}

// Smoothed returns the weighted moving average of the newest history
// samples. The weights are normalized by the weight actually present, so a
// freshly started history is averaged over what exists rather than diluted
// toward zero. An empty history returns 0.
func (t *Tracker) Smoothed() float64 {
	n := len(t.freqs)
	if n == 0 {
		return 0
	}

	k := len(t.cfg.SmoothingWeights)
	if k > n {
		k = n
	}

	var sum, weight float64

	for i := 0; i < k; i++ {
		w := t.cfg.SmoothingWeights[i]
		sum += w * t.freqs[n-1-i]
		weight += w
	}

	if weight == 0 {
		return t.freqs[n-1]
	}

	return sum / weight
}

// Confidence combines frequency stability and volume adequacy into a score
// in [0, 1]. Below MinSamples the history is too short to judge and the
// score is 0.
func (t *Tracker) Confidence() float64 {
	if len(t.freqs) < t.cfg.MinSamples {
		return 0
	}

	freqStats := timestats.Calculate(t.freqs)
	volumeStats := timestats.Calculate(t.volumes)

	stability := 1 - freqStats.Variance/t.cfg.VarianceNormalizer
	if stability < 0 {
		stability = 0
	}

	adequacy := volumeStats.DC / t.cfg.VolumeNormalizer
	if adequacy < 0 {
		adequacy = 0
	}
	if adequacy > 1 {
		adequacy = 1
	}

	return core.Clamp(stability*adequacy, 0, 1)
}

// Stable reports whether the current phonation is held: enough history and
// confidence above the configured threshold.
func (t *Tracker) Stable() bool {
	return len(t.freqs) >= t.cfg.MinSamples && t.Confidence() > t.cfg.StableConfidence
}

// Len returns the current history length in frames.
func (t *Tracker) Len() int {
	return len(t.freqs)
}

// Reset drops the history and the gap accounting.
func (t *Tracker) Reset() {
	t.clear()
	t.gap = 0
}

func (t *Tracker) clear() {
	t.freqs = t.freqs[:0]
	t.volumes = t.volumes[:0]
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
