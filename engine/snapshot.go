package engine

import "time"

// Snapshot is the per-tick analysis result. It is immutable once emitted;
// consumers treat it as a timestamped fact.
type Snapshot struct {
	// FrequencyHz is the raw pitch estimate; 0 means no pitch was found.
	FrequencyHz float64 `json:"frequencyHz"`
	// SmoothedFrequencyHz is the weighted moving average over the recent
	// voiced history.
	SmoothedFrequencyHz float64 `json:"smoothedFrequencyHz"`
	// Note and Octave name the nearest equal-tempered note; Note is "-"
	// when no pitch was found.
	Note   string `json:"note"`
	Octave int    `json:"octave"`
	// CentsOffset is the signed distance to the named note in [-50, 50].
	CentsOffset int `json:"centsOffset"`
	// Volume is the 0..100 loudness scale value.
	Volume float64 `json:"volume"`
	// Confidence scores pitch stability and volume adequacy in [0, 1].
	Confidence float64 `json:"confidence"`
	// Voiced reports whether the gate considered this tick a sung frame.
	Voiced bool `json:"isVoiced"`
	// Stable reports a held phonation: enough history and high confidence.
	Stable bool `json:"isStable"`
	// TimestampMs is the stream position in milliseconds, derived from the
	// sample count rather than the wall clock.
	TimestampMs int64 `json:"timestampMs"`
}

// SessionStats aggregates one capture session, the post-take summary of a
// practice run.
type SessionStats struct {
	Ticks            uint64        `json:"ticks"`
	VoicedTicks      uint64        `json:"voicedTicks"`
	DroppedSnapshots uint64        `json:"droppedSnapshots"`
	MinFrequencyHz   float64       `json:"minFrequencyHz"`
	MaxFrequencyHz   float64       `json:"maxFrequencyHz"`
	MeanConfidence   float64       `json:"meanConfidence"`
	Duration         time.Duration `json:"duration"`
}
