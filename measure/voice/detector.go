// Package voice decides whether a capture frame contains voiced sound.
//
// Autocorrelation alone cannot tell true silence from octave-doubled or
// sub-harmonic artifacts; gating on loudness and the spectral centroid
// suppresses both before any pitch is reported.
package voice

// Detector gates analysis frames on volume and spectral centroid.
type Detector struct {
	cfg DetectorConfig
}

// NewDetector creates a voice activity detector with the given options.
func NewDetector(opts ...DetectorOption) *Detector {
	return &Detector{cfg: ApplyDetectorOptions(opts...)}
}

// Config returns the detector configuration.
func (d *Detector) Config() DetectorConfig {
	return d.cfg
}

// Voiced reports whether a frame with the given volume (0..100 scale) and
// spectral centroid (Hz) counts as voiced sound. Both gates must pass:
// volume above the minimum AND centroid inside the vocal band.
//
// A centroid of 0 (the guarded value from an empty or all-zero spectrum)
// falls below the band and is never voiced.
func (d *Detector) Voiced(volume, centroidHz float64) bool {
	if volume <= d.cfg.MinVolume {
		return false
	}

	return centroidHz >= d.cfg.CentroidLow && centroidHz <= d.cfg.CentroidHigh
}
