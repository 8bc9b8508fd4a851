// Package metrics exposes Prometheus instruments for the analysis pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/cwbudde/algo-vocal/engine"
)

// Metrics holds the Prometheus instruments for one analysis process.
type Metrics struct {
	SnapshotsTotal   prometheus.Counter
	VoicedTotal      prometheus.Counter
	DroppedSnapshots prometheus.Gauge
	EngineState      prometheus.Gauge

	Pitch       prometheus.Histogram
	CentsOffset prometheus.Histogram
	Volume      prometheus.Histogram
	Confidence  prometheus.Histogram

	WriteDuration   prometheus.Histogram
	SessionDuration prometheus.Histogram
}

// New creates all instruments and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		SnapshotsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "vocal_snapshots_total",
			Help: "Total number of analysis snapshots emitted",
		}),
		VoicedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "vocal_voiced_snapshots_total",
			Help: "Total number of snapshots that contained voiced sound",
		}),
		DroppedSnapshots: factory.NewGauge(prometheus.GaugeOpts{
			Name: "vocal_dropped_snapshots",
			Help: "Snapshots dropped this session because the consumer lagged",
		}),
		EngineState: factory.NewGauge(prometheus.GaugeOpts{
			Name: "vocal_engine_state",
			Help: "Engine lifecycle state (0=idle, 1=warming, 2=analyzing)",
		}),
		Pitch: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "vocal_pitch_hz",
			Help:    "Distribution of detected pitches",
			Buckets: prometheus.ExponentialBuckets(80, 1.26, 11), // ~third-octave steps, 80 to 800 Hz
		}),
		CentsOffset: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "vocal_cents_offset",
			Help:    "Distance of detected pitches from the nearest note",
			Buckets: prometheus.LinearBuckets(-50, 10, 11), // -50 to +50 cents
		}),
		Volume: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "vocal_volume",
			Help:    "Input volume on the 0..100 scale",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		}),
		Confidence: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "vocal_confidence",
			Help:    "Pitch stability confidence",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11), // 0.0 to 1.0
		}),
		WriteDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "vocal_snapshot_write_duration_seconds",
			Help:    "Time spent serializing and writing one snapshot",
			Buckets: prometheus.ExponentialBuckets(0.00001, 2, 12), // 10us to ~20ms
		}),
		SessionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "vocal_session_duration_seconds",
			Help:    "Duration of completed analysis sessions",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12), // 1s to ~68 minutes
		}),
	}
}

// ObserveSnapshot records one emitted snapshot.
func (m *Metrics) ObserveSnapshot(snap engine.Snapshot) {
	m.SnapshotsTotal.Inc()
	m.Volume.Observe(snap.Volume)
	m.Confidence.Observe(snap.Confidence)

	if snap.Voiced {
		m.VoicedTotal.Inc()
	}

	if snap.FrequencyHz > 0 {
		m.Pitch.Observe(snap.FrequencyHz)
		m.CentsOffset.Observe(float64(snap.CentsOffset))
	}
}

// ObserveWrite records how long one snapshot took to serialize and deliver.
func (m *Metrics) ObserveWrite(d time.Duration) {
	m.WriteDuration.Observe(d.Seconds())
}

// SetEngineState mirrors the engine lifecycle state.
func (m *Metrics) SetEngineState(state engine.State) {
	m.EngineState.Set(float64(state))
}

// ObserveSession records the post-session summary.
func (m *Metrics) ObserveSession(stats engine.SessionStats) {
	m.SessionDuration.Observe(stats.Duration.Seconds())
	m.DroppedSnapshots.Set(float64(stats.DroppedSnapshots))
}
