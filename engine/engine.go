// Package engine runs the per-session vocal analysis loop. Capture frames
// enter a ring buffer; each delivered block triggers one tick that measures
// volume, spectral centroid, voicing, pitch, note, and stability, and emits
// one immutable snapshot.
//
// The capture callback only copies samples and signals the loop, so the
// audio thread never waits on analysis or on consumers.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cwbudde/algo-vocal/capture"
	"github.com/cwbudde/algo-vocal/dsp/ring"
	"github.com/cwbudde/algo-vocal/dsp/spectrum"
	"github.com/cwbudde/algo-vocal/measure/level"
	"github.com/cwbudde/algo-vocal/measure/pitch"
	"github.com/cwbudde/algo-vocal/measure/voice"
	"github.com/cwbudde/algo-vocal/note"
	freqstats "github.com/cwbudde/algo-vocal/stats/frequency"
	timestats "github.com/cwbudde/algo-vocal/stats/time"
	"github.com/cwbudde/algo-vocal/track"
)

// ErrAlreadyRunning reports a Start on an engine that is not idle.
var ErrAlreadyRunning = errors.New("engine: already running")

// State identifies the lifecycle phase of an engine session.
type State int

const (
	// StateIdle means no session is running.
	StateIdle State = iota
	// StateWarming means capture is live but the window has not filled yet;
	// no snapshots are emitted.
	StateWarming
	// StateAnalyzing means snapshots are being emitted.
	StateAnalyzing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateWarming:
		return "warming"
	case StateAnalyzing:
		return "analyzing"
	default:
		return "unknown"
	}
}

// Engine analyzes one capture session at a time. Each session is Start →
// snapshots → Stop; after Stop the engine is idle with cleared buffers and
// can start again. Engines are independent; create one per concurrent
// session.
type Engine struct {
	cfg Config
	log *slog.Logger
	now func() time.Time

	buffer    *ring.Ring
	meter     *level.Meter
	analyzer  *spectrum.Analyzer
	detector  *voice.Detector
	estimator *pitch.Estimator
	mapper    *note.Mapper
	tracker   *track.Tracker

	// Loop-owned tick state.
	window    []float64
	centroid  float64
	lastTotal uint64
	one       [1]float64

	snapshots chan Snapshot
	dropped   atomic.Uint64

	mu         sync.Mutex
	state      State
	src        capture.Source
	ticks      chan struct{}
	quit       chan struct{}
	started    time.Time
	sessionDur time.Duration

	ticksTotal  uint64
	voicedTicks uint64
	freqAgg     *timestats.StreamingStats
	confAgg     *timestats.StreamingStats

	wg sync.WaitGroup
}

// New creates an analysis engine. The window must be large enough for the
// configured pitch range: the estimator needs two full periods of the
// lowest detectable frequency plus one sample.
func New(opts ...Option) (*Engine, error) {
	cfg := ApplyOptions(opts...)

	buffer, err := ring.New(cfg.WindowSize)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	estimator, err := pitch.NewEstimator(append(cfg.PitchOptions, pitch.WithSampleRate(cfg.SampleRate))...)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	if need := estimator.MinSamples(); cfg.WindowSize < need {
		return nil, fmt.Errorf("engine: window size %d too small for the pitch range: need %d samples",
			cfg.WindowSize, need)
	}

	analyzer, err := spectrum.NewAnalyzer(
		spectrum.WithSampleRate(cfg.SampleRate),
		spectrum.WithFFTSize(cfg.WindowSize),
	)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	meter := level.NewMeter(append(cfg.LevelOptions, level.WithSampleRate(cfg.SampleRate))...)
	tracker := track.NewTracker(append(cfg.TrackOptions,
		track.WithSampleRate(cfg.SampleRate),
		track.WithBlockSize(cfg.BlockSize))...)

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Engine{
		cfg:       cfg,
		log:       logger,
		now:       now,
		buffer:    buffer,
		meter:     meter,
		analyzer:  analyzer,
		detector:  voice.NewDetector(cfg.VoiceOptions...),
		estimator: estimator,
		mapper:    note.NewMapper(cfg.NoteOptions...),
		tracker:   tracker,
		window:    make([]float64, cfg.WindowSize),
		snapshots: make(chan Snapshot, cfg.SnapshotBuffer),
		freqAgg:   timestats.NewStreamingStats(),
		confAgg:   timestats.NewStreamingStats(),
	}, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// State returns the current lifecycle phase.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.state
}

// Snapshots returns the delivery channel. When the consumer lags, the
// oldest pending snapshot is dropped and counted; delivery never blocks the
// analysis loop. The channel stays open across sessions, so consumers
// should select against their own context.
func (e *Engine) Snapshots() <-chan Snapshot {
	return e.snapshots
}

// Start begins a capture session. Only an idle engine can start. The only
// failure callers need to distinguish is an unavailable capture backend,
// surfaced as a wrapped capture.ErrUnavailable.
//
// Cancelling ctx pauses the analysis loop; Stop still releases the source
// and resets the session.
func (e *Engine) Start(ctx context.Context, src capture.Source) error {
	if src == nil {
		return fmt.Errorf("engine: nil capture source")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateIdle {
		return ErrAlreadyRunning
	}

	e.ticks = make(chan struct{}, 1)
	e.quit = make(chan struct{})
	e.src = src
	e.lastTotal = 0
	e.centroid = 0
	e.started = e.now()
	e.sessionDur = 0
	e.ticksTotal = 0
	e.voicedTicks = 0
	e.dropped.Store(0)
	e.freqAgg.Reset()
	e.confAgg.Reset()

	buffer := e.buffer
	ticks := e.ticks

	err := src.Start(func(samples []float64) {
		buffer.PushBlock(samples)
		select {
		case ticks <- struct{}{}:
		default:
		}
	})
	if err != nil {
		e.src = nil
		e.quit = nil

		return fmt.Errorf("engine: start capture: %w", err)
	}

	e.state = StateWarming
	e.log.Info("session started",
		slog.Float64("sample_rate", e.cfg.SampleRate),
		slog.Int("block_size", e.cfg.BlockSize),
		slog.Int("window_size", e.cfg.WindowSize),
	)

	e.wg.Add(1)

	go e.run(ctx, e.quit, e.ticks)

	return nil
}

// Stop ends the session synchronously: the source stops first, the loop
// drains, and the ring and history reset. Stopping an idle engine is a
// no-op, and a second Stop is always safe.
func (e *Engine) Stop() error {
	e.mu.Lock()
	if e.state == StateIdle {
		e.mu.Unlock()

		return nil
	}

	src := e.src
	quit := e.quit
	e.src = nil
	e.quit = nil
	e.mu.Unlock()

	var srcErr error
	if src != nil {
		srcErr = src.Stop()
	}

	if quit != nil {
		close(quit)
	}

	e.wg.Wait()

	e.buffer.Reset()
	e.tracker.Reset()
	e.analyzer.Reset()
	e.estimator.Reset()
	e.centroid = 0
	e.lastTotal = 0

	e.mu.Lock()
	e.sessionDur = e.now().Sub(e.started)
	stats := e.sessionStatsLocked()
	e.state = StateIdle
	e.mu.Unlock()

	e.log.Info("session stopped",
		slog.Uint64("ticks", stats.Ticks),
		slog.Uint64("voiced_ticks", stats.VoicedTicks),
		slog.Uint64("dropped_snapshots", stats.DroppedSnapshots),
		slog.Duration("duration", stats.Duration),
	)

	if srcErr != nil {
		return fmt.Errorf("engine: stop capture: %w", srcErr)
	}

	return nil
}

// Stats returns aggregate counters for the running or most recent session.
func (e *Engine) Stats() SessionStats {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.sessionStatsLocked()
}

func (e *Engine) sessionStatsLocked() SessionStats {
	stats := SessionStats{
		Ticks:            e.ticksTotal,
		VoicedTicks:      e.voicedTicks,
		DroppedSnapshots: e.dropped.Load(),
	}

	if e.sessionDur > 0 {
		stats.Duration = e.sessionDur
	} else if !e.started.IsZero() {
		stats.Duration = e.now().Sub(e.started)
	}

	if e.freqAgg.Count() > 0 {
		result := e.freqAgg.Result()
		stats.MinFrequencyHz = result.Min
		stats.MaxFrequencyHz = result.Max
	}

	if e.confAgg.Count() > 0 {
		stats.MeanConfidence = e.confAgg.Result().DC
	}

	return stats
}

func (e *Engine) run(ctx context.Context, quit <-chan struct{}, ticks <-chan struct{}) {
	defer e.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-quit:
			return
		case <-ticks:
			e.tick()
		}
	}
}

// tick runs one analysis pass over the current window. All numeric edge
// cases degrade to zero values inside the tick; nothing here returns an
// error or blocks.
func (e *Engine) tick() {
	window, total := e.buffer.SnapshotTotal(e.window)
	e.window = window

	newSamples := int(total - e.lastTotal)
	if newSamples <= 0 {
		return // stale signal; these samples rode an earlier coalesced tick
	}

	e.lastTotal = total

	// Feed only the samples that arrived since the previous tick into the
	// streaming spectrum, so coalesced ticks do not double-count.
	if newSamples > len(window) {
		newSamples = len(window)
	}
	if mags, ok := e.analyzer.Process(window[len(window)-newSamples:]); ok {
		e.centroid = freqstats.Centroid(mags, e.cfg.SampleRate)
	}

	if total < uint64(len(window)) {
		return // still warming
	}

	e.mu.Lock()
	if e.state == StateWarming {
		e.state = StateAnalyzing
		e.log.Info("window warm, analyzing")
	}
	e.mu.Unlock()

	volume := e.meter.Measure(window)
	voiced := e.detector.Voiced(volume, e.centroid)

	var freq float64
	if voiced {
		freq = e.estimator.Estimate(window).Frequency
	}
	if !isFinite(freq) || freq < 0 {
		freq = 0
	}

	// Only a found pitch extends the phonation history; a voiced tick
	// without one still counts toward the grace period.
	if freq > 0 {
		e.tracker.Push(freq, volume)
	} else {
		e.tracker.MarkUnvoiced()
	}

	info := e.mapper.Map(freq)
	confidence := e.tracker.Confidence()

	snap := Snapshot{
		FrequencyHz:         freq,
		SmoothedFrequencyHz: e.tracker.Smoothed(),
		Note:                info.Name,
		Octave:              info.Octave,
		CentsOffset:         info.Cents,
		Volume:              volume,
		Confidence:          confidence,
		Voiced:              voiced,
		Stable:              e.tracker.Stable(),
		TimestampMs:         int64(float64(total) / e.cfg.SampleRate * 1000),
	}

	e.emit(snap)

	e.mu.Lock()
	e.ticksTotal++
	if voiced {
		e.voicedTicks++
	}
	if freq > 0 {
		e.one[0] = freq
		e.freqAgg.Update(e.one[:])
	}
	e.one[0] = confidence
	e.confAgg.Update(e.one[:])
	e.mu.Unlock()
}

// emit delivers a snapshot without ever blocking the loop: when the
// consumer lags, the oldest pending snapshot is dropped and counted.
func (e *Engine) emit(snap Snapshot) {
	select {
	case e.snapshots <- snap:
		return
	default:
	}

	select {
	case <-e.snapshots:
		e.dropped.Add(1)
	default:
	}

	select {
	case e.snapshots <- snap:
	default:
		e.dropped.Add(1)
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
