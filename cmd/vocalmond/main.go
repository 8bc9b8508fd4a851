// Command vocalmond analyzes a capture stream and prints one JSON snapshot
// per analysis tick on stdout, one object per line. Logs go to stderr and
// Prometheus metrics are served over HTTP.
//
// Usage:
//
//	vocalmond [flags]
//
// Examples:
//
//	vocalmond
//	vocalmond -config configs/vocalmond.yaml
//	vocalmond -input take.wav > take.ndjson
//	vocalmond -input take.wav -realtime
//	vocalmond -listen :9101
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-vocal/capture"
	"github.com/cwbudde/algo-vocal/engine"
	"github.com/cwbudde/algo-vocal/internal/config"
	"github.com/cwbudde/algo-vocal/internal/metrics"
	"github.com/cwbudde/algo-vocal/measure/pitch"
	"github.com/cwbudde/algo-vocal/measure/voice"
	"github.com/cwbudde/algo-vocal/note"
	"github.com/cwbudde/algo-vocal/track"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	input := flag.String("input", "mic", `capture source: "mic" or a WAV file path`)
	listen := flag.String("listen", "", "metrics listen address (overrides config)")
	realtime := flag.Bool("realtime", false, "pace WAV input at its real-time rate")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}

		cfg = *loaded
	}

	if *listen != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Listen = *listen
	}

	logger := newLogger(cfg.Logging)

	if err := run(cfg, logger, *input, *realtime); err != nil {
		logger.Error("vocalmond failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger, input string, realtime bool) error {
	src, sampleRate, err := openSource(cfg, input, realtime)
	if err != nil {
		return err
	}

	eng, err := newEngine(cfg, logger, sampleRate)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	logger.Info("starting analysis",
		slog.String("input", input),
		slog.Float64("sample_rate", sampleRate),
		slog.Int("block_size", cfg.Audio.BlockSize),
		slog.Int("window_size", cfg.Audio.WindowSize),
	)

	if err := eng.Start(ctx, src); err != nil {
		if errors.Is(err, capture.ErrUnavailable) {
			return fmt.Errorf("no capture backend available: %w", err)
		}

		return err
	}

	// A file source ends the session on its own once it plays out.
	if wav, ok := src.(*capture.WAVFile); ok {
		done := wav.Done()

		go func() {
			select {
			case <-done:
				logger.Info("input finished")
				cancel()
			case <-ctx.Done():
			}
		}()
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return consume(gctx, eng, m, os.Stdout)
	})

	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		srv := &http.Server{Addr: cfg.Metrics.Listen, Handler: mux}

		logger.Info("metrics listening", slog.String("addr", cfg.Metrics.Listen))

		g.Go(func() error {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}

			return nil
		})

		g.Go(func() error {
			<-gctx.Done()

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()

			return srv.Shutdown(shutdownCtx)
		})
	}

	err = g.Wait()

	if stopErr := eng.Stop(); stopErr != nil && err == nil {
		err = stopErr
	}

	stats := eng.Stats()
	m.ObserveSession(stats)
	m.SetEngineState(eng.State())

	logger.Info("session summary",
		slog.Uint64("ticks", stats.Ticks),
		slog.Uint64("voiced_ticks", stats.VoicedTicks),
		slog.Uint64("dropped_snapshots", stats.DroppedSnapshots),
		slog.Float64("min_frequency_hz", stats.MinFrequencyHz),
		slog.Float64("max_frequency_hz", stats.MaxFrequencyHz),
		slog.Float64("mean_confidence", stats.MeanConfidence),
		slog.Duration("duration", stats.Duration),
	)

	return err
}

// newEngine maps the file configuration onto engine options.
func newEngine(cfg config.Config, logger *slog.Logger, sampleRate float64) (*engine.Engine, error) {
	return engine.New(
		engine.WithSampleRate(sampleRate),
		engine.WithBlockSize(cfg.Audio.BlockSize),
		engine.WithWindowSize(cfg.Audio.WindowSize),
		engine.WithPitchOptions(
			pitch.WithFrequencyRange(cfg.Analysis.MinFrequency, cfg.Analysis.MaxFrequency),
			pitch.WithThreshold(cfg.Analysis.PitchThreshold),
		),
		engine.WithVoiceOptions(
			voice.WithMinVolume(cfg.Analysis.MinVolume),
			voice.WithCentroidBand(cfg.Analysis.CentroidLow, cfg.Analysis.CentroidHigh),
		),
		engine.WithNoteOptions(
			note.WithReference(cfg.Tuner.ReferenceHz),
			note.WithTolerance(cfg.Analysis.ToleranceCents),
		),
		engine.WithTrackOptions(
			track.WithWindow(cfg.Analysis.HistoryWindow()),
			track.WithStableConfidence(cfg.Analysis.StableConfidence),
		),
		engine.WithLogger(logger),
	)
}

// openSource builds the capture source. A WAV file carries its own sample
// rate, which then drives the whole analysis; the microphone uses the
// configured rate.
func openSource(cfg config.Config, input string, realtime bool) (capture.Source, float64, error) {
	if input == "mic" {
		mic, err := capture.NewMic(
			capture.WithSampleRate(float64(cfg.Audio.SampleRate)),
			capture.WithBlockSize(cfg.Audio.BlockSize),
			capture.WithDevice(cfg.Audio.Device),
		)
		if err != nil {
			return nil, 0, err
		}

		return mic, float64(cfg.Audio.SampleRate), nil
	}

	opts := []capture.Option{capture.WithBlockSize(cfg.Audio.BlockSize)}
	if realtime {
		opts = append(opts, capture.WithPacing(true))
	}

	wav, err := capture.NewWAVFile(input, opts...)
	if err != nil {
		return nil, 0, err
	}

	return wav, float64(wav.SampleRate()), nil
}

// consume writes one NDJSON line per snapshot until ctx ends.
func consume(ctx context.Context, eng *engine.Engine, m *metrics.Metrics, w io.Writer) error {
	enc := json.NewEncoder(w)

	for {
		select {
		case <-ctx.Done():
			return nil
		case snap := <-eng.Snapshots():
			start := time.Now()
			if err := enc.Encode(snap); err != nil {
				return fmt.Errorf("write snapshot: %w", err)
			}

			m.ObserveWrite(time.Since(start))
			m.ObserveSnapshot(snap)
			m.SetEngineState(eng.State())
		}
	}
}

// newLogger builds the stderr logger; stdout is reserved for snapshots.
func newLogger(cfg config.LoggingConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}

	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	default:
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}
