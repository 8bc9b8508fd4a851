// Command vocaltuner shows a live vocal tuner in the terminal: the nearest
// note, how far the voice is off in cents, and whether the pitch is held
// steady.
//
// Usage:
//
//	vocaltuner [flags]
//
// Keys:
//
//	r  toggle the reference tone
//	q  quit
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/cwbudde/algo-vocal/capture"
	"github.com/cwbudde/algo-vocal/engine"
	"github.com/cwbudde/algo-vocal/internal/config"
	"github.com/cwbudde/algo-vocal/measure/pitch"
	"github.com/cwbudde/algo-vocal/measure/voice"
	"github.com/cwbudde/algo-vocal/note"
	"github.com/cwbudde/algo-vocal/track"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	reference := flag.Float64("reference", 0, "A4 reference in Hz (overrides config)")
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

	if *reference != 0 {
		cfg.Tuner.ReferenceHz = *reference
		if err := cfg.Tuner.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "error: vocaltuner needs an interactive terminal")
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	mic, err := capture.NewMic(
		capture.WithSampleRate(float64(cfg.Audio.SampleRate)),
		capture.WithBlockSize(cfg.Audio.BlockSize),
		capture.WithDevice(cfg.Audio.Device),
	)
	if err != nil {
		if errors.Is(err, capture.ErrUnavailable) {
			return fmt.Errorf("no capture backend available: %w", err)
		}

		return err
	}

	eng, err := engine.New(
		engine.WithSampleRate(float64(cfg.Audio.SampleRate)),
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
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := eng.Start(ctx, mic); err != nil {
		if errors.Is(err, capture.ErrUnavailable) {
			return fmt.Errorf("no capture backend available: %w", err)
		}

		return err
	}

	tone := newTonePlayer(cfg.Tuner.ReferenceHz, cfg.Audio.SampleRate)
	defer tone.Close()

	p := tea.NewProgram(newModel(cfg, tone), tea.WithAltScreen())

	go forward(ctx, eng, p)

	_, uiErr := p.Run()

	if stopErr := eng.Stop(); stopErr != nil && uiErr == nil {
		uiErr = stopErr
	}

	return uiErr
}

// forward turns engine snapshots into UI messages until the context ends.
func forward(ctx context.Context, eng *engine.Engine, p *tea.Program) {
	for {
		select {
		case <-ctx.Done():
			p.Quit()

			return
		case snap := <-eng.Snapshots():
			p.Send(snapshotMsg(snap))
		}
	}
}
