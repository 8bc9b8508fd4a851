package main

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"github.com/ebitengine/oto/v3"
)

// toneReader streams an endless sine as little-endian float32 frames. The
// short attack ramp avoids a click when the tone starts.
type toneReader struct {
	step   float64
	phase  float64
	attack float64
	gain   float64
}

func (r *toneReader) Read(p []byte) (int, error) {
	n := len(p) / 4
	for i := range n {
		if r.attack < 1 {
			r.attack += 1.0 / 2048
			if r.attack > 1 {
				r.attack = 1
			}
		}

		v := float32(math.Sin(r.phase) * r.gain * r.attack)
		binary.LittleEndian.PutUint32(p[4*i:], math.Float32bits(v))

		r.phase += r.step
		if r.phase >= 2*math.Pi {
			r.phase -= 2 * math.Pi
		}
	}

	return n * 4, nil
}

// tonePlayer plays the reference tone through the default output device.
// The audio context is created on first use and kept; a process only gets
// one.
type tonePlayer struct {
	freqHz     float64
	sampleRate int

	mu     sync.Mutex
	ctx    *oto.Context
	player *oto.Player
}

func newTonePlayer(freqHz float64, sampleRate int) *tonePlayer {
	return &tonePlayer{freqHz: freqHz, sampleRate: sampleRate}
}

// Toggle starts the tone when silent and stops it when playing. It reports
// whether the tone is now playing.
func (t *tonePlayer) Toggle() (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.player != nil {
		err := t.player.Close()
		t.player = nil

		return false, err
	}

	if t.ctx == nil {
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   t.sampleRate,
			ChannelCount: 1,
			Format:       oto.FormatFloat32LE,
		})
		if err != nil {
			return false, fmt.Errorf("audio output: %w", err)
		}
		<-ready

		t.ctx = ctx
	}

	t.player = t.ctx.NewPlayer(&toneReader{
		step: 2 * math.Pi * t.freqHz / float64(t.sampleRate),
		gain: 0.2,
	})
	t.player.Play()

	return true, nil
}

// Close stops the tone if it is playing.
func (t *tonePlayer) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.player != nil {
		t.player.Close()
		t.player = nil
	}
}
