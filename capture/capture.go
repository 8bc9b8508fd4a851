// Package capture is the audio input boundary: a live microphone source and
// a WAV file source, both delivering mono float64 frames in [-1, 1] to a
// callback.
package capture

import (
	"errors"

	"github.com/gen2brain/malgo"
)

// ErrUnavailable reports that no usable capture backend exists on this host.
// It is the only capture failure callers are expected to distinguish.
var ErrUnavailable = errors.New("capture: no capture device available")

// Source delivers sample frames to a callback until stopped.
//
// The callback runs on the source's own thread or goroutine, must return
// quickly, and must not retain the slice between calls; sources reuse it.
type Source interface {
	Start(fn func(samples []float64)) error
	// Stop ends delivery and releases resources. Calling it again is a no-op.
	Stop() error
}

// Supported reports whether the host can initialize an audio capture
// context at all. It probes the backend without opening a device.
func Supported() bool {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return false
	}

	err = ctx.Uninit()
	ctx.Free()

	return err == nil
}
