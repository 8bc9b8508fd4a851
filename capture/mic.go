package capture

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"github.com/gen2brain/malgo"

	"github.com/cwbudde/algo-vocal/dsp/core"
)

// Mic captures mono float32 frames from an input device through miniaudio
// and hands them to the callback as float64 samples.
//
// A Mic covers one capture session: after Stop it releases the backend
// context and cannot be restarted.
type Mic struct {
	cfg Config

	mu      sync.Mutex
	ctx     *malgo.AllocatedContext
	device  *malgo.Device
	samples []float64
	started bool
}

// NewMic initializes the capture backend. It fails with a wrapped
// ErrUnavailable when the host has no capture support.
func NewMic(opts ...Option) (*Mic, error) {
	cfg := ApplyOptions(opts...)

	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: init context: %v", ErrUnavailable, err)
	}

	return &Mic{cfg: cfg, ctx: ctx}, nil
}

// Config returns the microphone configuration.
func (m *Mic) Config() Config {
	return m.cfg
}

// Start opens the device and begins delivering frames to fn. fn runs on the
// audio thread; it must not block.
func (m *Mic) Start(fn func(samples []float64)) error {
	if fn == nil {
		return fmt.Errorf("capture: nil callback")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ctx == nil {
		return fmt.Errorf("capture: microphone already released")
	}
	if m.started {
		return fmt.Errorf("capture: microphone already started")
	}

	config := malgo.DefaultDeviceConfig(malgo.Capture)
	config.Capture.Format = malgo.FormatF32
	config.Capture.Channels = 1
	config.SampleRate = uint32(m.cfg.SampleRate)
	config.PeriodSizeInFrames = uint32(m.cfg.BlockSize)
	config.Alsa.NoMMap = 1

	if m.cfg.Device != "" {
		infos, err := m.ctx.Devices(malgo.Capture)
		if err != nil {
			return fmt.Errorf("capture: list devices: %w", err)
		}

		found := false
		for i := range infos {
			if infos[i].Name() == m.cfg.Device {
				config.Capture.DeviceID = infos[i].ID.Pointer()
				found = true

				break
			}
		}
		if !found {
			return fmt.Errorf("capture: input device %q not found", m.cfg.Device)
		}
	}

	callbacks := malgo.DeviceCallbacks{
		Data: func(output, input []byte, frameCount uint32) {
			if len(input) == 0 {
				return
			}
			m.decode(input)
			fn(m.samples)
		},
	}

	device, err := malgo.InitDevice(m.ctx.Context, config, callbacks)
	if err != nil {
		return fmt.Errorf("%w: init device: %v", ErrUnavailable, err)
	}

	if err := device.Start(); err != nil {
		device.Uninit()

		return fmt.Errorf("%w: start device: %v", ErrUnavailable, err)
	}

	m.device = device
	m.started = true

	return nil
}

// decode converts little-endian float32 frames into the reusable float64
// block. It runs on the audio thread and never allocates after the block
// reaches the device period size.
func (m *Mic) decode(input []byte) {
	n := len(input) / 4

	m.samples = core.EnsureLen(m.samples, n)
	for i := 0; i < n; i++ {
		bits := binary.LittleEndian.Uint32(input[i*4:])
		m.samples[i] = float64(math.Float32frombits(bits))
	}
}

// Stop halts capture and releases the device and the backend context. Safe
// to call more than once.
func (m *Mic) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.device != nil {
		_ = m.device.Stop()
		m.device.Uninit()
		m.device = nil
	}

	m.started = false

	if m.ctx != nil {
		err := m.ctx.Uninit()
		m.ctx.Free()
		m.ctx = nil

		if err != nil {
			return fmt.Errorf("capture: uninit context: %w", err)
		}
	}

	return nil
}
