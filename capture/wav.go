package capture

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/cwbudde/algo-vocal/dsp/core"
)

// WAVFile streams a WAV file through the capture callback in fixed-size
// blocks, normalized by bit depth to [-1, 1]. Multi-channel files contribute
// their first channel. With pacing enabled blocks arrive at the file's
// real-time rate, otherwise as fast as they decode.
type WAVFile struct {
	blockSize int
	pace      bool

	file    *os.File
	decoder *wav.Decoder

	sampleRate int
	channels   int
	bitDepth   int

	mu      sync.Mutex
	stop    chan struct{}
	done    chan struct{}
	started bool
}

// NewWAVFile opens and validates a WAV file for streaming.
func NewWAVFile(path string, opts ...Option) (*WAVFile, error) {
	cfg := ApplyOptions(opts...)

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("capture: open wav: %w", err)
	}

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		f.Close()

		return nil, fmt.Errorf("capture: %s is not a valid wav file", path)
	}

	format := decoder.Format()
	if format.NumChannels < 1 {
		f.Close()

		return nil, fmt.Errorf("capture: %s reports no channels", path)
	}

	bitDepth := int(decoder.BitDepth)
	if bitDepth < 8 || bitDepth > 32 {
		f.Close()

		return nil, fmt.Errorf("capture: unsupported bit depth %d", bitDepth)
	}

	return &WAVFile{
		blockSize:  cfg.BlockSize,
		pace:       cfg.Pace,
		file:       f,
		decoder:    decoder,
		sampleRate: format.SampleRate,
		channels:   format.NumChannels,
		bitDepth:   bitDepth,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}, nil
}

// SampleRate returns the file's sample rate; the engine analyzing this
// source must be configured to match it.
func (w *WAVFile) SampleRate() int {
	return w.sampleRate
}

// Done is closed once the file has been fully delivered or the source
// stopped.
func (w *WAVFile) Done() <-chan struct{} {
	return w.done
}

// Start begins streaming the file into fn from a dedicated goroutine.
func (w *WAVFile) Start(fn func(samples []float64)) error {
	if fn == nil {
		return fmt.Errorf("capture: nil callback")
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return fmt.Errorf("capture: wav source already released")
	}
	if w.started {
		return fmt.Errorf("capture: wav source already started")
	}

	w.started = true

	go w.stream(fn)

	return nil
}

func (w *WAVFile) stream(fn func(samples []float64)) {
	defer close(w.done)

	frames := w.blockSize
	intBuf := &audio.IntBuffer{
		Format: &audio.Format{NumChannels: w.channels, SampleRate: w.sampleRate},
		Data:   make([]int, frames*w.channels),
	}
	block := make([]float64, frames)
	scale := float64(int(1) << (w.bitDepth - 1))

	var ticker *time.Ticker
	if w.pace {
		interval := time.Duration(float64(frames) / float64(w.sampleRate) * float64(time.Second))
		ticker = time.NewTicker(interval)

		defer ticker.Stop()
	}

	for {
		select {
		case <-w.stop:
			return
		default:
		}

		intBuf.Data = intBuf.Data[:frames*w.channels]

		n, err := w.decoder.PCMBuffer(intBuf)
		if n == 0 || err != nil {
			return
		}

		// The final read may come up short.
		got := n / w.channels
		block = block[:got]
		for i := 0; i < got; i++ {
			v := float64(intBuf.Data[i*w.channels]) / scale
			block[i] = core.Clamp(v, -1, 1)
		}

		if ticker != nil {
			select {
			case <-w.stop:
				return
			case <-ticker.C:
			}
		}

		fn(block)
	}
}

// Stop ends streaming, waits for the delivery goroutine, and closes the
// file. Safe to call more than once, including after the file played out.
func (w *WAVFile) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started {
		close(w.stop)
		<-w.done
		w.started = false
	}

	if w.file != nil {
		err := w.file.Close()
		w.file = nil
		w.decoder = nil

		if err != nil {
			return fmt.Errorf("capture: close wav: %w", err)
		}
	}

	return nil
}
