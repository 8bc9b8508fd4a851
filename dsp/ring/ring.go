package ring

import (
	"fmt"
	"sync"

	"github.com/cwbudde/algo-vocal/dsp/core"
)

// Ring is a fixed-capacity circular sample buffer holding the most recent
// capture window. It starts zero-filled, so snapshots taken before the
// buffer is warm contain leading silence rather than garbage.
//
// Push and Snapshot are safe for a single concurrent writer (the capture
// callback) and any number of readers. The critical section is a bounded
// memory copy; Push never waits on downstream consumers.
type Ring struct {
	mu       sync.Mutex
	data     []float64
	writeIdx int
	pushed   uint64
}

// New returns a zero-filled Ring with the given capacity.
// The capacity must be a power of two so snapshots can feed the
// spectrum analyzer without re-padding.
func New(capacity int) (*Ring, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("ring capacity must be > 0: %d", capacity)
	}
	if !core.IsPowerOfTwo(capacity) {
		return nil, fmt.Errorf("ring capacity must be a power of two: %d", capacity)
	}

	return &Ring{data: make([]float64, capacity)}, nil
}

// Cap returns the fixed capacity of the ring.
func (r *Ring) Cap() int {
	return len(r.data)
}

// Warm reports whether the ring has been completely filled at least once.
// Analysis output is suppressed until the first full window is available.
func (r *Ring) Warm() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.pushed >= uint64(len(r.data))
}

// TotalPushed returns the total number of samples ever pushed.
// Dividing by the sample rate gives the stream position in seconds.
func (r *Ring) TotalPushed() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.pushed
}

// Push appends a single sample, overwriting the oldest when full.
func (r *Ring) Push(sample float64) {
	r.mu.Lock()
	r.data[r.writeIdx] = sample
	r.writeIdx = (r.writeIdx + 1) % len(r.data)
	r.pushed++
	r.mu.Unlock()
}

// PushBlock appends a block of samples, overwriting the oldest when full.
// Blocks longer than the capacity keep only the newest samples.
func (r *Ring) PushBlock(samples []float64) {
	if len(samples) == 0 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.data)
	src := samples
	if len(src) > n {
		src = src[len(src)-n:]
	}

	first := n - r.writeIdx
	if first > len(src) {
		first = len(src)
	}
	copy(r.data[r.writeIdx:], src[:first])
	copy(r.data, src[first:])

	r.writeIdx = (r.writeIdx + len(src)) % n
	r.pushed += uint64(len(samples))
}

// Snapshot copies the window into dst in chronological order, oldest
// sample first, and returns it. dst is grown as needed; passing nil
// allocates a fresh slice of the ring's capacity.
func (r *Ring) Snapshot(dst []float64) []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	dst = core.EnsureLen(dst, len(r.data))
	n := copy(dst, r.data[r.writeIdx:])
	copy(dst[n:], r.data[:r.writeIdx])

	return dst
}

// SnapshotTotal copies the window like Snapshot and also returns the total
// pushed count taken in the same critical section, so the caller can tell
// exactly which samples are new relative to a previous call.
func (r *Ring) SnapshotTotal(dst []float64) ([]float64, uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	dst = core.EnsureLen(dst, len(r.data))
	n := copy(dst, r.data[r.writeIdx:])
	copy(dst[n:], r.data[:r.writeIdx])

	return dst, r.pushed
}

// Reset zeroes the buffer and clears the warm state.
func (r *Ring) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	core.Zero(r.data)
	r.writeIdx = 0
	r.pushed = 0
}
