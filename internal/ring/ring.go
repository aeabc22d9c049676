// Package ring implements the bounded single-producer/single-consumer
// sample queue between the decoder and the audio output callback. It
// never allocates after construction and the consumer side never blocks.
package ring

import "sync"

// Sample is the set of PCM element types the ring (and therefore the audio
// output) can carry.
type Sample interface {
	~float32 | ~int16 | ~int32 | ~uint16
}

// Ring is a fixed-capacity SPSC queue of samples. The zero value is not
// usable; construct with New.
type Ring[T Sample] struct {
	mu       sync.Mutex
	notEmpty *sync.Cond
	notFull  *sync.Cond
	buf      []T
	head     int // next read index
	len      int // number of valid samples currently buffered
	closed   bool
}

// New creates a Ring with room for capacity samples. The reference sizes
// capacity to hold at least 200ms of audio (rate*channels*0.2); the default
// call site uses ~2s (rate*channels*2), matching
// rsplayer_playback/src/rsp/output.rs's ring_len computation.
func New[T Sample](capacity int) *Ring[T] {
	if capacity <= 0 {
		capacity = 1
	}
	r := &Ring[T]{buf: make([]T, capacity)}
	r.notEmpty = sync.NewCond(&r.mu)
	r.notFull = sync.NewCond(&r.mu)
	return r
}

// WriteBlocking writes as much of samples as fits, blocking the caller
// until the consumer has drained enough space to proceed. It returns the
// number of samples written, which is less than len(samples) only when the
// ring has been closed (stop requested) mid-wait.
func (r *Ring[T]) WriteBlocking(samples []T) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	written := 0
	for written < len(samples) {
		if r.closed {
			return written
		}
		free := len(r.buf) - r.len
		if free == 0 {
			r.notFull.Wait()
			continue
		}
		n := len(samples) - written
		if n > free {
			n = free
		}
		tail := (r.head + r.len) % len(r.buf)
		for i := 0; i < n; i++ {
			r.buf[(tail+i)%len(r.buf)] = samples[written+i]
		}
		r.len += n
		written += n
		r.notEmpty.Broadcast()
	}
	return written
}

// Read drains up to len(out) samples without blocking. Any tail of out not
// filled by buffered samples is left to the caller to pad with silence
// (the sample format's midpoint) — the ring itself never fabricates data.
func (r *Ring[T]) Read(out []T) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(out)
	if n > r.len {
		n = r.len
	}
	for i := 0; i < n; i++ {
		out[i] = r.buf[(r.head+i)%len(r.buf)]
	}
	r.head = (r.head + n) % len(r.buf)
	r.len -= n
	if n > 0 {
		r.notFull.Broadcast()
	}
	return n
}

// Close wakes any blocked WriteBlocking call so a stop request is observed
// without waiting for the consumer to drain further space. Close is
// idempotent.
func (r *Ring[T]) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	r.notFull.Broadcast()
	r.notEmpty.Broadcast()
}

// Reopen clears the closed flag and empties the buffer, readying the Ring
// for a new track.
func (r *Ring[T]) Reopen() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = false
	r.head = 0
	r.len = 0
}
