package decoder

import (
	"sync"

	"github.com/ljufa/rsplayer-sub001/internal/model"
)

// TimeCell is a mutex-protected (total, current) progress pair, written by
// the decoder thread and read by the control thread.
type TimeCell struct {
	mu       sync.Mutex
	progress model.SongProgress
}

// Store records the latest progress.
func (c *TimeCell) Store(p model.SongProgress) {
	c.mu.Lock()
	c.progress = p
	c.mu.Unlock()
}

// Load returns the latest stored progress.
func (c *TimeCell) Load() model.SongProgress {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.progress
}

// Reset zeroes the cell; progress resets on track change and on stop.
func (c *TimeCell) Reset() { c.Store(model.SongProgress{}) }

// CodecCell is a mutex-protected signal/codec telemetry snapshot, written
// once per track open.
type CodecCell struct {
	mu    sync.Mutex
	spec  model.SignalSpec
	codec string
}

// Store records the signal spec and codec long-name for the open track.
func (c *CodecCell) Store(spec model.SignalSpec, codec string) {
	c.mu.Lock()
	c.spec = spec
	c.codec = codec
	c.mu.Unlock()
}

// Load returns the latest stored spec/codec pair.
func (c *CodecCell) Load() (model.SignalSpec, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.spec, c.codec
}
