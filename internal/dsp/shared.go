package dsp

import (
	"sync"
	"sync/atomic"

	"github.com/ljufa/rsplayer-sub001/internal/model"
)

// SharedState bridges the control thread (which mutates DSP settings) and
// the audio/decoder thread (which owns and runs an *Equalizer) without ever
// blocking the audio thread. It is the direct Go analogue of
// rsplayer_playback/src/rsp/dsp_filters.rs's SharedDspState: no Equalizer
// lives here, only a pending handoff slot plus an atomic "filters active"
// flag published with release semantics.
type SharedState struct {
	mu       sync.Mutex // guards settings/channels/rate only
	settings model.DSPSettings
	channels int
	rate     uint32

	pending     sync.Mutex
	pendingEQ   *Equalizer // non-nil iff an update is waiting to be picked up
	hasFilters  atomic.Bool
}

// NewSharedState creates a SharedState with no channels/rate known yet.
func NewSharedState(settings model.DSPSettings) *SharedState {
	s := &SharedState{settings: settings}
	return s
}

// HasFilters is the audio-thread-side, lock-free check at the top of every
// write(): Acquire-ordered so a true result is always consistent with an
// already-published pending equalizer.
func (s *SharedState) HasFilters() bool {
	return s.hasFilters.Load()
}

// TryTakePending performs the audio thread's non-blocking handoff: if the
// pending-slot mutex is uncontended and holds a fresh Equalizer, it is
// swapped out and returned. The lock is held only for the pointer swap —
// the old equalizer (if any) is the caller's to drop outside the lock.
func (s *SharedState) TryTakePending() (*Equalizer, bool) {
	if !s.pending.TryLock() {
		return nil, false
	}
	eq := s.pendingEQ
	s.pendingEQ = nil
	s.pending.Unlock()
	if eq == nil {
		return nil, false
	}
	return eq, true
}

func (s *SharedState) publish(eq *Equalizer) {
	s.pending.Lock()
	s.pendingEQ = eq
	s.pending.Unlock()
	s.hasFilters.Store(eq.HasFilters())
}

// Rebuild is called by the decoder thread when a track opens (pre-play): it
// builds a fresh Equalizer from the current settings at channels/rate and
// publishes it to pending. Any per-filter validation errors are returned
// for the caller to log; the filter is dropped and processing continues.
func (s *SharedState) Rebuild(channels int, rate uint32) []error {
	s.mu.Lock()
	s.channels = channels
	s.rate = rate
	settings := s.settings
	s.mu.Unlock()

	eq, errs := BuildEqualizer(channels, rate, settings)
	s.publish(eq)
	return errs
}

// UpdateSettings is called by the control thread. If a track is currently
// open (channels/rate known) it immediately rebuilds and publishes; per the
// interface contract, after this returns the audio thread will pick up
// either this equalizer or a strictly later one.
func (s *SharedState) UpdateSettings(settings model.DSPSettings) []error {
	s.mu.Lock()
	s.settings = settings
	channels, rate := s.channels, s.rate
	s.mu.Unlock()

	if channels == 0 || rate == 0 {
		s.hasFilters.Store(false)
		return nil
	}

	eq, errs := BuildEqualizer(channels, rate, settings)
	s.publish(eq)
	return errs
}

// Settings returns the currently configured filter list.
func (s *SharedState) Settings() model.DSPSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}
