package dsp

import (
	"math"
	"testing"

	"github.com/ljufa/rsplayer-sub001/internal/model"
	"pgregory.net/rapid"
)

func TestProcessIsIdentityWithoutFilters(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		channels := rapid.IntRange(1, 8).Draw(t, "channels")
		frames := rapid.IntRange(0, 64).Draw(t, "frames")
		buf := make([]float32, frames*channels)
		for i := range buf {
			buf[i] = float32(rapid.Float64Range(-1, 1).Draw(t, "sample"))
		}
		want := append([]float32(nil), buf...)

		eq := NewEqualizer(channels)
		eq.Process(buf)

		for i := range buf {
			if buf[i] != want[i] {
				t.Fatalf("sample %d mutated by no-op cascade: got %v want %v", i, buf[i], want[i])
			}
		}
	})
}

func TestHasFiltersReflectsCascade(t *testing.T) {
	eq := NewEqualizer(2)
	if eq.HasFilters() {
		t.Fatal("fresh equalizer should report no filters")
	}
	if err := eq.AddFilter(48000, model.FilterConfig{Kind: model.FilterGain, Gain: 3}); err != nil {
		t.Fatalf("AddFilter: %v", err)
	}
	if !eq.HasFilters() {
		t.Fatal("equalizer with a gain stage should report HasFilters")
	}
}

func TestInvalidFilterIsDroppedNotFatal(t *testing.T) {
	eq := NewEqualizer(2)
	err := eq.AddFilter(48000, model.FilterConfig{Kind: model.FilterPeaking, Freq: 100000, Q: 1, Gain: 6})
	if err == nil {
		t.Fatal("expected frequency above Nyquist to be rejected")
	}
	if eq.HasFilters() {
		t.Fatal("rejected filter must not mark the cascade active")
	}
}

func TestGainFilterAppliesLinearGain(t *testing.T) {
	eq := NewEqualizer(1)
	if err := eq.AddFilter(48000, model.FilterConfig{Kind: model.FilterGain, Gain: 20}); err != nil {
		t.Fatalf("AddFilter: %v", err)
	}
	buf := []float32{0.1, -0.2, 0.3}
	eq.Process(buf)
	wantGain := float32(10) // +20dB == x10 linear
	for i, want := range []float32{0.1 * wantGain, -0.2 * wantGain, 0.3 * wantGain} {
		if math.Abs(float64(buf[i]-want)) > 1e-4 {
			t.Fatalf("sample %d: got %v want %v", i, buf[i], want)
		}
	}
}

func TestSharedStatePublishesHasFiltersAtomically(t *testing.T) {
	s := NewSharedState(model.DSPSettings{})
	if s.HasFilters() {
		t.Fatal("new shared state should report no filters")
	}
	s.Rebuild(2, 48000)
	if s.HasFilters() {
		t.Fatal("empty settings should not activate filters after rebuild")
	}

	s.UpdateSettings(model.DSPSettings{Filters: []model.FilterConfig{
		{Kind: model.FilterPeaking, Freq: 1000, Q: 1, Gain: 6},
	}})
	if !s.HasFilters() {
		t.Fatal("updated settings with a filter should activate HasFilters")
	}
	eq, ok := s.TryTakePending()
	if !ok || eq == nil {
		t.Fatal("expected a pending equalizer to be available")
	}
	if !eq.HasFilters() {
		t.Fatal("taken equalizer should itself report HasFilters")
	}
	if _, ok := s.TryTakePending(); ok {
		t.Fatal("pending slot should be empty after being taken once")
	}
}
