package dsp

import (
	"fmt"
	"math"

	"github.com/ljufa/rsplayer-sub001/internal/model"
)

// Stage is one element of a per-channel cascade: a Biquad section or a
// linear gain multiply.
type Stage interface {
	Step(x float64) float64
}

type gainStage struct{ linear float64 }

func (g gainStage) Step(x float64) float64 { return x * g.linear }

// Equalizer owns one ordered Stage cascade per channel. It is rebuilt
// wholesale whenever the sample rate or filter list changes; Process never
// allocates and never recomputes coefficients.
type Equalizer struct {
	channels int
	stages   [][]Stage // per-channel cascade
	active   bool
	scratch  [][]float64 // de-interleave buffers, grown on demand, never shrunk
}

// NewEqualizer allocates an empty cascade for the given channel count.
func NewEqualizer(channels int) *Equalizer {
	return &Equalizer{
		channels: channels,
		stages:   make([][]Stage, channels),
		scratch:  make([][]float64, channels),
	}
}

// HasFilters reports whether any channel has at least one stage.
func (e *Equalizer) HasFilters() bool { return e.active }

func channelTargets(set []int, channels int) []int {
	if len(set) == 0 {
		out := make([]int, channels)
		for i := range out {
			out[i] = i
		}
		return out
	}
	return set
}

func validateFreq(rate uint32, freq float64) error {
	if freq <= 0 || freq >= float64(rate)/2 {
		return fmt.Errorf("frequency %.1fHz out of range for rate %d", freq, rate)
	}
	return nil
}

func validateQ(q float64) error {
	if q <= 0 {
		return fmt.Errorf("Q must be positive, got %.3f", q)
	}
	return nil
}

// AddFilter computes coefficients for cfg at rate and appends the resulting
// stage to each of cfg's target channels. A filter whose constants are out
// of range is dropped with an error (the caller logs a warning and
// continues); it never panics or aborts the rest of the cascade.
func (e *Equalizer) AddFilter(rate uint32, cfg model.FilterConfig) error {
	targets := channelTargets(cfg.Channels, e.channels)

	var stage Stage
	switch cfg.Kind {
	case model.FilterGain:
		stage = gainStage{linear: dbToLinear(cfg.Gain)}
	case model.FilterPeaking:
		if err := validateFreq(rate, cfg.Freq); err != nil {
			return err
		}
		if err := validateQ(cfg.Q); err != nil {
			return err
		}
		b := newPeaking(float64(rate), cfg.Freq, cfg.Q, cfg.Gain)
		stage = &b
	case model.FilterLowShelf:
		if err := validateFreq(rate, cfg.Freq); err != nil {
			return err
		}
		b := newLowShelf(float64(rate), cfg.Freq, cfg.Q, cfg.Slope, cfg.Gain)
		stage = &b
	case model.FilterHighShelf:
		if err := validateFreq(rate, cfg.Freq); err != nil {
			return err
		}
		b := newHighShelf(float64(rate), cfg.Freq, cfg.Q, cfg.Slope, cfg.Gain)
		stage = &b
	case model.FilterLowPass:
		if err := validateFreq(rate, cfg.Freq); err != nil {
			return err
		}
		if err := validateQ(cfg.Q); err != nil {
			return err
		}
		b := newLowPass(float64(rate), cfg.Freq, cfg.Q)
		stage = &b
	case model.FilterHighPass:
		if err := validateFreq(rate, cfg.Freq); err != nil {
			return err
		}
		if err := validateQ(cfg.Q); err != nil {
			return err
		}
		b := newHighPass(float64(rate), cfg.Freq, cfg.Q)
		stage = &b
	default:
		return fmt.Errorf("unknown filter kind %v", cfg.Kind)
	}

	for _, ch := range targets {
		if ch < 0 || ch >= e.channels {
			continue
		}
		// Each channel gets its own copy of a biquad so its x1/x2/y1/y2
		// state is never shared with another channel.
		if b, ok := stage.(*Biquad); ok {
			c := *b
			e.stages[ch] = append(e.stages[ch], &c)
			continue
		}
		e.stages[ch] = append(e.stages[ch], stage)
	}
	e.active = true
	return nil
}

func dbToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}

// BuildEqualizer constructs an Equalizer from settings at the given spec,
// dropping (and reporting) any individually invalid filter rather than
// failing the whole rebuild.
func BuildEqualizer(channels int, rate uint32, settings model.DSPSettings) (*Equalizer, []error) {
	eq := NewEqualizer(channels)
	var errs []error
	for _, f := range settings.Filters {
		if err := eq.AddFilter(rate, f); err != nil {
			errs = append(errs, err)
		}
	}
	return eq, errs
}

// Process de-interleaves buf (interleaved, e.channels per frame), runs each
// channel's cascade in declaration order, and re-interleaves the result
// back into buf. It is a no-op iff no channel has any stage (rule (b)).
func (e *Equalizer) Process(buf []float32) {
	if !e.active || e.channels == 0 || len(buf) == 0 {
		return
	}
	frames := len(buf) / e.channels
	for ch := 0; ch < e.channels; ch++ {
		if cap(e.scratch[ch]) < frames {
			e.scratch[ch] = make([]float64, frames)
		} else {
			e.scratch[ch] = e.scratch[ch][:frames]
		}
	}

	for ch := 0; ch < e.channels; ch++ {
		s := e.scratch[ch]
		for i := 0; i < frames; i++ {
			s[i] = float64(buf[i*e.channels+ch])
		}
	}

	for ch := 0; ch < e.channels; ch++ {
		stages := e.stages[ch]
		if len(stages) == 0 {
			continue
		}
		s := e.scratch[ch]
		for i := range s {
			x := s[i]
			for _, stage := range stages {
				x = stage.Step(x)
			}
			s[i] = x
		}
	}

	for ch := 0; ch < e.channels; ch++ {
		s := e.scratch[ch]
		for i := 0; i < frames; i++ {
			buf[i*e.channels+ch] = float32(s[i])
		}
	}
}
