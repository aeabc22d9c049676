package tui

import (
	"math"
	"math/cmplx"
	"strings"

	"github.com/madelynnblue/go-dsp/fft"
)

const (
	numBands = 10
	fftSize  = 2048
	barWidth = 5
)

var barBlocks = []string{" ", "▁", "▂", "▃", "▄", "▅", "▆", "▇", "█"}

var bandEdges = [numBands + 1]float64{20, 100, 200, 400, 800, 1600, 3200, 6400, 12800, 16000, 20000}

// visualizer performs FFT analysis on the engine's sample tap output and
// renders spectrum bars.
type visualizer struct {
	prev [numBands]float64
	sr   float64
	buf  []float64
}

func newVisualizer(sampleRate float64) *visualizer {
	return &visualizer{sr: sampleRate, buf: make([]float64, fftSize)}
}

func (v *visualizer) analyze(samples []float64) [numBands]float64 {
	var bands [numBands]float64
	if len(samples) == 0 {
		for b := range numBands {
			bands[b] = v.prev[b] * 0.8
			v.prev[b] = bands[b]
		}
		return bands
	}

	clear(v.buf)
	copy(v.buf, samples)

	for i := range fftSize {
		w := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(fftSize-1)))
		v.buf[i] *= w
	}

	spectrum := fft.FFTReal(v.buf)
	binHz := v.sr / float64(fftSize)

	for b := range numBands {
		loIdx := int(bandEdges[b] / binHz)
		hiIdx := int(bandEdges[b+1] / binHz)
		if loIdx < 1 {
			loIdx = 1
		}
		halfLen := len(spectrum) / 2
		if hiIdx >= halfLen {
			hiIdx = halfLen - 1
		}

		var sum float64
		count := 0
		for i := loIdx; i <= hiIdx; i++ {
			sum += cmplx.Abs(spectrum[i])
			count++
		}
		if count > 0 {
			sum /= float64(count)
		}
		if sum > 0 {
			bands[b] = (20*math.Log10(sum) + 10) / 50
		}
		bands[b] = max(0, min(1, bands[b]))

		if bands[b] > v.prev[b] {
			bands[b] = bands[b]*0.6 + v.prev[b]*0.4
		} else {
			bands[b] = bands[b]*0.25 + v.prev[b]*0.75
		}
		v.prev[b] = bands[b]
	}
	return bands
}

func (v *visualizer) render(bands [numBands]float64) string {
	var sb strings.Builder
	for i, level := range bands {
		idx := int(level * float64(len(barBlocks)-1))
		idx = max(0, min(idx, len(barBlocks)-1))
		block := barBlocks[idx]

		var style = specLowStyle
		switch {
		case level > 0.75:
			style = specHighStyle
		case level > 0.45:
			style = specMidStyle
		}

		sb.WriteString(style.Render(strings.Repeat(block, barWidth)))
		if i < numBands-1 {
			sb.WriteString(" ")
		}
	}
	return sb.String()
}
