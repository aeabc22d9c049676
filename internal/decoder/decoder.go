// Package decoder implements the Decoder Driver: probe a source, drive a
// decoder, apply DSP, and feed an audio output while staying responsive
// to pause/stop.
package decoder

import (
	"errors"
	"io"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ljufa/rsplayer-sub001/internal/audio"
	"github.com/ljufa/rsplayer-sub001/internal/dsp"
	"github.com/ljufa/rsplayer-sub001/internal/model"
)

// OutcomeKind tags the terminal result of PlayFile.
type OutcomeKind int

const (
	SongFinished OutcomeKind = iota
	PlaybackStopped
	Err
)

// Outcome is returned by PlayFile. Message is populated only for Err.
type Outcome struct {
	Kind    OutcomeKind
	Message string
}

func errOutcome(err error) Outcome { return Outcome{Kind: Err, Message: err.Error()} }

const (
	pauseSleep    = 300 * time.Millisecond
	pauseMaxTotal = 5 * time.Minute
	framesPerRead = 2048
)

// PlayFile is the Decoder Driver entry point. run reports whether
// playback should continue at all; pause reports whether it is currently
// paused. codecOut/timeOut are written to as soon as they're known.
// dspState supplies the per-track Equalizer handoff.
func PlayFile(
	pathOrURL string,
	run, pause *atomic.Bool,
	timeOut *TimeCell,
	codecOut *CodecCell,
	deviceName string,
	bufferMB int,
	musicRoot string,
	dspState *dsp.SharedState,
	tap *SampleTap,
) Outcome {
	if bufferMB <= 0 {
		bufferMB = 4
	}

	src, hint, err := openSource(pathOrURL, musicRoot)
	if err != nil {
		return errOutcome(err)
	}
	defer src.Close()

	streamer, format, codecName, err := probe(src, hint)
	if err != nil {
		return errOutcome(err)
	}
	defer streamer.Close()

	totalSeconds := 0.0
	if n := streamer.Len(); n > 0 {
		totalSeconds = format.SampleRate.D(n).Seconds()
	}
	codecOut.Store(model.SignalSpec{
		Rate:          uint32(format.SampleRate),
		Channels:      2, // beep normalizes every source to stereo frame pairs
		Format:        model.FormatF32,
		BitsPerSample: uint16(format.Precision * 8),
	}, codecName)
	timeOut.Reset()

	out, err := audio.Open(model.SignalSpec{
		Rate:     uint32(format.SampleRate),
		Channels: 2,
		Format:   model.FormatF32,
	}, deviceName, int(format.SampleRate)*2*2) // ~2s of stereo f32 slack
	if err != nil {
		return errOutcome(err)
	}
	defer out.Close()

	for _, ferr := range dspState.Rebuild(2, uint32(format.SampleRate)) {
		log.Warn("dropping invalid filter", "err", ferr)
	}

	var eq *dsp.Equalizer
	buf := make([][2]float64, framesPerRead)
	interleaved := make([]float32, framesPerRead*2)

	pausedTotal := time.Duration(0)
	firstChunk := true

	for {
		if !run.Load() {
			out.Flush()
			return Outcome{Kind: PlaybackStopped}
		}
		if pause.Load() {
			time.Sleep(pauseSleep)
			pausedTotal += pauseSleep
			if pausedTotal >= pauseMaxTotal {
				out.Flush()
				return Outcome{Kind: PlaybackStopped}
			}
			continue
		}

		n, ok := streamer.Stream(buf)
		if !ok {
			if err := streamer.Err(); err != nil {
				if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
					out.Flush()
					return Outcome{Kind: SongFinished}
				}
				out.Flush()
				return errOutcome(err)
			}
			out.Flush()
			return Outcome{Kind: SongFinished}
		}
		if n == 0 {
			// Pre-roll guard: a packet that decodes to nothing at the
			// very start of the stream is skipped rather than treated as
			// end-of-stream.
			if firstChunk {
				continue
			}
			out.Flush()
			return Outcome{Kind: SongFinished}
		}
		firstChunk = false

		posSeconds := format.SampleRate.D(streamer.Position()).Seconds()
		timeOut.Store(model.SongProgress{TotalSeconds: totalSeconds, CurrentSeconds: posSeconds})
		tap.Write(buf[:n])

		for i := 0; i < n; i++ {
			interleaved[i*2] = float32(buf[i][0])
			interleaved[i*2+1] = float32(buf[i][1])
		}
		frame := interleaved[:n*2]

		if dspState.HasFilters() {
			if swapped, ok := dspState.TryTakePending(); ok {
				eq = swapped
			}
			if eq != nil {
				eq.Process(frame)
			}
		}

		out.WriteF32(frame)
	}
}
