// Package engine implements the Engine Facade: the single stateful owner
// of playback. It serializes control operations behind one mutex, spawns
// the decoder thread, and exposes read-only snapshots for the Status
// Monitor.
package engine

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/ljufa/rsplayer-sub001/internal/decoder"
	"github.com/ljufa/rsplayer-sub001/internal/dsp"
	"github.com/ljufa/rsplayer-sub001/internal/model"
	"github.com/ljufa/rsplayer-sub001/internal/queue"
)

// ErrUnsupported is returned by operations this version leaves unresolved
// (seek) or that require a collaborator this engine was not given.
var ErrUnsupported = errors.New("engine: operation not supported")

// restartThresholdSeconds: pressing "previous" past this point in the
// current track restarts it instead of moving the cursor back.
const restartThresholdSeconds = 3.0

type skipDirection int32

const (
	skipNone skipDirection = iota
	skipNext
	skipPrev
	skipRestart
)

// Engine is the Engine Facade. The zero value is not usable; construct
// with New.
type Engine struct {
	queue       *queue.Queue
	playerState *queue.PlayerState
	dsp         *dsp.SharedState
	events      *model.Broadcaster[model.StateChangeEvent]
	cfg         *model.Config
	metadata    MetadataResolver

	state atomic.Int32 // model.EngineState

	run     atomic.Bool
	pause   atomic.Bool
	skipDir atomic.Int32

	timeCell  decoder.TimeCell
	codecCell decoder.CodecCell
	tap       *decoder.SampleTap

	mu      sync.Mutex // serializes control operations and guards spawned/eg
	spawned bool
	eg      *errgroup.Group
}

// New builds an Engine around its collaborators. metadata may be nil; in
// that case LoadSong/LoadAlbum/AddSongToQueue always return
// ErrUnsupported.
func New(q *queue.Queue, ps *queue.PlayerState, shared *dsp.SharedState, events *model.Broadcaster[model.StateChangeEvent], cfg *model.Config, metadata MetadataResolver) *Engine {
	e := &Engine{
		queue:       q,
		playerState: ps,
		dsp:         shared,
		events:      events,
		cfg:         cfg,
		metadata:    metadata,
		tap:         decoder.NewSampleTap(2048),
	}
	e.state.Store(int32(model.StateIdle))
	return e
}

// Samples returns the last n samples of a mono downmix of whatever is
// currently playing, for the TUI's spectrum visualizer.
func (e *Engine) Samples(n int) []float64 {
	return e.tap.Samples(n)
}

// State returns the current playback state.
func (e *Engine) State() model.EngineState {
	return model.EngineState(e.state.Load())
}

func (e *Engine) setState(s model.EngineState) {
	e.state.Store(int32(s))
}

func (e *Engine) publishError(err error) {
	log.Error("playback error", "err", err)
	e.events.Publish(model.StateChangeEvent{Kind: model.EventError, Error: err.Error()})
}

// Play starts or resumes playback. A no-op if already playing.
func (e *Engine) Play() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := e.State()
	if st != model.StateIdle && st != model.StatePaused {
		return nil
	}

	e.run.Store(true)
	e.pause.Store(false)
	e.setState(model.StatePlaying)

	if !e.spawned {
		e.spawned = true
		e.eg = &errgroup.Group{}
		e.eg.Go(func() error {
			e.runLoop()
			return nil
		})
	}
	return nil
}

// Pause pauses playback in place. A no-op unless currently playing.
func (e *Engine) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.State() != model.StatePlaying {
		return nil
	}
	e.pause.Store(true)
	e.setState(model.StatePaused)
	return nil
}

// TogglePlay plays if idle/paused, pauses if playing.
func (e *Engine) TogglePlay() error {
	switch e.State() {
	case model.StatePlaying:
		return e.Pause()
	default:
		return e.Play()
	}
}

// Stop halts playback, joins the decoder thread, and resets progress to
// zero; the persisted last-played progress is reset to "0" as well.
func (e *Engine) Stop() error {
	if !e.halt() {
		return nil
	}
	e.timeCell.Reset()
	if e.playerState != nil {
		return e.playerState.ResetLastPlayedProgress()
	}
	return nil
}

// Shutdown halts playback the same way Stop does, but persists the
// current track position instead of resetting it to zero — the process
// is expected to exit right after, and the position should be resumable,
// unlike an explicit user Stop.
func (e *Engine) Shutdown() error {
	current := e.timeCell.Load().CurrentSeconds
	halted := e.halt()
	if !halted {
		return nil
	}
	e.timeCell.Reset()
	if e.playerState != nil {
		return e.playerState.SetLastPlayedProgress(current)
	}
	return nil
}

// halt stops the decoder thread and joins it if one is running, leaving
// the engine Idle. It reports whether there was anything to halt.
func (e *Engine) halt() bool {
	e.mu.Lock()
	st := e.State()
	if st == model.StateIdle {
		e.mu.Unlock()
		return false
	}
	e.setState(model.StateStopping)
	e.run.Store(false)
	e.pause.Store(false)
	e.skipDir.Store(int32(skipNone))
	wasSpawned := e.spawned
	eg := e.eg
	e.mu.Unlock()

	if wasSpawned && eg != nil {
		_ = eg.Wait()
	}

	e.mu.Lock()
	e.spawned = false
	e.setState(model.StateIdle)
	e.mu.Unlock()
	return true
}

// Next skips to the following queue entry, restarting the decoder for it
// without tearing down the persistent decode goroutine.
func (e *Engine) Next() error {
	return e.requestSkip(skipNext)
}

// Prev restarts the current track if more than restartThresholdSeconds
// into it, otherwise moves to the previous queue entry.
func (e *Engine) Prev() error {
	if e.timeCell.Load().CurrentSeconds > restartThresholdSeconds {
		return e.requestSkip(skipRestart)
	}
	return e.requestSkip(skipPrev)
}

func (e *Engine) requestSkip(dir skipDirection) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	st := e.State()
	if st != model.StatePlaying && st != model.StatePaused {
		return nil
	}
	e.skipDir.Store(int32(dir))
	e.run.Store(false)
	e.pause.Store(false)
	return nil
}

// Seek is unsupported; the decode pipeline's Streamer abstraction has no
// seek-while-playing operation.
func (e *Engine) Seek(int8) error {
	return ErrUnsupported
}

// runLoop is the persistent decoder-owning goroutine spawned by Play. It
// lives across however many tracks the queue yields, terminating only on
// a genuine stop, queue exhaustion, or fatal error with nothing left to
// advance to.
func (e *Engine) runLoop() {
	defer func() {
		e.mu.Lock()
		e.spawned = false
		e.mu.Unlock()
	}()

	for {
		song, ok, err := e.queue.PeekCurrent()
		if err != nil {
			e.publishError(err)
			e.setState(model.StateIdle)
			return
		}
		if !ok {
			e.setState(model.StateIdle)
			return
		}

		outcome := decoder.PlayFile(
			song.File,
			&e.run, &e.pause,
			&e.timeCell, &e.codecCell,
			e.cfg.AudioOutputDevice(), e.cfg.BufferMB, e.cfg.MusicRoot,
			e.dsp, e.tap,
		)

		switch outcome.Kind {
		case decoder.SongFinished:
			more, aerr := e.queue.Advance()
			if aerr != nil {
				e.publishError(aerr)
				e.setState(model.StateIdle)
				return
			}
			if !more {
				e.setState(model.StateIdle)
				return
			}
			e.timeCell.Reset()
			continue

		case decoder.Err:
			e.publishError(errors.New(outcome.Message))
			more, aerr := e.queue.Advance()
			if aerr != nil || !more {
				e.setState(model.StateIdle)
				return
			}
			e.timeCell.Reset()
			continue

		case decoder.PlaybackStopped:
			switch skipDirection(e.skipDir.Swap(int32(skipNone))) {
			case skipNext:
				more, aerr := e.queue.Advance()
				if aerr != nil {
					e.publishError(aerr)
					e.setState(model.StateIdle)
					return
				}
				if !more {
					e.setState(model.StateIdle)
					return
				}
				e.timeCell.Reset()
				e.run.Store(true)
				continue
			case skipPrev:
				// Retreat no-ops at the first entry; either way the
				// current (or now-previous) entry replays from the top.
				if _, aerr := e.queue.Retreat(); aerr != nil {
					e.publishError(aerr)
					e.setState(model.StateIdle)
					return
				}
				e.timeCell.Reset()
				e.run.Store(true)
				continue
			case skipRestart:
				e.timeCell.Reset()
				e.run.Store(true)
				continue
			default:
				e.setState(model.StateIdle)
				return
			}
		}
	}
}
