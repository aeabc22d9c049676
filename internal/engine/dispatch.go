package engine

import (
	"sync"

	"github.com/ljufa/rsplayer-sub001/internal/model"
)

// Dispatcher is the single entry point control surfaces (the TUI, or any
// future remote control-plane) route model.Command values through. It
// exists so every caller goes through one place that enforces the
// idempotent-delivery guarantee instead of each caller reimplementing it.
type Dispatcher struct {
	eng *Engine

	mu       sync.Mutex
	lastKind model.CommandKind
	lastKey  string
}

// NewDispatcher builds a Dispatcher routing to eng.
func NewDispatcher(eng *Engine) *Dispatcher {
	return &Dispatcher{eng: eng}
}

// Dispatch routes cmd to the Engine Facade operation it names. A command
// whose IdempotentKey is non-empty and matches the immediately preceding
// dispatch (same Kind, same key) is coalesced into a no-op rather than
// re-executed, so duplicate delivery of e.g. PlayItem/LoadPlaylist is safe.
func (d *Dispatcher) Dispatch(cmd model.Command) error {
	key := cmd.IdempotentKey()
	d.mu.Lock()
	duplicate := key != "" && cmd.Kind == d.lastKind && key == d.lastKey
	d.lastKind, d.lastKey = cmd.Kind, key
	d.mu.Unlock()
	if duplicate {
		return nil
	}

	switch cmd.Kind {
	case model.CmdPlay:
		return d.eng.Play()
	case model.CmdPause:
		return d.eng.Pause()
	case model.CmdTogglePlay:
		return d.eng.TogglePlay()
	case model.CmdNext:
		return d.eng.Next()
	case model.CmdPrev:
		return d.eng.Prev()
	case model.CmdStop:
		return d.eng.Stop()
	case model.CmdSeek:
		return d.eng.Seek(cmd.SeekOffset)
	case model.CmdPlayItem:
		return d.eng.PlayItem(cmd.ID)
	case model.CmdRemoveQueueItem:
		return d.eng.RemoveQueueItem(cmd.ID)
	case model.CmdLoadPlaylist:
		return d.eng.LoadPlaylist(cmd.ID)
	case model.CmdLoadAlbum:
		return d.eng.LoadAlbum(cmd.ID)
	case model.CmdLoadSong:
		return d.eng.LoadSong(cmd.ID)
	case model.CmdAddSongToQueue:
		return d.eng.AddSongToQueue(cmd.ID)
	case model.CmdClearQueue:
		return d.eng.ClearQueue()
	case model.CmdSaveQueueAsPlaylist:
		return d.eng.SaveQueueAsPlaylist(cmd.Name)
	case model.CmdRescan:
		return d.eng.Rescan()
	case model.CmdVolUp, model.CmdVolDown, model.CmdSetVol,
		model.CmdPowerOff, model.CmdRestartSystem, model.CmdChangeAudioOutput:
		// System commands are forwarded to an external collaborator
		// (volume/power/output switching) this engine was not given.
		return ErrUnsupported
	default:
		return ErrUnsupported
	}
}
