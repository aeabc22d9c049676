package engine

import "github.com/ljufa/rsplayer-sub001/internal/model"

// LoadSong replaces the queue with a single resolved song and starts
// playback.
func (e *Engine) LoadSong(id string) error {
	if e.metadata == nil {
		return ErrUnsupported
	}
	song, ok := e.metadata.Song(id)
	if !ok {
		return nil
	}
	if err := e.queue.ReplaceAll([]model.Song{song}); err != nil {
		return err
	}
	return e.Play()
}

// LoadAlbum replaces the queue with a resolved album's songs and starts
// playback.
func (e *Engine) LoadAlbum(id string) error {
	if e.metadata == nil {
		return ErrUnsupported
	}
	songs, ok := e.metadata.Album(id)
	if !ok {
		return nil
	}
	if err := e.queue.ReplaceAll(songs); err != nil {
		return err
	}
	return e.Play()
}

// LoadPlaylist replaces the queue with a previously-saved playlist and
// starts playback. A no-op if no such playlist exists.
func (e *Engine) LoadPlaylist(name string) error {
	songs, ok, err := e.queue.LoadPlaylist(name)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	if err := e.queue.ReplaceAll(songs); err != nil {
		return err
	}
	return e.Play()
}

// AddSongToQueue resolves id and appends it to the queue without
// disturbing playback.
func (e *Engine) AddSongToQueue(id string) error {
	if e.metadata == nil {
		return ErrUnsupported
	}
	song, ok := e.metadata.Song(id)
	if !ok {
		return nil
	}
	return e.queue.Add(song)
}

// RemoveQueueItem deletes a queued song by id.
func (e *Engine) RemoveQueueItem(songID string) error {
	return e.queue.Remove(songID)
}

// ClearQueue empties the queue. Does not stop an in-flight decode; the
// current track plays to completion and then the engine goes idle.
func (e *Engine) ClearQueue() error {
	return e.queue.Clear()
}

// SaveQueueAsPlaylist snapshots the current queue under name.
func (e *Engine) SaveQueueAsPlaylist(name string) error {
	return e.queue.SaveAsPlaylist(name)
}

// PlayItem advances the cursor forward to the entry matching songID (the
// queue only exposes forward iteration) and starts playback there. Any
// running playback is stopped first. If songID is not found at or after
// the cursor, playback stays stopped and the cursor is left on the last
// entry.
func (e *Engine) PlayItem(songID string) error {
	e.mu.Lock()
	wasSpawned := e.spawned
	e.mu.Unlock()
	if wasSpawned {
		if err := e.Stop(); err != nil {
			return err
		}
	}

	for {
		cur, ok, err := e.queue.PeekCurrent()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if cur.ID == songID {
			return e.Play()
		}
		more, err := e.queue.Advance()
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
}

// UpdateDSP pushes new filter settings to the shared DSP state.
func (e *Engine) UpdateDSP(settings model.DSPSettings) []error {
	return e.dsp.UpdateSettings(settings)
}

// GetPlayerInfo returns a snapshot of the engine's current state and
// signal/codec telemetry.
func (e *Engine) GetPlayerInfo() model.PlayerInfo {
	spec, codec := e.codecCell.Load()
	return model.PlayerInfo{
		State:    e.State(),
		Rate:     spec.Rate,
		Bits:     spec.BitsPerSample,
		Channels: spec.Channels,
		Codec:    codec,
	}
}

// GetSongProgress returns the current track's progress snapshot.
func (e *Engine) GetSongProgress() model.SongProgress {
	return e.timeCell.Load()
}

// GetDSPSettings returns the currently configured filter list.
func (e *Engine) GetDSPSettings() model.DSPSettings {
	return e.dsp.Settings()
}

// Rescan is an external collaborator's responsibility (library scanning);
// this engine has nothing to rescan.
func (e *Engine) Rescan() error {
	return ErrUnsupported
}
