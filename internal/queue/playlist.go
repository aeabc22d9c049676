package queue

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ljufa/rsplayer-sub001/internal/model"
)

// playlistMarker is the top-level record stored under a playlist's bare
// name; per-song entries are keyed <name>_<index>.
type playlistMarker struct {
	Count int `json:"count"`
}

func songEntryKey(name string, index int) string {
	return fmt.Sprintf("%s_%d", name, index)
}

// SaveAsPlaylist snapshots the current queue contents into a separate
// named tree (here: a keyspace within the playlists table), overwriting
// any existing playlist of the same name.
func (q *Queue) SaveAsPlaylist(name string) error {
	songs, err := q.All()
	if err != nil {
		return fmt.Errorf("save_as_playlist: read queue: %w", err)
	}

	tx, err := q.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := deletePlaylist(tx, name); err != nil {
		return fmt.Errorf("save_as_playlist: clear existing: %w", err)
	}

	marker, err := json.Marshal(playlistMarker{Count: len(songs)})
	if err != nil {
		return err
	}
	if _, err := tx.Exec(`INSERT INTO playlists (entry_key, data) VALUES (?, ?)`, name, marker); err != nil {
		return fmt.Errorf("save_as_playlist: write marker: %w", err)
	}

	for i, s := range songs {
		data, err := s.ToBytes()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(`INSERT INTO playlists (entry_key, data) VALUES (?, ?)`, songEntryKey(name, i), data); err != nil {
			return fmt.Errorf("save_as_playlist: write entry %d: %w", i, err)
		}
	}
	return tx.Commit()
}

func deletePlaylist(tx *sql.Tx, name string) error {
	if _, err := tx.Exec(`DELETE FROM playlists WHERE entry_key = ?`, name); err != nil {
		return err
	}
	escaped := strings.NewReplacer("\\", "\\\\", "_", "\\_", "%", "\\%").Replace(name)
	_, err := tx.Exec(`DELETE FROM playlists WHERE entry_key LIKE ? ESCAPE '\'`, escaped+"\\_%")
	return err
}

// LoadPlaylist returns the songs saved under name, in their original
// order. Returns (nil, false, nil) if no such playlist exists.
func (q *Queue) LoadPlaylist(name string) ([]model.Song, bool, error) {
	var markerData []byte
	err := q.db.QueryRow(`SELECT data FROM playlists WHERE entry_key = ?`, name).Scan(&markerData)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load_playlist: read marker: %w", err)
	}
	var marker playlistMarker
	if err := json.Unmarshal(markerData, &marker); err != nil {
		return nil, false, fmt.Errorf("load_playlist: decode marker: %w", err)
	}

	songs := make([]model.Song, 0, marker.Count)
	for i := 0; i < marker.Count; i++ {
		var data []byte
		if err := q.db.QueryRow(`SELECT data FROM playlists WHERE entry_key = ?`, songEntryKey(name, i)).Scan(&data); err != nil {
			return nil, false, fmt.Errorf("load_playlist: read entry %d: %w", i, err)
		}
		s, ok := model.SongFromBytes(data)
		if !ok {
			return nil, false, fmt.Errorf("load_playlist: corrupt entry %d", i)
		}
		songs = append(songs, s)
	}
	return songs, true, nil
}
