package queue

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	_ "modernc.org/sqlite"
)

// lastPlayedProgressKey is the persisted key: "last_played_song_progress"
// (UTF-8 seconds).
const lastPlayedProgressKey = "last_played_song_progress"

// PlayerState persists the single cross-restart key the engine needs:
// how far into the last song playback had gotten.
type PlayerState struct {
	db *sql.DB
}

// OpenPlayerState opens (creating if needed) the player-state database
// under dir.
func OpenPlayerState(dir string) (*PlayerState, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create player-state dir: %w", err)
	}
	db, err := sql.Open("sqlite", filepath.Join(dir, "player_state.db"))
	if err != nil {
		return nil, fmt.Errorf("open player-state db: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`PRAGMA synchronous=FULL`); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS kv (key TEXT PRIMARY KEY, value TEXT NOT NULL)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("init player-state schema: %w", err)
	}
	return &PlayerState{db: db}, nil
}

// Close releases the database handle.
func (p *PlayerState) Close() error { return p.db.Close() }

func (p *PlayerState) set(key, value string) error {
	_, err := p.db.Exec(`INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	return err
}

func (p *PlayerState) get(key string) (string, bool, error) {
	var v string
	err := p.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	return v, err == nil, err
}

// SetLastPlayedProgress persists the current position in seconds.
func (p *PlayerState) SetLastPlayedProgress(seconds float64) error {
	return p.set(lastPlayedProgressKey, strconv.FormatFloat(seconds, 'f', -1, 64))
}

// ResetLastPlayedProgress sets the key to "0", the value Stop persists.
func (p *PlayerState) ResetLastPlayedProgress() error {
	return p.set(lastPlayedProgressKey, "0")
}

// LastPlayedProgress reads the persisted position, defaulting to 0 if
// never set.
func (p *PlayerState) LastPlayedProgress() (float64, error) {
	v, ok, err := p.get(lastPlayedProgressKey)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	return strconv.ParseFloat(v, 64)
}
