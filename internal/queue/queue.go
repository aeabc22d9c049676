// Package queue implements the Playback Queue: a persistent, ordered list
// of songs plus a cursor, backed by an embedded database whose natural key
// order is playback order.
//
// modernc.org/sqlite, a pure-Go embedded database, backs the queue: a
// single BLOB primary key compares byte-wise in SQLite, giving an
// "iteration order == insertion/position order" guarantee while only ever
// touching one embedded database file.
package queue

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/ljufa/rsplayer-sub001/internal/model"
)

// Queue is the persistent playback queue. The zero value is not usable;
// construct with Open.
type Queue struct {
	db *sql.DB
}

// Open opens (creating if needed) the queue database under dir.
func Open(dir string) (*Queue, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create queue dir: %w", err)
	}
	db, err := sql.Open("sqlite", filepath.Join(dir, "queue.db"))
	if err != nil {
		return nil, fmt.Errorf("open queue db: %w", err)
	}
	db.SetMaxOpenConns(1) // single writer, avoids SQLITE_BUSY from this process

	for _, stmt := range []string{
		`PRAGMA journal_mode=WAL`,
		`PRAGMA synchronous=FULL`, // durable before the write returns
		`CREATE TABLE IF NOT EXISTS queue (pos_key BLOB PRIMARY KEY, song_id TEXT NOT NULL, data BLOB NOT NULL)`,
		`CREATE TABLE IF NOT EXISTS cursor (id INTEGER PRIMARY KEY CHECK (id = 0), pos_key BLOB)`,
		`CREATE TABLE IF NOT EXISTS playlists (entry_key TEXT PRIMARY KEY, data BLOB NOT NULL)`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("init queue schema: %w", err)
		}
	}
	return &Queue{db: db}, nil
}

// Close releases the database handle.
func (q *Queue) Close() error { return q.db.Close() }

func (q *Queue) lastKey() ([]byte, error) {
	var key []byte
	err := q.db.QueryRow(`SELECT pos_key FROM queue ORDER BY pos_key DESC LIMIT 1`).Scan(&key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return key, err
}

// Add appends song under a freshly-allocated key past the current last
// entry.
func (q *Queue) Add(song model.Song) error {
	last, err := q.lastKey()
	if err != nil {
		return fmt.Errorf("add: read last key: %w", err)
	}
	key := nextAfter(last)
	data, err := song.ToBytes()
	if err != nil {
		return fmt.Errorf("add: serialize song: %w", err)
	}
	_, err = q.db.Exec(`INSERT INTO queue (pos_key, song_id, data) VALUES (?, ?, ?)`, key, song.ID, data)
	if err != nil {
		return fmt.Errorf("add: insert: %w", err)
	}
	return nil
}

func (q *Queue) cursorKey() ([]byte, error) {
	var key []byte
	err := q.db.QueryRow(`SELECT pos_key FROM cursor WHERE id = 0`).Scan(&key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return key, err
}

func (q *Queue) setCursorKey(tx *sql.Tx, key []byte) error {
	_, err := tx.Exec(`INSERT INTO cursor (id, pos_key) VALUES (0, ?)
		ON CONFLICT(id) DO UPDATE SET pos_key = excluded.pos_key`, key)
	return err
}

func (q *Queue) firstKey() ([]byte, error) {
	var key []byte
	err := q.db.QueryRow(`SELECT pos_key FROM queue ORDER BY pos_key ASC LIMIT 1`).Scan(&key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return key, err
}

func (q *Queue) songAt(key []byte) (model.Song, bool, error) {
	var data []byte
	err := q.db.QueryRow(`SELECT data FROM queue WHERE pos_key = ?`, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Song{}, false, nil
	}
	if err != nil {
		return model.Song{}, false, err
	}
	s, ok := model.SongFromBytes(data)
	return s, ok, nil
}

// PeekCurrent returns the entry under the cursor, or the first entry if
// the cursor is NULL.
func (q *Queue) PeekCurrent() (model.Song, bool, error) {
	cursor, err := q.cursorKey()
	if err != nil {
		return model.Song{}, false, fmt.Errorf("peek_current: read cursor: %w", err)
	}
	key := cursor
	if key == nil {
		key, err = q.firstKey()
		if err != nil {
			return model.Song{}, false, fmt.Errorf("peek_current: read first key: %w", err)
		}
	}
	if key == nil {
		return model.Song{}, false, nil
	}
	return q.songAt(key)
}

// Advance moves the cursor to the key after the current entry (the first
// entry when the cursor is NULL, as in PeekCurrent). Returns false — and
// leaves the cursor unmoved — if there is no next key.
func (q *Queue) Advance() (bool, error) {
	cursor, err := q.cursorKey()
	if err != nil {
		return false, fmt.Errorf("advance: read cursor: %w", err)
	}
	if cursor == nil {
		cursor, err = q.firstKey()
		if err != nil {
			return false, fmt.Errorf("advance: read first key: %w", err)
		}
		if cursor == nil {
			return false, nil
		}
	}

	var next []byte
	err = q.db.QueryRow(`SELECT pos_key FROM queue WHERE pos_key > ? ORDER BY pos_key ASC LIMIT 1`, cursor).Scan(&next)
	if errors.Is(err, sql.ErrNoRows) {
		next, err = nil, nil
	}
	if err != nil {
		return false, fmt.Errorf("advance: find next key: %w", err)
	}
	if next == nil {
		return false, nil
	}

	tx, err := q.db.Begin()
	if err != nil {
		return false, err
	}
	if err := q.setCursorKey(tx, next); err != nil {
		tx.Rollback()
		return false, fmt.Errorf("advance: set cursor: %w", err)
	}
	return true, tx.Commit()
}

// Retreat moves the cursor to the key immediately before the current one.
// Returns false — and leaves the cursor unmoved — if already at the first
// entry or the queue is empty. Symmetric to Advance, for prev().
func (q *Queue) Retreat() (bool, error) {
	cursor, err := q.cursorKey()
	if err != nil {
		return false, fmt.Errorf("retreat: read cursor: %w", err)
	}
	if cursor == nil {
		return false, nil
	}

	var prev []byte
	err = q.db.QueryRow(`SELECT pos_key FROM queue WHERE pos_key < ? ORDER BY pos_key DESC LIMIT 1`, cursor).Scan(&prev)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("retreat: find previous key: %w", err)
	}

	tx, err := q.db.Begin()
	if err != nil {
		return false, err
	}
	if err := q.setCursorKey(tx, prev); err != nil {
		tx.Rollback()
		return false, fmt.Errorf("retreat: set cursor: %w", err)
	}
	return true, tx.Commit()
}

// ReplaceAll atomically clears the queue and refills it from songs, then
// resets the cursor to the first inserted entry.
func (q *Queue) ReplaceAll(songs []model.Song) error {
	tx, err := q.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM queue`); err != nil {
		return fmt.Errorf("replace_all: clear: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM cursor`); err != nil {
		return fmt.Errorf("replace_all: clear cursor: %w", err)
	}

	var firstKey []byte
	var last []byte
	for _, s := range songs {
		key := nextAfter(last)
		data, err := s.ToBytes()
		if err != nil {
			return fmt.Errorf("replace_all: serialize: %w", err)
		}
		if _, err := tx.Exec(`INSERT INTO queue (pos_key, song_id, data) VALUES (?, ?, ?)`, key, s.ID, data); err != nil {
			return fmt.Errorf("replace_all: insert: %w", err)
		}
		if firstKey == nil {
			firstKey = key
		}
		last = key
	}
	if firstKey != nil {
		if err := q.setCursorKey(tx, firstKey); err != nil {
			return fmt.Errorf("replace_all: set cursor: %w", err)
		}
	}
	return tx.Commit()
}

// Remove deletes the entry with the given song id. If it was the current
// entry, the cursor is moved to the next remaining key, falling back to
// the previous key, then to NULL if the queue is now empty.
func (q *Queue) Remove(songID string) error {
	tx, err := q.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var key []byte
	err = tx.QueryRow(`SELECT pos_key FROM queue WHERE song_id = ?`, songID).Scan(&key)
	if errors.Is(err, sql.ErrNoRows) {
		return tx.Commit() // nothing to remove
	}
	if err != nil {
		return fmt.Errorf("remove: find: %w", err)
	}

	var cursor []byte
	err = tx.QueryRow(`SELECT pos_key FROM cursor WHERE id = 0`).Scan(&cursor)
	wasCursor := err == nil && string(cursor) == string(key)

	if _, err := tx.Exec(`DELETE FROM queue WHERE pos_key = ?`, key); err != nil {
		return fmt.Errorf("remove: delete: %w", err)
	}

	if wasCursor {
		var next []byte
		err = tx.QueryRow(`SELECT pos_key FROM queue WHERE pos_key > ? ORDER BY pos_key ASC LIMIT 1`, key).Scan(&next)
		if errors.Is(err, sql.ErrNoRows) {
			err = tx.QueryRow(`SELECT pos_key FROM queue WHERE pos_key < ? ORDER BY pos_key DESC LIMIT 1`, key).Scan(&next)
		}
		if errors.Is(err, sql.ErrNoRows) {
			if _, err := tx.Exec(`DELETE FROM cursor WHERE id = 0`); err != nil {
				return fmt.Errorf("remove: clear cursor: %w", err)
			}
		} else if err != nil {
			return fmt.Errorf("remove: find replacement cursor: %w", err)
		} else if err := q.setCursorKey(tx, next); err != nil {
			return fmt.Errorf("remove: set cursor: %w", err)
		}
	}

	return tx.Commit()
}

// Clear deletes every entry and the cursor.
func (q *Queue) Clear() error {
	tx, err := q.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.Exec(`DELETE FROM queue`); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM cursor`); err != nil {
		return err
	}
	return tx.Commit()
}

// All returns every song in playback order, for snapshots and playlist
// saves.
func (q *Queue) All() ([]model.Song, error) {
	rows, err := q.db.Query(`SELECT data FROM queue ORDER BY pos_key ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var songs []model.Song
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		if s, ok := model.SongFromBytes(data); ok {
			songs = append(songs, s)
		}
	}
	return songs, rows.Err()
}

// Len returns the number of entries currently queued.
func (q *Queue) Len() (int, error) {
	var n int
	err := q.db.QueryRow(`SELECT COUNT(*) FROM queue`).Scan(&n)
	return n, err
}
