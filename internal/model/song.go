// Package model holds the data types shared across the playback engine:
// songs, queue entries, signal specs, filter configs, commands and the
// state-change events the status monitor publishes.
package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Song is a single library entry. ID is stable and non-empty; File is a
// local path or an http(s) URL.
type Song struct {
	ID       string        `json:"id"`
	File     string        `json:"file"`
	Title    string        `json:"title,omitempty"`
	Artist   string        `json:"artist,omitempty"`
	Album    string        `json:"album,omitempty"`
	Genre    string        `json:"genre,omitempty"`
	Date     string        `json:"date,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
}

// NewSong builds a Song for file, minting a UUID if id is empty.
func NewSong(id, file string) Song {
	if id == "" {
		id = uuid.NewString()
	}
	return Song{ID: id, File: file}
}

// ToBytes serializes the song to its persisted record form.
func (s Song) ToBytes() ([]byte, error) {
	return json.Marshal(s)
}

// SongFromBytes deserializes a persisted record. Returns false if the bytes
// don't decode to a valid Song (empty ID).
func SongFromBytes(b []byte) (Song, bool) {
	var s Song
	if err := json.Unmarshal(b, &s); err != nil {
		return Song{}, false
	}
	if s.ID == "" {
		return Song{}, false
	}
	return s, true
}
