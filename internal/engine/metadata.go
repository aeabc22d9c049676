package engine

import "github.com/ljufa/rsplayer-sub001/internal/model"

// MetadataResolver is the external collaborator for library scanning and
// catalog lookups, kept out of this engine's scope. The Engine Facade only
// needs to resolve an opaque id to a playable Song (or an album's songs) —
// everything else about how the catalog is built lives elsewhere.
type MetadataResolver interface {
	Song(id string) (model.Song, bool)
	Album(id string) ([]model.Song, bool)
}
