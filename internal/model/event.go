package model

// EventKind tags the variant held by a StateChangeEvent.
type EventKind int

const (
	EventCurrentSong EventKind = iota
	EventCurrentQueue
	EventPlayerInfo
	EventSongTime
	EventVolumeChange
	EventVUMeter
	EventError
)

// QueueSummary is a lightweight view of the queue (songs omitted) used to
// detect queue-shape changes without re-sending every song on every poll.
type QueueSummary struct {
	Length       int
	CurrentIndex int // -1 when the queue is empty
}

// StateChangeEvent is published on the Status Monitor's broadcast channel.
// Only the field matching Kind is meaningful.
type StateChangeEvent struct {
	Kind EventKind

	Song     Song
	Queue    QueueSummary
	Info     PlayerInfo
	Progress SongProgress
	Volume   uint8
	VUMeterL uint8
	VUMeterR uint8
	Error    string
}
