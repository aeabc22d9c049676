// Package monitor implements the Status Monitor: a polling loop that diffs
// the engine/queue snapshot against what it last saw and publishes only
// the state-change events that actually changed.
package monitor

import (
	"context"
	"time"

	"github.com/ljufa/rsplayer-sub001/internal/engine"
	"github.com/ljufa/rsplayer-sub001/internal/model"
	"github.com/ljufa/rsplayer-sub001/internal/queue"
)

// defaultInterval is the poll cadence: once per second.
const defaultInterval = time.Second

// Monitor is the Status Monitor. The zero value is not usable; construct
// with New.
type Monitor struct {
	queue  *queue.Queue
	engine *engine.Engine
	events *model.Broadcaster[model.StateChangeEvent]

	interval time.Duration

	haveSong     bool
	lastSong     model.Song
	haveQueue    bool
	lastQueue    model.QueueSummary
	haveInfo     bool
	lastInfo     model.PlayerInfo
	haveProgress bool
	lastProgress model.SongProgress
}

// New builds a Monitor polling the given queue/engine and publishing onto
// events. interval <= 0 uses the reference one-second cadence.
func New(q *queue.Queue, eng *engine.Engine, events *model.Broadcaster[model.StateChangeEvent], interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Monitor{queue: q, engine: eng, events: events, interval: interval}
}

// Run polls until ctx is cancelled. Intended to be run in its own
// goroutine.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.poll()
		}
	}
}

func (m *Monitor) poll() {
	m.pollCurrentSong()
	m.pollQueueSummary()
	m.pollPlayerInfo()
	m.pollProgress()
}

func (m *Monitor) pollCurrentSong() {
	song, ok, err := m.queue.PeekCurrent()
	if err != nil {
		m.events.Publish(model.StateChangeEvent{Kind: model.EventError, Error: err.Error()})
		return
	}
	if !ok {
		m.haveSong = false
		return
	}
	if m.haveSong && song == m.lastSong {
		return
	}
	m.haveSong = true
	m.lastSong = song
	m.events.Publish(model.StateChangeEvent{Kind: model.EventCurrentSong, Song: song})
}

func (m *Monitor) pollQueueSummary() {
	songs, err := m.queue.All()
	if err != nil {
		m.events.Publish(model.StateChangeEvent{Kind: model.EventError, Error: err.Error()})
		return
	}
	cur, ok, err := m.queue.PeekCurrent()
	if err != nil {
		m.events.Publish(model.StateChangeEvent{Kind: model.EventError, Error: err.Error()})
		return
	}
	idx := -1
	if ok {
		for i, s := range songs {
			if s.ID == cur.ID {
				idx = i
				break
			}
		}
	}
	summary := model.QueueSummary{Length: len(songs), CurrentIndex: idx}
	if m.haveQueue && summary == m.lastQueue {
		return
	}
	m.haveQueue = true
	m.lastQueue = summary
	m.events.Publish(model.StateChangeEvent{Kind: model.EventCurrentQueue, Queue: summary})
}

func (m *Monitor) pollPlayerInfo() {
	info := m.engine.GetPlayerInfo()
	if m.haveInfo && info == m.lastInfo {
		return
	}
	m.haveInfo = true
	m.lastInfo = info
	m.events.Publish(model.StateChangeEvent{Kind: model.EventPlayerInfo, Info: info})
}

func (m *Monitor) pollProgress() {
	progress := m.engine.GetSongProgress()
	if m.haveProgress && progress == m.lastProgress {
		return
	}
	m.haveProgress = true
	m.lastProgress = progress
	m.events.Publish(model.StateChangeEvent{Kind: model.EventSongTime, Progress: progress})
}
