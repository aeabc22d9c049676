// Package tui implements the local control-plane stand-in: a Bubbletea
// terminal UI that issues model.Command values against an
// engine.Dispatcher and renders the Status Monitor's
// model.StateChangeEvent stream.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ljufa/rsplayer-sub001/internal/engine"
	"github.com/ljufa/rsplayer-sub001/internal/model"
	"github.com/ljufa/rsplayer-sub001/internal/queue"
)

type focusArea int

const (
	focusPlaylist focusArea = iota
	focusEQ
)

type tickMsg time.Time

type eventMsg model.StateChangeEvent

// Model is the Bubbletea model for the playback TUI.
type Model struct {
	eng  *engine.Engine
	disp *engine.Dispatcher
	q    *queue.Queue
	vis  *visualizer

	events <-chan model.StateChangeEvent

	song     model.Song
	haveSong bool
	info     model.PlayerInfo
	progress model.SongProgress
	qSummary model.QueueSummary
	lastErr  string

	focus     focusArea
	eqCursor  int
	plCursor  int
	plScroll  int
	plVisible int
	titleOff  int

	quitting bool
	width    int
	height   int
}

// NewModel wires a Model to eng/q and an already-subscribed event channel
// (see Program for the usual construction path). Key presses are issued as
// model.Command values against disp rather than calling eng directly; eng
// itself is kept only for read-only snapshots (Samples, GetDSPSettings).
func NewModel(eng *engine.Engine, disp *engine.Dispatcher, q *queue.Queue, events <-chan model.StateChangeEvent) Model {
	return Model{
		eng:       eng,
		disp:      disp,
		q:         q,
		vis:       newVisualizer(44100),
		events:    events,
		plVisible: 8,
		qSummary:  model.QueueSummary{CurrentIndex: -1},
	}
}

// Init starts the tick timer, the event-channel listener, and requests the
// terminal size.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), listenCmd(m.events), tea.WindowSize())
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*50, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// listenCmd blocks on the event channel and re-arms itself from Update, the
// standard Bubbletea pattern for bridging an external channel into the
// message loop.
func listenCmd(events <-chan model.StateChangeEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return eventMsg(ev)
	}
}

// Update handles key presses, ticks, window resizes, and Status Monitor
// events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmd := m.handleKey(msg)
		if m.quitting {
			return m, tea.Quit
		}
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		m.titleOff++
		return m, tickCmd()

	case eventMsg:
		m.applyEvent(model.StateChangeEvent(msg))
		return m, listenCmd(m.events)
	}

	return m, nil
}

func (m *Model) applyEvent(ev model.StateChangeEvent) {
	switch ev.Kind {
	case model.EventCurrentSong:
		m.song = ev.Song
		m.haveSong = true
		m.titleOff = 0
	case model.EventCurrentQueue:
		m.qSummary = ev.Queue
		m.adjustScroll()
	case model.EventPlayerInfo:
		m.info = ev.Info
	case model.EventSongTime:
		m.progress = ev.Progress
	case model.EventError:
		m.lastErr = ev.Error
	}
}

func (m *Model) adjustScroll() {
	if m.plCursor < m.plScroll {
		m.plScroll = m.plCursor
	}
	if m.plCursor >= m.plScroll+m.plVisible {
		m.plScroll = m.plCursor - m.plVisible + 1
	}
}
