package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ljufa/rsplayer-sub001/internal/engine"
	"github.com/ljufa/rsplayer-sub001/internal/model"
	"github.com/ljufa/rsplayer-sub001/internal/queue"
)

// NewProgram subscribes to events and returns a ready-to-run Bubbletea
// program driving eng/q through a fresh engine.Dispatcher. The caller owns
// the returned unsubscribe func and should defer it after the program
// exits.
func NewProgram(eng *engine.Engine, q *queue.Queue, events *model.Broadcaster[model.StateChangeEvent]) (*tea.Program, func()) {
	ch, unsub := events.Subscribe(32)
	m := NewModel(eng, engine.NewDispatcher(eng), q, ch)
	return tea.NewProgram(m, tea.WithAltScreen()), unsub
}
