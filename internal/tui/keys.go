package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ljufa/rsplayer-sub001/internal/model"
)

// handleKey dispatches a key press as a model.Command against the engine
// Dispatcher.
func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return nil

	case " ":
		_ = m.disp.Dispatch(model.Command{Kind: model.CmdTogglePlay})

	case ">", "n":
		_ = m.disp.Dispatch(model.Command{Kind: model.CmdNext})

	case "<", "p":
		_ = m.disp.Dispatch(model.Command{Kind: model.CmdPrev})

	case "s":
		_ = m.disp.Dispatch(model.Command{Kind: model.CmdStop})

	case "tab":
		if m.focus == focusPlaylist {
			m.focus = focusEQ
		} else {
			m.focus = focusPlaylist
		}

	case "up":
		switch m.focus {
		case focusPlaylist:
			if m.plCursor > 0 {
				m.plCursor--
				m.adjustScroll()
			}
		case focusEQ:
			if m.eqCursor > 0 {
				m.eqCursor--
			}
		}

	case "down":
		switch m.focus {
		case focusPlaylist:
			if m.plCursor < m.qSummary.Length-1 {
				m.plCursor++
				m.adjustScroll()
			}
		case focusEQ:
			if m.eqCursor < 9 {
				m.eqCursor++
			}
		}

	case "enter":
		if m.focus == focusPlaylist {
			songs, err := m.q.All()
			if err == nil && m.plCursor >= 0 && m.plCursor < len(songs) {
				_ = m.disp.Dispatch(model.Command{Kind: model.CmdPlayItem, ID: songs[m.plCursor].ID})
			}
		}
	}
	return nil
}
