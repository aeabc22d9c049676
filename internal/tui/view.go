package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ljufa/rsplayer-sub001/internal/model"
)

const panelWidth = 60

// View renders the full TUI frame.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	sections := []string{
		titleStyle.Render("R S P L A Y E R"),
		m.renderTrackInfo(),
		m.renderTimeStatus(),
		"",
		m.renderSpectrum(),
		m.renderSeekBar(),
		"",
		m.renderEQ(),
		"",
		m.renderQueueHeader(),
		m.renderQueue(),
		"",
		m.renderHelp(),
	}

	if m.lastErr != "" {
		sections = append(sections, errorStyle.Render(fmt.Sprintf("ERR: %s", m.lastErr)))
	}

	return frameStyle.Render(strings.Join(sections, "\n"))
}

func (m Model) renderTrackInfo() string {
	name := m.song.Title
	if name == "" {
		name = m.song.File
	}
	if !m.haveSong || name == "" {
		name = "No track loaded"
	}
	return trackStyle.Render("♫ " + name)
}

func (m Model) renderTimeStatus() string {
	pos := m.progress.CurrentSeconds
	dur := m.progress.TotalSeconds

	posMin, posSec := int(pos)/60, int(pos)%60
	durMin, durSec := int(dur)/60, int(dur)%60
	timeStr := fmt.Sprintf("%02d:%02d / %02d:%02d", posMin, posSec, durMin, durSec)

	var status string
	switch m.info.State {
	case model.StatePlaying:
		status = statusStyle.Render("Playing")
	case model.StatePaused:
		status = statusStyle.Render("Paused")
	default:
		status = dimStyle.Render("Stopped")
	}

	left := timeStyle.Render(timeStr)
	gap := panelWidth - lipgloss.Width(left) - lipgloss.Width(status)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + status
}

func (m Model) renderSpectrum() string {
	bands := m.vis.analyze(m.eng.Samples(fftSize))
	return m.vis.render(bands)
}

func (m Model) renderSeekBar() string {
	var progress float64
	if m.progress.TotalSeconds > 0 {
		progress = m.progress.CurrentSeconds / m.progress.TotalSeconds
	}
	progress = max(0, min(1, progress))

	filled := int(progress * float64(panelWidth-1))
	return seekFillStyle.Render(strings.Repeat("━", filled)) +
		seekFillStyle.Render("●") +
		seekDimStyle.Render(strings.Repeat("━", max(0, panelWidth-filled-1)))
}

func (m Model) renderEQ() string {
	settings := m.eng.GetDSPSettings()
	labels := [10]string{"70", "180", "320", "600", "1k", "3k", "6k", "12k", "14k", "16k"}

	parts := make([]string, len(labels))
	for i, label := range labels {
		style := eqInactiveStyle
		if m.focus == focusEQ && i == m.eqCursor {
			style = eqActiveStyle
		}
		if i < len(settings.Filters) {
			label = fmt.Sprintf("%+.0f", settings.Filters[i].Gain)
		}
		parts[i] = style.Render(label)
	}
	return labelStyle.Render("EQ  ") + strings.Join(parts, " ")
}

func (m Model) renderQueueHeader() string {
	return dimStyle.Render(fmt.Sprintf("── Queue (%d) ──", m.qSummary.Length))
}

func (m Model) renderQueue() string {
	songs, err := m.q.All()
	if err != nil || len(songs) == 0 {
		return dimStyle.Render("  No songs queued")
	}

	visible := min(m.plVisible, len(songs))
	scroll := m.plScroll
	if scroll+visible > len(songs) {
		scroll = len(songs) - visible
	}
	scroll = max(0, scroll)

	lines := make([]string, 0, visible)
	for i := scroll; i < scroll+visible && i < len(songs); i++ {
		prefix := "  "
		style := playlistItemStyle

		if i == m.qSummary.CurrentIndex {
			prefix = "▶ "
			style = playlistActiveStyle
		}
		if m.focus == focusPlaylist && i == m.plCursor {
			style = playlistSelectedStyle
		}

		name := songs[i].Title
		if name == "" {
			name = songs[i].File
		}
		maxW := panelWidth - 6
		nameRunes := []rune(name)
		if len(nameRunes) > maxW {
			name = string(nameRunes[:maxW-1]) + "…"
		}
		lines = append(lines, style.Render(fmt.Sprintf("%s%d. %s", prefix, i+1, name)))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderHelp() string {
	return helpStyle.Render("[Spc]Play/Pause [<>]Track [Enter]Jump [Tab]Focus [S]Stop [Q]Quit")
}
