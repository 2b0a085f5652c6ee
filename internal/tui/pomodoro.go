package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/twpomo/internal/menu"
)

// menuModel renders the menu entries under a countdown panel. It only holds
// what the last rebuild produced; the App owns the session.
type menuModel struct {
	width  int
	height int

	entries []menu.Entry
	cursor  int

	active     bool
	mins, secs int
}

func newMenuModel() menuModel {
	return menuModel{mins: 25}
}

func (m *menuModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

// setEntries replaces the entries and keeps the cursor on an actionable one,
// preferring the entry with the same title as before.
func (m *menuModel) setEntries(entries []menu.Entry) {
	var prev string
	if e, ok := m.selected(); ok {
		prev = e.Title
	}
	m.entries = entries
	m.cursor = -1
	for i, e := range entries {
		if !e.Actionable() {
			continue
		}
		if m.cursor < 0 {
			m.cursor = i
		}
		if e.Title == prev {
			m.cursor = i
			break
		}
	}
}

func (m *menuModel) setCountdown(active bool, mins, secs int) {
	m.active = active
	m.mins, m.secs = mins, secs
	for i, e := range m.entries {
		if e.Command == menu.Stop {
			m.entries[i].Title = menu.StopTitle(mins, secs)
		}
	}
}

func (m menuModel) selected() (menu.Entry, bool) {
	if m.cursor < 0 || m.cursor >= len(m.entries) {
		return menu.Entry{}, false
	}
	return m.entries[m.cursor], true
}

func (m menuModel) update(msg tea.Msg) (menuModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Up):
			m.move(-1)
		case key.Matches(msg, keys.Down):
			m.move(1)
		}
	}
	return m, nil
}

func (m *menuModel) move(step int) {
	for i := m.cursor + step; i >= 0 && i < len(m.entries); i += step {
		if m.entries[i].Actionable() {
			m.cursor = i
			return
		}
	}
}

func (m menuModel) view() string {
	w := m.width - 4
	if w < 20 {
		w = 20
	}

	title := titleStyle.Render("Pomodoro")

	var timeDisplay, phaseLabel string
	if m.active {
		timeDisplay = timerRunningStyle.Width(w - 6).Render(formatClock(m.mins, m.secs))
		phaseLabel = warningStyle.Bold(true).Render("WORK")
	} else {
		timeDisplay = timerStyle.Width(w - 6).Render(formatClock(m.mins, m.secs))
		phaseLabel = mutedStyle.Render("Pick a task to start")
	}

	header := lipgloss.JoinVertical(lipgloss.Center, title, "", timeDisplay, phaseLabel)

	var rows []string
	for i, e := range m.entries {
		rows = append(rows, m.renderEntry(i, e, w-6))
	}

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left, header, "", strings.Join(rows, "\n")),
	)
}

func (m menuModel) renderEntry(i int, e menu.Entry, width int) string {
	switch e.Kind {
	case menu.Separator:
		return ruleStyle.Render(strings.Repeat("─", max(width, 1)))
	case menu.Label:
		return mutedStyle.Render("  " + e.Title)
	}

	if i == m.cursor {
		return selectedItemStyle.Render(fmt.Sprintf("> %s", e.Title))
	}
	if !e.Enabled {
		return mutedStyle.Render("  " + e.Title)
	}
	if e.Command == menu.Stop {
		return warningStyle.Render("  " + e.Title)
	}
	return normalItemStyle.Render("  " + e.Title)
}
