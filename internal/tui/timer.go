package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// refreshTicker drives the one-second countdown redraw. Each start bumps the
// generation so ticks already in flight from an earlier run are dropped;
// cancelling twice is harmless.
type refreshTicker struct {
	gen     int
	running bool
}

func (t *refreshTicker) start() tea.Cmd {
	if t.running {
		return nil
	}
	t.running = true
	t.gen++
	return tickCmd(t.gen)
}

func (t *refreshTicker) cancel() {
	if !t.running {
		return
	}
	t.running = false
	t.gen++
}

// accept reports whether msg belongs to the current run.
func (t *refreshTicker) accept(msg refreshTickMsg) bool {
	return t.running && msg.gen == t.gen
}

func (t refreshTicker) next() tea.Cmd {
	return tickCmd(t.gen)
}

func tickCmd(gen int) tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return refreshTickMsg{gen: gen}
	})
}
