// Package menu projects session state and pending tasks onto an ordered list
// of menu entries. Hosts render the entries; nothing here has side effects
// beyond reading the view.
package menu

import (
	"fmt"

	"github.com/sadopc/twpomo/internal/config"
	"github.com/sadopc/twpomo/internal/taskwarrior"
)

type Kind int

const (
	Separator Kind = iota
	Action
	Label
)

func (k Kind) String() string {
	switch k {
	case Separator:
		return "separator"
	case Action:
		return "action"
	default:
		return "label"
	}
}

// Command is what triggering an entry asks the host to do.
type Command int

const (
	None Command = iota
	Stop
	StartTask
	Sync
	Quit
)

const (
	SyncTitle = "Synchronize"
	QuitTitle = "Quit Taskwarrior Pomodoro"
)

type Entry struct {
	Kind    Kind
	Title   string
	Enabled bool
	Visible bool
	Command Command
	// TaskID is set for StartTask entries.
	TaskID string
}

// Actionable reports whether the host should let the user trigger e.
func (e Entry) Actionable() bool {
	return e.Visible && e.Enabled && e.Kind == Action
}

// View is the read side of a pomodoro session.
type View interface {
	CountGlyphs() (string, bool)
	Active() (string, bool)
	ActiveDescription() string
	Remaining() (minutes, seconds int)
}

// Build lays out the menu. Task entries always sit between the active block
// and the sync/quit block.
func Build(v View, tasks []taskwarrior.Task, cfg config.Config) []Entry {
	glyphs, showCount := v.CountGlyphs()
	_, active := v.Active()

	entries := []Entry{
		{Kind: Label, Title: glyphs, Visible: showCount},
	}

	var activeTitle, stopTitle string
	if active {
		activeTitle = "Active: " + " " + v.ActiveDescription()
		stopTitle = StopTitle(v.Remaining())
	}
	entries = append(entries,
		Entry{Kind: Separator, Visible: active},
		Entry{Kind: Label, Title: activeTitle, Visible: active},
		Entry{Kind: Action, Title: stopTitle, Enabled: true, Visible: active, Command: Stop},
		Entry{Kind: Separator, Visible: true},
	)

	for _, t := range tasks {
		if t.UUID == "" || t.Description == "" {
			continue
		}
		entries = append(entries, Entry{
			Kind:    Action,
			Title:   t.Description,
			Enabled: true,
			Visible: true,
			Command: StartTask,
			TaskID:  t.UUID,
		})
	}

	server, _ := cfg.String(config.KeyTaskdServer)
	syncable := server != ""
	entries = append(entries,
		Entry{Kind: Separator, Visible: syncable},
		Entry{Kind: Action, Title: SyncTitle, Enabled: true, Visible: syncable, Command: Sync},
		Entry{Kind: Separator, Visible: true},
		Entry{Kind: Action, Title: QuitTitle, Enabled: true, Visible: true, Command: Quit},
	)
	return entries
}

// Visible drops hidden entries.
func Visible(entries []Entry) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Visible {
			out = append(out, e)
		}
	}
	return out
}

func StopTitle(minutes, seconds int) string {
	return fmt.Sprintf("Stop (%02d:%02d remaining)", minutes, seconds)
}
