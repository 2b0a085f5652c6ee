package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the terminal host and blocks until the user quits.
// dataLocation is the Taskwarrior data directory to watch; it may be empty.
func Run(deps Deps, dataLocation string) error {
	w, err := newDataWatcher(dataLocation)
	if err != nil {
		deps.Logger.Warnf("watch %s: %v", dataLocation, err)
	}
	if w != nil {
		defer w.Close()
	}

	p := tea.NewProgram(NewApp(deps, w), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
