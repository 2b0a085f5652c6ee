package tui

import (
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"

	"github.com/sadopc/twpomo/internal/config"
)

const pendingDataFile = "pending.data"

// newDataWatcher watches the Taskwarrior data directory. A nil watcher is
// returned when no directory is configured.
func newDataWatcher(dataLocation string) (*fsnotify.Watcher, error) {
	if dataLocation == "" {
		return nil, nil
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(config.ExpandPath(dataLocation)); err != nil {
		w.Close()
		return nil, err
	}
	return w, nil
}

// waitForData blocks until pending.data changes. The repository's mtime
// check still decides whether the backend is queried again.
func waitForData(w *fsnotify.Watcher) tea.Cmd {
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		for {
			select {
			case event, ok := <-w.Events:
				if !ok {
					return nil
				}
				if filepath.Base(event.Name) != pendingDataFile {
					continue
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
					return dataChangedMsg{}
				}
			case err, ok := <-w.Errors:
				if !ok {
					return nil
				}
				return watchErrMsg{err: err}
			}
		}
	}
}

// waitForExpiry hands the next due scheduler callback to the loop.
func waitForExpiry(ch <-chan func()) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		fire, ok := <-ch
		if !ok {
			return nil
		}
		return expiryMsg{fire: fire}
	}
}
