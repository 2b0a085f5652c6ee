package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fsnotify/fsnotify"

	"github.com/sadopc/twpomo/internal/applog"
	"github.com/sadopc/twpomo/internal/config"
	"github.com/sadopc/twpomo/internal/export"
	"github.com/sadopc/twpomo/internal/menu"
	"github.com/sadopc/twpomo/internal/notify"
	"github.com/sadopc/twpomo/internal/pomodoro"
	"github.com/sadopc/twpomo/internal/taskwarrior"
)

// Repository is what the host needs from the task repository.
type Repository interface {
	HistorySource
	Pending(cfg config.Config) ([]taskwarrior.Task, error)
	InvalidatePending()
	Sync() error
}

// Deps wires the host to an already constructed session.
type Deps struct {
	Session  *pomodoro.Session
	Repo     Repository
	Settings config.Provider
	// Inbox must be the session's notifier (or part of it) and receive its
	// warnings.
	Inbox *Inbox
	// Expiries delivers due session callbacks, see pomodoro.ChannelScheduler.
	Expiries  <-chan func()
	Logger    *applog.Logger
	Now       func() time.Time
	ExportDir string
}

// App is the root Bubble Tea model. Every session transition happens inside
// Update.
type App struct {
	deps    Deps
	watcher *fsnotify.Watcher
	logger  *applog.Logger

	width  int
	height int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	menu   menuModel
	stats  statsModel
	prompt promptModel
	ticker refreshTicker
	breaks []notify.Notification

	help      help.Model
	status    string
	statusErr bool
}

func NewApp(deps Deps, watcher *fsnotify.Watcher) App {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Inbox == nil {
		deps.Inbox = &Inbox{}
	}
	h := help.New()
	h.ShowAll = false

	a := App{
		deps:       deps,
		watcher:    watcher,
		logger:     deps.Logger.Named("tui"),
		activeView: viewMenu,
		menu:       newMenuModel(),
		stats:      newStatsModel(deps.Repo, deps.Now),
		prompt:     newPromptModel(),
		help:       h,
	}
	a.rebuild()
	return a
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		waitForExpiry(a.deps.Expiries),
		waitForData(a.watcher),
	)
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.menu.setSize(a.width, contentHeight)
		a.stats.setSize(a.width, contentHeight)
		a.prompt.setSize(a.width)
		return a, nil

	case tea.KeyMsg:
		if a.prompt.active {
			return a.updatePrompt(msg)
		}
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		switch {
		case key.Matches(msg, keys.Quit):
			return a.quit()
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			return a.switchView(viewMenu)
		case key.Matches(msg, keys.Tab2):
			return a.switchView(viewStats)
		case key.Matches(msg, keys.Tab):
			return a.switchView((a.activeView + 1) % viewState(len(viewNames)))
		case key.Matches(msg, keys.Refresh):
			a.deps.Repo.InvalidatePending()
			a.rebuild()
			if a.activeView == viewStats {
				a.stats.refresh()
			}
			return a, nil
		case key.Matches(msg, keys.Stop):
			return a.run(menu.Entry{Command: menu.Stop})
		case key.Matches(msg, keys.Sync):
			return a.run(menu.Entry{Command: menu.Sync})
		case key.Matches(msg, keys.Export):
			if a.activeView == viewStats {
				a.exportPicking = true
				a.exportCursor = 0
			}
			return a, nil
		case key.Matches(msg, keys.Enter):
			if a.activeView == viewMenu {
				if e, ok := a.menu.selected(); ok {
					return a.run(e)
				}
			}
			return a, nil
		}

	case refreshTickMsg:
		if !a.ticker.accept(msg) {
			return a, nil
		}
		if !a.shouldTick() {
			a.ticker.cancel()
			return a, nil
		}
		m, s := a.deps.Session.Remaining()
		a.menu.setCountdown(true, m, s)
		return a, a.ticker.next()

	case expiryMsg:
		msg.fire()
		cmd := a.afterSession()
		return a, tea.Batch(waitForExpiry(a.deps.Expiries), cmd)

	case dataChangedMsg:
		a.rebuild()
		return a, waitForData(a.watcher)

	case watchErrMsg:
		a.setStatus(fmt.Sprintf("Watch error: %v", msg.err), true)
		return a, waitForData(a.watcher)

	case statusMsg:
		a.setStatus(msg.text, msg.isError)
		return a, nil

	case exportDoneMsg:
		a.setStatus("Exported to "+msg.path, false)
		a.exportPicking = false
		return a, nil
	}

	if a.prompt.active {
		return a.updatePrompt(msg)
	}
	return a.updateActiveView(msg)
}

// run performs the action behind a menu entry.
func (a App) run(e menu.Entry) (tea.Model, tea.Cmd) {
	switch e.Command {
	case menu.StartTask:
		if err := a.deps.Session.Start(e.TaskID); err != nil {
			a.setStatus(fmt.Sprintf("Warning: %v", err), true)
		} else {
			a.setStatus("Started "+e.Title, false)
		}
	case menu.Stop:
		if _, ok := a.deps.Session.Active(); !ok {
			return a, nil
		}
		if err := a.deps.Session.Stop(); err != nil {
			a.setStatus(fmt.Sprintf("Stop failed: %v", err), true)
		} else {
			a.setStatus("Stopped", false)
		}
	case menu.Sync:
		if err := a.deps.Repo.Sync(); err != nil {
			a.setStatus(fmt.Sprintf("Sync failed: %v", err), true)
		} else {
			a.setStatus("Synchronized", false)
		}
		a.deps.Repo.InvalidatePending()
	case menu.Quit:
		return a.quit()
	default:
		return a, nil
	}
	cmd := a.afterSession()
	return a, cmd
}

func (a App) quit() (tea.Model, tea.Cmd) {
	if _, ok := a.deps.Session.Active(); ok {
		if err := a.deps.Session.Stop(); err != nil {
			a.logger.Warnf("stop on quit: %v", err)
		}
	}
	a.ticker.cancel()
	return a, tea.Quit
}

// afterSession collects what the session raised, rebuilds the menu and
// brings the countdown tick in line with the session state.
func (a *App) afterSession() tea.Cmd {
	breaks, warnings := a.deps.Inbox.drain()
	for _, err := range warnings {
		a.setStatus(fmt.Sprintf("Warning: %v", err), true)
	}
	a.breaks = append(a.breaks, breaks...)

	a.rebuild()

	var cmds []tea.Cmd
	cmds = append(cmds, a.syncTicker())
	if !a.prompt.active && len(a.breaks) > 0 {
		n := a.breaks[0]
		a.breaks = a.breaks[1:]
		var cmd tea.Cmd
		a.prompt, cmd = a.prompt.show(n)
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

func (a App) updatePrompt(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd           tea.Cmd
		done, restart bool
	)
	a.prompt, cmd, done, restart = a.prompt.update(msg)
	if !done {
		return a, cmd
	}
	if restart {
		if err := a.deps.Session.Activate(a.prompt.pending); err != nil {
			a.setStatus(fmt.Sprintf("Warning: %v", err), true)
		} else {
			a.setStatus("Started another pomodoro", false)
		}
	}
	cmd = a.afterSession()
	return a, cmd
}

func (a App) switchView(v viewState) (tea.Model, tea.Cmd) {
	a.activeView = v
	if v == viewStats {
		a.stats.interval = a.interval()
		a.stats.refresh()
	}
	cmd := a.syncTicker()
	return a, cmd
}

func (a App) shouldTick() bool {
	_, active := a.deps.Session.Active()
	return active && a.activeView == viewMenu
}

func (a *App) syncTicker() tea.Cmd {
	if a.shouldTick() {
		return a.ticker.start()
	}
	a.ticker.cancel()
	return nil
}

// rebuild recomputes the menu from the session and the pending tasks. The
// pending list comes from the repository cache unless the data file moved.
func (a *App) rebuild() {
	cfg := a.deps.Settings.Settings()
	tasks, err := a.deps.Repo.Pending(cfg)
	if err != nil {
		a.setStatus(fmt.Sprintf("Task list: %v", err), true)
	}
	a.menu.setEntries(menu.Visible(menu.Build(a.deps.Session, tasks, cfg)))
	_, active := a.deps.Session.Active()
	m, s := a.deps.Session.Remaining()
	a.menu.setCountdown(active, m, s)
}

func (a App) interval() time.Duration {
	if secs, ok := a.deps.Settings.Settings().Float(config.KeyDurationSeconds); ok && secs > 0 {
		return time.Duration(secs * float64(time.Second))
	}
	return pomodoro.DefaultDuration
}

func (a *App) setStatus(text string, isError bool) {
	a.status = text
	a.statusErr = isError
	if isError {
		a.logger.Warnf("%s", text)
	}
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewMenu:
		a.menu, cmd = a.menu.update(msg)
	case viewStats:
		a.stats, cmd = a.stats.update(msg)
	}
	return a, cmd
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewMenu:
		content = a.menu.view()
	case viewStats:
		content = a.stats.view()
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	switch {
	case a.prompt.active:
		content = a.prompt.view()
	case a.exportPicking:
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("twpomo")
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		if a.statusErr {
			status = errorStyle.Render(" " + a.status)
		} else {
			status = mutedStyle.Render(" " + a.status)
		}
	}

	timerInfo := ""
	if a.menu.active {
		timerInfo = successStyle.Render(" ● " + formatClock(a.menu.mins, a.menu.secs))
	}

	left := footerStyle.Render(helpView)
	right := timerInfo + status

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderExportPicker() string {
	title := titleStyle.Render("Export Format")
	formats := []string{"CSV", "JSON"}
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range formats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < 1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

// doExport writes the counts currently shown in the stats view. It only
// touches a copy of them, so it can run off the loop.
func (a App) doExport(format int) tea.Cmd {
	counts := append([]taskwarrior.DailyCount(nil), a.stats.counts...)
	interval := a.stats.interval
	dir := a.deps.ExportDir
	dateStr := a.deps.Now().Format("2006-01-02")

	return func() tea.Msg {
		if dir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
			}
			dir = home
		}

		var path string
		if format == 0 {
			path = filepath.Join(dir, fmt.Sprintf("twpomo-export-%s.csv", dateStr))
			if err := export.ToCSV(counts, interval, path); err != nil {
				return statusMsg{text: fmt.Sprintf("CSV error: %v", err), isError: true}
			}
		} else {
			path = filepath.Join(dir, fmt.Sprintf("twpomo-export-%s.json", dateStr))
			if err := export.ToJSON(counts, interval, path); err != nil {
				return statusMsg{text: fmt.Sprintf("JSON error: %v", err), isError: true}
			}
		}

		return exportDoneMsg{path: path}
	}
}
