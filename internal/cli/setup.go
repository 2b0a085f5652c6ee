package cli

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sadopc/twpomo/internal/applog"
	"github.com/sadopc/twpomo/internal/config"
	"github.com/sadopc/twpomo/internal/notify"
	"github.com/sadopc/twpomo/internal/pomodoro"
	"github.com/sadopc/twpomo/internal/runner"
	"github.com/sadopc/twpomo/internal/taskwarrior"
)

// app holds the collaborators every command shares.
type app struct {
	logger   *applog.Logger
	logFile  io.Closer
	settings *config.Reloader
	runner   *runner.Runner
	repo     *taskwarrior.Repository
}

// setup loads the rc file and locates the task binary. Either failing is
// fatal. Logs go to --log-file when set; otherwise the terminal host discards
// them and the other commands write to stderr.
func setup(cmd *cobra.Command, interactive bool) (*app, error) {
	a := &app{}
	level := applog.ParseLevel(opts.GetString("log-level"))

	switch path := opts.GetString("log-file"); {
	case path != "" && interactive:
		f, err := tea.LogToFile(config.ExpandPath(path), "twpomo")
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		a.logFile = f
		a.logger = applog.New(f, level)
	case path != "":
		f, err := os.OpenFile(config.ExpandPath(path), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		a.logFile = f
		a.logger = applog.New(f, level)
	case interactive:
		a.logger = applog.Discard()
	default:
		a.logger = applog.New(cmd.ErrOrStderr(), level)
	}

	rcPath := opts.GetString("taskrc")
	settings, err := config.NewReloader(rcPath, a.logger)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("load taskrc: %w", err)
	}
	a.settings = settings

	configured, _ := settings.Settings().String(config.KeyTaskPath)
	taskPath, err := runner.Resolve(config.ExpandPath(configured), runner.DefaultCandidates)
	if err != nil {
		a.close()
		return nil, err
	}

	overrides := opts.GetStringSlice("rc")
	// task must read the same rc file twpomo did.
	a.runner = runner.New(taskPath, overrides, a.logger).WithEnv("TASKRC=" + config.ExpandPath(rcPath))
	a.repo = taskwarrior.NewRepository(a.runner, a.logger)
	a.logger.Debugf("using %s with %s", taskPath, rcPath)
	return a, nil
}

func (a *app) close() {
	if a.logFile != nil {
		a.logFile.Close()
	}
}

func (a *app) newSession(s pomodoro.Scheduler, n notify.Notifier, onWarning func(error)) *pomodoro.Session {
	return pomodoro.New(pomodoro.Options{
		Backend:   a.repo,
		Settings:  a.settings,
		Scheduler: s,
		Notifier:  n,
		Hooks:     a.runner,
		Now:       time.Now,
		Logger:    a.logger,
		OnWarning: onWarning,
	})
}

// desktopNotifier returns the osascript notifier on macOS and nil elsewhere.
func desktopNotifier() notify.Notifier {
	if runtime.GOOS != "darwin" {
		return nil
	}
	return notify.NewDesktop()
}

// interval is the configured pomodoro length.
func interval(cfg config.Config) time.Duration {
	if secs, ok := cfg.Float(config.KeyDurationSeconds); ok && secs > 0 {
		return time.Duration(secs * float64(time.Second))
	}
	return pomodoro.DefaultDuration
}
