package taskwarrior

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sadopc/twpomo/internal/applog"
	"github.com/sadopc/twpomo/internal/config"
	"github.com/sadopc/twpomo/internal/runner"
)

const (
	// LogDescription names the per-day task that collects pomodoro annotations.
	LogDescription = "PomodoroLog"
	// UnknownDescription is returned by Describe when a task cannot be found.
	UnknownDescription = "N/A"

	pendingDataFile = "pending.data"
)

var ErrLogEntryNotFound = errors.New("pomodoro log entry not found after creating it")

// Executor runs the task binary. *runner.Runner satisfies it.
type Executor interface {
	Run(args ...string) (runner.Result, error)
}

type pendingCache struct {
	tasks      []Task
	filter     string
	sort       string
	modifiedAt time.Time
	valid      bool
}

type Repository struct {
	exec   Executor
	logger *applog.Logger
	stat   func(string) (os.FileInfo, error)

	pending pendingCache
}

func NewRepository(exec Executor, logger *applog.Logger) *Repository {
	return &Repository{
		exec:   exec,
		logger: logger.Named("taskwarrior"),
		stat:   os.Stat,
	}
}

// Fetch exports the tasks matching filter. Lines that fail to decode are
// logged and dropped.
func (r *Repository) Fetch(filter ...string) ([]Task, error) {
	args := append([]string{"rc.json.array=off"}, filter...)
	args = append(args, "export")

	res, err := r.exec.Run(args...)
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", strings.Join(filter, " "), err)
	}

	var tasks []Task
	for _, line := range strings.Split(res.Stdout, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var t Task
		if err := json.Unmarshal([]byte(line), &t); err != nil {
			r.logger.Warnf("dropping malformed task record: %v", err)
			continue
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// PendingFilter builds the filter used for the task list.
func PendingFilter(cfg config.Config) []string {
	filter := []string{"status:Pending"}
	if f, ok := cfg.String(config.KeyDefaultFilter); ok && f != "" {
		filter = append([]string{f}, filter...)
	}
	return filter
}

// Pending returns the pending tasks, sorted when pomodoro.default.sort is
// set. Results are reused until <data.location>/pending.data changes or the
// filter or sort settings do.
func (r *Repository) Pending(cfg config.Config) ([]Task, error) {
	filter := PendingFilter(cfg)
	list, sorted := cfg.String(config.KeyDefaultSort)
	joined := strings.Join(filter, " ")

	mtime, fresh := r.pendingModTime(cfg)
	if fresh && r.pending.filter == joined && r.pending.sort == list {
		return r.pending.tasks, nil
	}

	tasks, err := r.Fetch(filter...)
	if err != nil {
		r.pending = pendingCache{}
		return nil, err
	}
	if sorted {
		tasks = SortTasks(tasks, list)
	}

	r.pending = pendingCache{
		tasks:      tasks,
		filter:     joined,
		sort:       list,
		modifiedAt: mtime,
		valid:      !mtime.IsZero(),
	}
	return tasks, nil
}

// InvalidatePending forces the next Pending call to query the backend.
func (r *Repository) InvalidatePending() {
	r.pending = pendingCache{}
}

func (r *Repository) pendingModTime(cfg config.Config) (time.Time, bool) {
	loc, ok := cfg.String(config.KeyDataLocation)
	if !ok || loc == "" {
		return time.Time{}, false
	}
	path := filepath.Join(config.ExpandPath(loc), pendingDataFile)
	fi, err := r.stat(path)
	if err != nil {
		r.logger.Debugf("stat %s: %v", path, err)
		return time.Time{}, false
	}
	mt := fi.ModTime()
	if r.pending.valid && !r.pending.modifiedAt.Before(mt) {
		return mt, true
	}
	return mt, false
}

// TodaysLog finds today's PomodoroLog entry, or nil when there is none yet.
func (r *Repository) TodaysLog() (*Task, error) {
	tasks, err := r.Fetch("status:Completed", LogDescription, "entry:today", "limit:1")
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, nil
	}
	return &tasks[0], nil
}

// CreateTodaysLog logs a new PomodoroLog entry and returns its id.
func (r *Repository) CreateTodaysLog() (string, error) {
	if _, err := r.exec.Run("log", LogDescription); err != nil {
		return "", fmt.Errorf("log %s: %w", LogDescription, err)
	}
	t, err := r.TodaysLog()
	if err != nil {
		return "", err
	}
	if t == nil || t.UUID == "" {
		return "", ErrLogEntryNotFound
	}
	return t.UUID, nil
}

func (r *Repository) AnnotateLog(logID, text string) error {
	return r.command(logID, "annotate", text)
}

// Describe returns the description of task id, or UnknownDescription.
func (r *Repository) Describe(id string) string {
	tasks, err := r.Fetch(id, "limit:1")
	if err != nil {
		r.logger.Warnf("describe %s: %v", id, err)
		return UnknownDescription
	}
	if len(tasks) == 0 || tasks[0].Description == "" {
		return UnknownDescription
	}
	return tasks[0].Description
}

func (r *Repository) StartTask(id string) error {
	return r.command(id, "start")
}

func (r *Repository) StopTask(id string) error {
	return r.command(id, "stop")
}

func (r *Repository) Sync() error {
	return r.command("sync")
}

func (r *Repository) command(args ...string) error {
	res, err := r.exec.Run(args...)
	if err != nil {
		return fmt.Errorf("task %s: %w", strings.Join(args, " "), err)
	}
	if res.ExitCode != 0 {
		r.logger.Warnf("task %s exited %d", strings.Join(args, " "), res.ExitCode)
	}
	return nil
}
