// Package pomodoro holds the session state machine: which task is being
// timed, when its interval ends, and what happens when it does.
package pomodoro

import (
	"fmt"
	"time"

	"github.com/sadopc/twpomo/internal/applog"
	"github.com/sadopc/twpomo/internal/config"
	"github.com/sadopc/twpomo/internal/notify"
	"github.com/sadopc/twpomo/internal/runner"
	"github.com/sadopc/twpomo/internal/taskwarrior"
)

const (
	DefaultDuration = 1500 * time.Second
	PerLongBreak    = 4

	BreakTitle  = "Break time!"
	BreakBody   = "You've completed your pomodoro."
	BreakAction = "Start Another"
)

// Backend is the subset of the task repository a session drives.
// *taskwarrior.Repository satisfies it.
type Backend interface {
	StartTask(id string) error
	StopTask(id string) error
	TodaysLog() (*taskwarrior.Task, error)
	CreateTodaysLog() (string, error)
	AnnotateLog(logID, text string) error
	Describe(id string) string
}

// Timer cancels a scheduled callback. Stop must be safe to call more than once.
type Timer interface {
	Stop()
}

// Scheduler arranges for fire to run after d on the owner's event loop.
type Scheduler interface {
	Schedule(d time.Duration, fire func()) Timer
}

// HookRunner runs the post-completion command. *runner.Runner satisfies it.
type HookRunner interface {
	RunHook(command, arg string) (runner.HookResult, error)
}

// HookError reports a post-completion command that exited non-zero.
type HookError struct {
	Stderr   string
	ExitCode int
}

func (e *HookError) Error() string {
	return fmt.Sprintf("post-completion command exited %d: %s", e.ExitCode, e.Stderr)
}

type Options struct {
	Backend   Backend
	Settings  config.Provider
	Scheduler Scheduler
	Notifier  notify.Notifier
	Hooks     HookRunner
	Now       func() time.Time
	Logger    *applog.Logger
	// OnWarning receives non-fatal failures raised during expiry.
	OnWarning func(error)
}

type Session struct {
	backend   Backend
	settings  config.Provider
	scheduler Scheduler
	notifier  notify.Notifier
	hooks     HookRunner
	now       func() time.Time
	logger    *applog.Logger
	onWarning func(error)

	activeID string
	endsAt   time.Time
	timer    Timer
	gen      uint64

	logID    string
	logDay   time.Time
	duration time.Duration
}

func New(opts Options) *Session {
	s := &Session{
		backend:   opts.Backend,
		settings:  opts.Settings,
		scheduler: opts.Scheduler,
		notifier:  opts.Notifier,
		hooks:     opts.Hooks,
		now:       opts.Now,
		logger:    opts.Logger.Named("session"),
		onWarning: opts.OnWarning,
		duration:  DefaultDuration,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.settings == nil {
		s.settings = config.Static(config.New(nil))
	}
	return s
}

// Start begins timing taskID, stopping the current task first. The returned
// error is non-nil with the session Active when only today's log entry could
// not be resolved; that pomodoro will not be recorded.
func (s *Session) Start(taskID string) error {
	if s.activeID != "" {
		if err := s.Stop(); err != nil {
			s.warn(err)
		}
	}

	if err := s.backend.StartTask(taskID); err != nil {
		return fmt.Errorf("start %s: %w", taskID, err)
	}

	logErr := s.resolveLog()

	cfg := s.settings.Settings()
	if secs, ok := cfg.Float(config.KeyDurationSeconds); ok && secs > 0 {
		s.duration = time.Duration(secs * float64(time.Second))
	}

	s.activeID = taskID
	s.endsAt = s.now().Add(s.duration)
	s.gen++
	gen := s.gen
	if s.scheduler != nil {
		s.timer = s.scheduler.Schedule(s.duration, func() { s.expire(gen) })
	}
	s.logger.Infof("started %s until %s", taskID, s.endsAt.Format(time.Kitchen))

	if logErr != nil {
		return fmt.Errorf("resolve today's log: %w", logErr)
	}
	return nil
}

// resolveLog finds or creates today's log entry unless one is already cached
// for the current day.
func (s *Session) resolveLog() error {
	today := day(s.now())
	if s.logID != "" && s.logDay.Equal(today) {
		return nil
	}
	s.logID = ""

	log, err := s.backend.TodaysLog()
	if err != nil {
		return err
	}
	if log != nil && log.UUID != "" {
		s.logID, s.logDay = log.UUID, today
		return nil
	}
	id, err := s.backend.CreateTodaysLog()
	if err != nil {
		return err
	}
	s.logID, s.logDay = id, today
	return nil
}

// Stop ends the active task without recording a pomodoro. It is a no-op when
// idle.
func (s *Session) Stop() error {
	if s.activeID == "" {
		return nil
	}
	id := s.activeID
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.activeID = ""
	s.endsAt = time.Time{}
	s.gen++

	if err := s.backend.StopTask(id); err != nil {
		return fmt.Errorf("stop %s: %w", id, err)
	}
	s.logger.Infof("stopped %s", id)
	return nil
}

func (s *Session) expire(gen uint64) {
	if gen != s.gen || s.activeID == "" {
		s.logger.Debugf("ignoring stale expiry")
		return
	}
	id := s.activeID
	if err := s.Stop(); err != nil {
		s.warn(err)
	}

	if s.logID != "" {
		if err := s.backend.AnnotateLog(s.logID, taskwarrior.AnnotationText(id)); err != nil {
			s.warn(fmt.Errorf("record pomodoro: %w", err))
		}
	} else {
		s.logger.Warnf("no log entry cached, pomodoro for %s not recorded", id)
	}

	cfg := s.settings.Settings()
	s.raise(cfg, id)

	cmd, ok := cfg.String(config.KeyPostCompletionCmd)
	if !ok || cmd == "" || s.hooks == nil {
		return
	}
	res, err := s.hooks.RunHook(cmd, id)
	switch {
	case err != nil:
		s.warn(err)
	case res.ExitCode != 0:
		s.warn(&HookError{Stderr: res.Stderr, ExitCode: res.ExitCode})
	}
}

func (s *Session) raise(cfg config.Config, id string) {
	if s.notifier == nil {
		return
	}
	if on, ok := cfg.Bool(config.KeyNotifications); ok && !on {
		return
	}
	n := notify.Notification{
		Title:       BreakTitle,
		Body:        BreakBody,
		TaskID:      id,
		Actionable:  true,
		ActionTitle: BreakAction,
	}
	if err := s.notifier.Notify(n); err != nil {
		s.logger.Warnf("notify: %v", err)
	}
}

// Activate handles the break notification's action by restarting its task.
func (s *Session) Activate(n notify.Notification) error {
	if n.TaskID == "" {
		return nil
	}
	return s.Start(n.TaskID)
}

func (s *Session) warn(err error) {
	s.logger.Warnf("%v", err)
	if s.onWarning != nil {
		s.onWarning(err)
	}
}

func (s *Session) Active() (string, bool) {
	return s.activeID, s.activeID != ""
}

func (s *Session) EndsAt() (time.Time, bool) {
	return s.endsAt, s.activeID != ""
}

// ActiveDescription describes the active task, or returns "" when idle.
func (s *Session) ActiveDescription() string {
	if s.activeID == "" {
		return ""
	}
	return s.backend.Describe(s.activeID)
}

// Remaining is the time left in the interval, floored to the second and never
// negative. Idle sessions report a full default interval.
func (s *Session) Remaining() (minutes, seconds int) {
	if s.activeID == "" {
		return int(DefaultDuration / time.Minute), 0
	}
	d := s.endsAt.Sub(s.now())
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	return total / 60, total % 60
}

// PomodorosDoneToday counts the annotations on today's log entry.
func (s *Session) PomodorosDoneToday() int {
	log, err := s.backend.TodaysLog()
	if err != nil {
		s.logger.Warnf("today's log: %v", err)
		return 0
	}
	if log == nil {
		return 0
	}
	return len(log.Annotations)
}

// CountGlyphs renders today's progress. It reports false when the indicator
// is disabled or there is nothing to show.
func (s *Session) CountGlyphs() (string, bool) {
	if show, ok := s.settings.Settings().Bool(config.KeyDisplayCount); ok && !show {
		return "", false
	}
	g := Glyphs(s.PomodorosDoneToday(), s.activeID != "")
	return g, g != ""
}

func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
