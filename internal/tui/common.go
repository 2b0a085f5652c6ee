package tui

import (
	"fmt"
	"time"

	"github.com/sadopc/twpomo/internal/notify"
)

// viewState represents the currently active view.
type viewState int

const (
	viewMenu viewState = iota
	viewStats
)

var viewNames = []string{"Pomodoro", "Stats"}

// --- Messages ---

type statusMsg struct {
	text    string
	isError bool
}

// refreshTickMsg redraws the countdown. Ticks from a cancelled generation are
// dropped.
type refreshTickMsg struct {
	gen int
}

// expiryMsg carries a due scheduler callback into the event loop.
type expiryMsg struct {
	fire func()
}

type dataChangedMsg struct{}

type watchErrMsg struct {
	err error
}

type exportDoneMsg struct {
	path string
}

// --- Inbox ---

// Inbox collects break notifications and warnings raised by the session
// while the loop runs it. The App drains it after every session call.
type Inbox struct {
	breaks   []notify.Notification
	warnings []error
}

func (b *Inbox) Notify(n notify.Notification) error {
	b.breaks = append(b.breaks, n)
	return nil
}

func (b *Inbox) Warn(err error) {
	b.warnings = append(b.warnings, err)
}

func (b *Inbox) drain() ([]notify.Notification, []error) {
	breaks, warnings := b.breaks, b.warnings
	b.breaks, b.warnings = nil, nil
	return breaks, warnings
}

// --- Helpers ---

func formatClock(minutes, seconds int) string {
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
