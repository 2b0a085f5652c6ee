// Package notify delivers break notifications.
package notify

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Notification is the payload raised when a pomodoro completes. TaskID lets
// the host restart the same task when the action is taken.
type Notification struct {
	Title       string
	Body        string
	TaskID      string
	Actionable  bool
	ActionTitle string
}

// Notifier delivers a notification. Delivery is fire-and-forget; the returned
// error is for logging only.
type Notifier interface {
	Notify(n Notification) error
}

// Func adapts a plain function to Notifier.
type Func func(n Notification) error

func (f Func) Notify(n Notification) error { return f(n) }

// Multi fans a notification out to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) Notify(n Notification) error {
	var errs []error
	for _, nt := range m {
		if nt == nil {
			continue
		}
		if err := nt.Notify(n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Desktop shows notifications through osascript.
type Desktop struct {
	// Sound is the notification sound name. Empty means silent.
	Sound string

	command func(name string, args ...string) *exec.Cmd
}

func NewDesktop() *Desktop {
	return &Desktop{Sound: "default", command: exec.Command}
}

func (d *Desktop) Notify(n Notification) error {
	cmd := d.command("osascript", "-e", Script(n, d.Sound))
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("osascript: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Script builds the AppleScript statement for n.
func Script(n Notification, sound string) string {
	body := n.Body
	if n.Actionable && n.ActionTitle != "" {
		body = fmt.Sprintf("%s (%s)", body, n.ActionTitle)
	}
	script := fmt.Sprintf(`display notification "%s" with title "%s"`,
		escapeAppleScript(body), escapeAppleScript(n.Title))
	if sound != "" {
		script += fmt.Sprintf(` sound name "%s"`, escapeAppleScript(sound))
	}
	return script
}

func escapeAppleScript(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return s
}
