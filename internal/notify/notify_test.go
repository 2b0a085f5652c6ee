package notify

import (
	"errors"
	"os/exec"
	"testing"
)

func TestEscapeAppleScript(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"hello", "hello"},
		{`say "hello"`, `say \"hello\"`},
		{`path\to\file`, `path\\to\\file`},
		{`"quote" and \backslash`, `\"quote\" and \\backslash`},
		{"", ""},
	}
	for _, tt := range tests {
		got := escapeAppleScript(tt.input)
		if got != tt.want {
			t.Errorf("escapeAppleScript(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestScript(t *testing.T) {
	n := Notification{
		Title:       "Break time!",
		Body:        `You've completed "it".`,
		Actionable:  true,
		ActionTitle: "Start Another",
	}
	want := `display notification "You've completed \"it\". (Start Another)" with title "Break time!" sound name "default"`
	if got := Script(n, "default"); got != want {
		t.Errorf("Script() = %q, want %q", got, want)
	}

	n.Actionable = false
	want = `display notification "You've completed \"it\"." with title "Break time!"`
	if got := Script(n, ""); got != want {
		t.Errorf("Script() = %q, want %q", got, want)
	}
}

func TestDesktop_RunsOsascript(t *testing.T) {
	var gotName string
	var gotArgs []string
	d := &Desktop{command: func(name string, args ...string) *exec.Cmd {
		gotName, gotArgs = name, args
		return exec.Command("/bin/sh", "-c", "exit 0")
	}}

	if err := d.Notify(Notification{Title: "t", Body: "b"}); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if gotName != "osascript" || len(gotArgs) != 2 || gotArgs[0] != "-e" {
		t.Errorf("command = %s %v", gotName, gotArgs)
	}
}

func TestDesktop_Failure(t *testing.T) {
	d := &Desktop{command: func(string, ...string) *exec.Cmd {
		return exec.Command("/bin/sh", "-c", "echo nope >&2; exit 1")
	}}
	if err := d.Notify(Notification{}); err == nil {
		t.Fatal("expected error from failing osascript")
	}
}

func TestMulti(t *testing.T) {
	var seen []string
	boom := errors.New("boom")
	m := Multi{
		Func(func(n Notification) error { seen = append(seen, "a:"+n.TaskID); return nil }),
		nil,
		Func(func(n Notification) error { seen = append(seen, "b:"+n.TaskID); return boom }),
	}

	err := m.Notify(Notification{TaskID: "x"})
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}
	if len(seen) != 2 || seen[0] != "a:x" || seen[1] != "b:x" {
		t.Errorf("seen = %v", seen)
	}
	if err := (Multi{}).Notify(Notification{}); err != nil {
		t.Errorf("empty Multi: %v", err)
	}
}
