package applog

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  Level
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"warning", LevelWarn},
		{" warn ", LevelWarn},
		{"error", LevelError},
		{"verbose", LevelInfo},
		{"", LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestLoggerFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelWarn)
	l.now = func() time.Time { return time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC) }

	l.Debugf("hidden %d", 1)
	l.Infof("hidden %d", 2)
	l.Warnf("shown %d", 3)
	l.Named("runner").Errorf("boom")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug/info lines leaked: %q", out)
	}
	if !strings.Contains(out, "2026-10-19T09:00:00Z WARN shown 3") {
		t.Fatalf("missing warn line: %q", out)
	}
	if !strings.Contains(out, "ERROR runner: boom") {
		t.Fatalf("missing component line: %q", out)
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	var l *Logger
	l.Infof("nothing")
	if l.Named("x") != nil {
		t.Fatal("Named on nil logger should stay nil")
	}
}

func TestDiscard(t *testing.T) {
	l := Discard()
	l.Errorf("dropped")
}
