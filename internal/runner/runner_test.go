package runner

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/twpomo/internal/applog"
)

// fakeTask writes an executable shell script standing in for the task binary.
func fakeTask(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "task")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func TestResolve(t *testing.T) {
	present := fakeTask(t, "exit 0")
	missing := filepath.Join(t.TempDir(), "missing")

	t.Run("first existing candidate wins", func(t *testing.T) {
		got, err := Resolve("", []string{missing, present})
		require.NoError(t, err)
		assert.Equal(t, present, got)
	})

	t.Run("configured path replaces candidates", func(t *testing.T) {
		_, err := Resolve(missing, []string{present})
		var nf *NotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, []string{missing}, nf.Candidates)
	})

	t.Run("error names every candidate", func(t *testing.T) {
		other := filepath.Join(t.TempDir(), "other")
		_, err := Resolve("", []string{missing, other})
		require.Error(t, err)
		assert.Contains(t, err.Error(), missing)
		assert.Contains(t, err.Error(), other)
	})

	t.Run("directories are skipped", func(t *testing.T) {
		_, err := Resolve("", []string{t.TempDir()})
		require.Error(t, err)
	})
}

func TestRun_PrependsOverrides(t *testing.T) {
	bin := fakeTask(t, `for a in "$@"; do echo "$a"; done`)
	r := New(bin, []string{"rc.data.location=/tmp/x"}, applog.Discard())

	res, err := r.Run("status:Pending", "export")
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "rc.data.location=/tmp/x\nstatus:Pending\nexport\n", res.Stdout)
}

func TestRun_NonZeroExitIsNotAnError(t *testing.T) {
	bin := fakeTask(t, "echo partial; exit 3")
	res, err := New(bin, nil, applog.Discard()).Run("x")
	require.NoError(t, err)
	assert.Equal(t, 3, res.ExitCode)
	assert.Equal(t, "partial\n", res.Stdout)
}

func TestRun_LaunchFailure(t *testing.T) {
	r := New(filepath.Join(t.TempDir(), "gone"), nil, applog.Discard())
	_, err := r.Run("export")

	var pe *ProcessError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, []string{"export"}, pe.Args)
	assert.True(t, errors.Is(err, pe.Err))
}

func TestRunInput(t *testing.T) {
	bin := fakeTask(t, "cat")
	res, err := New(bin, nil, applog.Discard()).RunInput("yes\n", "config", "a", "b")
	require.NoError(t, err)
	assert.Equal(t, "yes\n", res.Stdout)
}

func TestWithEnv(t *testing.T) {
	bin := fakeTask(t, `echo "$TASKRC"`)
	r := New(bin, nil, applog.Discard()).WithEnv("TASKRC=/tmp/rc")
	res, err := r.Run()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/rc", strings.TrimSpace(res.Stdout))
}

func TestRunHook(t *testing.T) {
	r := New("/unused", nil, applog.Discard())

	t.Run("success", func(t *testing.T) {
		res, err := r.RunHook("echo", "abc >&2")
		require.NoError(t, err)
		assert.Equal(t, 0, res.ExitCode)
		assert.Equal(t, "abc\n", res.Stderr)
	})

	t.Run("failure captures stderr", func(t *testing.T) {
		res, err := r.RunHook("sh -c 'echo bad uuid $0 >&2; exit 2'", "1234")
		require.NoError(t, err)
		assert.Equal(t, 2, res.ExitCode)
		assert.Equal(t, "bad uuid 1234\n", res.Stderr)
	})
}
