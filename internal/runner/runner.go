// Package runner executes the Taskwarrior binary and the post-completion hook.
package runner

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/sadopc/twpomo/internal/applog"
)

// DefaultCandidates are probed in order when no path is configured.
var DefaultCandidates = []string{
	"/usr/local/bin/task",
	"/usr/bin/task",
	"/opt/local/bin/task",
	"/opt/homebrew/bin/task",
}

const hookShell = "/bin/sh"

type NotFoundError struct {
	Candidates []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("could not find taskwarrior in %s", strings.Join(e.Candidates, ", "))
}

// ProcessError reports a binary that could not be launched.
type ProcessError struct {
	Path string
	Args []string
	Err  error
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("launch %s %s: %v", e.Path, strings.Join(e.Args, " "), e.Err)
}

func (e *ProcessError) Unwrap() error { return e.Err }

// Resolve picks the backend binary. A configured path is the only candidate
// when set.
func Resolve(configured string, candidates []string) (string, error) {
	if configured != "" {
		candidates = []string{configured}
	}
	for _, c := range candidates {
		if fi, err := os.Stat(c); err == nil && !fi.IsDir() {
			return c, nil
		}
	}
	return "", &NotFoundError{Candidates: candidates}
}

type Result struct {
	Stdout   string
	ExitCode int
	Took     time.Duration
}

type HookResult struct {
	Stderr   string
	ExitCode int
}

type Runner struct {
	path      string
	overrides []string
	env       []string
	logger    *applog.Logger
}

// New returns a Runner for the binary at path. overrides are prepended to the
// arguments of every invocation.
func New(path string, overrides []string, logger *applog.Logger) *Runner {
	return &Runner{
		path:      path,
		overrides: append([]string(nil), overrides...),
		logger:    logger.Named("runner"),
	}
}

// WithEnv returns a copy of r that adds env (KEY=value) to the child
// environment.
func (r *Runner) WithEnv(env ...string) *Runner {
	c := *r
	c.env = append(append([]string(nil), r.env...), env...)
	return &c
}

func (r *Runner) Path() string { return r.path }

func (r *Runner) Run(args ...string) (Result, error) {
	return r.run(nil, args)
}

// RunInput is Run with input supplied on standard input.
func (r *Runner) RunInput(input string, args ...string) (Result, error) {
	return r.run(strings.NewReader(input), args)
}

func (r *Runner) run(stdin *strings.Reader, args []string) (Result, error) {
	full := append(append([]string(nil), r.overrides...), args...)

	cmd := exec.Command(r.path, full...)
	if len(r.env) > 0 {
		cmd.Env = append(os.Environ(), r.env...)
	}
	if stdin != nil {
		cmd.Stdin = stdin
	}
	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	r.logger.Debugf("r> %s", strings.Join(args, " "))
	start := time.Now()
	err := cmd.Run()
	took := time.Since(start)
	r.logger.Debugf("-> %s", took)

	res := Result{Stdout: stdout.String(), Took: took}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		return res, &ProcessError{Path: r.path, Args: full, Err: err}
	}
	return res, nil
}

// RunHook runs `/bin/sh -c "<command> <arg>"` and captures standard error.
// A non-zero exit is reported through HookResult.ExitCode.
func (r *Runner) RunHook(command, arg string) (HookResult, error) {
	line := fmt.Sprintf("%s %s", command, arg)
	cmd := exec.Command(hookShell, "-c", line)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	r.logger.Debugf("h> %s", line)
	err := cmd.Run()
	res := HookResult{Stderr: stderr.String()}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		return res, &ProcessError{Path: hookShell, Args: []string{"-c", line}, Err: err}
	}
	return res, nil
}
