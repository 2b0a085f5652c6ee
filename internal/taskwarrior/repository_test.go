package taskwarrior

import (
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/twpomo/internal/applog"
	"github.com/sadopc/twpomo/internal/config"
	"github.com/sadopc/twpomo/internal/runner"
)

// fakeExec answers invocations from a table keyed by the joined arguments.
type fakeExec struct {
	calls   [][]string
	replies map[string]string
	errs    map[string]error
	hook    func(args []string)
}

func newFakeExec() *fakeExec {
	return &fakeExec{replies: map[string]string{}, errs: map[string]error{}}
}

func (f *fakeExec) Run(args ...string) (runner.Result, error) {
	f.calls = append(f.calls, args)
	key := strings.Join(args, " ")
	if f.hook != nil {
		f.hook(args)
	}
	if err, ok := f.errs[key]; ok {
		return runner.Result{}, err
	}
	return runner.Result{Stdout: f.replies[key]}, nil
}

func exportKey(filter ...string) string {
	return strings.Join(append(append([]string{"rc.json.array=off"}, filter...), "export"), " ")
}

func TestFetch_DropsMalformedLines(t *testing.T) {
	exec := newFakeExec()
	exec.replies[exportKey("status:Pending")] = strings.Join([]string{
		`{"uuid":"a","description":"A","status":"pending","urgency":3.2}`,
		`{"uuid":"b","descr`,
		``,
		`not json`,
		`{"uuid":"c","description":"C","status":"pending","annotations":[{"entry":"20261019T080000Z","description":"x"}]}`,
	}, "\n")

	repo := NewRepository(exec, applog.Discard())
	tasks, err := repo.Fetch("status:Pending")
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	assert.Equal(t, "A", tasks[0].Description)
	assert.Equal(t, StatusPending, tasks[0].Status)
	assert.Equal(t, 3.2, tasks[0].Fields["urgency"])
	assert.Len(t, tasks[1].Annotations, 1)
}

func TestFetch_ProcessErrorPropagates(t *testing.T) {
	exec := newFakeExec()
	boom := errors.New("boom")
	exec.errs[exportKey("x")] = boom

	_, err := NewRepository(exec, applog.Discard()).Fetch("x")
	assert.ErrorIs(t, err, boom)
}

func TestPendingFilter(t *testing.T) {
	assert.Equal(t, []string{"status:Pending"}, PendingFilter(config.New(nil)))
	assert.Equal(t,
		[]string{"+next -BLOCKED", "status:Pending"},
		PendingFilter(config.New(map[string]string{config.KeyDefaultFilter: "+next -BLOCKED"})),
	)
}

func TestPending_SortsWhenConfigured(t *testing.T) {
	exec := newFakeExec()
	exec.replies[exportKey("status:Pending")] = `{"uuid":"1","description":"low","priority":"L"}
{"uuid":"2","description":"none"}
{"uuid":"3","description":"high","priority":"H"}`

	repo := NewRepository(exec, applog.Discard())

	unsorted, err := repo.Pending(config.New(nil))
	require.NoError(t, err)
	assert.Equal(t, []string{"low", "none", "high"}, descriptions(unsorted))

	sorted, err := repo.Pending(config.New(map[string]string{config.KeyDefaultSort: "priority+"}))
	require.NoError(t, err)
	assert.Equal(t, []string{"high", "low", "none"}, descriptions(sorted))
}

type fakeInfo struct {
	os.FileInfo
	mt time.Time
}

func (f fakeInfo) ModTime() time.Time { return f.mt }

func TestPending_CacheFollowsDataFileMtime(t *testing.T) {
	exec := newFakeExec()
	exec.replies[exportKey("status:Pending")] = `{"uuid":"1","description":"one"}`

	repo := NewRepository(exec, applog.Discard())
	mt := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	var statted string
	repo.stat = func(path string) (os.FileInfo, error) {
		statted = path
		return fakeInfo{mt: mt}, nil
	}
	cfg := config.New(map[string]string{config.KeyDataLocation: "/data/task"})

	_, err := repo.Pending(cfg)
	require.NoError(t, err)
	_, err = repo.Pending(cfg)
	require.NoError(t, err)
	assert.Len(t, exec.calls, 1, "unchanged data file must not re-invoke the backend")
	assert.Equal(t, "/data/task/pending.data", statted)

	mt = mt.Add(time.Second)
	_, err = repo.Pending(cfg)
	require.NoError(t, err)
	assert.Len(t, exec.calls, 2, "newer mtime refreshes the cache")

	repo.InvalidatePending()
	_, err = repo.Pending(cfg)
	require.NoError(t, err)
	assert.Len(t, exec.calls, 3)
}

func TestPending_CacheFollowsSettings(t *testing.T) {
	exec := newFakeExec()
	repo := NewRepository(exec, applog.Discard())
	mt := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	repo.stat = func(string) (os.FileInfo, error) { return fakeInfo{mt: mt}, nil }

	base := map[string]string{config.KeyDataLocation: "/data"}
	with := func(extra map[string]string) config.Config {
		m := map[string]string{}
		for k, v := range base {
			m[k] = v
		}
		for k, v := range extra {
			m[k] = v
		}
		return config.New(m)
	}

	_, _ = repo.Pending(with(nil))
	_, _ = repo.Pending(with(map[string]string{config.KeyDefaultFilter: "+next"}))
	assert.Len(t, exec.calls, 2, "a new filter must not be served from the cache")
	assert.Equal(t, []string{"rc.json.array=off", "+next", "status:Pending", "export"}, exec.calls[1])

	sorted := with(map[string]string{config.KeyDefaultFilter: "+next", config.KeyDefaultSort: "due+"})
	_, _ = repo.Pending(sorted)
	assert.Len(t, exec.calls, 3, "a new sort list must not be served from the cache")

	_, _ = repo.Pending(sorted)
	assert.Len(t, exec.calls, 3)
}

func TestPending_NoDataLocationAlwaysRefreshes(t *testing.T) {
	exec := newFakeExec()
	repo := NewRepository(exec, applog.Discard())

	for i := 0; i < 3; i++ {
		_, err := repo.Pending(config.New(nil))
		require.NoError(t, err)
	}
	assert.Len(t, exec.calls, 3)
}

func TestPending_StatFailureBypassesCache(t *testing.T) {
	exec := newFakeExec()
	repo := NewRepository(exec, applog.Discard())
	repo.stat = func(string) (os.FileInfo, error) { return nil, os.ErrNotExist }
	cfg := config.New(map[string]string{config.KeyDataLocation: "/data"})

	_, _ = repo.Pending(cfg)
	_, _ = repo.Pending(cfg)
	assert.Len(t, exec.calls, 2)
}

func TestTodaysLog(t *testing.T) {
	exec := newFakeExec()
	logFilter := exportKey("status:Completed", "PomodoroLog", "entry:today", "limit:1")
	repo := NewRepository(exec, applog.Discard())

	log, err := repo.TodaysLog()
	require.NoError(t, err)
	assert.Nil(t, log)

	exec.replies[logFilter] = `{"uuid":"log-1","description":"PomodoroLog","status":"completed","annotations":[{"description":"Pomodoro uuid:a"},{"description":"Pomodoro uuid:b"}]}`
	log, err = repo.TodaysLog()
	require.NoError(t, err)
	require.NotNil(t, log)
	assert.Len(t, log.Annotations, 2)
	assert.Equal(t, "log-1", log.UUID)
}

func TestCreateTodaysLog(t *testing.T) {
	logFilter := exportKey("status:Completed", "PomodoroLog", "entry:today", "limit:1")

	t.Run("created entry is re-resolved", func(t *testing.T) {
		exec := newFakeExec()
		exec.hook = func(args []string) {
			if strings.Join(args, " ") == "log PomodoroLog" {
				exec.replies[logFilter] = `{"uuid":"new-log","description":"PomodoroLog"}`
			}
		}
		id, err := NewRepository(exec, applog.Discard()).CreateTodaysLog()
		require.NoError(t, err)
		assert.Equal(t, "new-log", id)
		assert.Equal(t, []string{"log", "PomodoroLog"}, exec.calls[0])
	})

	t.Run("missing after log is an error", func(t *testing.T) {
		exec := newFakeExec()
		_, err := NewRepository(exec, applog.Discard()).CreateTodaysLog()
		assert.ErrorIs(t, err, ErrLogEntryNotFound)
	})
}

func TestDescribe(t *testing.T) {
	exec := newFakeExec()
	exec.replies[exportKey("abc", "limit:1")] = `{"uuid":"abc","description":"Write report"}`
	exec.replies[exportKey("nodesc", "limit:1")] = `{"uuid":"nodesc"}`
	exec.errs[exportKey("broken", "limit:1")] = errors.New("launch")

	repo := NewRepository(exec, applog.Discard())
	assert.Equal(t, "Write report", repo.Describe("abc"))
	assert.Equal(t, UnknownDescription, repo.Describe("missing"))
	assert.Equal(t, UnknownDescription, repo.Describe("nodesc"))
	assert.Equal(t, UnknownDescription, repo.Describe("broken"))
}

func TestCommands(t *testing.T) {
	exec := newFakeExec()
	repo := NewRepository(exec, applog.Discard())

	require.NoError(t, repo.StartTask("u1"))
	require.NoError(t, repo.StopTask("u1"))
	require.NoError(t, repo.AnnotateLog("log-1", AnnotationText("u1")))
	require.NoError(t, repo.Sync())

	assert.Equal(t, [][]string{
		{"u1", "start"},
		{"u1", "stop"},
		{"log-1", "annotate", "Pomodoro uuid:u1"},
		{"sync"},
	}, exec.calls)
}

func TestHistory(t *testing.T) {
	exec := newFakeExec()
	since := time.Date(2026, 10, 12, 0, 0, 0, 0, time.Local)
	exec.replies[exportKey("status:Completed", "PomodoroLog", "entry.after:2026-10-12")] = strings.Join([]string{
		`{"uuid":"l2","description":"PomodoroLog","entry":"20261015T120000Z","annotations":[{"description":"\"Pomodoro uuid:x\""}]}`,
		`{"uuid":"l1","description":"PomodoroLog","entry":"20261013T120000Z","annotations":[{"description":"Pomodoro uuid:a"},{"description":"Pomodoro uuid:b"},{"description":"note"}]}`,
		`{"uuid":"other","description":"PomodoroLog extra","entry":"20261014T120000Z"}`,
		`{"uuid":"bad","description":"PomodoroLog","entry":"yesterday"}`,
	}, "\n")

	counts, err := NewRepository(exec, applog.Discard()).History(since)
	require.NoError(t, err)
	require.Len(t, counts, 2)

	assert.Equal(t, 3, counts[0].Count)
	assert.Equal(t, []string{"a", "b"}, counts[0].TaskIDs)
	assert.Equal(t, 1, counts[1].Count)
	assert.Equal(t, []string{"x"}, counts[1].TaskIDs)
	assert.True(t, counts[0].Day.Before(counts[1].Day))
	assert.Equal(t, 0, counts[0].Day.Hour())
}

func TestHistoryBetween(t *testing.T) {
	exec := newFakeExec()
	at := func(d int) string {
		return time.Date(2026, 10, d, 12, 0, 0, 0, time.Local).UTC().Format("20060102T150405Z")
	}
	exec.replies[exportKey("status:Completed", "PomodoroLog", "entry.after:2026-10-12")] = strings.Join([]string{
		`{"uuid":"l12","description":"PomodoroLog","entry":"` + at(12) + `","annotations":[{"description":"Pomodoro uuid:a"}]}`,
		`{"uuid":"l13","description":"PomodoroLog","entry":"` + at(13) + `","annotations":[{"description":"Pomodoro uuid:b"}]}`,
		`{"uuid":"l19","description":"PomodoroLog","entry":"` + at(19) + `","annotations":[{"description":"Pomodoro uuid:c"}]}`,
	}, "\n")

	from := time.Date(2026, 10, 13, 0, 0, 0, 0, time.Local)
	counts, err := NewRepository(exec, applog.Discard()).HistoryBetween(from, from.AddDate(0, 0, 6))
	require.NoError(t, err)
	require.Len(t, counts, 1)
	assert.Equal(t, []string{"b"}, counts[0].TaskIDs)
}

func descriptions(tasks []Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Description
	}
	return out
}
