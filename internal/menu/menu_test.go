package menu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/twpomo/internal/config"
	"github.com/sadopc/twpomo/internal/taskwarrior"
)

const (
	uuidA = "6f1c1f2e-8b0a-4b8e-9a53-2f0d3f1f7a01"
	uuidB = "0b7e4c1a-3d2f-4e55-8c9a-77a1c2d3e4f5"
)

type stubView struct {
	glyphs     string
	active     string
	desc       string
	mins, secs int
}

func (v stubView) CountGlyphs() (string, bool) { return v.glyphs, v.glyphs != "" }
func (v stubView) Active() (string, bool)      { return v.active, v.active != "" }
func (v stubView) ActiveDescription() string   { return v.desc }
func (v stubView) Remaining() (int, int)       { return v.mins, v.secs }

type shape struct {
	Kind    Kind
	Title   string
	Enabled bool
}

func shapes(entries []Entry) []shape {
	out := make([]shape, len(entries))
	for i, e := range entries {
		out[i] = shape{e.Kind, e.Title, e.Enabled}
	}
	return out
}

func TestBuild_EmptyBaseline(t *testing.T) {
	entries := Visible(Build(stubView{}, nil, config.New(nil)))

	assert.Equal(t, []shape{
		{Separator, "", false},
		{Separator, "", false},
		{Action, QuitTitle, true},
	}, shapes(entries))
}

func TestBuild_TwoPendingTasks(t *testing.T) {
	tasks := []taskwarrior.Task{
		{UUID: uuidA, Description: "A"},
		{UUID: uuidB, Description: "B"},
	}
	entries := Visible(Build(stubView{}, tasks, config.New(nil)))

	assert.Equal(t, []shape{
		{Separator, "", false},
		{Action, "A", true},
		{Action, "B", true},
		{Separator, "", false},
		{Action, QuitTitle, true},
	}, shapes(entries))
	assert.Equal(t, StartTask, entries[1].Command)
	assert.Equal(t, uuidA, entries[1].TaskID)
}

func TestBuild_Active(t *testing.T) {
	v := stubView{glyphs: "🍅🍊", active: uuidB, desc: "B", mins: 24, secs: 59}
	tasks := []taskwarrior.Task{{UUID: uuidA, Description: "A"}}
	cfg := config.New(map[string]string{config.KeyTaskdServer: "host:53589"})

	entries := Visible(Build(v, tasks, cfg))
	assert.Equal(t, []shape{
		{Label, "🍅🍊", false},
		{Separator, "", false},
		{Label, "Active:  B", false},
		{Action, "Stop (24:59 remaining)", true},
		{Separator, "", false},
		{Action, "A", true},
		{Separator, "", false},
		{Action, SyncTitle, true},
		{Separator, "", false},
		{Action, QuitTitle, true},
	}, shapes(entries))
	assert.Equal(t, Stop, entries[3].Command)
	assert.Equal(t, Sync, entries[7].Command)
}

func TestBuild_HiddenEntriesKeepOrder(t *testing.T) {
	all := Build(stubView{}, nil, config.New(nil))
	require.Len(t, all, 9)
	assert.False(t, all[0].Visible, "count label")
	assert.False(t, all[1].Visible)
	assert.False(t, all[2].Visible)
	assert.False(t, all[3].Visible, "stop")
	assert.True(t, all[4].Visible)
	assert.False(t, all[5].Visible, "sync separator")
	assert.False(t, all[6].Visible, "sync")
}

func TestBuild_SkipsTasksWithoutIDOrDescription(t *testing.T) {
	tasks := []taskwarrior.Task{
		{UUID: "", Description: "no id"},
		{UUID: uuidA, Description: ""},
		{UUID: "42", Description: "opaque id"},
		{UUID: uuidB, Description: "ok"},
	}
	var titles []string
	for _, e := range Visible(Build(stubView{}, tasks, config.New(nil))) {
		if e.Command == StartTask {
			titles = append(titles, e.Title)
		}
	}
	assert.Equal(t, []string{"opaque id", "ok"}, titles)
}

func TestStopTitle(t *testing.T) {
	assert.Equal(t, "Stop (25:00 remaining)", StopTitle(25, 0))
	assert.Equal(t, "Stop (04:07 remaining)", StopTitle(4, 7))
}

func TestActionable(t *testing.T) {
	assert.True(t, Entry{Kind: Action, Enabled: true, Visible: true}.Actionable())
	assert.False(t, Entry{Kind: Action, Enabled: true}.Actionable())
	assert.False(t, Entry{Kind: Label, Enabled: true, Visible: true}.Actionable())
}
