// Package taskwarrior queries and updates tasks through the `task` binary.
package taskwarrior

import (
	"encoding/json"
	"time"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusDeleted   Status = "deleted"
	StatusWaiting   Status = "waiting"
	StatusRecurring Status = "recurring"
)

// TimeLayout is the compact UTC form Taskwarrior uses in exports.
const TimeLayout = "20060102T150405Z"

type Annotation struct {
	Entry       string `json:"entry"`
	Description string `json:"description"`
}

// Task is one exported record. Fields keeps every attribute of the record so
// that sorting can address any of them.
type Task struct {
	UUID        string       `json:"uuid"`
	Description string       `json:"description"`
	Status      Status       `json:"status"`
	Entry       string       `json:"entry,omitempty"`
	Annotations []Annotation `json:"annotations,omitempty"`

	Fields map[string]any `json:"-"`
}

func (t *Task) UnmarshalJSON(data []byte) error {
	type plain Task
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*t = Task(p)
	t.Fields = fields
	return nil
}

// EntryTime parses the entry timestamp. The zero time is returned when it is
// missing or malformed.
func (t Task) EntryTime() time.Time {
	ts, err := time.Parse(TimeLayout, t.Entry)
	if err != nil {
		return time.Time{}
	}
	return ts
}
