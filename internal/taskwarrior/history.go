package taskwarrior

import (
	"sort"
	"strings"
	"time"
)

// AnnotationPrefix starts every annotation written for a completed pomodoro.
const AnnotationPrefix = "Pomodoro uuid:"

// AnnotationText is the annotation recorded for a pomodoro on taskID.
func AnnotationText(taskID string) string {
	return AnnotationPrefix + taskID
}

// DailyCount is the number of pomodoros recorded in one day's log entry.
type DailyCount struct {
	Day     time.Time
	Count   int
	TaskIDs []string
}

// History returns one DailyCount per PomodoroLog entry created after since,
// oldest first.
func (r *Repository) History(since time.Time) ([]DailyCount, error) {
	tasks, err := r.Fetch(
		"status:Completed",
		LogDescription,
		"entry.after:"+since.Format("2006-01-02"),
	)
	if err != nil {
		return nil, err
	}

	counts := make([]DailyCount, 0, len(tasks))
	for _, t := range tasks {
		if t.Description != LogDescription {
			continue
		}
		entry := t.EntryTime()
		if entry.IsZero() {
			r.logger.Debugf("log entry %s has no usable entry time", t.UUID)
			continue
		}
		local := entry.Local()
		dc := DailyCount{
			Day:   time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.Local),
			Count: len(t.Annotations),
		}
		for _, a := range t.Annotations {
			if id, ok := strings.CutPrefix(strings.Trim(a.Description, `"`), AnnotationPrefix); ok {
				dc.TaskIDs = append(dc.TaskIDs, id)
			}
		}
		counts = append(counts, dc)
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Day.Before(counts[j].Day)
	})
	return counts, nil
}

// HistoryBetween returns the DailyCounts whose day lies in [from, to).
// entry.after matches from the named day's midnight on, so the query starts
// a day early and the window is trimmed here.
func (r *Repository) HistoryBetween(from, to time.Time) ([]DailyCount, error) {
	counts, err := r.History(from.AddDate(0, 0, -1))
	if err != nil {
		return nil, err
	}
	var kept []DailyCount
	for _, c := range counts {
		if !c.Day.Before(from) && c.Day.Before(to) {
			kept = append(kept, c)
		}
	}
	return kept, nil
}
