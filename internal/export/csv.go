// Package export writes pomodoro history to files.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sadopc/twpomo/internal/taskwarrior"
)

const dateLayout = "2006-01-02"

// ToCSV writes one row per day. interval is the length of one pomodoro and is
// used for the focus time column.
func ToCSV(counts []taskwarrior.DailyCount, interval time.Duration, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	// Header
	if err := w.Write([]string{"Date", "Pomodoros", "Focus (s)", "Focus", "Tasks"}); err != nil {
		return err
	}

	for _, c := range counts {
		focus := focusSeconds(c.Count, interval)
		row := []string{
			c.Day.Format(dateLayout),
			fmt.Sprintf("%d", c.Count),
			fmt.Sprintf("%d", focus),
			formatDuration(focus),
			strings.Join(c.TaskIDs, ";"),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func focusSeconds(count int, interval time.Duration) int64 {
	return int64(count) * int64(interval/time.Second)
}

func formatDuration(secs int64) string {
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
