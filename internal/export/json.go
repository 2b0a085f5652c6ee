package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/twpomo/internal/taskwarrior"
)

type jsonExport struct {
	ExportedAt string    `json:"exported_at"`
	Total      int       `json:"total"`
	Days       []jsonDay `json:"days"`
}

type jsonDay struct {
	Date      string   `json:"date"`
	Pomodoros int      `json:"pomodoros"`
	FocusSec  int64    `json:"focus_seconds"`
	Focus     string   `json:"focus"`
	Tasks     []string `json:"tasks,omitempty"`
}

func ToJSON(counts []taskwarrior.DailyCount, interval time.Duration, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
	}

	for _, c := range counts {
		focus := focusSeconds(c.Count, interval)
		export.Total += c.Count
		export.Days = append(export.Days, jsonDay{
			Date:      c.Day.Format(dateLayout),
			Pomodoros: c.Count,
			FocusSec:  focus,
			Focus:     formatDuration(focus),
			Tasks:     c.TaskIDs,
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
