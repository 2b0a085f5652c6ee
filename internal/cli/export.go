package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadopc/twpomo/internal/export"
	"github.com/sadopc/twpomo/internal/taskwarrior"
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export daily pomodoro counts to CSV or JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, _ := cmd.Flags().GetString("format")
			days, _ := cmd.Flags().GetInt("days")
			out, _ := cmd.Flags().GetString("out")
			if days < 1 {
				return fmt.Errorf("--days must be at least 1")
			}

			a, err := setup(cmd, false)
			if err != nil {
				return err
			}
			defer a.close()

			now := time.Now()
			counts, err := recentHistory(a.repo, now, days)
			if err != nil {
				return err
			}

			if out == "" {
				out = fmt.Sprintf("twpomo-export-%s.%s", now.Format("2006-01-02"), format)
			}
			if err := writeExport(counts, interval(a.settings.Settings()), format, out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d days to %s\n", len(counts), out)
			return nil
		},
	}
	cmd.Flags().String("format", "csv", "Output format: csv or json")
	cmd.Flags().Int("days", 7, "Number of days to include, today included")
	cmd.Flags().String("out", "", "Output file (default twpomo-export-<date>.<format>)")
	return cmd
}

type historyWindow interface {
	HistoryBetween(from, to time.Time) ([]taskwarrior.DailyCount, error)
}

// recentHistory returns the counts of the last days calendar days, today
// included.
func recentHistory(src historyWindow, now time.Time, days int) ([]taskwarrior.DailyCount, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return src.HistoryBetween(today.AddDate(0, 0, 1-days), today.AddDate(0, 0, 1))
}

func writeExport(counts []taskwarrior.DailyCount, interval time.Duration, format, path string) error {
	switch format {
	case "csv":
		return export.ToCSV(counts, interval, path)
	case "json":
		return export.ToJSON(counts, interval, path)
	default:
		return fmt.Errorf("unknown format %q (want csv or json)", format)
	}
}
