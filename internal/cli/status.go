package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sadopc/twpomo/internal/config"
	"github.com/sadopc/twpomo/internal/pomodoro"
	"github.com/sadopc/twpomo/internal/taskwarrior"
)

type taskRef struct {
	UUID        string `json:"uuid" yaml:"uuid"`
	Description string `json:"description" yaml:"description"`
}

type statusReport struct {
	Active    []taskRef `json:"active" yaml:"active"`
	DoneToday int       `json:"done_today" yaml:"done_today"`
	Count     string    `json:"count,omitempty" yaml:"count,omitempty"`
	Pending   []taskRef `json:"pending" yaml:"pending"`
}

// statusSource is the part of the repository status needs.
type statusSource interface {
	Pending(cfg config.Config) ([]taskwarrior.Task, error)
	TodaysLog() (*taskwarrior.Task, error)
}

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show today's pomodoros and the pending tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, _ := cmd.Flags().GetString("format")
			a, err := setup(cmd, false)
			if err != nil {
				return err
			}
			defer a.close()

			report, err := buildStatus(a.repo, a.settings.Settings())
			if err != nil {
				return err
			}
			return renderStatus(cmd.OutOrStdout(), report, format)
		},
	}
	cmd.Flags().String("format", "text", "Output format: text, json, yaml, markdown")
	return cmd
}

// buildStatus reports tasks Taskwarrior has marked started. The session of a
// running twpomo lives in that process, so this is the closest outside view.
func buildStatus(src statusSource, cfg config.Config) (statusReport, error) {
	tasks, err := src.Pending(cfg)
	if err != nil {
		return statusReport{}, err
	}
	var r statusReport
	for _, t := range tasks {
		ref := taskRef{UUID: t.UUID, Description: t.Description}
		if _, started := t.Fields["start"]; started {
			r.Active = append(r.Active, ref)
		}
		r.Pending = append(r.Pending, ref)
	}

	log, err := src.TodaysLog()
	if err != nil {
		return statusReport{}, err
	}
	if log != nil {
		r.DoneToday = len(log.Annotations)
	}
	if show, ok := cfg.Bool(config.KeyDisplayCount); !ok || show {
		r.Count = pomodoro.Glyphs(r.DoneToday, len(r.Active) > 0)
	}
	return r, nil
}

func renderStatus(w io.Writer, r statusReport, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal status: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "yaml":
		data, err := yaml.Marshal(r)
		if err != nil {
			return fmt.Errorf("marshal status: %w", err)
		}
		_, err = w.Write(data)
		return err
	case "markdown", "md":
		out, err := glamour.Render(statusMarkdown(r), "dark")
		if err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		_, err = io.WriteString(w, out)
		return err
	case "text", "":
		_, err := io.WriteString(w, statusText(r))
		return err
	default:
		return fmt.Errorf("unknown format %q (want text, json, yaml or markdown)", format)
	}
}

func statusText(r statusReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Pomodoros today: %d", r.DoneToday)
	if r.Count != "" {
		fmt.Fprintf(&b, " %s", r.Count)
	}
	b.WriteString("\n")
	for _, t := range r.Active {
		fmt.Fprintf(&b, "Active: %s (%s)\n", t.Description, t.UUID)
	}
	if len(r.Pending) == 0 {
		b.WriteString("No pending tasks.\n")
		return b.String()
	}
	b.WriteString("\nPending:\n")
	for _, t := range r.Pending {
		fmt.Fprintf(&b, "  %s  %s\n", shortID(t.UUID), t.Description)
	}
	return b.String()
}

func statusMarkdown(r statusReport) string {
	var b strings.Builder
	b.WriteString("# Pomodoro status\n\n")
	fmt.Fprintf(&b, "**Today:** %d pomodoros %s\n\n", r.DoneToday, r.Count)
	if len(r.Active) > 0 {
		b.WriteString("## Active\n\n")
		for _, t := range r.Active {
			fmt.Fprintf(&b, "- %s `%s`\n", t.Description, shortID(t.UUID))
		}
		b.WriteString("\n")
	}
	b.WriteString("## Pending\n\n")
	if len(r.Pending) == 0 {
		b.WriteString("_No pending tasks._\n")
		return b.String()
	}
	b.WriteString("| ID | Description |\n|---|---|\n")
	for _, t := range r.Pending {
		fmt.Fprintf(&b, "| `%s` | %s |\n", shortID(t.UUID), strings.ReplaceAll(t.Description, "|", `\|`))
	}
	return b.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
