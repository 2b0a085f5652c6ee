package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/twpomo/internal/pomodoro"
	"github.com/sadopc/twpomo/internal/taskwarrior"
)

const statsDays = 7

// HistorySource yields the per-day log entries. *taskwarrior.Repository
// satisfies it.
type HistorySource interface {
	HistoryBetween(from, to time.Time) ([]taskwarrior.DailyCount, error)
}

type statsModel struct {
	source HistorySource
	now    func() time.Time
	width  int
	height int

	counts   []taskwarrior.DailyCount
	offset   int // 7-day blocks back from today (0 = current)
	interval time.Duration
	err      error

	chart barchart.Model
}

func newStatsModel(source HistorySource, now func() time.Time) statsModel {
	return statsModel{
		source:   source,
		now:      now,
		interval: pomodoro.DefaultDuration,
		chart:    barchart.New(60, 12),
	}
}

func (s *statsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

func (s statsModel) dateRange() (time.Time, time.Time) {
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := today.AddDate(0, 0, 1-statsDays*s.offset)
	return end.AddDate(0, 0, -statsDays), end
}

// refresh reloads the window from the backend. It runs on the event loop like
// every other backend call.
func (s *statsModel) refresh() {
	from, to := s.dateRange()
	counts, err := s.source.HistoryBetween(from, to)
	s.err = err
	s.counts = counts
	s.buildChart()
}

func (s statsModel) update(msg tea.Msg) (statsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Left):
			s.offset++
			s.refresh()
		case key.Matches(msg, keys.Right):
			if s.offset > 0 {
				s.offset--
				s.refresh()
			}
		}
	}
	return s, nil
}

func (s statsModel) total() int {
	n := 0
	for _, c := range s.counts {
		n += c.Count
	}
	return n
}

func (s statsModel) countOn(day time.Time) int {
	n := 0
	for _, c := range s.counts {
		if c.Day.Equal(day) {
			n += c.Count
		}
	}
	return n
}

func (s *statsModel) buildChart() {
	chartWidth := s.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 12
	if s.height > 30 {
		chartHeight = 16
	}

	s.chart = barchart.New(chartWidth, chartHeight)

	from, to := s.dateRange()
	var bars []barchart.BarData
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		style := lipgloss.NewStyle().Foreground(colorAccent)
		n := s.countOn(d)
		if n == 0 {
			style = lipgloss.NewStyle().Foreground(colorSubtle)
		}
		bars = append(bars, barchart.BarData{
			Label:  d.Format("Mon 02"),
			Values: []barchart.BarValue{{Name: "pomodoros", Value: float64(n), Style: style}},
		})
	}

	s.chart.PushAll(bars)
	s.chart.Draw()
}

func (s statsModel) view() string {
	w := s.width - 4

	from, to := s.dateRange()
	dateLabel := mutedStyle.Render(fmt.Sprintf("%s - %s", from.Format("Jan 02"), to.AddDate(0, 0, -1).Format("Jan 02, 2006")))
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Stats"), "  ", dateLabel,
	)

	var body string
	if s.err != nil {
		body = errorStyle.Render("  " + s.err.Error())
	} else {
		body = lipgloss.JoinVertical(lipgloss.Left, s.chart.View(), "", s.renderTable(w))
	}

	nav := mutedStyle.Render("  ←/→: navigate  e: export")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left, header, "", body, "", nav),
	)
}

func (s statsModel) renderTable(w int) string {
	if len(s.counts) == 0 {
		return mutedStyle.Render("  No pomodoros logged in this period")
	}

	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-12s %9s  %s", "Date", "Pomodoros", "")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 48))))
	for _, c := range s.counts {
		rows = append(rows, fmt.Sprintf("  %-12s %9d  %s",
			c.Day.Format("2006-01-02"), c.Count, pomodoro.Glyphs(c.Count, false)))
	}
	rows = append(rows, "")
	rows = append(rows, successStyle.Render(fmt.Sprintf("  %d pomodoros, %s focused",
		s.total(), formatDuration(time.Duration(s.total())*s.interval))))
	return strings.Join(rows, "\n")
}
