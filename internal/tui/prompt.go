package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/twpomo/internal/notify"
)

// promptModel asks whether to start another pomodoro after a break
// notification.
type promptModel struct {
	width int

	active  bool
	form    *huh.Form
	pending notify.Notification

	// Form value as a pointer (survives value copies)
	again *bool
}

func newPromptModel() promptModel {
	again := true
	return promptModel{again: &again}
}

func (p *promptModel) setSize(w int) {
	p.width = w
}

func (p promptModel) show(n notify.Notification) (promptModel, tea.Cmd) {
	*p.again = true
	p.pending = n
	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(n.Title).
				Description(n.Body + " Start another?").
				Affirmative(n.ActionTitle).
				Negative("Take a break").
				Value(p.again),
		),
	).WithShowHelp(false)
	p.active = true
	return p, p.form.Init()
}

// update feeds msg to the form. When the form finishes, done is true and
// restart reports whether the user asked for another pomodoro.
func (p promptModel) update(msg tea.Msg) (pm promptModel, cmd tea.Cmd, done, restart bool) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		p.active = false
		p.form = nil
		return p, nil, true, false
	}

	form, cmd := p.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		p.form = f
	}

	switch p.form.State {
	case huh.StateCompleted:
		p.active = false
		return p, nil, true, *p.again
	case huh.StateAborted:
		p.active = false
		return p, nil, true, false
	}
	return p, cmd, false, false
}

func (p promptModel) view() string {
	w := p.width - 4
	return activePanelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("Break"), "", p.form.View()),
	)
}
