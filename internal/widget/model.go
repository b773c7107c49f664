package widget

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/feet/internal/events"
)

type widgetKeys struct {
	Add    key.Binding
	Remove key.Binding
	Reset  key.Binding
	Quit   key.Binding
}

var keys = widgetKeys{
	Add: key.NewBinding(
		key.WithKeys("+", "a", "enter"),
		key.WithHelp("+", "add"),
	),
	Remove: key.NewBinding(
		key.WithKeys("-", "r"),
		key.WithHelp("-", "remove"),
	),
	Reset: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "reset"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

type refreshMsg struct{}

type errMsg struct{ err error }

// Model runs a single card as a Bubble Tea program. It redraws whenever the
// bus reports a data change, including changes committed by other processes
// when the repository is being watched.
type Model struct {
	ctrl Controller
	sub  *events.Subscription
	view View
	err  error
}

func NewModel(ctrl Controller, bus *events.Bus) Model {
	m := Model{ctrl: ctrl, view: ctrl.View()}
	if bus != nil {
		m.sub = bus.Subscribe(4, events.DataTopics...)
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return m.waitForChange()
}

func (m Model) waitForChange() tea.Cmd {
	if m.sub == nil {
		return nil
	}
	sub := m.sub
	return func() tea.Msg {
		if _, ok := <-sub.C(); !ok {
			return nil
		}
		return refreshMsg{}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			if m.sub != nil {
				m.sub.Close()
			}
			return m, tea.Quit
		case key.Matches(msg, keys.Add):
			if !m.view.CanAdd {
				return m, nil
			}
			return m, m.mutate(m.ctrl.Add)
		case key.Matches(msg, keys.Remove):
			if r, ok := m.ctrl.(Remover); ok {
				return m, m.mutate(r.Remove)
			}
		case key.Matches(msg, keys.Reset):
			if r, ok := m.ctrl.(Resetter); ok {
				return m, m.mutate(r.Reset)
			}
		}

	case refreshMsg:
		m.view = m.ctrl.View()
		return m, m.waitForChange()

	case errMsg:
		m.err = msg.err
	}
	return m, nil
}

func (m Model) mutate(fn func() error) tea.Cmd {
	return func() tea.Msg {
		if err := fn(); err != nil {
			return errMsg{err}
		}
		// With a bus the published event triggers the redraw.
		if m.sub == nil {
			return refreshMsg{}
		}
		return nil
	}
}

func (m Model) View() string {
	help := cardMutedStyle.Render("+ add")
	if _, ok := m.ctrl.(Remover); ok {
		help += cardMutedStyle.Render("  - remove")
	}
	if _, ok := m.ctrl.(Resetter); ok {
		help += cardMutedStyle.Render("  x reset")
	}
	help += cardMutedStyle.Render("  q quit")

	out := lipgloss.JoinVertical(lipgloss.Left, Render(m.view), help)
	if m.err != nil {
		out += "\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("#E74C3C")).Render(m.err.Error())
	}
	return out
}

// Run shows the card until the user quits or ctx is done.
func Run(ctx context.Context, ctrl Controller, bus *events.Bus) error {
	p := tea.NewProgram(NewModel(ctrl, bus), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
