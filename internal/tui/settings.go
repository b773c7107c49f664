package tui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/feet/internal/repository"
	"github.com/sadopc/feet/internal/state"
	"github.com/sadopc/feet/internal/store"
)

type settingsModel struct {
	holder *state.Holder
	snap   state.Snapshot
	width  int
	height int

	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	waterGoal *string
	glassSize *string
	stepGoal  *string
}

func newSettingsModel(h *state.Holder) settingsModel {
	wg, gs, sg := "", "", ""
	return settingsModel{
		holder:    h,
		waterGoal: &wg,
		glassSize: &gs,
		stepGoal:  &sg,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.New):
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	// Load current values
	*s.waterGoal = strconv.FormatFloat(float64(s.snap.DailyGoalMl)/1000, 'f', -1, 64)
	*s.glassSize = strconv.FormatFloat(s.snap.GlassSizeMl, 'f', -1, 64)
	*s.stepGoal = strconv.Itoa(s.snap.DailyStepGoal)

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Daily goal (liters)").Value(s.waterGoal),
			huh.NewInput().Title("Glass size (ml)").Value(s.glassSize),
		).Title("Water"),
		huh.NewGroup(
			huh.NewInput().Title("Daily step goal").Value(s.stepGoal),
		).Title("Steps"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		return s, s.saveSettings()
	}

	return s, cmd
}

// saveSettings writes the form back. Input that is not a positive number,
// or is outside the accepted range, falls back to the default for that field.
func (s settingsModel) saveSettings() tea.Cmd {
	defaultLiters := float64(store.DefaultWaterGoalMl) / 1000
	liters := parseFloatOr(*s.waterGoal, defaultLiters)
	if liters*1000 > repository.MaxWaterGoalMl {
		liters = defaultLiters
	}
	glass := parseFloatOr(*s.glassSize, store.DefaultGlassSizeMl)
	if glass < repository.MinGlassSizeMl || glass > repository.MaxGlassSizeMl {
		glass = store.DefaultGlassSizeMl
	}
	steps := parseIntOr(*s.stepGoal, store.DefaultStepGoal)
	h := s.holder
	return run(func() error {
		if err := h.SetDailyGoal(liters); err != nil {
			return err
		}
		if err := h.SetGlassSize(glass); err != nil {
			return err
		}
		return h.SetDailyStepGoal(steps)
	}, "Save settings")
}

func (s settingsModel) view() string {
	w := s.width - 4

	if s.formActive && s.form != nil {
		title := titleStyle.Render("Settings")
		formView := s.form.View()
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", formView),
		)
	}

	title := titleStyle.Render("Settings")
	hint := mutedStyle.Render("Press enter to edit settings")

	settings := [][2]string{
		{"Daily water goal", formatLiters(s.snap.DailyGoalMl)},
		{"Glass size", fmt.Sprintf("%.0f ml", s.snap.GlassSizeMl)},
		{"Glasses per day", strconv.Itoa(s.snap.GlassesGoal())},
		{"Daily step goal", fmt.Sprintf("%d steps", s.snap.DailyStepGoal)},
		{"Step tracking", s.snap.TrackingStatus()},
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	for _, setting := range settings {
		label := lipgloss.NewStyle().Width(24).Render(setting[0])
		value := highlightStyle.Render(setting[1])
		rows = append(rows, fmt.Sprintf("  %s %s", label, value))
	}

	rows = append(rows, "")
	rows = append(rows, hint)

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
