package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/feet/internal/state"
	"github.com/sadopc/feet/internal/store"
)

type workoutsModel struct {
	holder *state.Holder
	snap   state.Snapshot
	width  int
	height int

	cursor int

	formActive bool
	form       *huh.Form

	// Form field pointers (survive value copies)
	formName     *string
	formGoal     *string
	formGoalType *string
	formDuration *string
}

func newWorkoutsModel(h *state.Holder) workoutsModel {
	name, goal, goalType, duration := "", "", string(store.GoalReps), ""
	return workoutsModel{
		holder:       h,
		formName:     &name,
		formGoal:     &goal,
		formGoalType: &goalType,
		formDuration: &duration,
	}
}

func (m *workoutsModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m *workoutsModel) setSnapshot(s state.Snapshot) {
	m.snap = s
	if m.cursor >= len(s.Workouts) {
		m.cursor = max(0, len(s.Workouts)-1)
	}
}

func (m workoutsModel) selected() (store.Workout, bool) {
	if m.cursor < 0 || m.cursor >= len(m.snap.Workouts) {
		return store.Workout{}, false
	}
	return m.snap.Workouts[m.cursor], true
}

func (m workoutsModel) update(msg tea.Msg) (workoutsModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.snap.Workouts)-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.Toggle), key.Matches(msg, keys.Enter):
			if w, ok := m.selected(); ok {
				return m, run(func() error { return m.holder.ToggleWorkout(w.ID) }, "Toggle workout")
			}
		case key.Matches(msg, keys.Delete):
			if w, ok := m.selected(); ok {
				return m, run(func() error { return m.holder.DeleteWorkout(w.ID) }, "Delete workout")
			}
		case key.Matches(msg, keys.New):
			return m.showNewWorkoutForm()
		}
	}
	return m, nil
}

func validateName(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("name is required")
	}
	return nil
}

func validateGoal(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return errors.New("goal must be a whole number above 0")
	}
	return nil
}

func validateDuration(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return errors.New("duration must be a whole number of minutes")
	}
	return nil
}

func (m workoutsModel) showNewWorkoutForm() (workoutsModel, tea.Cmd) {
	*m.formName = ""
	*m.formGoal = ""
	*m.formGoalType = string(store.GoalReps)
	*m.formDuration = ""

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Workout Name").Value(m.formName).Validate(validateName),
			huh.NewInput().Title("Goal").Value(m.formGoal).Validate(validateGoal),
			huh.NewSelect[string]().Title("Goal Type").
				Options(
					huh.NewOption("Reps", string(store.GoalReps)),
					huh.NewOption("Kilometers", string(store.GoalKm)),
				).Value(m.formGoalType),
			huh.NewInput().Title("Duration (min, optional)").Value(m.formDuration).Validate(validateDuration),
		),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m workoutsModel) updateForm(msg tea.Msg) (workoutsModel, tea.Cmd) {
	// Check for escape to cancel form
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			m.formActive = false
			m.form = nil
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.formActive = false
		name := strings.TrimSpace(*m.formName)
		goal, _ := strconv.Atoi(strings.TrimSpace(*m.formGoal))
		goalType := store.GoalType(*m.formGoalType)
		var duration *int
		if d, err := strconv.Atoi(strings.TrimSpace(*m.formDuration)); err == nil {
			duration = &d
		}
		return m, run(func() error {
			return m.holder.AddCustomWorkout(name, duration, goal, goalType)
		}, "Add workout")
	}

	return m, cmd
}

func (m workoutsModel) view() string {
	w := m.width - 4

	if m.formActive && m.form != nil {
		content := lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("New Workout"), "", m.form.View())
		return panelStyle.Width(w).Render(content)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderList(w),
		m.renderNowPlaying(w),
	)
}

func (m workoutsModel) renderList(w int) string {
	title := titleStyle.Render("Today's Workouts")
	done := highlightStyle.Render(fmt.Sprintf("%d / %d done", m.snap.CompletedWorkouts(), len(m.snap.Workouts)))
	header := fmt.Sprintf("%s  %s", title, done)

	if len(m.snap.Workouts) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			header,
			"",
			mutedStyle.Render("No workouts yet. Press n to add one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, header)
	rows = append(rows, "")

	for i, wo := range m.snap.Workouts {
		cursor := "  "
		style := normalItemStyle
		if i == m.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		check := mutedStyle.Render("[ ]")
		if wo.Completed {
			check = successStyle.Render("[✓]")
		}
		rows = append(rows, style.Render(cursor)+check+" "+style.Render(fmt.Sprintf("%-24s", wo.Name))+" "+workoutGoal(wo))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  space: toggle  d: delete"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func workoutGoal(wo store.Workout) string {
	var goal string
	if wo.GoalType == store.GoalKm {
		goal = lipgloss.NewStyle().Foreground(colorAccent).Render(fmt.Sprintf("%d km", wo.GoalValue))
	} else {
		goal = highlightStyle.Render(fmt.Sprintf("%d reps", wo.GoalValue))
	}
	if wo.Duration != nil {
		goal += mutedStyle.Render(fmt.Sprintf("  %d min", *wo.Duration))
	}
	return goal
}

func (m workoutsModel) renderNowPlaying(w int) string {
	np := m.snap.NowPlaying()
	if np == "" {
		return cardStyle.Width(w).Render(mutedStyle.Render("♪  Nothing playing"))
	}
	return cardStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render("♪  Now Playing"),
			highlightStyle.Render(m.snap.CurrentTrack),
			mutedStyle.Render(m.snap.CurrentArtist),
		),
	)
}
