package tui

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/feet/internal/state"
	"github.com/sadopc/feet/internal/store"
)

type historyPeriod int

const (
	periodWeek historyPeriod = iota
	periodMonth
)

type stepsModel struct {
	holder *state.Holder
	snap   state.Snapshot
	width  int
	height int

	period historyPeriod
	chart  barchart.Model
	bar    progress.Model

	formActive bool
	form       *huh.Form
	goalInput  *string
}

func newStepsModel(h *state.Holder) stepsModel {
	goal := ""
	return stepsModel{
		holder:    h,
		chart:     barchart.New(60, 10),
		bar:       progress.New(progress.WithGradient(string(colorPrimary), string(colorSuccess))),
		goalInput: &goal,
	}
}

func (m *stepsModel) setSize(w, h int) {
	m.width = w
	m.height = h
	m.bar.Width = max(w-12, 10)
	m.buildChart()
}

func (m *stepsModel) setSnapshot(s state.Snapshot) {
	m.snap = s
	m.buildChart()
}

func (m stepsModel) update(msg tea.Msg) (stepsModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Simulate):
			return m, run(m.holder.SimulateStepUpdate, "Simulate steps")
		case key.Matches(msg, keys.Reset):
			return m, run(m.holder.ResetTodaySteps, "Reset steps")
		case key.Matches(msg, keys.Period):
			if m.period == periodWeek {
				m.period = periodMonth
			} else {
				m.period = periodWeek
			}
			m.buildChart()
			return m, nil
		case key.Matches(msg, keys.Goal):
			return m.showGoalForm()
		}
	}
	return m, nil
}

func (m stepsModel) showGoalForm() (stepsModel, tea.Cmd) {
	*m.goalInput = strconv.Itoa(m.snap.DailyStepGoal)

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Daily step goal").Value(m.goalInput),
		),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m stepsModel) updateForm(msg tea.Msg) (stepsModel, tea.Cmd) {
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
		goal := parseIntOr(*m.goalInput, store.DefaultStepGoal)
		return m, run(func() error { return m.holder.SetDailyStepGoal(goal) }, "Set step goal")
	}

	return m, cmd
}

func (m stepsModel) history() []store.StepRecord {
	if m.period == periodMonth {
		return m.snap.MonthHistory()
	}
	return m.snap.WeekHistory()
}

func (m *stepsModel) buildChart() {
	chartWidth := m.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 10
	if m.height > 30 {
		chartHeight = 14
	}

	m.chart = barchart.New(chartWidth, chartHeight)

	hist := m.history()
	var bars []barchart.BarData
	// History is newest first; the chart reads left to right.
	for i := len(hist) - 1; i >= 0; i-- {
		r := hist[i]
		style := lipgloss.NewStyle().Foreground(colorPrimary)
		if r.Goal > 0 && r.Steps >= r.Goal {
			style = lipgloss.NewStyle().Foreground(colorSuccess)
		}
		label := r.Date
		if len(label) == len(store.DateLayout) {
			label = label[5:]
		}
		bars = append(bars, barchart.BarData{
			Label:  label,
			Values: []barchart.BarValue{{Name: "steps", Value: float64(r.Steps), Style: style}},
		})
	}
	if len(bars) == 0 {
		bars = []barchart.BarData{{
			Label:  "",
			Values: []barchart.BarValue{{Name: "", Value: 0, Style: lipgloss.NewStyle().Foreground(colorSubtle)}},
		}}
	}

	m.chart.PushAll(bars)
	m.chart.Draw()
}

func (m stepsModel) view() string {
	w := m.width - 4

	if m.formActive && m.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("Step Goal"), "", m.form.View()),
		)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderTodayPanel(w),
		m.renderHistoryPanel(w),
	)
}

func (m stepsModel) renderTodayPanel(w int) string {
	s := m.snap

	style := figureStyle
	if s.DailyStepGoal > 0 && s.TodaySteps >= s.DailyStepGoal {
		style = figureDoneStyle
	}
	figure := style.Render(strconv.Itoa(s.TodaySteps)) +
		mutedStyle.Render(fmt.Sprintf(" / %d steps", s.DailyStepGoal))

	var status string
	switch s.TrackingStatus() {
	case state.StatusLive:
		status = successStyle.Render("●  " + state.StatusLive)
	case state.StatusReady:
		status = highlightStyle.Render("○  " + state.StatusReady)
	default:
		status = warningStyle.Render("◌  " + state.StatusSimulation)
	}

	stats := fmt.Sprintf("%s  %s",
		highlightStyle.Render(fmt.Sprintf("%d kcal", s.Calories())),
		highlightStyle.Render(formatKm(s.DistanceKm())),
	)

	content := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Steps Today")+"  "+status,
		"",
		figure,
		stats,
		"",
		m.bar.ViewAs(s.StepsProgress()),
		mutedStyle.Render(fmt.Sprintf("%.0f%% of goal", s.StepsProgress()*100)),
	)
	return panelStyle.Width(w).Render(content)
}

func (m stepsModel) renderHistoryPanel(w int) string {
	weekTab := inactiveTabStyle.Render("Week")
	monthTab := inactiveTabStyle.Render("Month")
	if m.period == periodWeek {
		weekTab = activeTabStyle.Render("Week")
	} else {
		monthTab = activeTabStyle.Render("Month")
	}
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("History"), "  ", weekTab, monthTab,
	)

	body := m.chart.View()
	if len(m.history()) == 0 {
		body = mutedStyle.Render("  No steps recorded yet")
	}

	total := 0
	for _, r := range m.history() {
		total += r.Steps
	}
	summary := mutedStyle.Render(fmt.Sprintf("  %d days  %d steps total", len(m.history()), total))

	nav := mutedStyle.Render("  " + strings.Join([]string{"s: simulate", "x: reset", "g: goal", "w: week/month"}, "  "))

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left, header, "", body, "", summary, nav),
	)
}

// parseIntOr returns fallback when s is not a positive integer.
func parseIntOr(s string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// parseFloatOr returns fallback when s is not a finite positive number.
func parseFloatOr(s string, fallback float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f <= 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return fallback
	}
	return f
}
