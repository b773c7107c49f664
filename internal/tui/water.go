package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/feet/internal/state"
)

const waterHistoryRows = 7

type waterModel struct {
	holder *state.Holder
	snap   state.Snapshot
	width  int
	height int

	bar progress.Model
}

func newWaterModel(h *state.Holder) waterModel {
	return waterModel{
		holder: h,
		bar:    progress.New(progress.WithGradient(string(colorSecondary), string(colorHighlight))),
	}
}

func (m *waterModel) setSize(w, h int) {
	m.width = w
	m.height = h
	m.bar.Width = max(w-12, 10)
}

func (m waterModel) update(msg tea.Msg) (waterModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Add):
			if m.snap.WaterGoalReached() {
				return m, func() tea.Msg {
					return statusMsg{text: "Daily water goal reached"}
				}
			}
			return m, run(m.holder.AddGlass, "Add glass")
		case key.Matches(msg, keys.Remove):
			return m, run(m.holder.RemoveGlass, "Remove glass")
		}
	}
	return m, nil
}

func (m waterModel) view() string {
	if m.width < 20 {
		return "Terminal too small"
	}
	w := m.width - 4
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderTodayPanel(w),
		m.renderHistoryPanel(w),
	)
}

func (m waterModel) renderTodayPanel(w int) string {
	s := m.snap

	style := figureStyle
	if s.WaterGoalReached() {
		style = figureDoneStyle
	}
	figure := style.Render(formatLiters(s.TodayWaterMl)) +
		mutedStyle.Render(" / "+formatLiters(s.DailyGoalMl))

	glasses := fmt.Sprintf("%d / %d glasses", s.GlassesConsumed(), s.GlassesGoal())
	glassSize := mutedStyle.Render(fmt.Sprintf("(%.0f ml each)", s.GlassSizeMl))

	var remaining string
	if s.WaterGoalReached() {
		remaining = successStyle.Render("✓  Goal reached")
	} else {
		remaining = highlightStyle.Render(fmt.Sprintf("%d glasses (%d ml) to go", s.RemainingGlasses(), s.RemainingWaterMl()))
	}

	hint := mutedStyle.Render("+: add glass  -: remove glass")
	if s.WaterGoalReached() {
		hint = mutedStyle.Render("-: remove glass")
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Water Today"),
		"",
		figure,
		glasses+" "+glassSize,
		"",
		m.bar.ViewAs(s.WaterProgress()),
		remaining,
		"",
		hint,
	)
	if s.WaterGoalReached() {
		return activePanelStyle.Width(w).Render(content)
	}
	return panelStyle.Width(w).Render(content)
}

func (m waterModel) renderHistoryPanel(w int) string {
	title := titleStyle.Render("Recent Days")
	if len(m.snap.WaterHistory) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title,
			mutedStyle.Render("No water logged yet"),
		))
	}

	var rows []string
	rows = append(rows, title)
	for i, r := range m.snap.WaterHistory {
		if i == waterHistoryRows {
			break
		}
		mark := mutedStyle.Render("·")
		if m.snap.DailyGoalMl > 0 && r.TotalMl >= m.snap.DailyGoalMl {
			mark = successStyle.Render("✓")
		}
		rows = append(rows, fmt.Sprintf("  %s %s  %6s", mark, r.Date, formatLiters(r.TotalMl)))
	}
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
