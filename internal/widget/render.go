package widget

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

const cardWidth = 28

var (
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#6C63FF")).
			Padding(0, 1).
			Width(cardWidth)

	cardTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7AA2F7"))

	cardValueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#C0CAF5"))

	cardMutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	cardDoneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#2ECC71"))
)

// Render draws v as a bordered card with a progress bar.
func Render(v View) string {
	bar := progress.New(progress.WithDefaultGradient(), progress.WithWidth(cardWidth-2), progress.WithoutPercentage())

	status := cardMutedStyle.Render(fmt.Sprintf("%d%%", v.Percent))
	if v.Percent >= 100 {
		status = cardDoneStyle.Render("goal reached")
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		cardTitleStyle.Render(v.Title),
		cardValueStyle.Render(v.Value)+" "+cardMutedStyle.Render(v.Goal),
		cardMutedStyle.Render(v.Detail),
		"",
		bar.ViewAs(float64(v.Percent)/100),
		status,
	)
	return cardStyle.Render(body)
}
