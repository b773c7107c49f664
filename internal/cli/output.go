package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/sadopc/feet/internal/repository"
)

var (
	success = color.New(color.FgGreen).SprintfFunc()
	warn    = color.New(color.FgYellow).SprintfFunc()
	errorf  = color.New(color.FgRed).SprintfFunc()
	faint   = color.New(color.Faint).SprintFunc()
	bold    = color.New(color.Bold).SprintFunc()
)

// bar renders a fixed-width text progress bar.
func bar(value, goal int) string {
	const width = 20
	filled := int(repository.Progress(value, goal) * width)
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}

func printWater(w io.Writer, totalMl, goalMl int, glassMl float64) {
	glasses := 0
	if glassMl > 0 {
		glasses = int(float64(totalMl) / glassMl)
	}
	fmt.Fprintf(w, "%s %.1fL / %.1fL  %s %d%%\n",
		bold("Water"), float64(totalMl)/1000, float64(goalMl)/1000,
		bar(totalMl, goalMl), repository.Percent(totalMl, goalMl))
	fmt.Fprintf(w, "  %s\n", faint(fmt.Sprintf("%d glasses of %.0f ml", glasses, glassMl)))
}

func printSteps(w io.Writer, steps, goal int) {
	fmt.Fprintf(w, "%s %d / %d  %s %d%%\n",
		bold("Steps"), steps, goal, bar(steps, goal), repository.Percent(steps, goal))
	fmt.Fprintf(w, "  %s\n", faint(fmt.Sprintf("%d kcal, %.2f km", repository.Calories(steps), repository.DistanceKm(steps))))
}

func padRight(s string, n int) string {
	if len(s) >= n {
		return s
	}
	return s + strings.Repeat(" ", n-len(s))
}
