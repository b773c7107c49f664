package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/feet/internal/state"
)

// viewState represents the currently active view.
type viewState int

const (
	viewWater viewState = iota
	viewSteps
	viewWorkouts
	viewSettings
)

var viewNames = []string{"Water", "Steps", "Workouts", "Settings"}

// --- Messages ---

// snapshotMsg carries a fresh copy of the holder's state.
type snapshotMsg struct {
	snap state.Snapshot
}

type statusMsg struct {
	text    string
	isError bool
}

type exportDoneMsg struct {
	path string
}

// --- Helpers ---

// run executes a holder mutation off the update loop. Success is reported by
// the holder's change notification, so only failures produce a message.
func run(fn func() error, what string) tea.Cmd {
	return func() tea.Msg {
		if err := fn(); err != nil {
			return statusMsg{text: fmt.Sprintf("%s: %v", what, err), isError: true}
		}
		return nil
	}
}

func formatLiters(ml int) string {
	return fmt.Sprintf("%.1fL", float64(ml)/1000)
}

func formatKm(km float32) string {
	return fmt.Sprintf("%.2f km", km)
}
