package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sadopc/feet/internal/repository"
	"github.com/sadopc/feet/internal/store"
	"github.com/spf13/cobra"
)

func newWorkoutCmd(e *env) *cobra.Command {
	var (
		goal     int
		goalType string
		duration int
		date     string
	)

	cmd := &cobra.Command{
		Use:     "workout",
		Aliases: []string{"w"},
		Short:   "Manage today's workouts",
		Long: `Plan workouts for the day and tick them off.

A workout has a name and a goal measured in repetitions (REPS) or
kilometers (KM). Duration is optional.

Examples:
  feet workout add "Push-ups" --goal 40
  feet workout add "Run" --goal 5 --type KM --duration 30
  feet workout list
  feet workout toggle 3
  feet workout delete 3`,
	}

	addCmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a workout for today",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			nw := repository.NewWorkout{
				Name:      strings.Join(args, " "),
				GoalValue: goal,
				GoalType:  store.GoalType(strings.ToUpper(goalType)),
			}
			if cmd.Flags().Changed("duration") {
				d := duration
				nw.Duration = &d
			}
			w, err := e.repo.AddWorkout(nw)
			if err != nil {
				return fmt.Errorf("failed to add workout: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), success("✓ Added %s", w.Name))
			fmt.Fprintf(cmd.OutOrStdout(), "  ID: %d\n", w.ID)
			fmt.Fprintf(cmd.OutOrStdout(), "  Goal: %s\n", goalLabel(*w))
			return nil
		},
	}
	addCmd.Flags().IntVarP(&goal, "goal", "g", 0, "goal value (required, above 0)")
	addCmd.Flags().StringVarP(&goalType, "type", "t", string(store.GoalReps), "goal type: REPS or KM")
	addCmd.Flags().IntVarP(&duration, "duration", "d", 0, "duration in minutes")

	listCmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List workouts for a day",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			day := date
			if day == "" {
				day = e.repo.Today()
			}
			ws, err := e.repo.WorkoutsByDate(day)
			if err != nil {
				return fmt.Errorf("failed to list workouts: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(ws) == 0 {
				fmt.Fprintln(out, "No workouts found.")
				return nil
			}
			done := 0
			for _, w := range ws {
				check := "[ ]"
				if w.Completed {
					check = success("[✓]")
					done++
				}
				fmt.Fprintf(out, "%s %s %s %s\n", faint(fmt.Sprintf("%4d", w.ID)), check, padRight(w.Name, 24), goalLabel(w))
			}
			fmt.Fprintf(out, "%s\n", faint(fmt.Sprintf("%d of %d done", done, len(ws))))
			return nil
		},
	}
	listCmd.Flags().StringVar(&date, "date", "", "day as YYYY-MM-DD (default today)")

	toggleCmd := &cobra.Command{
		Use:   "toggle <id>",
		Short: "Mark a workout done or not done",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			w, err := e.repo.ToggleWorkout(id)
			if err != nil {
				return fmt.Errorf("failed to toggle workout: %w", err)
			}
			if w.Completed {
				fmt.Fprintln(cmd.OutOrStdout(), success("✓ %s done", w.Name))
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), warn("%s marked not done", w.Name))
			}
			return nil
		},
	}

	deleteCmd := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a workout",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := e.repo.DeleteWorkout(id); err != nil {
				return fmt.Errorf("failed to delete workout: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), success("✓ Deleted workout %d", id))
			return nil
		},
	}

	cmd.AddCommand(addCmd, listCmd, toggleCmd, deleteCmd)
	return cmd
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid workout id %q", s)
	}
	return id, nil
}

func goalLabel(w store.Workout) string {
	unit := "reps"
	if w.GoalType == store.GoalKm {
		unit = "km"
	}
	label := fmt.Sprintf("%d %s", w.GoalValue, unit)
	if w.Duration != nil {
		label += fmt.Sprintf(", %d min", *w.Duration)
	}
	return label
}
