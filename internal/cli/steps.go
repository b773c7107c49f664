package cli

import (
	"fmt"
	"strconv"

	"github.com/sadopc/feet/internal/repository"
	"github.com/sadopc/feet/internal/store"
	"github.com/spf13/cobra"
)

func newStepsCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "steps",
		Short: "Show or change today's step count",
		Long: `Show today's steps, add to them, set them or reset them.

Examples:
  feet steps              # Show today's count
  feet steps add 1200     # Add steps
  feet steps set 8000     # Overwrite today's count
  feet steps reset        # Back to zero`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := e.repo.StepsByDate(e.repo.Today())
			if err != nil {
				return fmt.Errorf("failed to read steps: %w", err)
			}
			prefs, err := e.repo.Preferences()
			if err != nil {
				return fmt.Errorf("failed to read preferences: %w", err)
			}
			steps, goal := 0, prefs.DailyStepGoal
			if rec != nil {
				steps = rec.Steps
				if rec.Goal > 0 {
					goal = rec.Goal
				}
			}
			printSteps(cmd.OutOrStdout(), steps, goal)
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add [steps]",
		Short: "Add steps (default 100)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n := 100
			if len(args) == 1 {
				v, err := strconv.Atoi(args[0])
				if err != nil || v == 0 || v > repository.MaxStepDelta || v < -repository.MaxStepDelta {
					return fmt.Errorf("invalid step count %q: must be nonzero and within ±%d", args[0], repository.MaxStepDelta)
				}
				n = v
			}
			rec, err := e.repo.AddSteps(n)
			if err != nil {
				return fmt.Errorf("failed to add steps: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), success("✓ Added %d steps", n))
			printSteps(cmd.OutOrStdout(), rec.Steps, rec.Goal)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <steps>",
		Short: "Overwrite today's step count",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 0 {
				return fmt.Errorf("invalid step count %q", args[0])
			}
			return setSteps(cmd, e, n)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Reset today's step count to zero",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return setSteps(cmd, e, 0)
		},
	})

	return cmd
}

func setSteps(cmd *cobra.Command, e *env, n int) error {
	rec, err := e.repo.SetSteps(n)
	if err != nil {
		return fmt.Errorf("failed to set steps: %w", err)
	}
	goal := store.DefaultStepGoal
	if rec != nil {
		goal = rec.Goal
	}
	fmt.Fprintln(cmd.OutOrStdout(), success("✓ Steps set to %d", n))
	printSteps(cmd.OutOrStdout(), n, goal)
	return nil
}
