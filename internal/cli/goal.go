package cli

import (
	"fmt"
	"math"
	"strconv"

	"github.com/sadopc/feet/internal/repository"
	"github.com/spf13/cobra"
)

func newGoalCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goal",
		Short: "Show or change daily goals",
		Long: `Show the daily goals, or change one of them.

Examples:
  feet goal                 # Show all goals
  feet goal water 2.5       # Liters per day
  feet goal glass 300       # Glass size in milliliters
  feet goal steps 12000     # Steps per day`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showGoals(cmd, e)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "water <liters>",
		Short: "Set the daily water goal in liters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			liters, err := strconv.ParseFloat(args[0], 64)
			if err != nil || !(liters > 0) || liters*1000 > repository.MaxWaterGoalMl {
				return fmt.Errorf("invalid water goal %q: must be liters above 0", args[0])
			}
			if err := e.repo.SetWaterGoal(int(math.Round(liters * 1000))); err != nil {
				return fmt.Errorf("failed to set water goal: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), success("✓ Daily water goal set to %.1fL", liters))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "glass <ml>",
		Short: "Set the glass size in milliliters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ml, err := strconv.ParseFloat(args[0], 64)
			if err != nil || math.IsNaN(ml) || ml < repository.MinGlassSizeMl || ml > repository.MaxGlassSizeMl {
				return fmt.Errorf("invalid glass size %q: must be %d to %d ml", args[0], repository.MinGlassSizeMl, repository.MaxGlassSizeMl)
			}
			if err := e.repo.SetGlassSize(ml); err != nil {
				return fmt.Errorf("failed to set glass size: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), success("✓ Glass size set to %.0f ml", ml))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "steps <count>",
		Short: "Set the daily step goal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil || n <= 0 {
				return fmt.Errorf("invalid step goal %q: must be a whole number above 0", args[0])
			}
			if err := e.repo.SetStepGoal(n); err != nil {
				return fmt.Errorf("failed to set step goal: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), success("✓ Daily step goal set to %d", n))
			return nil
		},
	})

	return cmd
}

func showGoals(cmd *cobra.Command, e *env) error {
	prefs, err := e.repo.Preferences()
	if err != nil {
		return fmt.Errorf("failed to read preferences: %w", err)
	}
	out := cmd.OutOrStdout()
	glasses := 0
	if prefs.GlassSizeMl > 0 {
		glasses = int(float64(prefs.DailyWaterGoalMl) / prefs.GlassSizeMl)
	}
	fmt.Fprintf(out, "%s %.1fL\n", padRight("Water", 8), float64(prefs.DailyWaterGoalMl)/1000)
	fmt.Fprintf(out, "%s %.0f ml %s\n", padRight("Glass", 8), prefs.GlassSizeMl, faint(fmt.Sprintf("(%d per day)", glasses)))
	fmt.Fprintf(out, "%s %d\n", padRight("Steps", 8), prefs.DailyStepGoal)
	return nil
}
