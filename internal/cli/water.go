package cli

import (
	"fmt"
	"strconv"

	"github.com/sadopc/feet/internal/repository"
	"github.com/spf13/cobra"
)

func newWaterCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "water",
		Short: "Show or change today's water intake",
		Long: `Show today's water intake, or add and remove glasses.

Examples:
  feet water              # Show today's total
  feet water add          # Log one glass
  feet water add 3        # Log three glasses
  feet water remove       # Take one glass back`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showWater(cmd, e)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add [glasses]",
		Short: "Log glasses of water",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := countArg(args)
			if err != nil {
				return err
			}
			return adjustGlasses(cmd, e, n)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "remove [glasses]",
		Aliases: []string{"rm"},
		Short:   "Remove glasses of water",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := countArg(args)
			if err != nil {
				return err
			}
			return adjustGlasses(cmd, e, -n)
		},
	})

	return cmd
}

// countArg parses an optional count of glasses, defaulting to 1.
func countArg(args []string) (int, error) {
	if len(args) == 0 {
		return 1, nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n <= 0 || n > repository.MaxGlassesPerAdd {
		return 0, fmt.Errorf("invalid count %q: must be a whole number from 1 to %d", args[0], repository.MaxGlassesPerAdd)
	}
	return n, nil
}

func showWater(cmd *cobra.Command, e *env) error {
	prefs, err := e.repo.Preferences()
	if err != nil {
		return fmt.Errorf("failed to read preferences: %w", err)
	}
	rec, err := e.repo.WaterByDate(e.repo.Today())
	if err != nil {
		return fmt.Errorf("failed to read water: %w", err)
	}
	total := 0
	if rec != nil {
		total = rec.TotalMl
	}
	printWater(cmd.OutOrStdout(), total, prefs.DailyWaterGoalMl, prefs.GlassSizeMl)
	return nil
}

func adjustGlasses(cmd *cobra.Command, e *env, glasses int) error {
	prefs, err := e.repo.Preferences()
	if err != nil {
		return fmt.Errorf("failed to read preferences: %w", err)
	}
	rec, err := e.repo.AddWater(glasses * int(prefs.GlassSizeMl))
	if err != nil {
		return fmt.Errorf("failed to update water: %w", err)
	}

	out := cmd.OutOrStdout()
	if glasses > 0 {
		fmt.Fprintln(out, success("✓ Added %d glass(es)", glasses))
	} else {
		fmt.Fprintln(out, success("✓ Removed %d glass(es)", -glasses))
	}
	printWater(out, rec.TotalMl, prefs.DailyWaterGoalMl, prefs.GlassSizeMl)
	if rec.TotalMl >= prefs.DailyWaterGoalMl {
		fmt.Fprintln(out, success("Daily water goal reached"))
	}
	return nil
}
