package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPruneCmd(e *env) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete history older than a number of days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := e.repo.Prune(days)
			if err != nil {
				return fmt.Errorf("failed to prune: %w", err)
			}
			out := cmd.OutOrStdout()
			total := res.Water + res.Steps + res.Workouts
			if total == 0 {
				fmt.Fprintf(out, "Nothing older than %s.\n", res.Cutoff)
				return nil
			}
			fmt.Fprintln(out, success("✓ Deleted %d records older than %s", total, res.Cutoff))
			fmt.Fprintf(out, "  %s\n", faint(fmt.Sprintf("water %d, steps %d, workouts %d", res.Water, res.Steps, res.Workouts)))
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 90, "days of history to keep")
	return cmd
}
