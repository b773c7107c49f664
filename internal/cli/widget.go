package cli

import (
	"context"

	"github.com/sadopc/feet/internal/widget"
	"github.com/spf13/cobra"
)

func newWidgetCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "widget",
		Short: "Show a compact live card for water or steps",
		Long: `Open a small card that follows the database, including writes
made by other feet processes.

Keys: + to add, - to remove (water), x to reset (steps), q to close.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "water",
		Short: "Water card; adds one glass at a time up to the goal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWidget(cmd, e, widget.NewWater(e.repo, e.logger))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "steps",
		Short: "Steps card; adds 100 steps at a time, x resets the day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWidget(cmd, e, widget.NewSteps(e.repo, e.logger))
		},
	})

	return cmd
}

func runWidget(cmd *cobra.Command, e *env, ctrl widget.Controller) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	go e.repo.Watch(ctx, e.cfg.PollInterval)
	return widget.Run(ctx, ctrl, e.bus)
}
