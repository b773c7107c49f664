package cli

import (
	"github.com/sadopc/feet/internal/mcp"
	"github.com/spf13/cobra"
)

func newMCPCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the Model Context Protocol over stdio",
		Long: `Start an MCP server on stdin/stdout so assistants can read and
log water, steps and workouts.

Logs go to the log file; stdout belongs to the protocol.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			srv, err := mcp.NewServer(e.repo, Version)
			if err != nil {
				return err
			}
			e.logger.Info("serving mcp over stdio")
			return srv.Serve(cmd.Context())
		},
	}
}
