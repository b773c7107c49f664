package cli

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/sadopc/feet/internal/export"
	"github.com/spf13/cobra"
)

func newExportCmd(e *env) *cobra.Command {
	var format, output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all history to CSV or JSON",
		Long: `Write every recorded day and workout to a file.

Examples:
  feet export                          # CSV in the current directory
  feet export --format json
  feet export --output ~/fitness.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format = strings.ToLower(format)
			if format != "csv" && format != "json" {
				return fmt.Errorf("unknown format %q: use csv or json", format)
			}
			path := output
			if path == "" {
				path = filepath.Join(".", fmt.Sprintf("feet-export-%s.%s", time.Now().Format("2006-01-02"), format))
			}

			h, err := export.Collect(e.store)
			if err != nil {
				return fmt.Errorf("failed to read history: %w", err)
			}
			if format == "json" {
				err = export.ToJSON(h, path)
			} else {
				err = export.ToCSV(h, path)
			}
			if err != nil {
				return fmt.Errorf("failed to export: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), success("✓ Exported %d days and %d workouts", len(h.Days), len(h.Workouts)))
			fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", faint(path))
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "csv", "csv or json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default feet-export-DATE.<format>)")
	return cmd
}
