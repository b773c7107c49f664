package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sadopc/feet/internal/config"
	"github.com/spf13/cobra"
)

func newConfigCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:         "config",
		Short:       "Show the effective configuration",
		Annotations: map[string]string{noDatabase: "true"},
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(e)
			if err != nil {
				return err
			}
			printConfig(cmd, cfg)
			return nil
		},
	}

	var force bool
	initCmd := &cobra.Command{
		Use:         "init",
		Short:       "Write the effective configuration to the config file",
		Annotations: map[string]string{noDatabase: "true"},
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(e)
			if err != nil {
				return err
			}
			if _, err := os.Stat(cfg.Path()); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", cfg.Path())
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}
			if err := cfg.Save(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), success("✓ Wrote %s", cfg.Path()))
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	cmd.AddCommand(initCmd)
	return cmd
}

func loadConfig(e *env) (*config.Config, error) {
	if e.configPath != "" {
		return config.LoadFile(e.configPath)
	}
	return config.Load()
}

func printConfig(cmd *cobra.Command, cfg *config.Config) {
	out := cmd.OutOrStdout()
	row := func(k, v string) {
		fmt.Fprintf(out, "%s %s\n", padRight(k, 14), v)
	}
	row("Config file", faint(cfg.Path()))
	row("Database", cfg.Database())
	row("Log", cfg.Log())
	row("Log level", cfg.LogLevel)
	row("Poll interval", cfg.PollInterval.String())
	sensor := cfg.SensorPath
	if sensor == "" {
		sensor = faint("none (simulated steps)")
	}
	row("Step sensor", sensor)
	media := "off"
	if cfg.Media {
		media = "on"
		if len(cfg.MusicApps) > 0 {
			media += " (" + strings.Join(cfg.MusicApps, ", ") + ")"
		}
	}
	row("Media", media)
}
