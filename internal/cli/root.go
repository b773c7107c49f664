// Package cli is the feet command tree. With no subcommand it runs the
// interactive tracker; the subcommands are one-shot edits and servers that
// share the same database.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/sadopc/feet/internal/config"
	"github.com/sadopc/feet/internal/events"
	"github.com/sadopc/feet/internal/logging"
	"github.com/sadopc/feet/internal/repository"
	"github.com/sadopc/feet/internal/store"
	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "dev"

// noDatabase marks commands that run without opening the store.
const noDatabase = "no-database"

// env holds everything a command needs once the config is loaded.
type env struct {
	configPath string
	logDest    string

	cfg       *config.Config
	logger    *log.Logger
	logCloser io.Closer
	store     *store.Store
	bus       *events.Bus
	repo      *repository.Repository
}

// open loads the config, sets up logging and opens the database.
func (e *env) open() error {
	var err error
	if e.configPath != "" {
		e.cfg, err = config.LoadFile(e.configPath)
	} else {
		e.cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	dest := e.cfg.Log()
	if e.logDest != "" {
		dest = e.logDest
	}
	e.logger, e.logCloser, err = logging.New(dest, e.cfg.LogLevel)
	if err != nil {
		return err
	}

	e.store, err = store.New(e.cfg.Database())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	e.bus = events.New()
	e.repo = repository.New(e.store, e.bus, e.logger)
	e.logger.Debug("opened database", "path", e.cfg.Database())
	return nil
}

// close releases whatever open acquired. It is safe to call more than once.
func (e *env) close() error {
	if e.bus != nil {
		e.bus.Close()
		e.bus = nil
	}
	var err error
	if e.store != nil {
		err = e.store.Close()
		e.store = nil
	}
	if e.logCloser != nil {
		e.logCloser.Close()
		e.logCloser = nil
	}
	return err
}

// newRootCmd builds the full command tree around e.
func newRootCmd(e *env) *cobra.Command {
	root := &cobra.Command{
		Use:   "feet",
		Short: "Track water, steps and workouts",
		Long: `feet tracks daily water intake, steps and workouts.

Run without a subcommand to open the interactive tracker.

QUICK START:

  $ feet                         # Open the tracker
  $ feet water add               # Log a glass of water
  $ feet steps add 2500          # Add steps
  $ feet workout add "Push-ups" --goal 40
  $ feet widget water            # Compact water card

MCP INTEGRATION:

  Run 'feet mcp' to serve the Model Context Protocol over stdio.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Skip setup for commands that don't need the database
			if cmd.Name() == "help" || cmd.Annotations[noDatabase] == "true" {
				return nil
			}
			return e.open()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTracker(cmd.Context(), e)
		},
	}

	root.PersistentFlags().StringVar(&e.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/feet/config.json)")
	root.PersistentFlags().StringVar(&e.logDest, "log", "", `log file, or "-" for stderr`)

	root.AddCommand(
		newWaterCmd(e),
		newStepsCmd(e),
		newWorkoutCmd(e),
		newGoalCmd(e),
		newWidgetCmd(e),
		newExportCmd(e),
		newPruneCmd(e),
		newMCPCmd(e),
		newConfigCmd(e),
	)
	return root
}

// run executes the tree with args and releases e afterwards. cobra skips
// post-run hooks when a command fails, so the close happens here.
func run(ctx context.Context, e *env, args []string, out io.Writer) error {
	root := newRootCmd(e)
	root.SetArgs(args)
	if out != nil {
		root.SetOut(out)
		root.SetErr(out)
	}
	err := root.ExecuteContext(ctx)
	if cerr := e.close(); err == nil {
		err = cerr
	}
	return err
}

// Execute runs the command tree and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, &env{}, os.Args[1:], nil)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, errorf("%v", err))
		os.Exit(1)
	}
}
