package main

import (
	"io"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/birdwell/trading-cards/internal/config"
	"github.com/birdwell/trading-cards/internal/di"
	"github.com/birdwell/trading-cards/internal/logger"
)

// app carries the state shared by every subcommand.
type app struct {
	flags    *config.Flags
	output   string
	injector *do.RootScope
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "cardctl",
		Short: "Manage a trading card collection",
		Long: `cardctl imports checklists and reports collection progress.

It reads the same flags, environment variables and .env file as the server
and opens the same database, so the two can be used side by side. The search
index is locked by a running server; commands that touch it say so.`,
		SilenceUsage: true,
	}

	a.flags = config.BindFlags(root.PersistentFlags())
	root.PersistentFlags().StringVarP(&a.output, "output", "o", formatTable, "Output format: table, json or yaml")

	root.AddCommand(
		a.brandsCmd(),
		a.brandCmd(),
		a.setsCmd(),
		a.statsCmd(),
		a.ownCmd(),
		a.importCmd(),
		a.reindexCmd(),
		a.migrateCmd(),
	)
	return root
}

// run wraps a command body with container setup and teardown.
func (a *app) run(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := validateFormat(a.output); err != nil {
			return err
		}
		if a.flags.LogLevel == "" {
			a.flags.LogLevel = "warn"
		}

		a.injector = di.NewContainer(a.flags)
		do.Override(a.injector, stderrLogger(cmd.ErrOrStderr()))
		defer a.injector.Shutdown()

		return fn(cmd, args)
	}
}

// stderrLogger keeps log lines out of the command output.
func stderrLogger(w io.Writer) do.Provider[*logger.Logger] {
	return func(i do.Injector) (*logger.Logger, error) {
		cfg, err := do.Invoke[*config.Config](i)
		if err != nil {
			return nil, err
		}
		return logger.New(logger.Config{
			Writer:      w,
			Level:       logger.ParseLevel(cfg.Logger.Level),
			Environment: cfg.App.Environment,
		}), nil
	}
}

func invoke[T any](a *app) (T, error) {
	return do.Invoke[T](a.injector)
}
