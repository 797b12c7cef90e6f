package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/birdwell/trading-cards/internal/config"
	"github.com/birdwell/trading-cards/internal/service"
	"github.com/birdwell/trading-cards/internal/store/postgres"
	"github.com/birdwell/trading-cards/internal/store/sqlite"
)

func (a *app) importCmd() *cobra.Command {
	var (
		sport     string
		sourceURL string
		noIndex   bool
	)

	cmd := &cobra.Command{
		Use:   "import <file>...",
		Short: "Import CSV or JSON checklist files",
		Long: `Import one or more checklist files. The year and set name come from the
file name, e.g. 2024-Topps-Chrome-Football-Checklist.csv. Files that were
imported before are skipped.

New cards are added to the search index unless --no-index is given, which is
required while the server holds the index open.`,
		Args: cobra.MinimumNArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			if !noIndex {
				// Resolving the search service hooks the index into the store.
				if _, err := invoke[*service.SearchService](a); err != nil {
					return err
				}
			}
			imports, err := invoke[*service.ImportService](a)
			if err != nil {
				return err
			}

			for _, path := range args {
				result, err := imports.ImportFile(cmd.Context(), path, sport, sourceURL)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				err = render(cmd.OutOrStdout(), a.output, result, func(w io.Writer) error {
					set := result.Set
					if !result.Created {
						_, err := fmt.Fprintf(w, "skipped %s: already imported as set %d\n", path, set.ID)
						return err
					}
					_, err := fmt.Fprintf(w, "imported set %d %q (%s %s): %d cards\n",
						set.ID, set.Name, set.Year, set.Sport, len(result.Cards))
					return err
				})
				if err != nil {
					return err
				}
			}
			return nil
		}),
	}

	cmd.Flags().StringVar(&sport, "sport", "", "Basketball or Football (default: detected from the file name)")
	cmd.Flags().StringVar(&sourceURL, "url", "", "Checklist source URL, also used to detect the sport")
	cmd.Flags().BoolVar(&noIndex, "no-index", false, "Skip search indexing")
	return cmd
}

func (a *app) reindexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the search index from the database",
		Long:  "Rebuild the search index from the database. The server must be stopped.",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, _ []string) error {
			searchService, err := invoke[*service.SearchService](a)
			if err != nil {
				return err
			}
			n, err := searchService.Reindex(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "indexed %d cards\n", n)
			return nil
		}),
	}
}

// migrator is satisfied by both store migrators.
type migrator interface {
	Up() error
	Down() error
	Version() (uint, bool, error)
	Close() error
}

func (a *app) migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	step := func(use, short string, fn func(cmd *cobra.Command, m migrator) error) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.NoArgs,
			RunE: a.run(func(cmd *cobra.Command, _ []string) error {
				cfg, err := invoke[*config.Config](a)
				if err != nil {
					return err
				}
				m, err := openMigrator(cfg.Database)
				if err != nil {
					return err
				}
				defer m.Close()
				return fn(cmd, m)
			}),
		}
	}

	printVersion := func(cmd *cobra.Command, m migrator) error {
		version, dirty, err := m.Version()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "schema version %d", version)
		if dirty {
			fmt.Fprint(cmd.OutOrStdout(), " (dirty)")
		}
		fmt.Fprintln(cmd.OutOrStdout())
		return nil
	}

	cmd.AddCommand(
		step("up", "Apply pending migrations", func(cmd *cobra.Command, m migrator) error {
			if err := m.Up(); err != nil {
				return err
			}
			return printVersion(cmd, m)
		}),
		step("down", "Roll back every migration, dropping all data", func(cmd *cobra.Command, m migrator) error {
			if err := m.Down(); err != nil {
				return err
			}
			return printVersion(cmd, m)
		}),
		step("version", "Print the current schema version", printVersion),
	)
	return cmd
}

func openMigrator(cfg config.DatabaseConfig) (migrator, error) {
	if cfg.Driver == config.DriverPostgres {
		return postgres.NewMigrator(cfg.URL)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("create database dir: %w", err)
	}
	return sqlite.NewMigrator(cfg.Path)
}
