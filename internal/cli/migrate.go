package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/banshee-data/sensorframe/internal/db"
)

// NewMigrateCommand creates the migrate command and its up/down/version
// subcommands.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the frame store schema",
	}
	cmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path")
	_ = cmd.MarkPersistentFlagRequired("db")

	withDB := func(fn func(cmd *cobra.Command, store *db.DB) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			store, err := db.OpenDB(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()
			return fn(cmd, store)
		}
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: withDB(func(cmd *cobra.Command, store *db.DB) error {
			if err := store.MigrateUp(); err != nil {
				return err
			}
			return printVersion(cmd, rootOpts, store)
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		Args:  cobra.NoArgs,
		RunE: withDB(func(cmd *cobra.Command, store *db.DB) error {
			if err := store.MigrateDown(); err != nil {
				return err
			}
			return printVersion(cmd, rootOpts, store)
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: withDB(func(cmd *cobra.Command, store *db.DB) error {
			return printVersion(cmd, rootOpts, store)
		}),
	})

	return cmd
}

func printVersion(cmd *cobra.Command, rootOpts *RootOptions, store *db.DB) error {
	version, dirty, err := store.MigrateVersion()
	if err != nil {
		return err
	}
	latest, err := db.LatestMigrationVersion()
	if err != nil {
		return err
	}
	if rootOpts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
			"current_version": version,
			"latest_version":  latest,
			"dirty":           dirty,
		})
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "version=%d latest=%d dirty=%t\n", version, latest, dirty)
	return err
}
