package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/spice-dashboard/internal/cli"
	"github.com/Veraticus/spice-dashboard/internal/config"
	"github.com/Veraticus/spice-dashboard/internal/storage"
)

func migrateCmd() *cobra.Command {
	var statusOnly bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Bring the database schema up to date",
		Long: `Create or upgrade the SQLite schema.

Every command that touches the database migrates it first, so this is
mainly for provisioning. --status reports the version without changing
anything.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(viper.GetViper())
			if err != nil {
				return err
			}

			store, err := storage.NewSQLiteStorage(cfg.Database.Path)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			ctx := cmd.Context()
			if !statusOnly {
				if err := store.Migrate(ctx); err != nil {
					return fmt.Errorf("migration failed: %w", err)
				}
			}

			current, err := store.SchemaVersion(ctx)
			if err != nil {
				return err
			}
			msg := fmt.Sprintf("%s is at schema version %d of %d", store.Path(), current, storage.ExpectedSchemaVersion)
			if current == storage.ExpectedSchemaVersion {
				cmd.Println(cli.FormatSuccess(msg))
			} else {
				cmd.Println(cli.FormatWarning(msg))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&statusOnly, "status", false, "report the schema version without migrating")
	return cmd
}
