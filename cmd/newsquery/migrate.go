package main

import (
	"github.com/spf13/cobra"

	"github.com/kitbuilder587/newsquery/internal/config"
	"github.com/kitbuilder587/newsquery/internal/repository/postgres"
)

func migrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.Database.URL == "" {
				return config.ErrMissingDB
			}

			db, err := postgres.New(cmd.Context(), a.cfg.Database.URL)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.Migrate(cmd.Context()); err != nil {
				return err
			}
			a.logger.Info("schema applied")
			return nil
		},
	}
}
