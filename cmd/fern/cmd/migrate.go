package cmd

import (
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/Ramsey-B/fern/pkg/database"
)

func newMigrationService(a *app) *database.MigrationService {
	return database.NewMigrationService(a.logger, &database.MigrationConfig{
		MigrationFolderPath: a.cfg.DatabaseMigrationFolderPath,
		Version:             uint(a.cfg.DatabaseMigrationVersion),
		Force:               a.cfg.DatabaseMigrationForce,
		AutoRollback:        a.cfg.DatabaseMigrationAutoRollback,
	})
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close(ctx)

		driver, err := postgres.WithInstance(a.sqlxDB.DB, &postgres.Config{})
		if err != nil {
			return errors.Wrap(err, "failed to create migration driver")
		}

		svc := newMigrationService(a)
		if err := svc.Migrate(a.cfg.DatabaseName, driver); err != nil {
			return err
		}

		a.logger.WithContext(ctx).Info("Migrations applied")
		return nil
	},
}
