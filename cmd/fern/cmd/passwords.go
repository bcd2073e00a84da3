package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Ramsey-B/fern/internal/repositories/account"
	"github.com/Ramsey-B/fern/internal/repositories/stagedrow"
	"github.com/Ramsey-B/fern/pkg/credentials"
)

var passwordsCmd = &cobra.Command{
	Use:   "passwords",
	Short: "Issue initial passwords to parent accounts lacking one",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close(ctx)

		rows, err := stagedrow.NewRepository(a.db, a.logger).ListOrdered(ctx)
		if err != nil {
			return err
		}

		svc := credentials.NewService(a.logger, account.NewRepository(a.db, a.logger))
		report, err := svc.Run(ctx, rows)
		if err != nil {
			return err
		}

		a.logger.WithContext(ctx).WithFields(map[string]any{
			"considered": report.Considered,
			"updated":    report.Updated,
		}).Info("Passwords finished")
		return nil
	},
}
