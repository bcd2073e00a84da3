package cmd

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/Ramsey-B/fern/internal/repositories/account"
	"github.com/Ramsey-B/fern/internal/repositories/guardianship"
	"github.com/Ramsey-B/fern/internal/repositories/place"
	"github.com/Ramsey-B/fern/internal/repositories/stagedrow"
	"github.com/Ramsey-B/fern/pkg/reconciler"
	"github.com/Ramsey-B/fern/pkg/registrar"
	"github.com/Ramsey-B/fern/pkg/staging"
)

var reconcileInput string

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Load staged rows and reconcile them into the entity store",
	Long: `Reconcile loads the staged registration CSV (when --input is given),
upserts its rows into the staging store, then replays every staged row in
line order through the registration engine. The run is idempotent: rows
already reconciled resolve to their existing accounts.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close(ctx)

		rowStore := stagedrow.NewRepository(a.db, a.logger)

		if reconcileInput != "" {
			f, err := os.Open(reconcileInput)
			if err != nil {
				return errors.Wrap(err, "failed to open input file")
			}
			defer f.Close()

			rows, err := staging.Load(f)
			if err != nil {
				return err
			}
			for i := range rows {
				if err := rowStore.Upsert(ctx, &rows[i]); err != nil {
					return err
				}
			}
			a.logger.WithContext(ctx).WithFields(map[string]any{
				"rows": len(rows),
			}).Info("Staged rows loaded")
		}

		rows, err := rowStore.ListOrdered(ctx)
		if err != nil {
			return err
		}

		reg := registrar.NewService(
			a.logger,
			account.NewRepository(a.db, a.logger),
			place.NewRepository(a.db, a.logger),
			guardianship.NewRepository(a.db, a.logger),
			registrar.Config{
				MinUnaccompaniedAge: a.cfg.MinUnaccompaniedAge,
				SchoolYearStart:     a.cfg.SchoolYearStart(time.Now().UTC().Year()),
			},
		)

		engineConfig := reconciler.DefaultConfig()
		if a.cfg.EngineAbortOnParseError {
			engineConfig.OnParseError = reconciler.ParseErrorAbort
		}

		engine := reconciler.NewEngine(a.logger, reg, engineConfig)
		report, err := engine.Run(ctx, rows)
		if err != nil {
			return err
		}

		for _, warning := range report.Warnings {
			a.logger.WithContext(ctx).WithFields(map[string]any{
				"kind":   warning.Kind,
				"name":   warning.Name,
				"detail": warning.Detail,
			}).Warn("Reconciliation warning")
		}
		a.logger.WithContext(ctx).WithFields(map[string]any{
			"processed":      report.Processed,
			"parse_failures": report.ParseFailures,
		}).Info("Reconcile finished")
		return nil
	},
}

func init() {
	reconcileCmd.Flags().StringVar(&reconcileInput, "input", "", "staged registration CSV to load before reconciling")
}
