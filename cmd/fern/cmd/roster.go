package cmd

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	rosterrepo "github.com/Ramsey-B/fern/internal/repositories/roster"
	"github.com/Ramsey-B/fern/pkg/roster"
)

var rosterOutput string

var rosterCmd = &cobra.Command{
	Use:   "roster",
	Short: "Export the child/guardian/residence roster as CSV",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close(ctx)

		svc := roster.NewService(a.logger, rosterrepo.NewRepository(a.db, a.logger))
		rows, err := svc.Export(ctx)
		if err != nil {
			return err
		}

		var out io.Writer = os.Stdout
		if rosterOutput != "" {
			f, err := os.Create(rosterOutput)
			if err != nil {
				return errors.Wrap(err, "failed to create output file")
			}
			defer f.Close()
			out = f
		}

		return roster.WriteCSV(out, rows)
	},
}

func init() {
	rosterCmd.Flags().StringVar(&rosterOutput, "output", "", "write the roster CSV to this path instead of stdout")
}
