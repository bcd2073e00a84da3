// Package cmd wires the fern subcommands.
package cmd

import (
	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "fern",
	Short: "Family registration reconciliation engine",
	Long: `fern reconciles staged school bus registration rows into a
deduplicated graph of accounts, residences, and guardian-child links,
then produces the downstream credential and roster outputs.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path (optional, environment wins)")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(reconcileCmd)
	rootCmd.AddCommand(passwordsCmd)
	rootCmd.AddCommand(rosterCmd)
}
