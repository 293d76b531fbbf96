package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "stockbook",
	Short: "Reconcile uploaded maintenance-service records into per-branch working tables",
	Long: `stockbook reconciles periodically re-uploaded maintenance-service records
against per-branch working tables on a SQLite backend. User-entered Due and
Notes annotations survive re-uploads, and every replaced working table is
kept as a restorable, timestamped archive.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to database file (overrides STOCKBOOK_DB_PATH)")
}
