package cli

import (
	"github.com/spf13/cobra"
)

var rootAdmCmd = &cobra.Command{
	Use:   "stockbookadm",
	Short: "Administrative CLI for stockbook database lifecycle",
	Long: `stockbookadm is the administrative companion to stockbook. It handles
database lifecycle (init, migrate) and health checks. These operations are
kept out of the operator-facing CLI.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// ExecuteAdmin runs the admin root command
func ExecuteAdmin() error {
	return rootAdmCmd.Execute()
}

func init() {
	rootAdmCmd.PersistentFlags().String("db", "", "Path to database file (overrides STOCKBOOK_DB_PATH)")
}
