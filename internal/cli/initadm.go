package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lherron/stockbook/internal/config"
	"github.com/lherron/stockbook/internal/db"
)

var initAdmCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the stockbook database",
	Long: `Creates the database file if needed and applies all migrations, including
the record template table that every working table is cloned from.`,
	RunE: runInitAdm,
}

var migrateAdmCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE:  runMigrateAdm,
}

func init() {
	rootAdmCmd.AddCommand(initAdmCmd)
	rootAdmCmd.AddCommand(migrateAdmCmd)
}

// openAdminDB loads config and opens the database without the migration
// gate, since these commands exist to run migrations.
func openAdminDB(cmd *cobra.Command) (*db.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if dbPath := cmd.Flag("db").Value.String(); dbPath != "" {
		cfg.DBPath = dbPath
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return database, nil
}

func runInitAdm(cmd *cobra.Command, args []string) error {
	database, err := openAdminDB(cmd)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "initialized database at %s\n", database.Path())
	return nil
}

func runMigrateAdm(cmd *cobra.Command, args []string) error {
	database, err := openAdminDB(cmd)
	if err != nil {
		return err
	}
	defer database.Close()

	_, pending, err := database.MigrationStatus()
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "database is up to date")
		return nil
	}

	if err := database.Migrate(); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s)\n", len(pending))
	return nil
}
