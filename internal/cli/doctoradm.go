package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lherron/stockbook/internal/archive"
	"github.com/lherron/stockbook/internal/config"
	"github.com/lherron/stockbook/internal/tables"
)

var doctorAdmCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check database and configuration health",
	Long: `Runs health checks: configuration validity, migration status, template
table presence, working-table status per branch, and archive name
integrity.`,
	RunE: runDoctorAdm,
}

func init() {
	rootAdmCmd.AddCommand(doctorAdmCmd)
}

func runDoctorAdm(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	problems := 0

	check := func(ok bool, format string, a ...any) {
		status := "ok"
		if !ok {
			status = "FAIL"
			problems++
		}
		fmt.Fprintf(out, "[%-4s] %s\n", status, fmt.Sprintf(format, a...))
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if dbPath := cmd.Flag("db").Value.String(); dbPath != "" {
		cfg.DBPath = dbPath
	}

	cfgErr := cfg.Validate()
	check(cfgErr == nil, "configuration (%d branches)", len(cfg.Branches))
	if cfgErr != nil {
		fmt.Fprintf(out, "       %v\n", cfgErr)
	}

	database, err := openAdminDB(cmd)
	if err != nil {
		return err
	}
	defer database.Close()

	_, pending, err := database.MigrationStatus()
	if err != nil {
		return err
	}
	check(len(pending) == 0, "migrations (%d pending)", len(pending))

	tmplExists, err := tables.Exists(database, cfg.TemplateTable)
	if err != nil {
		return err
	}
	check(tmplExists, "template table %q", cfg.TemplateTable)

	for _, b := range cfg.Branches {
		exists, err := tables.Exists(database, b.TabName)
		if err != nil {
			return err
		}
		status := "live"
		if !exists {
			status = "not yet created"
		}
		fmt.Fprintf(out, "[ok  ] branch %s: working table %q %s\n", b.Key, b.TabName, status)
	}

	entries, err := archive.List(database)
	if err != nil {
		return err
	}
	malformed := 0
	orphaned := 0
	for _, e := range entries {
		if e.Malformed {
			malformed++
			continue
		}
		if _, err := cfg.FindBranch(e.BranchKey); err != nil {
			orphaned++
		}
	}
	check(malformed == 0, "archive names (%d total, %d malformed)", len(entries), malformed)
	check(orphaned == 0, "archive branch keys (%d without configuration)", orphaned)

	if problems > 0 {
		return fmt.Errorf("doctor found %d problem(s)", problems)
	}
	fmt.Fprintln(out, "all checks passed")
	return nil
}
