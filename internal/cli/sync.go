package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lherron/stockbook/internal/cli/appctx"
	"github.com/lherron/stockbook/internal/ingest"
	"github.com/lherron/stockbook/internal/sync"
)

var syncCmd = &cobra.Command{
	Use:   "sync <records.json>",
	Short: "Reconcile an uploaded record set into all branch working tables",
	Long: `Reconciles a freshly uploaded record set against every configured branch.

Per branch: the current working table's Due/Notes annotations are carried
forward by stock id, the old table is archived, and a new working table is
written from the template. Records whose resolved Due matches a configured
exclusion value are dropped. Branches are processed independently: one
branch failing does not roll back the others.

Examples:
  stockbook sync upload.json              # Full run
  stockbook sync upload.json --dry-run    # Report only, mutate nothing
  stockbook sync upload.json --json       # JSON run report`,
	Args: cobra.ExactArgs(1),
	RunE: appctx.WithApp(appctx.WithBranches(), runSync),
}

var (
	syncDryRun bool
	syncJSON   bool
)

func init() {
	rootCmd.AddCommand(syncCmd)

	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "Run the full pipeline without committing any change")
	syncCmd.Flags().BoolVar(&syncJSON, "json", false, "Output run report as JSON")
}

func runSync(app *appctx.App, cmd *cobra.Command, args []string) error {
	records, err := ingest.ParseFile(args[0])
	if err != nil {
		return err
	}

	orch := sync.New(app.DB, app.Config, app.Logger)
	report, err := orch.Run(records, sync.Options{DryRun: syncDryRun})
	if err != nil {
		return err
	}

	r := newRenderer(app, cmd)
	if syncJSON {
		if err := r.RenderJSON(report); err != nil {
			return err
		}
	} else {
		headers := []string{"BRANCH", "STATE", "IN", "OUT", "CARRIED", "EXCLUDED", "ARCHIVE", "ERROR"}
		rows := make([][]string, 0, len(report.Branches))
		for _, b := range report.Branches {
			rows = append(rows, []string{
				b.Branch, string(b.State),
				fmt.Sprintf("%d", b.RowsIn), fmt.Sprintf("%d", b.RowsOut),
				fmt.Sprintf("%d", b.Carried), fmt.Sprintf("%d", b.Excluded),
				b.ArchiveID, b.Error,
			})
		}
		if err := r.RenderRows(headers, rows); err != nil {
			return err
		}
	}

	if report.Failed() {
		return fmt.Errorf("one or more branches failed to sync")
	}
	return nil
}
