package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lherron/stockbook/internal/cli/appctx"
	"github.com/lherron/stockbook/internal/domain"
	"github.com/lherron/stockbook/internal/tables"
)

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "Inspect branch working tables",
}

var tablesShowCmd = &cobra.Command{
	Use:   "show <branch-key>",
	Short: "Print a branch's current working table",
	Args:  cobra.ExactArgs(1),
	RunE:  appctx.WithApp(appctx.WithBranches(), runTablesShow),
}

var tablesShowJSON bool

func init() {
	rootCmd.AddCommand(tablesCmd)
	tablesCmd.AddCommand(tablesShowCmd)

	tablesShowCmd.Flags().BoolVar(&tablesShowJSON, "json", false, "Output as JSON")
}

func runTablesShow(app *appctx.App, cmd *cobra.Command, args []string) error {
	branch, err := app.Config.FindBranch(args[0])
	if err != nil {
		return err
	}

	exists, err := tables.Exists(app.DB, branch.TabName)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("branch %s has no working table yet (run 'stockbook sync' first)", branch.Key)
	}

	records, err := tables.ReadRows(app.DB, branch.TabName)
	if err != nil {
		return err
	}

	r := newRenderer(app, cmd)
	if tablesShowJSON {
		return r.RenderJSON(records)
	}
	return r.RenderRows(domain.FieldOrder, recordCells(records))
}
