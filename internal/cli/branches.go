package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lherron/stockbook/internal/cli/appctx"
	"github.com/lherron/stockbook/internal/tables"
)

var branchesCmd = &cobra.Command{
	Use:   "branches",
	Short: "List configured branches and their working-table status",
	RunE:  appctx.WithApp(appctx.WithBranches(), runBranches),
}

var branchesJSON bool

func init() {
	rootCmd.AddCommand(branchesCmd)
	branchesCmd.Flags().BoolVar(&branchesJSON, "json", false, "Output as JSON")
}

func runBranches(app *appctx.App, cmd *cobra.Command, args []string) error {
	type entry struct {
		Key     string `json:"key"`
		TabName string `json:"tab_name"`
		Exists  bool   `json:"exists"`
		Rows    int    `json:"rows"`
	}

	entries := make([]entry, 0, len(app.Config.Branches))
	for _, b := range app.Config.Branches {
		e := entry{Key: b.Key, TabName: b.TabName}

		exists, err := tables.Exists(app.DB, b.TabName)
		if err != nil {
			return err
		}
		e.Exists = exists

		if exists {
			records, err := tables.ReadRows(app.DB, b.TabName)
			if err != nil {
				return err
			}
			e.Rows = len(records)
		}

		entries = append(entries, e)
	}

	r := newRenderer(app, cmd)
	if branchesJSON {
		return r.RenderJSON(entries)
	}

	headers := []string{"KEY", "TABLE", "STATUS", "ROWS"}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		status := "missing"
		rowCount := ""
		if e.Exists {
			status = "live"
			rowCount = fmt.Sprintf("%d", e.Rows)
		}
		rows = append(rows, []string{e.Key, e.TabName, status, rowCount})
	}
	return r.RenderRows(headers, rows)
}
