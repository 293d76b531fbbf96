package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/lherron/stockbook/internal/cli/appctx"
	"github.com/lherron/stockbook/internal/domain"
	"github.com/lherron/stockbook/internal/render"
)

// newRenderer builds a renderer honoring the configured output format and
// the command's --json flag when present.
func newRenderer(app *appctx.App, cmd *cobra.Command) *render.Renderer {
	format := render.Format(app.Config.Output)
	if jsonFlag := cmd.Flag("json"); jsonFlag != nil && jsonFlag.Value.String() == "true" {
		format = render.FormatJSON
	}
	return render.NewRenderer(cmd.OutOrStdout(), format)
}

// recordCells projects records onto the canonical field order for rendering.
func recordCells(records []domain.Record) [][]string {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		cells := make([]string, len(domain.FieldOrder))
		for i, f := range domain.FieldOrder {
			cells[i] = rec[f]
		}
		rows = append(rows, cells)
	}
	return rows
}

// recordLines renders records as one TSV line each, used for diffing.
func recordLines(records []domain.Record) []string {
	lines := make([]string, 0, len(records))
	for _, cells := range recordCells(records) {
		lines = append(lines, strings.Join(cells, "\t")+"\n")
	}
	return lines
}
