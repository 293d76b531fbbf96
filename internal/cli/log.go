package cli

import (
	"github.com/spf13/cobra"

	"github.com/lherron/stockbook/internal/cli/appctx"
	"github.com/lherron/stockbook/internal/events"
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show recent sync and restore activity",
	RunE:  appctx.WithApp(appctx.DefaultOptions(), runLog),
}

var (
	logLimit int
	logJSON  bool
)

func init() {
	rootCmd.AddCommand(logCmd)

	logCmd.Flags().IntVar(&logLimit, "limit", 50, "Maximum number of entries")
	logCmd.Flags().BoolVar(&logJSON, "json", false, "Output as JSON")
}

func runLog(app *appctx.App, cmd *cobra.Command, args []string) error {
	writer := events.NewWriter(app.DB.DB)
	entries, err := writer.Recent(logLimit)
	if err != nil {
		return err
	}

	r := newRenderer(app, cmd)
	if logJSON {
		return r.RenderJSON(entries)
	}

	headers := []string{"TIME", "RUN", "BRANCH", "EVENT"}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		branch := ""
		if e.BranchKey != nil {
			branch = *e.BranchKey
		}
		rows = append(rows, []string{
			e.Timestamp.Format("2006-01-02 15:04:05"),
			shortRunID(e.RunID),
			branch,
			e.EventType,
		})
	}
	return r.RenderRows(headers, rows)
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
