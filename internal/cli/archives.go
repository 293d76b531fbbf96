package cli

import (
	"fmt"
	"time"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"

	"github.com/lherron/stockbook/internal/archive"
	"github.com/lherron/stockbook/internal/cli/appctx"
	"github.com/lherron/stockbook/internal/domain"
	"github.com/lherron/stockbook/internal/tables"
)

var archivesCmd = &cobra.Command{
	Use:     "archives",
	Aliases: []string{"archive"},
	Short:   "Browse and restore working-table archives",
	Long: `Commands for the hidden, timestamped snapshots kept of every replaced
working table.`,
}

var archivesLsCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List all archives",
	RunE:    appctx.WithApp(appctx.DefaultOptions(), runArchivesLs),
}

var archivesShowCmd = &cobra.Command{
	Use:   "show <archive-id>",
	Short: "Print an archive's rows",
	Args:  cobra.ExactArgs(1),
	RunE:  appctx.WithApp(appctx.DefaultOptions(), runArchivesShow),
}

var archivesRestoreCmd = &cobra.Command{
	Use:   "restore <archive-id>",
	Short: "Restore an archive as its branch's working table",
	Long: `Restores an archived snapshot as the live working table for its branch.

The current working table, if one exists, is archived first as a safety
backup, so restoring never discards data irrecoverably.

Examples:
  stockbook archives restore 'Archive::Springfield::2026-08-30::1415'`,
	Args: cobra.ExactArgs(1),
	RunE: appctx.WithApp(appctx.WithBranches(), runArchivesRestore),
}

var archivesDiffCmd = &cobra.Command{
	Use:   "diff <archive-id>",
	Short: "Diff an archive against its branch's current working table",
	Args:  cobra.ExactArgs(1),
	RunE:  appctx.WithApp(appctx.WithBranches(), runArchivesDiff),
}

var (
	archivesLsJSON   bool
	archivesShowJSON bool
	archivesDiffCtx  int
)

func init() {
	rootCmd.AddCommand(archivesCmd)
	archivesCmd.AddCommand(archivesLsCmd)
	archivesCmd.AddCommand(archivesShowCmd)
	archivesCmd.AddCommand(archivesRestoreCmd)
	archivesCmd.AddCommand(archivesDiffCmd)

	archivesLsCmd.Flags().BoolVar(&archivesLsJSON, "json", false, "Output as JSON")
	archivesShowCmd.Flags().BoolVar(&archivesShowJSON, "json", false, "Output as JSON")
	archivesDiffCmd.Flags().IntVar(&archivesDiffCtx, "unified", 3, "Lines of unified context")
}

func runArchivesLs(app *appctx.App, cmd *cobra.Command, args []string) error {
	entries, err := archive.List(app.DB)
	if err != nil {
		return err
	}

	r := newRenderer(app, cmd)
	if archivesLsJSON {
		return r.RenderJSON(entries)
	}

	headers := []string{"ID", "BRANCH", "CREATED", "STATE"}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		state := "hidden"
		if e.Malformed {
			state = "malformed"
		}
		created := ""
		if !e.CreatedAt.IsZero() {
			created = e.CreatedAt.Format("2006-01-02 15:04")
		}
		rows = append(rows, []string{e.ID, e.BranchKey, created, state})
	}
	return r.RenderRows(headers, rows)
}

func runArchivesShow(app *appctx.App, cmd *cobra.Command, args []string) error {
	id := args[0]
	if _, _, err := archive.DecodeName(id); err != nil {
		return err
	}

	exists, err := tables.Exists(app.DB, id)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("archive %q does not exist", id)
	}

	records, err := tables.ReadRows(app.DB, id)
	if err != nil {
		return err
	}

	r := newRenderer(app, cmd)
	if archivesShowJSON {
		return r.RenderJSON(records)
	}
	return r.RenderRows(domain.FieldOrder, recordCells(records))
}

func runArchivesRestore(app *appctx.App, cmd *cobra.Command, args []string) error {
	id := args[0]
	if err := archive.Promote(app.DB.DB, app.Config, id, time.Now()); err != nil {
		return err
	}

	key, _, _ := archive.DecodeName(id)
	app.Logger.Info("archive restored", "archive", id, "branch", key)
	fmt.Fprintf(cmd.OutOrStdout(), "restored %s as working table for branch %s\n", id, key)
	return nil
}

func runArchivesDiff(app *appctx.App, cmd *cobra.Command, args []string) error {
	id := args[0]
	key, _, err := archive.DecodeName(id)
	if err != nil {
		return err
	}

	branch, err := app.Config.FindBranch(key)
	if err != nil {
		return err
	}

	exists, err := tables.Exists(app.DB, id)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("archive %q does not exist", id)
	}

	archived, err := tables.ReadRows(app.DB, id)
	if err != nil {
		return err
	}

	var current []domain.Record
	if liveExists, err := tables.Exists(app.DB, branch.TabName); err != nil {
		return err
	} else if liveExists {
		if current, err = tables.ReadRows(app.DB, branch.TabName); err != nil {
			return err
		}
	}

	diff := difflib.UnifiedDiff{
		A:        recordLines(archived),
		B:        recordLines(current),
		FromFile: id,
		ToFile:   branch.TabName,
		Context:  archivesDiffCtx,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return fmt.Errorf("failed to compute diff: %w", err)
	}

	if text == "" {
		fmt.Fprintln(cmd.OutOrStdout(), "no differences")
		return nil
	}
	fmt.Fprint(cmd.OutOrStdout(), text)
	return nil
}
