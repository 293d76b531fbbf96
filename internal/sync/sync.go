// Package sync coordinates one ingestion run: partitioning the uploaded
// record set, then per branch reading carryover, archiving the old working
// table, cloning the template, reconciling, and writing the new rows.
package sync

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lherron/stockbook/internal/archive"
	"github.com/lherron/stockbook/internal/carryover"
	"github.com/lherron/stockbook/internal/config"
	"github.com/lherron/stockbook/internal/db"
	"github.com/lherron/stockbook/internal/domain"
	"github.com/lherron/stockbook/internal/events"
	"github.com/lherron/stockbook/internal/partition"
	"github.com/lherron/stockbook/internal/reconcile"
	"github.com/lherron/stockbook/internal/tables"
)

// State is the per-branch pipeline state. Transitions are fixed and
// sequential; Failed can be entered from any state.
type State string

const (
	StatePending        State = "pending"
	StateCarryoverRead  State = "carryover_read"
	StateArchived       State = "archived"
	StateTemplateCloned State = "template_cloned"
	StateReconciled     State = "reconciled"
	StateWritten        State = "written"
	StateDone           State = "done"
	StateFailed         State = "failed"
)

// BranchResult reports one branch's outcome for an ingestion run.
type BranchResult struct {
	Branch    string `json:"branch"`
	State     State  `json:"state"`
	ArchiveID string `json:"archive_id,omitempty"`
	RowsIn    int    `json:"rows_in"`
	RowsOut   int    `json:"rows_out"`
	Carried   int    `json:"carried"`
	Excluded  int    `json:"excluded"`
	Malformed int    `json:"malformed,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Report summarizes an ingestion run across all configured branches.
type Report struct {
	RunID     string         `json:"run_id"`
	StartedAt time.Time      `json:"started_at"`
	DryRun    bool           `json:"dry_run,omitempty"`
	Branches  []BranchResult `json:"branches"`
}

// Failed reports whether any branch ended in the failed state.
func (r *Report) Failed() bool {
	for _, b := range r.Branches {
		if b.State == StateFailed {
			return true
		}
	}
	return false
}

// Options configures a single run.
type Options struct {
	// DryRun performs the full pipeline per branch and rolls back instead
	// of committing. Nothing is mutated, the report is real.
	DryRun bool
}

// Orchestrator owns the branch lifecycle transitions for ingestion runs.
// Branches are processed sequentially; a failure in one branch does not
// roll back branches already completed in the same run.
type Orchestrator struct {
	db     *db.DB
	cfg    *config.Config
	logger *slog.Logger
	events *events.Writer

	// now is swappable for tests; archive names derive from it.
	now func() time.Time
}

// New creates an Orchestrator over an opened database and validated
// configuration.
func New(database *db.DB, cfg *config.Config, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		db:     database,
		cfg:    cfg,
		logger: logger,
		events: events.NewWriter(database.DB),
		now:    time.Now,
	}
}

// Run processes one uploaded record set across all configured branches.
//
// Whole-run fatal conditions (missing branch column, missing template) are
// checked before any working table is touched. Per-branch failures are
// recorded in the report and processing continues with the next branch.
// The returned error is non-nil only for whole-run failures.
func (o *Orchestrator) Run(records []domain.Record, opts Options) (*Report, error) {
	if err := o.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	report := &Report{
		RunID:     uuid.NewString(),
		StartedAt: o.now(),
		DryRun:    opts.DryRun,
	}

	// Abort before mutating anything if the record set is unusable.
	groups, err := partition.Partition(records, o.cfg.Branches)
	if err != nil {
		return nil, err
	}

	// No branch can be rebuilt without the template.
	tmplExists, err := tables.Exists(o.db, o.cfg.TemplateTable)
	if err != nil {
		return nil, err
	}
	if !tmplExists {
		return nil, &domain.TemplateNotFoundError{Table: o.cfg.TemplateTable}
	}

	if !opts.DryRun {
		_ = o.events.Log(nil, report.RunID, "", "run.started", map[string]any{
			"records": len(records),
		})
	}

	for _, branch := range o.cfg.Branches {
		result := o.runBranch(report.RunID, branch, groups[branch.Key], opts.DryRun)
		report.Branches = append(report.Branches, result)

		if result.State == StateFailed {
			o.logger.Error("branch sync failed",
				"run_id", report.RunID, "branch", branch.Key, "error", result.Error)
		} else {
			o.logger.Info("branch synced",
				"run_id", report.RunID, "branch", branch.Key,
				"rows_in", result.RowsIn, "rows_out", result.RowsOut,
				"carried", result.Carried, "excluded", result.Excluded,
				"archive", result.ArchiveID, "dry_run", opts.DryRun)
		}
	}

	if !opts.DryRun {
		_ = o.events.Log(nil, report.RunID, "", "run.completed", map[string]any{
			"failed": report.Failed(),
		})
	}

	return report, nil
}

// runBranch executes the fixed transition sequence for one branch inside a
// single transaction. On failure the transaction rolls back, leaving the
// working table in its most recent safely-committed state.
func (o *Orchestrator) runBranch(runID string, branch domain.Branch, incoming []domain.Record, dryRun bool) BranchResult {
	result := BranchResult{
		Branch: branch.Key,
		State:  StatePending,
		RowsIn: len(incoming),
	}

	fail := func(step string, err error) BranchResult {
		result.State = StateFailed
		result.Error = (&domain.BranchSyncError{Branch: branch.Key, Step: step, Err: err}).Error()
		return result
	}

	tx, err := o.db.Begin()
	if err != nil {
		return fail("begin", err)
	}
	defer tx.Rollback()

	// Carryover is read from the table that exists before this run's
	// archive step touches it.
	carry, err := carryover.Resolve(tx, branch)
	if err != nil {
		return fail("carryover", err)
	}
	result.State = StateCarryoverRead

	archiveID, err := archiveSnapshot(tx, branch, o.now())
	if err != nil {
		return fail("archive", err)
	}
	result.ArchiveID = archiveID
	result.State = StateArchived

	if err := tables.CloneFromTemplate(tx, o.cfg.TemplateTable, branch.TabName); err != nil {
		return fail("template", err)
	}
	result.State = StateTemplateCloned

	merged := reconcile.Merge(incoming, carry, o.cfg.Exclusions)
	result.RowsOut = len(merged.Rows)
	result.Carried = merged.Carried
	result.Excluded = merged.Excluded
	result.Malformed = merged.Malformed
	result.State = StateReconciled

	if err := tables.WriteRows(tx, branch.TabName, merged.Rows); err != nil {
		return fail("write", err)
	}
	result.State = StateWritten

	if dryRun {
		// Full pipeline ran; throw it away.
		if err := tx.Rollback(); err != nil {
			return fail("rollback", err)
		}
		result.ArchiveID = ""
		result.State = StateDone
		return result
	}

	if err := o.events.Log(tx, runID, branch.Key, "branch.synced", result); err != nil {
		return fail("log", err)
	}

	if err := tx.Commit(); err != nil {
		return fail("commit", err)
	}
	result.State = StateDone
	return result
}

// archiveSnapshot wraps archive.Snapshot, treating "no working table" as
// success with nothing archived (expected for a brand-new branch).
func archiveSnapshot(tx *sql.Tx, branch domain.Branch, now time.Time) (string, error) {
	id, err := archive.Snapshot(tx, branch, now)
	if errors.Is(err, domain.ErrSourceNotFound) {
		return "", nil
	}
	return id, err
}
