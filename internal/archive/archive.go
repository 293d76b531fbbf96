// Package archive manages the timestamped, hidden snapshots that preserve
// each branch's prior working table across re-uploads, and their
// restoration.
package archive

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/lherron/stockbook/internal/config"
	"github.com/lherron/stockbook/internal/domain"
	"github.com/lherron/stockbook/internal/tables"
)

// Entry is one browsable archive, parsed from its table name.
type Entry struct {
	ID        string    `json:"id"`
	BranchKey string    `json:"branch_key,omitempty"`
	CreatedAt time.Time `json:"created_at,omitzero"`
	Hidden    bool      `json:"hidden"`

	// Malformed marks names under the archive prefix that do not decode.
	// Impossible under normal operation, but manual tampering with the
	// database must not crash enumeration.
	Malformed bool `json:"malformed,omitempty"`
}

// Snapshot archives a branch's current working table: the table's rows are
// copied into a new hidden archive table named from the branch key and
// timestamp, and the original working table is removed. Runs entirely
// inside the caller's transaction, so observers see either the untouched
// working table or the completed archive, never an in-between state.
//
// Returns the new archive id, or domain.ErrSourceNotFound when the branch
// has no working table (callers treat that as success with nothing to do).
func Snapshot(tx *sql.Tx, branch domain.Branch, now time.Time) (string, error) {
	exists, err := tables.Exists(tx, branch.TabName)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", domain.ErrSourceNotFound
	}

	id := EncodeName(branch.Key, now)
	taken, err := tables.Exists(tx, id)
	if err != nil {
		return "", err
	}
	if taken {
		return "", fmt.Errorf("archive %q already exists", id)
	}

	if err := tables.Copy(tx, branch.TabName, id); err != nil {
		return "", err
	}
	if err := tables.Drop(tx, branch.TabName); err != nil {
		return "", err
	}

	return id, nil
}

// List enumerates all archives, newest first. Malformed names under the
// archive prefix are reported as entries with the Malformed flag set.
func List(q tables.Queryer) ([]Entry, error) {
	rows, err := q.Query(
		`SELECT name FROM sqlite_master WHERE type='table' AND name LIKE ? ORDER BY name`,
		namePrefix+"%",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate archives: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan archive name: %w", err)
		}

		key, createdAt, err := DecodeName(name)
		if err != nil {
			entries = append(entries, Entry{ID: name, Hidden: true, Malformed: true})
			continue
		}
		entries = append(entries, Entry{ID: name, BranchKey: key, CreatedAt: createdAt, Hidden: true})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating archives: %w", err)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})

	return entries, nil
}

// Promote restores an archive as its branch's working table. The current
// working table, if any, is archived first as a safety backup: restoring
// never discards data irrecoverably. The restored table is materialized
// from the template so formatting constraints match a fresh sync.
//
// Fails with UnknownBranchError (mutating nothing) when the decoded branch
// key has no matching configuration.
func Promote(d *sql.DB, cfg *config.Config, archiveID string, now time.Time) error {
	key, _, err := DecodeName(archiveID)
	if err != nil {
		return err
	}

	branch, err := cfg.FindBranch(key)
	if err != nil {
		return err
	}

	tx, err := d.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	exists, err := tables.Exists(tx, archiveID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("archive %q does not exist", archiveID)
	}

	records, err := tables.ReadRows(tx, archiveID)
	if err != nil {
		return err
	}

	// Safety backup of whatever is live right now.
	if _, err := Snapshot(tx, branch, now); err != nil && !errors.Is(err, domain.ErrSourceNotFound) {
		return fmt.Errorf("failed to back up current working table for branch %s: %w", branch.Key, err)
	}

	if err := tables.CloneFromTemplate(tx, cfg.TemplateTable, branch.TabName); err != nil {
		return err
	}
	if err := tables.WriteRows(tx, branch.TabName, records); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit restore of %q: %w", archiveID, err)
	}
	return nil
}
