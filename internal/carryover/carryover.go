// Package carryover builds the lookup of prior mutable field values that
// survive a re-upload, keyed by stock identifier.
package carryover

import (
	"fmt"

	"github.com/lherron/stockbook/internal/domain"
	"github.com/lherron/stockbook/internal/tables"
)

// Resolve reads a branch's current working table and returns its mutable
// annotation fields keyed by trimmed StockID.
//
// Rows with a blank StockID are skipped. If the working table contains
// duplicate identifiers, the later row in scan order wins. A missing
// working table is the expected state for a brand-new branch and yields an
// empty map, not an error.
func Resolve(q tables.Queryer, branch domain.Branch) (map[string]domain.CarryoverEntry, error) {
	exists, err := tables.Exists(q, branch.TabName)
	if err != nil {
		return nil, err
	}
	if !exists {
		return map[string]domain.CarryoverEntry{}, nil
	}

	rows, err := tables.ReadRows(q, branch.TabName)
	if err != nil {
		return nil, fmt.Errorf("failed to read working table for branch %s: %w", branch.Key, err)
	}

	entries := make(map[string]domain.CarryoverEntry, len(rows))
	for _, rec := range rows {
		sid := rec.StockID()
		if sid == "" {
			continue
		}
		entries[sid] = domain.CarryoverEntry{
			Due:   rec.Due(),
			Notes: rec.Notes(),
		}
	}

	return entries, nil
}
