// Package reconcile merges carryover annotations into freshly ingested
// records and applies exclusion filtering. Merge is a pure function: it
// holds no state and never touches the database.
package reconcile

import (
	"strings"

	"github.com/lherron/stockbook/internal/domain"
)

// Result describes one branch's merge outcome.
type Result struct {
	// Rows is the final output row set in input order, projected onto the
	// canonical field layout.
	Rows []domain.Record

	// Carried counts records whose Due/Notes came from a carryover entry.
	Carried int

	// Excluded counts records dropped because their resolved Due matched
	// the exclusion set.
	Excluded int

	// Malformed counts records skipped for having a blank StockID.
	Malformed int
}

// Merge produces the final row set for one branch.
//
// For each incoming record, if a carryover entry exists for its StockID,
// the output's Due and Notes are the entry's values verbatim; otherwise
// they are the incoming record's own. All other fields always come from
// the incoming record: the upload is authoritative for descriptive fields.
//
// After merging, a record whose trimmed Due exactly matches a configured
// exclusion value (case-sensitive) is dropped from the output entirely.
// The filter is idempotent: re-merging the output yields the same set.
// Rows with a blank StockID are skipped as malformed.
func Merge(incoming []domain.Record, carry map[string]domain.CarryoverEntry, exclusions []string) Result {
	excluded := make(map[string]bool, len(exclusions))
	for _, v := range exclusions {
		excluded[v] = true
	}

	res := Result{Rows: make([]domain.Record, 0, len(incoming))}
	for _, rec := range incoming {
		sid := rec.StockID()
		if sid == "" {
			// Malformed upload row: records are keyed by StockID, a row
			// without one cannot participate in reconciliation.
			res.Malformed++
			continue
		}

		out := rec.Clone()

		if entry, ok := carry[sid]; ok {
			out[domain.FieldDue] = entry.Due
			out[domain.FieldNotes] = entry.Notes
			res.Carried++
		}

		if excluded[strings.TrimSpace(out[domain.FieldDue])] {
			res.Excluded++
			continue
		}

		res.Rows = append(res.Rows, out)
	}

	return res
}
