// Package partition groups an ingested record set by branch key.
package partition

import (
	"github.com/lherron/stockbook/internal/domain"
)

// Partition groups records by their branch classification key. The result
// contains one group per configured branch, present even when empty, with
// input order preserved inside each group. Records with a blank or
// unrecognized branch key are dropped without error.
//
// Returns MissingColumnError when a non-empty record set lacks the branch
// column entirely, detected from the first record. An empty record set is
// not an error and yields all-empty groups.
func Partition(records []domain.Record, branches []domain.Branch) (map[string][]domain.Record, error) {
	if len(records) > 0 {
		if _, ok := records[0][domain.FieldBranch]; !ok {
			return nil, &domain.MissingColumnError{Column: domain.FieldBranch}
		}
	}

	groups := make(map[string][]domain.Record, len(branches))
	for _, b := range branches {
		groups[b.Key] = []domain.Record{}
	}

	for _, rec := range records {
		key := rec.BranchKey()
		if key == "" {
			continue
		}
		if _, ok := groups[key]; !ok {
			// Unconfigured branch keys are silently dropped.
			continue
		}
		groups[key] = append(groups[key], rec)
	}

	return groups, nil
}
