// Package domain defines the record model, branch configuration entities,
// and the error taxonomy shared across the reconciliation engine.
package domain

import (
	"strings"
)

// Canonical field names for a maintenance-service record. These double as
// the column names of every working table and archive table.
const (
	FieldStockID      = "stock_id"
	FieldBranch       = "branch"
	FieldDescription  = "description"
	FieldType         = "type"
	FieldSerial       = "serial"
	FieldManufacturer = "manufacturer"
	FieldModel        = "model"
	FieldOverdue      = "overdue"
	FieldDue          = "due"
	FieldNotes        = "notes"
)

// FieldOrder is the fixed output column order for working tables.
// Order matters for table layout only, never for identity or merging.
var FieldOrder = []string{
	FieldStockID,
	FieldBranch,
	FieldDescription,
	FieldType,
	FieldSerial,
	FieldManufacturer,
	FieldModel,
	FieldOverdue,
	FieldDue,
	FieldNotes,
}

// Record is one uploaded or working-table row: a mapping from field names
// to scalar values. Unknown keys may be present on ingested records and are
// ignored by the reconciler's output projection.
type Record map[string]string

// StockID returns the record's identifier, trimmed. Identifier trimming
// happens here so the carryover and incoming sides normalize identically.
func (r Record) StockID() string {
	return strings.TrimSpace(r[FieldStockID])
}

// BranchKey returns the record's branch classification key, trimmed.
func (r Record) BranchKey() string {
	return strings.TrimSpace(r[FieldBranch])
}

// Due returns the record's mutable status field.
func (r Record) Due() string {
	return r[FieldDue]
}

// Notes returns the record's mutable free-text field.
func (r Record) Notes() string {
	return r[FieldNotes]
}

// Clone returns a copy of the record restricted to the canonical field set,
// in other words the record as it would appear in a working table.
func (r Record) Clone() Record {
	out := make(Record, len(FieldOrder))
	for _, f := range FieldOrder {
		out[f] = r[f]
	}
	return out
}

// Branch is one configured dataset partition with its own working table.
// The branch set is static configuration, never derived from data.
type Branch struct {
	Key     string `yaml:"key" json:"key"`
	TabName string `yaml:"tab_name" json:"tab_name"`
}

// CarryoverEntry holds the two mutable annotation fields preserved across
// re-ingestion, keyed by StockID.
type CarryoverEntry struct {
	Due   string `json:"due"`
	Notes string `json:"notes"`
}
