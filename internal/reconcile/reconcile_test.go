package reconcile

import (
	"testing"

	"github.com/lherron/stockbook/internal/domain"
)

func record(stockID, branch, due, notes string) domain.Record {
	return domain.Record{
		domain.FieldStockID: stockID,
		domain.FieldBranch:  branch,
		domain.FieldDue:     due,
		domain.FieldNotes:   notes,
	}
}

func TestMergeCarryoverWinsVerbatim(t *testing.T) {
	incoming := []domain.Record{
		record("100", "Springfield", "Scheduled", "from upload"),
	}
	carry := map[string]domain.CarryoverEntry{
		"100": {Due: "Overdue", Notes: "call vendor"},
	}

	res := Merge(incoming, carry, nil)

	if len(res.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(res.Rows))
	}
	if got := res.Rows[0].Due(); got != "Overdue" {
		t.Errorf("expected carryover Due, got %q", got)
	}
	if got := res.Rows[0].Notes(); got != "call vendor" {
		t.Errorf("expected carryover Notes, got %q", got)
	}
	if res.Carried != 1 {
		t.Errorf("expected Carried=1, got %d", res.Carried)
	}
}

func TestMergeCarryoverEmptyValuesStillWin(t *testing.T) {
	// An existing entry's values are used verbatim, even when empty: the
	// user may have deliberately cleared an annotation.
	incoming := []domain.Record{
		record("100", "Springfield", "Scheduled", "upload notes"),
	}
	carry := map[string]domain.CarryoverEntry{
		"100": {Due: "", Notes: ""},
	}

	res := Merge(incoming, carry, nil)

	if got := res.Rows[0].Due(); got != "" {
		t.Errorf("expected empty Due from carryover, got %q", got)
	}
	if got := res.Rows[0].Notes(); got != "" {
		t.Errorf("expected empty Notes from carryover, got %q", got)
	}
}

func TestMergeNoCarryoverUsesIncoming(t *testing.T) {
	incoming := []domain.Record{
		record("200", "Springfield", "Scheduled", "fresh"),
	}

	res := Merge(incoming, map[string]domain.CarryoverEntry{}, nil)

	if got := res.Rows[0].Due(); got != "Scheduled" {
		t.Errorf("expected incoming Due, got %q", got)
	}
	if res.Carried != 0 {
		t.Errorf("expected Carried=0, got %d", res.Carried)
	}
}

func TestMergeDescriptiveFieldsFromIncoming(t *testing.T) {
	incoming := []domain.Record{{
		domain.FieldStockID:      "100",
		domain.FieldBranch:       "Springfield",
		domain.FieldDescription:  "hoist, chain",
		domain.FieldManufacturer: "Acme",
		domain.FieldDue:          "Scheduled",
	}}
	carry := map[string]domain.CarryoverEntry{
		"100": {Due: "Overdue", Notes: "x"},
	}

	res := Merge(incoming, carry, nil)

	if got := res.Rows[0][domain.FieldDescription]; got != "hoist, chain" {
		t.Errorf("description should come from incoming, got %q", got)
	}
	if got := res.Rows[0][domain.FieldManufacturer]; got != "Acme" {
		t.Errorf("manufacturer should come from incoming, got %q", got)
	}
}

func TestMergeExclusionAfterCarryover(t *testing.T) {
	// Prior table marked the record Removed; the re-upload has a blank
	// Due. The carryover value merges forward and then triggers exclusion.
	incoming := []domain.Record{
		record("100", "Springfield", "", ""),
	}
	carry := map[string]domain.CarryoverEntry{
		"100": {Due: "Removed"},
	}

	res := Merge(incoming, carry, []string{"Removed"})

	if len(res.Rows) != 0 {
		t.Fatalf("expected record to be excluded, got %d rows", len(res.Rows))
	}
	if res.Excluded != 1 {
		t.Errorf("expected Excluded=1, got %d", res.Excluded)
	}
}

func TestMergeExclusionExactCaseSensitive(t *testing.T) {
	incoming := []domain.Record{
		record("1", "B", "removed", ""),
		record("2", "B", "Removed", ""),
		record("3", "B", " Removed ", ""),
		record("4", "B", "Removed!", ""),
	}

	res := Merge(incoming, nil, []string{"Removed"})

	if len(res.Rows) != 2 {
		t.Fatalf("expected 2 surviving rows, got %d", len(res.Rows))
	}
	// "removed" (case differs) and "Removed!" (no exact match) survive;
	// " Removed " is trimmed before comparison and excluded.
	if res.Rows[0].StockID() != "1" || res.Rows[1].StockID() != "4" {
		t.Errorf("unexpected survivors: %v, %v", res.Rows[0].StockID(), res.Rows[1].StockID())
	}
}

func TestMergeFilterIdempotent(t *testing.T) {
	incoming := []domain.Record{
		record("1", "B", "Removed", ""),
		record("2", "B", "Scheduled", ""),
		record("3", "B", "Sold", ""),
	}
	exclusions := []string{"Removed", "Sold"}

	first := Merge(incoming, nil, exclusions)
	second := Merge(first.Rows, nil, exclusions)

	if len(second.Rows) != len(first.Rows) {
		t.Fatalf("re-filtering changed row count: %d != %d", len(second.Rows), len(first.Rows))
	}
	if second.Excluded != 0 {
		t.Errorf("re-filtering excluded %d rows, want 0", second.Excluded)
	}
}

func TestMergeSkipsBlankStockID(t *testing.T) {
	incoming := []domain.Record{
		record("", "B", "Scheduled", ""),
		record("  ", "B", "Scheduled", ""),
		record("9", "B", "Scheduled", ""),
	}

	res := Merge(incoming, nil, nil)

	if len(res.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(res.Rows))
	}
	if res.Malformed != 2 {
		t.Errorf("expected Malformed=2, got %d", res.Malformed)
	}
}

func TestMergeTrimsStockIDForLookup(t *testing.T) {
	incoming := []domain.Record{
		record("  100 ", "B", "", ""),
	}
	carry := map[string]domain.CarryoverEntry{
		"100": {Due: "Overdue"},
	}

	res := Merge(incoming, carry, nil)

	if got := res.Rows[0].Due(); got != "Overdue" {
		t.Errorf("whitespace in StockID broke the carryover lookup, Due=%q", got)
	}
}

func TestMergeProjectsUnknownFieldsAway(t *testing.T) {
	rec := record("1", "B", "Scheduled", "")
	rec["uploader_internal"] = "junk"

	res := Merge([]domain.Record{rec}, nil, nil)

	if _, ok := res.Rows[0]["uploader_internal"]; ok {
		t.Error("unknown incoming field leaked into output row")
	}
}

func TestMergePreservesInputOrder(t *testing.T) {
	incoming := []domain.Record{
		record("3", "B", "", ""),
		record("1", "B", "", ""),
		record("2", "B", "", ""),
	}

	res := Merge(incoming, nil, nil)

	want := []string{"3", "1", "2"}
	for i, rec := range res.Rows {
		if rec.StockID() != want[i] {
			t.Fatalf("row %d: got %q, want %q", i, rec.StockID(), want[i])
		}
	}
}
