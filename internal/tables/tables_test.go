package tables

import (
	"database/sql"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/lherron/stockbook/internal/domain"
)

const templateDDL = `
	CREATE TABLE record_template (
		stock_id TEXT NOT NULL DEFAULT '',
		branch TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		type TEXT NOT NULL DEFAULT '',
		serial TEXT NOT NULL DEFAULT '',
		manufacturer TEXT NOT NULL DEFAULT '',
		model TEXT NOT NULL DEFAULT '',
		overdue TEXT NOT NULL DEFAULT '',
		due TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT ''
	);
`

func createTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	// In-memory SQLite databases are per-connection.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec(templateDDL); err != nil {
		t.Fatalf("failed to create template: %v", err)
	}

	return db
}

func TestExists(t *testing.T) {
	db := createTestDB(t)

	exists, err := Exists(db, "record_template")
	if err != nil || !exists {
		t.Errorf("expected template to exist (exists=%v, err=%v)", exists, err)
	}

	exists, err = Exists(db, "nope")
	if err != nil || exists {
		t.Errorf("expected missing table (exists=%v, err=%v)", exists, err)
	}
}

func TestCloneFromTemplate(t *testing.T) {
	db := createTestDB(t)

	if err := CloneFromTemplate(db, "record_template", "West Plains"); err != nil {
		t.Fatalf("clone failed: %v", err)
	}

	exists, err := Exists(db, "West Plains")
	if err != nil || !exists {
		t.Fatalf("cloned table missing (exists=%v, err=%v)", exists, err)
	}

	// The clone is empty but has the full column layout.
	rows, err := ReadRows(db, "West Plains")
	if err != nil {
		t.Fatalf("failed to read clone: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("expected empty clone, got %d rows", len(rows))
	}
}

func TestCloneFromTemplateMissing(t *testing.T) {
	db := createTestDB(t)

	err := CloneFromTemplate(db, "no_such_template", "dest")

	var notFound *domain.TemplateNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected TemplateNotFoundError, got %v", err)
	}
	if notFound.Table != "no_such_template" {
		t.Errorf("unexpected table in error: %q", notFound.Table)
	}
}

func TestWriteAndReadRowsPreserveOrder(t *testing.T) {
	db := createTestDB(t)
	if err := CloneFromTemplate(db, "record_template", "Springfield"); err != nil {
		t.Fatalf("clone failed: %v", err)
	}

	records := []domain.Record{
		{domain.FieldStockID: "3", domain.FieldDue: "Overdue"},
		{domain.FieldStockID: "1", domain.FieldNotes: "note"},
		{domain.FieldStockID: "2"},
	}
	if err := WriteRows(db, "Springfield", records); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	got, err := ReadRows(db, "Springfield")
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(got))
	}

	want := []string{"3", "1", "2"}
	for i, rec := range got {
		if rec.StockID() != want[i] {
			t.Fatalf("row %d: got %q, want %q", i, rec.StockID(), want[i])
		}
	}
	if got[0].Due() != "Overdue" || got[1].Notes() != "note" {
		t.Errorf("field values not preserved: %v", got)
	}
}

func TestCopyKeepsRowsAndOrder(t *testing.T) {
	db := createTestDB(t)
	if err := CloneFromTemplate(db, "record_template", "src"); err != nil {
		t.Fatalf("clone failed: %v", err)
	}

	records := []domain.Record{
		{domain.FieldStockID: "b"},
		{domain.FieldStockID: "a"},
	}
	if err := WriteRows(db, "src", records); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	if err := Copy(db, "src", "dst"); err != nil {
		t.Fatalf("copy failed: %v", err)
	}

	got, err := ReadRows(db, "dst")
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(got) != 2 || got[0].StockID() != "b" || got[1].StockID() != "a" {
		t.Errorf("copy mangled rows: %v", got)
	}
}

func TestCopyRefusesExistingDestination(t *testing.T) {
	db := createTestDB(t)
	if err := CloneFromTemplate(db, "record_template", "src"); err != nil {
		t.Fatalf("clone failed: %v", err)
	}

	if err := Copy(db, "src", "record_template"); err == nil {
		t.Error("expected error copying onto an existing table")
	}
}

func TestQuoteIdent(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Springfield", `"Springfield"`},
		{"West Plains", `"West Plains"`},
		{`odd"name`, `"odd""name"`},
		{"Archive::Springfield::2026-08-30::1415", `"Archive::Springfield::2026-08-30::1415"`},
	}
	for _, c := range cases {
		if got := QuoteIdent(c.in); got != c.want {
			t.Errorf("QuoteIdent(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
