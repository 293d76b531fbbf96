// Package tables provides the working-table primitives shared by the
// carryover resolver, the archive store, and the sync orchestrator: table
// existence checks, ordered row reads and writes, and template cloning.
//
// Working tables and archives are plain SQLite tables. Row order is
// significant for output layout, so reads always order by rowid and writes
// insert in slice order.
package tables

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/lherron/stockbook/internal/domain"
)

// Queryer is the subset of database operations the read paths need. Both
// *sql.DB and *sql.Tx satisfy it, so callers choose their own transaction
// boundaries.
type Queryer interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// QuoteIdent quotes a table name for safe use in DDL and DML. Branch tab
// names and archive names are configuration- and timestamp-derived, but
// they may contain characters (spaces, colons) that require quoting.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// Exists reports whether a table with the given name exists.
func Exists(q Queryer, name string) (bool, error) {
	var count int
	err := q.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name = ?`, name).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check table %q: %w", name, err)
	}
	return count > 0, nil
}

// CloneFromTemplate creates an empty table named dest whose schema is
// cloned from the template table. The destination must not already exist.
// Returns TemplateNotFoundError if the template table is missing.
func CloneFromTemplate(q Queryer, template, dest string) error {
	var ddl sql.NullString
	err := q.QueryRow(`SELECT sql FROM sqlite_master WHERE type='table' AND name = ?`, template).Scan(&ddl)
	if err == sql.ErrNoRows {
		return &domain.TemplateNotFoundError{Table: template}
	}
	if err != nil {
		return fmt.Errorf("failed to read template schema: %w", err)
	}
	if !ddl.Valid || ddl.String == "" {
		return &domain.TemplateNotFoundError{Table: template}
	}

	// Rewrite the stored DDL to target the destination name. Everything
	// from the opening parenthesis onward is the column layout.
	open := strings.Index(ddl.String, "(")
	if open < 0 {
		return fmt.Errorf("template table %q has unusable schema: %q", template, ddl.String)
	}
	create := "CREATE TABLE " + QuoteIdent(dest) + " " + ddl.String[open:]

	if _, err := q.Exec(create); err != nil {
		return fmt.Errorf("failed to clone template %q into %q: %w", template, dest, err)
	}
	return nil
}

// ReadRows reads all rows of a table in insertion order, projected onto the
// canonical field set.
func ReadRows(q Queryer, name string) ([]domain.Record, error) {
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY rowid",
		strings.Join(domain.FieldOrder, ", "), QuoteIdent(name))
	rows, err := q.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to read table %q: %w", name, err)
	}
	defer rows.Close()

	var out []domain.Record
	for rows.Next() {
		values := make([]sql.NullString, len(domain.FieldOrder))
		dest := make([]any, len(values))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan row from %q: %w", name, err)
		}

		rec := make(domain.Record, len(domain.FieldOrder))
		for i, f := range domain.FieldOrder {
			if values[i].Valid {
				rec[f] = values[i].String
			}
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows of %q: %w", name, err)
	}

	return out, nil
}

// WriteRows appends records to a table in slice order. The table must
// already exist with the canonical column layout.
func WriteRows(q Queryer, name string, records []domain.Record) error {
	if len(records) == 0 {
		return nil
	}

	placeholders := strings.TrimRight(strings.Repeat("?, ", len(domain.FieldOrder)), ", ")
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		QuoteIdent(name), strings.Join(domain.FieldOrder, ", "), placeholders)

	for _, rec := range records {
		args := make([]any, len(domain.FieldOrder))
		for i, f := range domain.FieldOrder {
			args[i] = rec[f]
		}
		if _, err := q.Exec(query, args...); err != nil {
			return fmt.Errorf("failed to write row to %q: %w", name, err)
		}
	}
	return nil
}

// Drop removes a table. No error if it does not exist.
func Drop(q Queryer, name string) error {
	if _, err := q.Exec("DROP TABLE IF EXISTS " + QuoteIdent(name)); err != nil {
		return fmt.Errorf("failed to drop table %q: %w", name, err)
	}
	return nil
}

// Copy duplicates the source table's rows into a brand-new table, keeping
// column layout and row order. Fails if dest already exists.
func Copy(q Queryer, src, dest string) error {
	query := fmt.Sprintf("CREATE TABLE %s AS SELECT * FROM %s ORDER BY rowid",
		QuoteIdent(dest), QuoteIdent(src))
	if _, err := q.Exec(query); err != nil {
		return fmt.Errorf("failed to copy table %q to %q: %w", src, dest, err)
	}
	return nil
}
