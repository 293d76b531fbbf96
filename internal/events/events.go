// Package events appends sync and restore outcomes to the run log.
package events

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Writer handles writing entries to the run log
type Writer struct {
	db *sql.DB
}

// NewWriter creates a new run log writer
func NewWriter(db *sql.DB) *Writer {
	return &Writer{db: db}
}

// Entry is one row of the run log.
type Entry struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	RunID     string    `json:"run_id"`
	BranchKey *string   `json:"branch_key,omitempty"`
	EventType string    `json:"event_type"`
	Payload   *string   `json:"payload,omitempty"`
}

// Log writes an entry to the run log. The payload, if non-nil, is
// marshalled to JSON.
func (w *Writer) Log(tx *sql.Tx, runID, branchKey, eventType string, payload any) error {
	var payloadStr *string
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal run log payload: %w", err)
		}
		s := string(data)
		payloadStr = &s
	}

	var branch *string
	if branchKey != "" {
		branch = &branchKey
	}

	query := `
		INSERT INTO run_log (run_id, branch_key, event_type, payload)
		VALUES (?, ?, ?, ?)
	`

	var err error
	if tx != nil {
		_, err = tx.Exec(query, runID, branch, eventType, payloadStr)
	} else {
		_, err = w.db.Exec(query, runID, branch, eventType, payloadStr)
	}
	if err != nil {
		return fmt.Errorf("failed to write run log entry: %w", err)
	}

	return nil
}

// Recent returns the most recent run log entries, newest first.
func (w *Writer) Recent(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := w.db.Query(`
		SELECT id, timestamp, run_id, branch_key, event_type, payload
		FROM run_log
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query run log: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var ts string
		if err := rows.Scan(&e.ID, &ts, &e.RunID, &e.BranchKey, &e.EventType, &e.Payload); err != nil {
			return nil, fmt.Errorf("failed to scan run log entry: %w", err)
		}
		if t, perr := time.Parse("2006-01-02T15:04:05Z", ts); perr == nil {
			e.Timestamp = t
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating run log: %w", err)
	}

	return entries, nil
}
