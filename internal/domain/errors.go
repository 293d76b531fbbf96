package domain

import (
	"errors"
	"fmt"
)

// ErrSourceNotFound is returned by archive snapshot when the branch has no
// working table to archive. Callers must treat it as "nothing to do", not
// as a failure.
var ErrSourceNotFound = errors.New("no working table to archive")

// MissingColumnError indicates the ingested record set lacks a required
// column entirely. Fatal for the whole run: no branch is touched.
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("required column %q missing from uploaded record set", e.Column)
}

// TemplateNotFoundError indicates the configured template table does not
// exist. Fatal for the whole run: no working table can be rebuilt without it.
type TemplateNotFoundError struct {
	Table string
}

func (e *TemplateNotFoundError) Error() string {
	return fmt.Sprintf("template table %q not found", e.Table)
}

// UnknownBranchError indicates a branch key that has no matching entry in
// the configured branch set.
type UnknownBranchError struct {
	Key string
}

func (e *UnknownBranchError) Error() string {
	return fmt.Sprintf("branch %q not present in configuration", e.Key)
}

// BranchSyncError wraps a per-branch pipeline failure with the branch key
// and the step at which it occurred. Every user-visible branch failure
// passes through this type.
type BranchSyncError struct {
	Branch string
	Step   string
	Err    error
}

func (e *BranchSyncError) Error() string {
	return fmt.Sprintf("branch %s: %s failed: %v", e.Branch, e.Step, e.Err)
}

func (e *BranchSyncError) Unwrap() error {
	return e.Err
}
