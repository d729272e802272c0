package entity

import "errors"

var (
	// ErrDuplicateSource is returned when a document is submitted with a
	// source_id that already exists. No mutation occurs.
	ErrDuplicateSource = errors.New("source_id already exists")

	// ErrCompanyNotFound is returned when a query references an unknown
	// company_id.
	ErrCompanyNotFound = errors.New("company not found")

	// ErrVersionConflict is returned when a note write collides with an
	// existing (company_id, note_version) pair. This should be impossible
	// under correct per-company locking; the write fails hard rather than
	// silently overwriting.
	ErrVersionConflict = errors.New("analyst note version conflict")
)
