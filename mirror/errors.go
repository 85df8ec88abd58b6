package mirror

import "github.com/openmirror/landingzone/pkg/errors"

// Package-specific error codes for the mirror writer and janitor
var (
	// ErrTableNotFound is terminal: the caller must create the table
	// before requesting data files.
	ErrTableNotFound = errors.MustNewCode("mirror.table_not_found")

	// ErrInvalidMetadata covers a missing or malformed key-column
	// descriptor, and attempts to create one without key columns.
	ErrInvalidMetadata = errors.MustNewCode("mirror.invalid_metadata")

	ErrInvalidTableID   = errors.MustNewCode("mirror.invalid_table_id")
	ErrScanFailed       = errors.MustNewCode("mirror.scan_failed")
	ErrWriteFailed      = errors.MustNewCode("mirror.write_failed")
	ErrDiscardFailed    = errors.MustNewCode("mirror.discard_failed")
	ErrFileClosed       = errors.MustNewCode("mirror.file_closed")
	ErrCleanupFailed    = errors.MustNewCode("mirror.cleanup_failed")
	ErrSequenceOverflow = errors.MustNewCode("mirror.sequence_overflow")
)
