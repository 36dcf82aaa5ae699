// Package apperr defines the error taxonomy shared across the export pipeline.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedOutline marks a structural parse failure. Fatal: the run
	// aborts before any output is produced.
	ErrMalformedOutline = errors.New("malformed outline")

	// ErrDuplicateExportTarget marks two subtrees resolving to the same
	// output path. Fatal: detected before any write happens.
	ErrDuplicateExportTarget = errors.New("duplicate export target")

	// ErrInvalidDate marks a date property that does not parse. Fatal to
	// the record only; collected and reported in the run summary.
	ErrInvalidDate = errors.New("invalid date format")

	// ErrWriteFailure marks a per-record I/O failure. Collected, non-fatal
	// to the batch.
	ErrWriteFailure = errors.New("write failure")
)

// Malformed wraps ErrMalformedOutline with the offending source line.
func Malformed(line int, format string, args ...any) error {
	return fmt.Errorf("%w: line %d: %s", ErrMalformedOutline, line, fmt.Sprintf(format, args...))
}
