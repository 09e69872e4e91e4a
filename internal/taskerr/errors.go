// Package taskerr defines the error-kind sum from spec.md §7. Every
// fallible operation in this module returns a plain Go error; callers
// that need to distinguish kinds use errors.Is against these sentinels
// (wrapped with fmt.Errorf("...: %w", ...) at the point of detection).
package taskerr

import "errors"

var (
	// ErrParse is a lexer/parser rejection: mismatched parens, malformed
	// uuid/id range, unknown attribute modifier. Fatal to the invocation.
	ErrParse = errors.New("parse error")

	// ErrValidation is a task failing spec.md §4.9. Fatal to the
	// mutation; no commit happens.
	ErrValidation = errors.New("validation error")

	// ErrNotFound is an id/uuid that resolves to no task.
	ErrNotFound = errors.New("not found")

	// ErrConflict is an add that would create a duplicate uuid.
	ErrConflict = errors.New("conflict")

	// ErrIO is a file unreadable/unwritable.
	ErrIO = errors.New("i/o error")

	// ErrSync is a merge inconsistency that cannot be auto-resolved.
	ErrSync = errors.New("sync error")
)

// Warning is a non-fatal diagnostic collected during a command and
// rendered as a footnote after the command's own output (spec.md §7).
type Warning struct {
	Message string
}

func (w Warning) Error() string { return w.Message }
