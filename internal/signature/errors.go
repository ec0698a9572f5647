package signature

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedRow marks a signature table row that cannot be decoded.
	ErrMalformedRow = errors.New("malformed signature row")
	// ErrUnknownLabel is returned when a label has no row in the table.
	ErrUnknownLabel = errors.New("unknown signature label")
)

// ValidationError describes a malformed row in the persisted table. Loading
// stops at the first one so no row is ever silently dropped or half-read.
type ValidationError struct {
	Path   string
	Line   int
	Label  string
	Reason string
}

func (e *ValidationError) Error() string {
	where := e.Path
	if e.Line > 0 {
		where = fmt.Sprintf("%s:%d", e.Path, e.Line)
	}
	if e.Label != "" {
		return fmt.Sprintf("%s: %s: label %q: %s", ErrMalformedRow, where, e.Label, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", ErrMalformedRow, where, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrMalformedRow }
