package schema

import (
	"errors"
	"fmt"
)

// Error codes for fatal structural failures. The set is closed so
// callers can branch on the failure class programmatically.
const (
	CodeIDConflict    = "id_conflict"    // legacy id and $id disagree on one node
	CodeMalformedEnum = "malformed_enum" // enum with display names is not an ordered sequence
	CodeUnresolvedRef = "unresolved_ref" // a $ref survived into or past linking
)

// Error is a fatal structural failure tied to one schema node. These
// are deterministic: the same input fails the same way on every run,
// so callers should report, not retry.
type Error struct {
	Code   string
	File   string // originating document, supplied by the caller
	Detail string
	Node   *Schema
}

func (e *Error) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s in %s: %s", e.Code, e.File, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Detail)
}

// AsSchemaError extracts a structural *Error using errors.As.
func AsSchemaError(err error) (*Error, bool) {
	if err == nil {
		return nil, false
	}
	var se *Error
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
