package store

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every error returned by a Store for one of these conditions is an
// *Error matching its kind under errors.Is.
var (
	// ErrDuplicateKey is returned by Add for an id that is already present
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrNotFound is returned when a record or a required index entry does not exist
	ErrNotFound = errors.New("not found")

	// ErrUnknownIndex is returned for index names and handles never registered
	ErrUnknownIndex = errors.New("unknown index")

	// ErrMalformedIndexSpec is returned for invalid or conflicting index specifications
	ErrMalformedIndexSpec = errors.New("malformed index specification")

	// ErrMissingKeyField is returned for records lacking a truthy key field value
	ErrMissingKeyField = errors.New("missing key field")
)

// Error describes a failed store operation
type Error struct {
	Kind     error  // one of the Err* kinds
	Resource string // what the records are, e.g. "staff member"
	Index    string // index name, if the failure concerns an index
	Field    string // field name, if any
	Value    any    // offending id, key or field value
	Advice   string // what to do instead, e.g. "try add"
	Err      error  // underlying cause, if any
}

func (e *Error) Error() string {
	var msg string
	switch e.Kind {
	case ErrDuplicateKey:
		msg = fmt.Sprintf("%s with id '%v' already exists", e.Resource, e.Value)
	case ErrNotFound:
		if e.Index != "" {
			msg = fmt.Sprintf("did not find %s for key '%v' in index '%s'", e.Resource, e.Value, e.Index)
		} else {
			msg = fmt.Sprintf("no such %s with id '%v' found", e.Resource, e.Value)
		}
	case ErrUnknownIndex:
		if e.Index != "" {
			msg = fmt.Sprintf("no such index '%s' found for %s", e.Index, e.Resource)
		} else {
			msg = fmt.Sprintf("could not find matching index for %s", e.Resource)
		}
	case ErrMalformedIndexSpec:
		msg = fmt.Sprintf("malformed index specification for %s", e.Resource)
		if e.Index != "" {
			msg += fmt.Sprintf(" (index '%s')", e.Index)
		}
	case ErrMissingKeyField:
		msg = fmt.Sprintf("%s key field '%s' value '%v' is non-truthy", e.Resource, e.Field, e.Value)
	default:
		msg = fmt.Sprintf("%s: %v", e.Resource, e.Kind)
	}
	var b strings.Builder
	b.WriteString(msg)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	if e.Advice != "" {
		b.WriteString("; ")
		b.WriteString(e.Advice)
	}
	return b.String()
}

// Is matches the error kind
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}
