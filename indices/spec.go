package indices

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedSpec is returned by Spec.Validate
var ErrMalformedSpec = errors.New("malformed index specification")

// Relationship says how many records an index key may map to
type Relationship int

// Relationship values. The zero Relationship is invalid.
const (
	OneToOne Relationship = iota + 1
	OneToMany
)

func (r Relationship) String() string {
	switch r {
	case OneToOne:
		return "ONE_TO_ONE"
	case OneToMany:
		return "ONE_TO_MANY"
	}
	return fmt.Sprintf("Relationship(%d)", int(r))
}

// ParseRelationship parses "ONE_TO_ONE" or "ONE_TO_MANY". Case is ignored and
// dashes may stand for underscores.
func ParseRelationship(s string) (Relationship, error) {
	switch strings.ReplaceAll(strings.ToUpper(s), "-", "_") {
	case "ONE_TO_ONE":
		return OneToOne, nil
	case "ONE_TO_MANY":
		return OneToMany, nil
	}
	return 0, fmt.Errorf("%w: unknown relationship %q", ErrMalformedSpec, s)
}

// Spec specifies an index on a single record field.
//
// Name is optional: an anonymous index can only be reached by the handle
// returned at registration.
type Spec struct {
	Name         string
	KeyField     string
	Relationship Relationship
}

// Validate checks that the key field and relationship are set
func (s Spec) Validate() error {
	if s.KeyField == "" {
		return fmt.Errorf("%w: missing key field", ErrMalformedSpec)
	}
	switch s.Relationship {
	case OneToOne, OneToMany:
	case 0:
		return fmt.Errorf("%w: missing relationship for key field %s", ErrMalformedSpec, s.KeyField)
	default:
		return fmt.Errorf("%w: unknown relationship %s for key field %s", ErrMalformedSpec, s.Relationship, s.KeyField)
	}
	return nil
}

func (s Spec) String() string {
	name := s.Name
	if name == "" {
		name = "<anonymous>"
	}
	return fmt.Sprintf("%s(%s, %s)", name, s.KeyField, s.Relationship)
}
