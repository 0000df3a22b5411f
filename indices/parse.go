package indices

import (
	"fmt"
	"strings"
)

// ParseSpec parses the command-line form of an index specification:
//
//	name=field         ONE_TO_ONE index
//	name=field:many    ONE_TO_MANY index
//	name=field:one     ONE_TO_ONE index
//
// The relationship suffix also accepts the full names, like "field:ONE_TO_MANY".
func ParseSpec(s string) (Spec, error) {
	name, rest, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		return Spec{}, fmt.Errorf("%w: %q is not name=field[:relationship]", ErrMalformedSpec, s)
	}
	spec := Spec{Name: name, KeyField: rest, Relationship: OneToOne}
	if field, rel, ok := strings.Cut(rest, ":"); ok {
		spec.KeyField = field
		switch strings.ToLower(rel) {
		case "one":
		case "many":
			spec.Relationship = OneToMany
		default:
			r, err := ParseRelationship(rel)
			if err != nil {
				return Spec{}, err
			}
			spec.Relationship = r
		}
	}
	if err := spec.Validate(); err != nil {
		return Spec{}, err
	}
	return spec, nil
}
