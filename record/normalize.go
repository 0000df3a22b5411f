package record

import "strings"

// Normalizer derives a record id from the value of the key field
type Normalizer func(value any) any

// Identity is the default Normalizer: the id is the key value itself
func Identity(value any) any {
	return value
}

// LowerCase is a Normalizer for email-like keys. Non-string values are passed
// through.
func LowerCase(value any) any {
	if s, ok := value.(string); ok {
		return strings.ToLower(s)
	}
	return value
}
