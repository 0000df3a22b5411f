package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// Record is a keyed set of attributes. Attribute values are plain data: nil,
// booleans, numbers, strings, and nested []any / map[string]any values.
//
// A Record is read through accessors that return copies of nested values, and
// changed only by deriving a new Record with With or Without. The zero Record
// has no attributes.
//
// Records constructed with Wrap, and the maps returned by Unwrap, share storage
// with the Record and must not be mutated.
type Record struct {
	data map[string]any
}

// New creates a Record from a deep copy of data
func New(data map[string]any) Record {
	return Record{data: cloneMap(data)}
}

// Wrap creates a Record that adopts data without copying it.
//
// The caller must not modify data (or anything reachable from it) afterwards.
// Intended for loaders that have just decoded the map themselves.
func Wrap(data map[string]any) Record {
	return Record{data: data}
}

// IsZero reports whether the record has no attributes
func (r Record) IsZero() bool {
	return len(r.data) == 0
}

// Len returns the number of attributes
func (r Record) Len() int {
	return len(r.data)
}

// Has reports whether the attribute is present (possibly with a nil value)
func (r Record) Has(field string) bool {
	_, ok := r.data[field]
	return ok
}

// Get returns a copy of the attribute value
func (r Record) Get(field string) (any, bool) {
	v, ok := r.data[field]
	if !ok {
		return nil, false
	}
	return Normalize(v), true
}

// Value returns a copy of the attribute value, or nil if it is absent
func (r Record) Value(field string) any {
	v, _ := r.Get(field)
	return v
}

// String returns the attribute formatted as a string. Absent and nil
// attributes produce "".
func (r Record) String(field string) string {
	switch v := r.data[field].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// Key returns the index key of the attribute value
func (r Record) Key(field string) Key {
	v, ok := r.data[field]
	if !ok {
		return Absent
	}
	return KeyOf(v)
}

// Truthy reports whether the attribute has a value other than absent, nil,
// false, zero, NaN or the empty string
func (r Record) Truthy(field string) bool {
	switch v := r.data[field].(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	default:
		k := KeyOf(v)
		switch k.kind {
		case kindInt:
			return k.num != 0
		case kindFloat:
			return k != nanKey && k.flt != 0
		}
		return true
	}
}

// With returns a new Record with the attribute set to a copy of value
func (r Record) With(field string, value any) Record {
	data := make(map[string]any, len(r.data)+1)
	for k, v := range r.data {
		data[k] = v
	}
	data[field] = Normalize(value)
	return Record{data: data}
}

// Without returns a new Record lacking the attribute
func (r Record) Without(field string) Record {
	if !r.Has(field) {
		return r
	}
	data := make(map[string]any, len(r.data))
	for k, v := range r.data {
		if k != field {
			data[k] = v
		}
	}
	return Record{data: data}
}

// Fields returns the attribute names in ascending order
func (r Record) Fields() []string {
	fields := make([]string, 0, len(r.data))
	for k := range r.data {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	return fields
}

// Data returns a deep copy of the attributes
func (r Record) Data() map[string]any {
	return cloneMap(r.data)
}

// Unwrap returns the underlying attribute map without copying.
//
// Unsafe: mutating the returned map changes the record, and every place the
// record has been shared with.
func (r Record) Unwrap() map[string]any {
	return r.data
}

// Clone returns a deep copy of the record
func (r Record) Clone() Record {
	return Record{data: cloneMap(r.data)}
}

// Equal reports whether two records hold equal attributes. Numbers compare by
// value regardless of their Go type.
func (r Record) Equal(other Record) bool {
	if len(r.data) != len(other.data) {
		return false
	}
	for k, v := range r.data {
		ov, ok := other.data[k]
		if !ok || !equalValues(v, ov) {
			return false
		}
	}
	return true
}

// MarshalJSON implements json.Marshaler
func (r Record) MarshalJSON() ([]byte, error) {
	if r.data == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(r.data)
}

// UnmarshalJSON implements json.Unmarshaler
func (r *Record) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var data map[string]any
	if err := dec.Decode(&data); err != nil {
		return err
	}
	r.data = cloneMap(data)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (r Record) MarshalYAML() (any, error) {
	if r.data == nil {
		return map[string]any{}, nil
	}
	return r.data, nil
}

// UnmarshalYAML implements yaml.Unmarshaler
func (r *Record) UnmarshalYAML(node *yaml.Node) error {
	var data map[string]any
	if err := node.Decode(&data); err != nil {
		return err
	}
	r.data = cloneMap(data)
	return nil
}

func equalValues(a, b any) bool {
	switch av := a.(type) {
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			ov, ok := bv[k]
			if !ok || !equalValues(v, ov) {
				return false
			}
		}
		return true
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !equalValues(av[i], bv[i]) {
				return false
			}
		}
		return true
	}
	return KeyOf(a) == KeyOf(b)
}
