package record

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

type kind byte

// Kinds in ascending key order
const (
	kindAbsent kind = iota
	kindBool
	kindInt
	kindFloat
	kindString
	kindComposite
)

// Key is the canonical, comparable form of an attribute value. It is what
// indices are keyed by.
//
// Numbers are canonicalised by value: int 1, int64(1), float64(1) and
// json.Number("1") all produce the same Key. All NaNs produce one Key, equal
// to itself and ordered before every other number. Named types are reduced to their
// underlying kind. Maps, slices and structures are keyed by their JSON
// encoding.
type Key struct {
	kind kind
	str  string
	num  int64
	flt  float64
}

// Absent is the key of a missing or nil attribute
var Absent = Key{}

// KeyOf returns the canonical key for the value
func KeyOf(v any) Key {
	switch v := v.(type) {
	case nil:
		return Absent
	case Key:
		return v
	case bool:
		return boolKey(v)
	case string:
		return Key{kind: kindString, str: v}
	case int:
		return Key{kind: kindInt, num: int64(v)}
	case int64:
		return Key{kind: kindInt, num: v}
	case int32:
		return Key{kind: kindInt, num: int64(v)}
	case float64:
		return floatKey(v)
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return Key{kind: kindInt, num: i}
		}
		if f, err := v.Float64(); err == nil {
			return floatKey(f)
		}
		return Key{kind: kindString, str: v.String()}
	}
	return reflectKey(reflect.ValueOf(v))
}

func boolKey(b bool) Key {
	if b {
		return Key{kind: kindBool, num: 1}
	}
	return Key{kind: kindBool}
}

// nanKey keeps flt zero so that it compares equal to itself
var nanKey = Key{kind: kindFloat, str: "NaN"}

func floatKey(f float64) Key {
	if math.IsNaN(f) {
		return nanKey
	}
	if f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 {
		return Key{kind: kindInt, num: int64(f)}
	}
	return Key{kind: kindFloat, flt: f}
}

func reflectKey(v reflect.Value) Key {
	switch v.Kind() {
	case reflect.Bool:
		return boolKey(v.Bool())
	case reflect.String:
		return Key{kind: kindString, str: v.String()}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Key{kind: kindInt, num: v.Int()}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := v.Uint()
		if u > math.MaxInt64 {
			return Key{kind: kindFloat, flt: float64(u)}
		}
		return Key{kind: kindInt, num: int64(u)}
	case reflect.Float32, reflect.Float64:
		return floatKey(v.Float())
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return Absent
		}
		return reflectKey(v.Elem())
	}
	b, err := json.Marshal(v.Interface())
	if err != nil {
		return Key{kind: kindComposite, str: fmt.Sprintf("%#v", v.Interface())}
	}
	return Key{kind: kindComposite, str: string(b)}
}

// Candidates returns the keys a textual value could stand for: the string
// itself, followed by its numeric or boolean reading where one exists.
// Useful for resolving keys typed on a command line or in a URL.
func Candidates(text string) []Key {
	keys := []Key{{kind: kindString, str: text}}
	if i, err := strconv.ParseInt(text, 10, 64); err == nil {
		return append(keys, Key{kind: kindInt, num: i})
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		return append(keys, floatKey(f))
	}
	if b, err := strconv.ParseBool(text); err == nil {
		return append(keys, boolKey(b))
	}
	return keys
}

// IsAbsent reports whether the key stands for a missing attribute
func (k Key) IsAbsent() bool {
	return k.kind == kindAbsent
}

// Text returns the value of a string key
func (k Key) Text() (string, bool) {
	return k.str, k.kind == kindString
}

// Value returns the key as a plain value: nil, bool, int64, float64 or
// string. Composite keys return their JSON encoding.
func (k Key) Value() any {
	switch k.kind {
	case kindBool:
		return k.num != 0
	case kindInt:
		return k.num
	case kindFloat:
		if k == nanKey {
			return math.NaN()
		}
		return k.flt
	case kindString, kindComposite:
		return k.str
	}
	return nil
}

// String formats the key for humans
func (k Key) String() string {
	switch k.kind {
	case kindAbsent:
		return "<absent>"
	case kindBool:
		return strconv.FormatBool(k.num != 0)
	case kindInt:
		return strconv.FormatInt(k.num, 10)
	case kindFloat:
		if k == nanKey {
			return k.str
		}
		return strconv.FormatFloat(k.flt, 'g', -1, 64)
	}
	return k.str
}

// MarshalText implements encoding.TextMarshaler so that keys can be used as
// JSON object keys
func (k Key) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Compare orders keys totally: absent, booleans, numbers, strings, composite
// values. Numbers compare by value, NaN first. Returns -1, 0 or 1.
func (k Key) Compare(other Key) int {
	kr, or := k.rank(), other.rank()
	if kr != or {
		return compareInts(int64(kr), int64(or))
	}
	switch k.kind {
	case kindAbsent:
		return 0
	case kindBool:
		return compareInts(k.num, other.num)
	case kindInt, kindFloat:
		if kn, on := k == nanKey, other == nanKey; kn || on {
			switch {
			case kn && on:
				return 0
			case kn:
				return -1
			}
			return 1
		}
		if k.kind == kindInt && other.kind == kindInt {
			return compareInts(k.num, other.num)
		}
		return compareFloats(k.float(), other.float())
	}
	return strings.Compare(k.str, other.str)
}

func (k Key) rank() kind {
	if k.kind == kindFloat {
		return kindInt
	}
	return k.kind
}

func (k Key) float() float64 {
	if k.kind == kindInt {
		return float64(k.num)
	}
	return k.flt
}

func compareInts(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareFloats(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
