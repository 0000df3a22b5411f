package record

import (
	"encoding/json"
	"fmt"
	"reflect"
)

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	res := make(map[string]any, len(m))
	for k, v := range m {
		res[k] = Normalize(v)
	}
	return res
}

// Normalize returns a deep copy of v in the plain shapes a Record holds.
//
// Maps of any kind become map[string]any (non-string keys are formatted), slices
// and arrays become []any, json.Number becomes int64 or float64. Other values
// are copied structurally, keeping their type.
func Normalize(v any) any {
	switch v := v.(type) {
	case nil, bool, string, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, float32, float64:
		return v
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
		if f, err := v.Float64(); err == nil {
			return f
		}
		return v.String()
	case map[string]any:
		return cloneMap(v)
	case []any:
		if v == nil {
			return v
		}
		res := make([]any, len(v))
		for i, e := range v {
			res[i] = Normalize(e)
		}
		return res
	case Record:
		return cloneMap(v.data)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		if rv.IsNil() {
			return map[string]any(nil)
		}
		res := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			res[mapKey(iter.Key())] = Normalize(iter.Value().Interface())
		}
		return res
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			break
		}
		if rv.IsNil() {
			return []any(nil)
		}
		fallthrough
	case reflect.Array:
		res := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			res[i] = Normalize(rv.Index(i).Interface())
		}
		return res
	}
	return cloneReflect(rv).Interface()
}

func mapKey(k reflect.Value) string {
	if k.Kind() == reflect.Interface {
		k = k.Elem()
	}
	if k.Kind() == reflect.String {
		return k.String()
	}
	return fmt.Sprint(k.Interface())
}

func cloneReflect(v reflect.Value) reflect.Value {
	switch v.Kind() {
	case reflect.Slice:
		if v.IsNil() {
			return v
		}
		res := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		reflect.Copy(res, v)
		return res
	case reflect.Pointer:
		if v.IsNil() {
			return v
		}
		res := reflect.New(v.Type().Elem())
		res.Elem().Set(v.Elem())
		return res
	}
	return v
}
