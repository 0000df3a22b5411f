package record

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/ridge/tj"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestNewCopies(t *testing.T) {
	nested := map[string]any{"city": "Oslo"}
	tags := []any{"a", "b"}
	data := map[string]any{"id": 1, "address": nested, "tags": tags}

	r := New(data)
	nested["city"] = "Bergen"
	tags[0] = "z"
	data["id"] = 2

	require.Equal(t, 1, r.Value("id"))
	require.Equal(t, map[string]any{"city": "Oslo"}, r.Value("address"))
	require.Equal(t, []any{"a", "b"}, r.Value("tags"))
}

func TestGetCopies(t *testing.T) {
	r := New(tj.O{"address": tj.O{"city": "Oslo"}})

	v, ok := r.Get("address")
	require.True(t, ok)
	v.(map[string]any)["city"] = "Bergen"

	require.Equal(t, "Oslo", r.Value("address").(map[string]any)["city"])

	_, ok = r.Get("missing")
	require.False(t, ok)
	require.Nil(t, r.Value("missing"))
}

func TestWithWithout(t *testing.T) {
	r := New(tj.O{"id": "a", "type": "foo"})
	r2 := r.With("type", "bar")
	r3 := r2.Without("type")

	require.Equal(t, "foo", r.String("type"))
	require.Equal(t, "bar", r2.String("type"))
	require.False(t, r3.Has("type"))
	require.Equal(t, []string{"id", "type"}, r.Fields())
	require.Equal(t, []string{"id"}, r3.Fields())
	require.Equal(t, r3, r3.Without("type"))
}

func TestTruthy(t *testing.T) {
	r := New(tj.O{
		"nil":    nil,
		"false":  false,
		"true":   true,
		"empty":  "",
		"str":    "x",
		"zero":   0,
		"zeroF":  0.0,
		"num":    3,
		"frac":   0.5,
		"object": tj.O{},
	})
	for _, f := range []string{"missing", "nil", "false", "empty", "zero", "zeroF"} {
		require.False(t, r.Truthy(f), f)
	}
	for _, f := range []string{"true", "str", "num", "frac", "object"} {
		require.True(t, r.Truthy(f), f)
	}
}

func TestKeyCanonical(t *testing.T) {
	type dept string

	require.Equal(t, KeyOf(1), KeyOf(int64(1)))
	require.Equal(t, KeyOf(1), KeyOf(float64(1)))
	require.Equal(t, KeyOf(1), KeyOf(uint8(1)))
	require.Equal(t, KeyOf(1), KeyOf(json.Number("1")))
	require.Equal(t, KeyOf("eng"), KeyOf(dept("eng")))
	require.Equal(t, Absent, KeyOf(nil))
	require.Equal(t, KeyOf(tj.A{1, "x"}), KeyOf([]any{1, "x"}))

	require.NotEqual(t, KeyOf(1), KeyOf("1"))
	require.NotEqual(t, KeyOf(1.5), KeyOf(1))
	require.NotEqual(t, KeyOf(true), KeyOf(1))

	require.True(t, New(nil).Key("x").IsAbsent())
	require.True(t, New(tj.O{"x": nil}).Key("x").IsAbsent())
}

func TestKeyValueString(t *testing.T) {
	require.Equal(t, int64(42), KeyOf(42).Value())
	require.Equal(t, 1.5, KeyOf(1.5).Value())
	require.Equal(t, "foo", KeyOf("foo").Value())
	require.Equal(t, true, KeyOf(true).Value())
	require.Nil(t, Absent.Value())

	require.Equal(t, "42", KeyOf(42).String())
	require.Equal(t, "<absent>", Absent.String())
	require.Equal(t, `{"a":1}`, KeyOf(tj.O{"a": 1}).String())
}

func TestKeyCompare(t *testing.T) {
	ordered := []Key{Absent, KeyOf(false), KeyOf(true), KeyOf(-1), KeyOf(0.5), KeyOf(2), KeyOf("a"), KeyOf("b"), KeyOf(tj.A{})}
	for i := range ordered {
		require.Equal(t, 0, ordered[i].Compare(ordered[i]))
		for j := i + 1; j < len(ordered); j++ {
			require.Equal(t, -1, ordered[i].Compare(ordered[j]), "%v < %v", ordered[i], ordered[j])
			require.Equal(t, 1, ordered[j].Compare(ordered[i]), "%v > %v", ordered[j], ordered[i])
		}
	}
}

func TestKeyNaN(t *testing.T) {
	nan := KeyOf(math.NaN())
	require.True(t, nan == KeyOf(float32(math.NaN())))
	require.True(t, nan == KeyOf(json.Number("NaN")))
	require.Equal(t, 0, nan.Compare(nan))
	require.Equal(t, -1, nan.Compare(KeyOf(math.Inf(-1))))
	require.Equal(t, -1, nan.Compare(KeyOf(-1)))
	require.Equal(t, 1, KeyOf(0.5).Compare(nan))
	require.Equal(t, 1, nan.Compare(KeyOf(true)))
	require.Equal(t, -1, nan.Compare(KeyOf("a")))
	require.Equal(t, "NaN", nan.String())
	require.True(t, math.IsNaN(nan.Value().(float64)))

	groups := map[Key]int{}
	groups[KeyOf(math.NaN())]++
	groups[KeyOf(math.NaN())]++
	require.Equal(t, map[Key]int{nan: 2}, groups)

	require.False(t, New(tj.O{"x": math.NaN()}).Truthy("x"))
	require.True(t, New(tj.O{"x": math.Inf(1)}).Truthy("x"))
}

func TestCandidates(t *testing.T) {
	require.Equal(t, []Key{KeyOf("abc")}, Candidates("abc"))
	require.Equal(t, []Key{KeyOf("42"), KeyOf(42)}, Candidates("42"))
	require.Equal(t, []Key{KeyOf("1.5"), KeyOf(1.5)}, Candidates("1.5"))
	require.Equal(t, []Key{KeyOf("true"), KeyOf(true)}, Candidates("true"))
}

func TestEqual(t *testing.T) {
	a := New(tj.O{"id": 1, "tags": tj.A{1, "x"}, "o": tj.O{"n": 2}})
	b := New(tj.O{"id": 1.0, "tags": tj.A{int64(1), "x"}, "o": tj.O{"n": json.Number("2")}})
	require.True(t, a.Equal(b))
	require.False(t, a.Equal(b.With("id", 2)))
	require.False(t, a.Equal(b.Without("o")))
}

func TestNormalizers(t *testing.T) {
	require.Equal(t, "a@b.com", LowerCase("A@B.com"))
	require.Equal(t, 1, LowerCase(1))
	require.Equal(t, "A", Identity("A"))
}

func TestJSONYAML(t *testing.T) {
	var fromJSON, fromYAML Record
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"name":"x","tags":["a"],"o":{"k":true}}`), &fromJSON))
	require.NoError(t, yaml.Unmarshal([]byte("id: 1\nname: x\ntags: [a]\no:\n  k: true\n"), &fromYAML))

	require.True(t, fromJSON.Equal(fromYAML))
	require.Equal(t, fromJSON.Key("id"), fromYAML.Key("id"))
	require.Equal(t, int64(1), fromJSON.Value("id"))

	b, err := json.Marshal(fromJSON)
	require.NoError(t, err)
	require.JSONEq(t, `{"id":1,"name":"x","tags":["a"],"o":{"k":true}}`, string(b))

	b, err = json.Marshal(Record{})
	require.NoError(t, err)
	require.Equal(t, "{}", string(b))
}

func TestNormalize(t *testing.T) {
	in := map[any]any{"a": []map[string]any{{"b": 1}}, 2: "two"}
	require.Equal(t, map[string]any{"a": []any{map[string]any{"b": 1}}, "2": "two"}, Normalize(in))
	require.Equal(t, int64(7), Normalize(json.Number("7")))
	require.Equal(t, 7.5, Normalize(json.Number("7.5")))
	require.Equal(t, []byte("xy"), Normalize([]byte("xy")))
}
