package orgfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ridge/orgkit/record"
	"github.com/ridge/orgkit/resources"
	"github.com/ridge/orgkit/retry"
	"github.com/ridge/orgkit/store"
	"github.com/ridge/orgkit/test"
	"github.com/ridge/parallel"
	"github.com/ridge/tj"
	"github.com/stretchr/testify/require"
)

const staffJSON = `[
  {"email": "Ann@example.com", "employmentStatus": "employee", "level": 3, "roles": ["CTO"]},
  {"email": "bo@example.com", "employmentStatus": "contractor", "level": 1.5, "address": {"city": "Oslo"}}
]
`

const staffYAML = `- email: Ann@example.com
  employmentStatus: employee
  level: 3
  roles: [CTO]
- email: bo@example.com
  employmentStatus: contractor
  level: 1.5
  address:
    city: Oslo
`

func writeFile(t *testing.T, name, contents string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadJSONYAMLEqual(t *testing.T) {
	fromJSON, err := Load(writeFile(t, "staff.json", staffJSON))
	require.NoError(t, err)
	fromYAML, err := Load(writeFile(t, "staff.yaml", staffYAML))
	require.NoError(t, err)

	require.Len(t, fromJSON, 2)
	require.Len(t, fromYAML, 2)
	for i := range fromJSON {
		require.True(t, fromJSON[i].Equal(fromYAML[i]), "record %d", i)
		require.Equal(t, fromJSON[i].Key("level"), fromYAML[i].Key("level"))
	}
	require.Equal(t, int64(3), fromJSON[0].Value("level"))
	require.Equal(t, map[string]any{"city": "Oslo"}, fromYAML[1].Value("address"))
}

func TestParse(t *testing.T) {
	records, err := Parse(nil, FormatJSON)
	require.NoError(t, err)
	require.Empty(t, records)

	records, err = Parse([]byte(""), FormatYAML)
	require.NoError(t, err)
	require.Empty(t, records)

	_, err = Parse([]byte(`{"email": "x"}`), FormatJSON)
	require.Error(t, err)
	_, err = Parse([]byte(`[{"email": "x"}] []`), FormatJSON)
	require.Error(t, err)
	_, err = Parse([]byte(`[null]`), FormatJSON)
	require.ErrorContains(t, err, "entry 0")
	_, err = Parse([]byte("- [a, b]\n"), FormatYAML)
	require.Error(t, err)
	_, err = Parse([]byte(`[]`), "toml")
	require.Error(t, err)
}

func TestFormatOf(t *testing.T) {
	for path, format := range map[string]Format{
		"a.json":     FormatJSON,
		"b/c.YAML":   FormatYAML,
		"staff.yml":  FormatYAML,
		"./x/y.json": FormatJSON,
	} {
		got, err := FormatOf(path)
		require.NoError(t, err)
		require.Equal(t, format, got)
	}
	_, err := FormatOf("staff.csv")
	require.Error(t, err)

	_, err = Load("staff.csv")
	require.Error(t, err)
	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestExportRoundTrip(t *testing.T) {
	for _, name := range []string{"staff.json", "staff.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, name, "")
			records, err := Load(writeFile(t, "staff.json", staffJSON))
			require.NoError(t, err)
			s, err := resources.Staff.New(records, nil)
			require.NoError(t, err)

			require.NoError(t, Write(path, s.Export()))
			reloaded, err := Load(path)
			require.NoError(t, err)
			s2, err := resources.Staff.New(reloaded, nil)
			require.NoError(t, err)

			list, list2 := s.List(store.ListOptions{}), s2.List(store.ListOptions{})
			require.Len(t, list2, len(list))
			for i := range list {
				require.True(t, list[i].Equal(list2[i]), "record %d", i)
			}

			entries, err := os.ReadDir(filepath.Dir(path))
			require.NoError(t, err)
			require.Len(t, entries, 1, "temporary file left behind")
		})
	}
}

func TestMarshal(t *testing.T) {
	data, err := Marshal([]map[string]any{{"name": "x", "n": 1}}, FormatJSON)
	require.NoError(t, err)
	require.Equal(t, "[\n  {\n    \"n\": 1,\n    \"name\": \"x\"\n  }\n]\n", string(data))

	data, err = Marshal(nil, FormatJSON)
	require.NoError(t, err)
	require.Equal(t, "[]\n", string(data))

	data, err = Marshal([]map[string]any{{"name": "x", "tags": []any{"a"}}}, FormatYAML)
	require.NoError(t, err)
	require.Equal(t, "- name: x\n  tags:\n    - a\n", string(data))
}

func TestWatch(t *testing.T) {
	path := writeFile(t, "roles.yaml", "- name: CTO\n")
	w, err := NewWatcher(path)
	require.NoError(t, err)

	reloads := make(chan int, 16)
	group := test.Group(t)
	group.Spawn("watch", parallel.Fail, func(ctx context.Context) error {
		return w.Run(ctx, func(ctx context.Context, records []record.Record) error {
			reloads <- len(records)
			return nil
		})
	})

	require.NoError(t, Write(path, []map[string]any{
		record.New(tj.O{"name": "CTO"}).Data(),
		record.New(tj.O{"name": "CFO"}).Data(),
	}))
	n, ok := test.Receive[int](t, reloads)
	require.True(t, ok)
	require.Equal(t, 2, n)
}

func TestWatchIgnoresOtherFiles(t *testing.T) {
	path := writeFile(t, "roles.yaml", "- name: CTO\n")
	w, err := NewWatcher(path)
	require.NoError(t, err)

	reloads := make(chan int, 16)
	group := test.Group(t)
	group.Spawn("watch", parallel.Fail, func(ctx context.Context) error {
		return w.Run(ctx, func(ctx context.Context, records []record.Record) error {
			reloads <- len(records)
			return nil
		})
	})

	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(path), "other.yaml"), []byte("- name: x\n"), 0o644))
	require.NoError(t, Write(path, []map[string]any{{"name": "CEO"}}))
	n, ok := test.Receive[int](t, reloads)
	require.True(t, ok)
	require.Equal(t, 1, n)
}

func TestWatchSkipsInvalidContents(t *testing.T) {
	path := writeFile(t, "roles.yaml", "- name: CTO\n")
	w, err := NewWatcher(path)
	require.NoError(t, err)
	w.Retry = retry.FixedConfig{MaxAttempts: 2}

	reloads := make(chan int, 16)
	group := test.Group(t)
	group.Spawn("watch", parallel.Fail, func(ctx context.Context) error {
		return w.Run(ctx, func(ctx context.Context, records []record.Record) error {
			reloads <- len(records)
			return nil
		})
	})

	broken := writeFile(t, "broken.yaml", "- [name, CTO]\n")
	require.NoError(t, os.Rename(broken, path))
	require.NoError(t, Write(path, []map[string]any{{"name": "CEO"}, {"name": "CFO"}, {"name": "CTO"}}))
	n, ok := test.Receive[int](t, reloads)
	require.True(t, ok)
	require.Equal(t, 3, n)
}
