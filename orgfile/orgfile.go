// Package orgfile reads and writes data files holding lists of records.
//
// A data file is a JSON array of objects (".json") or a YAML sequence of
// mappings (".yaml", ".yml"). Numbers are canonicalised on load, so the same
// data in either format produces equal records.
package orgfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ridge/orgkit/record"
	"gopkg.in/yaml.v3"
)

// Format is a data file format
type Format string

// Format values
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatOf returns the format of a data file by its extension
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown data file format of %s, expected .json, .yaml or .yml", path)
}

// ParseFormat parses a format name: json, yaml or yml
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown format %q, expected json or yaml", name)
}

// Load reads the records of a data file
func Load(path string) ([]record.Record, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	records, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return records, nil
}

// Parse decodes records. Empty input holds no records.
func Parse(data []byte, format Format) ([]record.Record, error) {
	var items []map[string]any
	switch format {
	case FormatJSON:
		if len(bytes.TrimSpace(data)) == 0 {
			return nil, nil
		}
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&items); err != nil {
			return nil, err
		}
		if _, err := dec.Token(); !errors.Is(err, io.EOF) {
			return nil, errors.New("unexpected data after the top-level array")
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &items); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown data file format %q", format)
	}

	records := make([]record.Record, 0, len(items))
	for i, item := range items {
		if item == nil {
			return nil, fmt.Errorf("entry %d is not an object", i)
		}
		records = append(records, record.Wrap(record.Normalize(item).(map[string]any)))
	}
	return records, nil
}

// Marshal encodes plain records, as returned by store.Store.Export
func Marshal(items []map[string]any, format Format) ([]byte, error) {
	if items == nil {
		items = []map[string]any{}
	}
	var buf bytes.Buffer
	if err := Encode(&buf, items, format); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Encode writes a value in the format, indented by two spaces
func Encode(w io.Writer, v any, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown data file format %q", format)
}

// Write replaces the data file with the plain records. The file is replaced
// atomically: readers see either the old or the new contents.
func Write(path string, items []map[string]any) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	data, err := Marshal(items, format)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	defer os.Remove(f.Name()) // no-op once renamed

	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(f.Name(), path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
