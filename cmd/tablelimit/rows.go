package main

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// loadRows reads a YAML or JSON list of objects.
func loadRows(path string) ([]any, error) {
	b, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		return nil, errors.Wrap(err, "read rows")
	}
	var rows []map[string]any
	if err := yaml.Unmarshal(b, &rows); err != nil {
		return nil, errors.Wrapf(err, "decode rows in %s", path)
	}
	out := make([]any, len(rows))
	for i, r := range rows {
		out[i] = r
	}
	return out, nil
}

// tableID is the file name without its extension.
func tableID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// loadTables reads every row file in dir, keyed by table id.
func loadTables(dir string) (map[string][]any, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(err, "read tables dir")
	}
	tables := map[string][]any{}
	for _, e := range entries {
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".yaml", ".yml", ".json":
		default:
			continue
		}
		path := filepath.Join(dir, e.Name())
		rows, err := loadRows(path)
		if err != nil {
			return nil, err
		}
		tables[tableID(path)] = rows
	}
	return tables, nil
}

// columnsOf lists the top-level keys of the rows, sorted.
func columnsOf(rows []any) []string {
	seen := map[string]bool{}
	for _, r := range rows {
		if m, ok := r.(map[string]any); ok {
			for k := range m {
				seen[k] = true
			}
		}
	}
	cols := make([]string, 0, len(seen))
	for k := range seen {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}
