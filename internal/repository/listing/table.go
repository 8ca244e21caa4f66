// Package listing reads business and event rows from tabular exports
// (CSV, XLSX or Parquet) with case-insensitive header mapping.
package listing

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat signals a file extension no reader handles.
var ErrUnsupportedFormat = errors.New("unsupported listing format")

// table is a header row plus data rows; short rows read as blank cells.
type table struct {
	columns map[string]int
	rows    [][]string
}

func newTable(header []string, rows [][]string) *table {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		key := columnKey(h)
		if _, dup := cols[key]; !dup {
			cols[key] = i
		}
	}
	return &table{columns: cols, rows: rows}
}

// columnKey normalizes a header cell so "Image_URL" and "image url" match.
func columnKey(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.ReplaceAll(h, " ", "_")
}

func (t *table) require(names ...string) error {
	var missing []string
	for _, n := range names {
		if _, ok := t.columns[columnKey(n)]; !ok {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing columns: %s", strings.Join(missing, ", "))
	}
	return nil
}

// cell returns the trimmed value of a named column, or "" if absent.
func (t *table) cell(row []string, name string) string {
	i, ok := t.columns[columnKey(name)]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func readTable(path string) (*table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readCSV(path)
	case ".xlsx":
		return readXLSX(path)
	case ".parquet":
		return readParquet(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}
