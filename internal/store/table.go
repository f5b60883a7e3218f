// Package store is the artifact store: every table the pipeline stages
// exchange is a CSV file read and written through this package. Stages
// never hand data to each other in memory across runs, which keeps each
// stage independently resumable and inspectable.
package store

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
)

// Table is a loosely-typed tabular artifact: a header and string cells.
// Schema-divergent inputs are read into a Table first; alias resolution
// maps their columns onto the canonical schema exactly once, at
// ingestion.
type Table struct {
	Header []string
	Rows   [][]string
}

// New creates an empty table with the given header.
func New(header ...string) *Table {
	return &Table{Header: header}
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Append adds a row, padding or truncating it to the header width so a
// ragged source line can never corrupt column alignment.
func (t *Table) Append(row ...string) {
	if len(row) < len(t.Header) {
		padded := make([]string, len(t.Header))
		copy(padded, row)
		row = padded
	} else if len(row) > len(t.Header) {
		row = row[:len(t.Header)]
	}
	t.Rows = append(t.Rows, row)
}

// Col resolves a column through an ordered alias priority list: the
// first alias present in the header wins. Returns -1 when no alias
// matches; the caller fills the derived column with the missing-value
// marker.
func (t *Table) Col(aliases ...string) int {
	for _, alias := range aliases {
		for i, h := range t.Header {
			if h == alias {
				return i
			}
		}
	}
	return -1
}

// Cell returns the cell at (row, col), or "" when either index is out
// of range. col == -1 (unresolved alias) is therefore always missing.
func (t *Table) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) || col < 0 {
		return ""
	}
	r := t.Rows[row]
	if col >= len(r) {
		return ""
	}
	return r[col]
}

// Read loads a CSV file into a Table. A missing file surfaces as an
// fs.ErrNotExist-wrapped error so callers can distinguish an absent
// input from malformed data. Ragged rows are tolerated.
func Read(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open table %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // tolerate ragged rows

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read table %s: %w", path, err)
	}
	if len(records) == 0 {
		return &Table{}, nil
	}

	return &Table{Header: records[0], Rows: records[1:]}, nil
}

// Write persists the table, creating parent directories as needed.
// A header-only table writes just the header line, the degradation
// contract that lets downstream stages run unconditionally.
func (t *Table) Write(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create dir for %s: %w", path, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create table %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(t.Header); err != nil {
		return fmt.Errorf("write header %s: %w", path, err)
	}
	for _, row := range t.Rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write row %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush table %s: %w", path, err)
	}
	return nil
}

// Exists reports whether an artifact is present on disk.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
