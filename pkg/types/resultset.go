package types

import (
	"errors"
	"time"
)

// ResultSet errors.
var (
	ErrColumnCountMismatch = errors.New("row value count does not match column count")
)

// Column describes one column of a result set. Name is unique within a
// result set; order is significant and defines row-value alignment.
type Column struct {
	Name         string `json:"name"`
	DeclaredType string `json:"declared_type"`
}

// Row is an ordered sequence of Values, positionally aligned to the owning
// result set's column list.
type Row []Value

// Clone returns an independent copy of the row.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	copy(out, r)
	return out
}

// ResultSet is an immutable fetched table of rows. A new fetch produces a
// new ResultSet; nothing in this module ever mutates one in place.
type ResultSet struct {
	Columns       []Column       `json:"columns"`
	Rows          []Row          `json:"rows"`
	AffectedCount *int64         `json:"affected_count,omitempty"`
	ExecutionTime *time.Duration `json:"execution_time,omitempty"`
}

// Validate checks the row-width invariant: every row holds exactly one
// value per column. Returns ErrColumnCountMismatch on the first violation.
func (rs *ResultSet) Validate() error {
	for _, row := range rs.Rows {
		if len(row) != len(rs.Columns) {
			return ErrColumnCountMismatch
		}
	}
	return nil
}

// ColumnIndex returns the position of the named column, or -1 if absent.
func (rs *ResultSet) ColumnIndex(name string) int {
	for i, c := range rs.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// ColumnNames returns the column names in declaration order.
func (rs *ResultSet) ColumnNames() []string {
	names := make([]string, len(rs.Columns))
	for i, c := range rs.Columns {
		names[i] = c.Name
	}
	return names
}

// KeyFor builds the RowKey of the given row from the named columns.
// Columns absent from the result set are skipped; the caller is responsible
// for validating key columns up front when that matters.
func (rs *ResultSet) KeyFor(row Row, keyColumns []string) RowKey {
	key := make(RowKey, len(keyColumns))
	for _, name := range keyColumns {
		if idx := rs.ColumnIndex(name); idx >= 0 && idx < len(row) {
			key[name] = row[idx]
		}
	}
	return key
}
