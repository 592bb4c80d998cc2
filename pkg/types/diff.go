package types

import "errors"

// Diff errors.
var (
	ErrInvalidKey = errors.New("key column not present in both result sets")
)

// DiffStatus classifies one logical row of a result-set comparison.
type DiffStatus string

// Diff row classifications.
const (
	DiffAdded     DiffStatus = "added"
	DiffRemoved   DiffStatus = "removed"
	DiffModified  DiffStatus = "modified"
	DiffUnchanged DiffStatus = "unchanged"
)

// DiffRow is the classification of one logical row across two result sets.
// Left is nil for Added rows, Right is nil for Removed rows; Modified and
// Unchanged rows carry both sides. ChangedColumns holds the names of
// columns whose values differ (empty for Unchanged).
type DiffRow struct {
	Status         DiffStatus      `json:"status"`
	Left           Row             `json:"left,omitempty"`
	Right          Row             `json:"right,omitempty"`
	ChangedColumns map[string]bool `json:"changed_columns,omitempty"`
}

// Changed reports whether the named column differs between the two sides.
func (d DiffRow) Changed(column string) bool {
	return d.ChangedColumns[column]
}

// RowFlags is the per-row display metadata produced by overlay projection.
// Inserted rows carry no other flag; under strikethrough display a row with
// both a pending update and a pending delete is Modified and Deleted at
// once.
type RowFlags struct {
	Inserted        bool     `json:"inserted,omitempty"`
	Modified        bool     `json:"modified,omitempty"`
	Deleted         bool     `json:"deleted,omitempty"`
	ModifiedColumns []string `json:"modified_columns,omitempty"`
}
