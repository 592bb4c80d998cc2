// Package diff implements the key-based result-set comparison engine.
// Compare is a pure function: it never mutates its inputs, holds no state,
// and produces a deterministic classification independent of map iteration
// order.
package diff

import (
	"fmt"

	"github.com/mesh-intelligence/rowdelta/pkg/types"
)

// keyedRows is one side of a comparison: the logical rows of a result set
// keyed by their RowKey fingerprint, in first-seen order.
//
// Duplicate keys within one side resolve to last-row-wins: the later row
// replaces the earlier one at its original position, and the earlier row is
// dropped from the comparison. This is a documented limitation of key-based
// diffing, not a failure.
type keyedRows struct {
	order []string
	rows  map[string]types.Row
}

func buildKeyedRows(rs *types.ResultSet, keyColumns []string) keyedRows {
	kr := keyedRows{rows: make(map[string]types.Row, len(rs.Rows))}
	for _, row := range rs.Rows {
		fp := rs.KeyFor(row, keyColumns).Fingerprint()
		if _, seen := kr.rows[fp]; !seen {
			kr.order = append(kr.order, fp)
		}
		kr.rows[fp] = row
	}
	return kr
}

// resolveKeyColumns validates explicit key columns against both sides, or
// falls back to the full column intersection when none are supplied. The
// fallback cannot distinguish true duplicate rows; callers that have a real
// key should pass it.
func resolveKeyColumns(left, right *types.ResultSet, keyColumns []string) ([]string, error) {
	rightCols := make(map[string]bool, len(right.Columns))
	for _, c := range right.Columns {
		rightCols[c.Name] = true
	}

	if len(keyColumns) > 0 {
		for _, name := range keyColumns {
			if left.ColumnIndex(name) < 0 || !rightCols[name] {
				return nil, fmt.Errorf("%w: %q", types.ErrInvalidKey, name)
			}
		}
		return keyColumns, nil
	}

	// Fallback: every column present on both sides, in left order.
	var shared []string
	for _, c := range left.Columns {
		if rightCols[c.Name] {
			shared = append(shared, c.Name)
		}
	}
	return shared, nil
}

// compareRow classifies one logical row present on both sides. Columns are
// compared over the union of both column lists: a column present on only
// one side differs by definition; a column present on both differs when the
// values are not deep-equal.
func compareRow(left *types.ResultSet, leftRow types.Row, right *types.ResultSet, rightRow types.Row) types.DiffRow {
	changed := map[string]bool{}

	for i, c := range left.Columns {
		ri := right.ColumnIndex(c.Name)
		if ri < 0 {
			changed[c.Name] = true
			continue
		}
		if !leftRow[i].Equal(rightRow[ri]) {
			changed[c.Name] = true
		}
	}
	for _, c := range right.Columns {
		if left.ColumnIndex(c.Name) < 0 {
			changed[c.Name] = true
		}
	}

	status := types.DiffUnchanged
	if len(changed) > 0 {
		status = types.DiffModified
	} else {
		changed = nil
	}
	return types.DiffRow{
		Status:         status,
		Left:           leftRow,
		Right:          rightRow,
		ChangedColumns: changed,
	}
}

// Compare classifies every logical row of two result sets as added,
// removed, modified, or unchanged, with field-level change detection.
// Both sides are validated first; a result set whose rows do not match its
// column list fails with types.ErrColumnCountMismatch.
//
// When keyColumns is non-empty, every listed column must be present in both
// result sets; otherwise Compare fails with types.ErrInvalidKey. When it is
// empty, the full intersection of both column lists serves as a composite
// key (a last resort that cannot distinguish duplicate rows).
//
// Output order is deterministic: removed, modified, and unchanged rows in
// left-encounter order, then added rows in right-encounter order.
func Compare(left, right *types.ResultSet, keyColumns []string) ([]types.DiffRow, error) {
	if err := left.Validate(); err != nil {
		return nil, fmt.Errorf("left: %w", err)
	}
	if err := right.Validate(); err != nil {
		return nil, fmt.Errorf("right: %w", err)
	}

	cols, err := resolveKeyColumns(left, right, keyColumns)
	if err != nil {
		return nil, err
	}

	leftKeyed := buildKeyedRows(left, cols)
	rightKeyed := buildKeyedRows(right, cols)

	out := make([]types.DiffRow, 0, len(leftKeyed.order)+len(rightKeyed.order))
	for _, fp := range leftKeyed.order {
		leftRow := leftKeyed.rows[fp]
		rightRow, ok := rightKeyed.rows[fp]
		if !ok {
			out = append(out, types.DiffRow{Status: types.DiffRemoved, Left: leftRow})
			continue
		}
		out = append(out, compareRow(left, leftRow, right, rightRow))
	}
	for _, fp := range rightKeyed.order {
		if _, ok := leftKeyed.rows[fp]; ok {
			continue
		}
		out = append(out, types.DiffRow{Status: types.DiffAdded, Right: rightKeyed.rows[fp]})
	}
	return out, nil
}
