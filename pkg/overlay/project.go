package overlay

import (
	"sort"

	"github.com/mesh-intelligence/rowdelta/pkg/types"
)

// Project applies the session's pending changes for one table onto a base
// result set and returns the preview result set plus per-row display
// metadata keyed by output row index. Only rows with at least one flag set
// appear in the metadata map.
//
// Base rows are processed in order. A row matching a pending delete is
// dropped under the hidden policy, or kept and flagged under strikethrough.
// A row matching a pending update gets that update's new values overlaid on
// the matching columns only, with the matched column names recorded. After
// the base rows, one row per pending insert is appended; columns the insert
// does not provide surface as null. Output column order is always the base
// result set's column order.
//
// Project never mutates base and is referentially transparent: repeated
// calls with the same inputs produce identical output, so the UI may
// re-project on every render.
func (s *Session) Project(ns types.Namespace, table string, base *types.ResultSet, pkColumns []string) (*types.ResultSet, map[int]types.RowFlags, error) {
	if err := base.Validate(); err != nil {
		return nil, nil, err
	}

	s.mu.Lock()
	deletes := make(map[string]bool)
	updates := make(map[string]*types.Change)
	var inserts []*types.Change
	for _, c := range s.changes {
		if !sameTarget(c, ns, table) {
			continue
		}
		switch c.Kind {
		case types.ChangeDelete:
			deletes[c.PrimaryKey.Fingerprint()] = true
		case types.ChangeUpdate:
			updates[c.PrimaryKey.Fingerprint()] = c.Clone()
		case types.ChangeInsert:
			inserts = append(inserts, c.Clone())
		}
	}
	hidden := s.deleteDisplay == types.DeleteDisplayHidden
	s.mu.Unlock()

	out := &types.ResultSet{
		Columns: append([]types.Column(nil), base.Columns...),
		Rows:    make([]types.Row, 0, len(base.Rows)+len(inserts)),
	}
	flags := make(map[int]types.RowFlags)

	for _, row := range base.Rows {
		fp := base.KeyFor(row, pkColumns).Fingerprint()
		var rf types.RowFlags

		if deletes[fp] {
			if hidden {
				continue
			}
			rf.Deleted = true
		}

		outRow := row
		if upd, ok := updates[fp]; ok {
			outRow = row.Clone()
			var touched []string
			for i, col := range base.Columns {
				if v, ok := upd.NewValues[col.Name]; ok {
					outRow[i] = v
					touched = append(touched, col.Name)
				}
			}
			if len(touched) > 0 {
				sort.Strings(touched)
				rf.Modified = true
				rf.ModifiedColumns = touched
			}
		}

		out.Rows = append(out.Rows, outRow)
		if rf.Deleted || rf.Modified {
			flags[len(out.Rows)-1] = rf
		}
	}

	for _, ins := range inserts {
		row := make(types.Row, len(base.Columns))
		for i, col := range base.Columns {
			if v, ok := ins.NewValues[col.Name]; ok {
				row[i] = v
			} else {
				row[i] = types.Null()
			}
		}
		out.Rows = append(out.Rows, row)
		flags[len(out.Rows)-1] = types.RowFlags{Inserted: true}
	}

	return out, flags, nil
}
