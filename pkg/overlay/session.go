package overlay

import (
	"context"
	"fmt"
	"sync"

	"github.com/mesh-intelligence/rowdelta/pkg/types"
)

// Session holds the ordered change log for one connection session. All
// methods serialize on the session mutex: the merge rule is order-sensitive
// (later updates overwrite earlier ones column by column), so concurrent
// Record calls must be applied in issue order.
type Session struct {
	mu            sync.Mutex
	id            string
	deleteDisplay string
	changes       []*types.Change

	// updates and deletes index pending changes by (namespace, table,
	// primary-key fingerprint) for O(1) merge lookup. Pending inserts have
	// no primary key and are scanned linearly per table.
	updates map[string]*types.Change
	deletes map[string]*types.Change
}

func newSession(id, deleteDisplay string) *Session {
	return &Session{
		id:            id,
		deleteDisplay: deleteDisplay,
		updates:       make(map[string]*types.Change),
		deletes:       make(map[string]*types.Change),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// DeleteDisplay returns the session's delete display policy.
func (s *Session) DeleteDisplay() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteDisplay
}

// SetDeleteDisplay overrides the store-wide delete display policy for this
// session. Returns types.ErrInvalidDeleteDisplay for unknown policies.
func (s *Session) SetDeleteDisplay(policy string) error {
	if policy != types.DeleteDisplayHidden && policy != types.DeleteDisplayStrikethrough {
		return types.ErrInvalidDeleteDisplay
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteDisplay = policy
	return nil
}

// Len returns the number of pending changes in the log.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.changes)
}

// mergeKey identifies a logical row for merge lookups.
func mergeKey(ns types.Namespace, table string, pk types.RowKey) string {
	return ns.Database + "\x00" + ns.Schema + "\x00" + table + "\x00" + pk.Fingerprint()
}

// sameTarget reports whether a change targets the given namespace and table.
func sameTarget(c *types.Change, ns types.Namespace, table string) bool {
	return c.Namespace == ns && c.Table == table
}

// matchesInsert reports whether every primary-key column of pk is present
// in the pending insert's new values with a deep-equal value.
func matchesInsert(ins *types.Change, pk types.RowKey) bool {
	if len(pk) == 0 {
		return false
	}
	for name, v := range pk {
		nv, ok := ins.NewValues[name]
		if !ok || !v.Equal(nv) {
			return false
		}
	}
	return true
}

// pendingInsert finds the still-pending insert for the same table whose
// synthesized row matches the primary key, if any.
func (s *Session) pendingInsert(ns types.Namespace, table string, pk types.RowKey) (int, *types.Change) {
	for i, c := range s.changes {
		if c.Kind == types.ChangeInsert && sameTarget(c, ns, table) && matchesInsert(c, pk) {
			return i, c
		}
	}
	return -1, nil
}

// removeAt drops the change at position i from the log, preserving order.
func (s *Session) removeAt(i int) {
	s.changes = append(s.changes[:i], s.changes[i+1:]...)
}

// Record queues a row mutation, applying the collapsing merge rule before
// appending:
//
//   - An Update or Delete whose primary key matches the synthesized row of
//     a still-pending Insert for the same table folds into that Insert: a
//     Delete cancels the Insert outright (insert-then-delete nets to
//     nothing) and Record returns nil; an Update merges its new values into
//     the Insert's in place.
//   - An Update matching the primary key of a pending Update merges into
//     it, refreshing the timestamp; no new log entry is appended.
//   - A Delete matching the primary key of a pending Delete is absorbed by
//     it (deleting a row twice is one delete).
//   - An Insert that synthesizes the same row as a still-pending Insert for
//     the same table merges into it, refreshing the timestamp; the log holds
//     at most one live Insert per synthesized row.
//   - Everything else appends with a freshly assigned ID and timestamp.
//
// The log therefore never grows unboundedly from repeated edits to the same
// logical row, and commit order reflects first-touch order.
//
// Record validates before touching the log: on error the log is exactly as
// before. Updates and deletes without primary-key columns fail with
// types.ErrMissingPrimaryKey.
func (s *Session) Record(change types.Change) (*types.Change, error) {
	if err := change.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch change.Kind {
	case types.ChangeDelete:
		if i, ins := s.pendingInsert(change.Namespace, change.Table, change.PrimaryKey); ins != nil {
			// Inserting then deleting a row nets to nothing.
			s.removeAt(i)
			return nil, nil
		}
		key := mergeKey(change.Namespace, change.Table, change.PrimaryKey)
		if existing, ok := s.deletes[key]; ok {
			if change.OldValues != nil {
				existing.OldValues = cloneValues(change.OldValues)
			}
			return existing.Clone(), nil
		}
		appended := s.append(change)
		s.deletes[key] = appended
		return appended.Clone(), nil

	case types.ChangeUpdate:
		if _, ins := s.pendingInsert(change.Namespace, change.Table, change.PrimaryKey); ins != nil {
			// The row only exists in the log; fold the edit into its insert.
			mergeValues(ins.NewValues, change.NewValues)
			return ins.Clone(), nil
		}
		key := mergeKey(change.Namespace, change.Table, change.PrimaryKey)
		if existing, ok := s.updates[key]; ok {
			mergeValues(existing.NewValues, change.NewValues)
			existing.CreatedAt = clock()
			return existing.Clone(), nil
		}
		appended := s.append(change)
		s.updates[key] = appended
		return appended.Clone(), nil

	default: // insert
		if ins := s.duplicateInsert(&change); ins != nil {
			// The same not-yet-persisted row is never inserted twice.
			mergeValues(ins.NewValues, change.NewValues)
			ins.CreatedAt = clock()
			return ins.Clone(), nil
		}
		appended := s.append(change)
		return appended.Clone(), nil
	}
}

// duplicateInsert finds a still-pending insert for the same table that
// synthesizes the same row as the incoming insert: matched through the
// incoming primary key when one is carried, otherwise by deep-equal new
// values.
func (s *Session) duplicateInsert(change *types.Change) *types.Change {
	if len(change.PrimaryKey) > 0 {
		_, ins := s.pendingInsert(change.Namespace, change.Table, change.PrimaryKey)
		return ins
	}
	for _, c := range s.changes {
		if c.Kind == types.ChangeInsert && sameTarget(c, change.Namespace, change.Table) &&
			sameValues(c.NewValues, change.NewValues) {
			return c
		}
	}
	return nil
}

// sameValues reports whether two value maps hold the same columns with
// deep-equal values.
func sameValues(a, b map[string]types.Value) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		ov, ok := b[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// append stores a copy of the change with a fresh ID and timestamp and
// returns the stored entry.
func (s *Session) append(change types.Change) *types.Change {
	stored := change.Clone()
	stored.ChangeID = newUUID()
	stored.CreatedAt = clock()
	if stored.NewValues == nil && stored.Kind != types.ChangeDelete {
		stored.NewValues = map[string]types.Value{}
	}
	s.changes = append(s.changes, stored)
	return stored
}

// mergeValues overlays src onto dst, last write wins per column.
func mergeValues(dst, src map[string]types.Value) {
	for k, v := range src {
		dst[k] = v
	}
}

func cloneValues(src map[string]types.Value) map[string]types.Value {
	out := make(map[string]types.Value, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// Export returns a copy of the change log in commit order, suitable for
// session backup. The returned changes are independent of the log.
func (s *Session) Export() []types.Change {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.Change, len(s.changes))
	for i, c := range s.changes {
		out[i] = *c.Clone()
	}
	return out
}

// Import replaces the change log with a previously exported one, rebuilding
// the merge indexes. Changes are validated first; on error the existing log
// is untouched. Imported changes keep their IDs and timestamps; a change
// without an ID gets a fresh one.
func (s *Session) Import(changes []types.Change) error {
	for i := range changes {
		if err := changes[i].Validate(); err != nil {
			return fmt.Errorf("change %d: %w", i, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.changes = make([]*types.Change, 0, len(changes))
	s.updates = make(map[string]*types.Change)
	s.deletes = make(map[string]*types.Change)
	for i := range changes {
		stored := changes[i].Clone()
		if stored.ChangeID == "" {
			stored.ChangeID = newUUID()
		}
		if stored.CreatedAt.IsZero() {
			stored.CreatedAt = clock()
		}
		s.changes = append(s.changes, stored)
		key := mergeKey(stored.Namespace, stored.Table, stored.PrimaryKey)
		switch stored.Kind {
		case types.ChangeUpdate:
			s.updates[key] = stored
		case types.ChangeDelete:
			s.deletes[key] = stored
		}
	}
	return nil
}

// Discard removes one pending change by ID. Returns true if it was present.
func (s *Session) Discard(changeID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.changes {
		if c.ChangeID != changeID {
			continue
		}
		key := mergeKey(c.Namespace, c.Table, c.PrimaryKey)
		switch c.Kind {
		case types.ChangeUpdate:
			delete(s.updates, key)
		case types.ChangeDelete:
			delete(s.deletes, key)
		}
		s.removeAt(i)
		return true
	}
	return false
}

// DiscardAll clears the change log.
func (s *Session) DiscardAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.changes = nil
	s.updates = make(map[string]*types.Change)
	s.deletes = make(map[string]*types.Change)
}

// Commit writes the pending changes through the backend in first-touch
// order, removing each change from the log as its write succeeds. On the
// first write error Commit stops and returns it; the failed change and
// everything after it stay queued.
func (s *Session) Commit(ctx context.Context, w types.RowWriter) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for len(s.changes) > 0 {
		c := s.changes[0]
		var err error
		switch c.Kind {
		case types.ChangeInsert:
			err = w.InsertRow(ctx, s.id, c.Namespace, c.Table, c.NewValues)
		case types.ChangeUpdate:
			err = w.UpdateRow(ctx, s.id, c.Namespace, c.Table, c.PrimaryKey, c.NewValues)
		case types.ChangeDelete:
			err = w.DeleteRow(ctx, s.id, c.Namespace, c.Table, c.PrimaryKey)
		}
		if err != nil {
			return fmt.Errorf("commit %s on %s.%s: %w", c.Kind, c.Namespace, c.Table, err)
		}
		key := mergeKey(c.Namespace, c.Table, c.PrimaryKey)
		switch c.Kind {
		case types.ChangeUpdate:
			delete(s.updates, key)
		case types.ChangeDelete:
			delete(s.deletes, key)
		}
		s.changes = s.changes[1:]
	}
	return nil
}
