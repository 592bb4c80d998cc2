package types

import (
	"errors"
	"fmt"
	"time"
)

// Change kinds. A Change is one not-yet-committed row mutation.
const (
	ChangeInsert = "insert"
	ChangeUpdate = "update"
	ChangeDelete = "delete"
)

// validChangeKinds is the set of recognized change kind values.
var validChangeKinds = map[string]bool{
	ChangeInsert: true,
	ChangeUpdate: true,
	ChangeDelete: true,
}

// Change and ChangeLog errors.
var (
	ErrInvalidChangeKind = errors.New("invalid change kind")
	ErrMissingTable      = errors.New("change table must not be empty")
	ErrMissingPrimaryKey = errors.New("change has no primary key columns")
	ErrSessionNotFound   = errors.New("session not found")
)

// Namespace identifies a logical grouping of tables: a database plus an
// optional schema. An empty Schema means the backend has no schema level
// (e.g. MySQL) or the default schema is in effect.
type Namespace struct {
	Database string `json:"database"`
	Schema   string `json:"schema,omitempty"`
}

// String renders the namespace for display, joining database and schema
// with a dot when a schema is present.
func (n Namespace) String() string {
	if n.Schema == "" {
		return n.Database
	}
	return n.Database + "." + n.Schema
}

// Change is one pending row-level mutation in a session's change log.
//
// Insert carries NewValues only. Update carries PrimaryKey, OldValues, and
// NewValues. Delete carries PrimaryKey and, when the caller had the row at
// hand, OldValues for display and backup purposes.
//
// ChangeID is an opaque unique ID (UUID v7) assigned when the change is
// first recorded. CreatedAt orders changes for commit and backup; the merge
// rule refreshes it on updates that fold into an existing entry.
type Change struct {
	ChangeID   string           `json:"change_id"`
	Kind       string           `json:"kind"`
	Namespace  Namespace        `json:"namespace"`
	Table      string           `json:"table"`
	PrimaryKey RowKey           `json:"primary_key,omitempty"`
	OldValues  map[string]Value `json:"old_values,omitempty"`
	NewValues  map[string]Value `json:"new_values,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
}

// Validate checks that the change is well-formed for its kind. It does not
// require ChangeID or CreatedAt; those are assigned on record.
func (c *Change) Validate() error {
	if !validChangeKinds[c.Kind] {
		return fmt.Errorf("%w: %q", ErrInvalidChangeKind, c.Kind)
	}
	if c.Table == "" {
		return ErrMissingTable
	}
	switch c.Kind {
	case ChangeUpdate, ChangeDelete:
		if len(c.PrimaryKey) == 0 {
			return ErrMissingPrimaryKey
		}
	}
	return nil
}

// Clone returns a deep-enough copy of the change: the maps are copied so
// the caller and the log never share mutable state. Values themselves are
// immutable and shared.
func (c *Change) Clone() *Change {
	out := *c
	out.PrimaryKey = c.PrimaryKey.Clone()
	if c.OldValues != nil {
		out.OldValues = make(map[string]Value, len(c.OldValues))
		for k, v := range c.OldValues {
			out.OldValues[k] = v
		}
	}
	if c.NewValues != nil {
		out.NewValues = make(map[string]Value, len(c.NewValues))
		for k, v := range c.NewValues {
			out.NewValues[k] = v
		}
	}
	return &out
}
