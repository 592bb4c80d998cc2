// Package sqlite provides the public API for the SQLite change store.
// It exposes the factory function while keeping the implementation internal.
package sqlite

import (
	"github.com/mesh-intelligence/rowdelta/internal/sqlite"
	"github.com/mesh-intelligence/rowdelta/pkg/types"
)

// NewStore creates a new SQLite change store instance.
// The store is detached; call Attach with a Config to open it.
//
// Example:
//
//	store := sqlite.NewStore()
//	err := store.Attach(types.Config{DataDir: ".rowdelta"})
//	defer store.Detach()
func NewStore() types.ChangeStore {
	return sqlite.NewStore()
}
