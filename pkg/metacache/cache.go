// Package metacache implements the per-session metadata cache consulted by
// the schema tree and editor before refetching namespace, routine, and
// table-schema information from the backend.
//
// Entries expire after a fixed TTL and are dropped eagerly by the
// invalidation hooks collaborators call after schema-mutating operations;
// the cache has no visibility into writes and cannot invalidate itself.
//
// Concurrent get-or-fetch calls for the same key are NOT deduplicated:
// while a fetch is outstanding a second call re-issues it. Callers wanting
// single-flight semantics must layer that on top.
package metacache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mesh-intelligence/rowdelta/pkg/types"
)

// entry is one cached value with its fetch time.
type entry struct {
	value     any
	fetchedAt time.Time
}

// cacheKey is the composite key of one entry. Namespace and Table are empty
// at the wider scopes (session-wide namespace list, per-namespace routine
// list).
type cacheKey struct {
	Session   string
	Namespace types.Namespace
	Table     string
	kind      string
}

// Entry kinds.
const (
	kindNamespaces = "namespaces"
	kindRoutines   = "routines"
	kindSchema     = "schema"
)

// Cache stores per-session schema metadata with TTL expiry. All methods
// are safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[cacheKey]entry

	// now is the time source; overridden in tests.
	now func() time.Time
}

// New creates a cache with the config's TTL (DefaultCacheTTL when zero).
func New(config types.Config) (*Cache, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Cache{
		ttl:     config.Normalize().CacheTTL,
		entries: make(map[cacheKey]entry),
		now:     time.Now,
	}, nil
}

// stale reports whether an entry's age exceeds the TTL.
func (c *Cache) stale(e entry) bool {
	return c.now().Sub(e.fetchedAt) > c.ttl
}

// getOrFetch returns the cached value for key when present and fresh.
// Otherwise it invokes fetch; on success the result is stored with a fresh
// timestamp, on failure no entry is written and any previous (possibly
// stale) entry is left untouched so callers may still choose to serve it.
func (c *Cache) getOrFetch(ctx context.Context, key cacheKey, fetch func(context.Context) (any, error)) (any, error) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok && !c.stale(e) {
		c.mu.Unlock()
		return e.value, nil
	}
	c.mu.Unlock()

	// The lock is not held across the fetch; a concurrent call for the
	// same key will fetch again (no single-flight, by contract).
	value, err := fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrFetchFailed, err)
	}

	c.mu.Lock()
	c.entries[key] = entry{value: value, fetchedAt: c.now()}
	c.mu.Unlock()
	return value, nil
}

// isStale reports whether the entry for key is absent or past its TTL.
func (c *Cache) isStale(key cacheKey) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	return !ok || c.stale(e)
}

func namespacesKey(session string) cacheKey {
	return cacheKey{Session: session, kind: kindNamespaces}
}

func routinesKey(session string, ns types.Namespace) cacheKey {
	return cacheKey{Session: session, Namespace: ns, kind: kindRoutines}
}

func schemaKey(session string, ns types.Namespace, table string) cacheKey {
	return cacheKey{Session: session, Namespace: ns, Table: table, kind: kindSchema}
}

// Namespaces returns the session's namespace list, fetching through the
// backend when the cached copy is absent or stale.
func (c *Cache) Namespaces(ctx context.Context, session string, fetch func(context.Context) ([]types.Namespace, error)) ([]types.Namespace, error) {
	v, err := c.getOrFetch(ctx, namespacesKey(session), func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]types.Namespace), nil
}

// Routines returns the namespace's routine list, fetching when needed.
func (c *Cache) Routines(ctx context.Context, session string, ns types.Namespace, fetch func(context.Context) ([]types.Routine, error)) ([]types.Routine, error) {
	v, err := c.getOrFetch(ctx, routinesKey(session, ns), func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]types.Routine), nil
}

// TableSchema returns the table's introspected schema, fetching when needed.
func (c *Cache) TableSchema(ctx context.Context, session string, ns types.Namespace, table string, fetch func(context.Context) (*types.TableSchema, error)) (*types.TableSchema, error) {
	v, err := c.getOrFetch(ctx, schemaKey(session, ns, table), func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*types.TableSchema), nil
}

// NamespacesStale reports whether the session's namespace list needs a
// refetch. Staleness is an observable state, not an error.
func (c *Cache) NamespacesStale(session string) bool {
	return c.isStale(namespacesKey(session))
}

// RoutinesStale reports whether the namespace's routine list needs a refetch.
func (c *Cache) RoutinesStale(session string, ns types.Namespace) bool {
	return c.isStale(routinesKey(session, ns))
}

// TableSchemaStale reports whether the table's schema needs a refetch.
func (c *Cache) TableSchemaStale(session string, ns types.Namespace, table string) bool {
	return c.isStale(schemaKey(session, ns, table))
}

// InvalidateNamespaces drops the session's namespace list. Call after
// creating or dropping a schema.
func (c *Cache) InvalidateNamespaces(session string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, namespacesKey(session))
}

// InvalidateTable drops one table's schema entry. Call after altering or
// dropping the table.
func (c *Cache) InvalidateTable(session string, ns types.Namespace, table string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, schemaKey(session, ns, table))
}

// InvalidateNamespace drops the session's namespace list, the namespace's
// routine list, and every table schema under the namespace. Call after a
// schema-level mutation whose table impact is unknown.
func (c *Cache) InvalidateNamespace(session string, ns types.Namespace) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, namespacesKey(session))
	delete(c.entries, routinesKey(session, ns))
	for key := range c.entries {
		if key.Session == session && key.kind == kindSchema && key.Namespace == ns {
			delete(c.entries, key)
		}
	}
}

// InvalidateSession clears every entry for a session. Call on disconnect or
// a manual full refresh.
func (c *Cache) InvalidateSession(session string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if key.Session == session {
			delete(c.entries, key)
		}
	}
}

// Len returns the number of live entries, for tests and diagnostics.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
