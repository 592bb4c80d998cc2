package metacache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/rowdelta/pkg/types"
)

var cacheNS = types.Namespace{Database: "app", Schema: "public"}

// newTestCache returns a cache with a controllable clock.
func newTestCache(t *testing.T, ttl time.Duration) (*Cache, *time.Time) {
	t.Helper()
	c, err := New(types.Config{CacheTTL: ttl})
	require.NoError(t, err)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	return c, &now
}

func countingNamespaceFetch(calls *int) func(context.Context) ([]types.Namespace, error) {
	return func(context.Context) ([]types.Namespace, error) {
		*calls++
		return []types.Namespace{cacheNS}, nil
	}
}

func TestNamespacesCachedWithinTTL(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)
	calls := 0
	fetch := countingNamespaceFetch(&calls)
	ctx := context.Background()

	got, err := c.Namespaces(ctx, "s1", fetch)
	require.NoError(t, err)
	assert.Equal(t, []types.Namespace{cacheNS}, got)
	assert.Equal(t, 1, calls)

	// Immediately after a fetch the cache serves the stored value.
	_, err = c.Namespaces(ctx, "s1", fetch)
	require.NoError(t, err)
	assert.Equal(t, 1, calls, "fresh entry must not re-invoke fetch")
}

func TestNamespacesRefetchedAfterTTL(t *testing.T) {
	c, now := newTestCache(t, time.Minute)
	calls := 0
	fetch := countingNamespaceFetch(&calls)
	ctx := context.Background()

	_, err := c.Namespaces(ctx, "s1", fetch)
	require.NoError(t, err)

	// Exactly at the TTL the entry is still fresh; past it, one refetch.
	*now = now.Add(time.Minute)
	_, err = c.Namespaces(ctx, "s1", fetch)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	*now = now.Add(time.Second)
	_, err = c.Namespaces(ctx, "s1", fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "stale entry must re-invoke fetch exactly once")
}

func TestFetchFailureLeavesPreviousEntry(t *testing.T) {
	c, now := newTestCache(t, time.Minute)
	ctx := context.Background()

	schema := &types.TableSchema{Namespace: cacheNS, Name: "users"}
	got, err := c.TableSchema(ctx, "s1", cacheNS, "users",
		func(context.Context) (*types.TableSchema, error) { return schema, nil })
	require.NoError(t, err)
	assert.Equal(t, schema, got)

	*now = now.Add(2 * time.Minute)
	boom := errors.New("backend unreachable")
	_, err = c.TableSchema(ctx, "s1", cacheNS, "users",
		func(context.Context) (*types.TableSchema, error) { return nil, boom })
	assert.ErrorIs(t, err, types.ErrFetchFailed)
	assert.ErrorIs(t, err, boom, "the collaborator's error stays matchable")

	// The stale entry survives the failed refresh; callers may still
	// choose to serve it.
	assert.Equal(t, 1, c.Len())
	assert.True(t, c.TableSchemaStale("s1", cacheNS, "users"))
}

func TestStalenessObservable(t *testing.T) {
	c, now := newTestCache(t, time.Minute)
	ctx := context.Background()

	assert.True(t, c.NamespacesStale("s1"), "missing entry reads as stale")

	_, err := c.Namespaces(ctx, "s1", countingNamespaceFetch(new(int)))
	require.NoError(t, err)
	assert.False(t, c.NamespacesStale("s1"))

	*now = now.Add(61 * time.Second)
	assert.True(t, c.NamespacesStale("s1"))
}

func TestInvalidateTable(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)
	ctx := context.Background()
	calls := 0
	fetch := func(context.Context) (*types.TableSchema, error) {
		calls++
		return &types.TableSchema{Name: "users"}, nil
	}

	_, err := c.TableSchema(ctx, "s1", cacheNS, "users", fetch)
	require.NoError(t, err)
	c.InvalidateTable("s1", cacheNS, "users")

	_, err = c.TableSchema(ctx, "s1", cacheNS, "users", fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "invalidated entry must refetch")
}

func TestInvalidateNamespaceDropsDependents(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)
	ctx := context.Background()
	otherNS := types.Namespace{Database: "app", Schema: "audit"}

	_, err := c.Namespaces(ctx, "s1", countingNamespaceFetch(new(int)))
	require.NoError(t, err)
	_, err = c.Routines(ctx, "s1", cacheNS,
		func(context.Context) ([]types.Routine, error) {
			return []types.Routine{{Name: "f", Kind: types.RoutineFunction}}, nil
		})
	require.NoError(t, err)
	for _, tbl := range []string{"users", "orders"} {
		tbl := tbl
		_, err = c.TableSchema(ctx, "s1", cacheNS, tbl,
			func(context.Context) (*types.TableSchema, error) {
				return &types.TableSchema{Name: tbl}, nil
			})
		require.NoError(t, err)
	}
	_, err = c.TableSchema(ctx, "s1", otherNS, "logs",
		func(context.Context) (*types.TableSchema, error) {
			return &types.TableSchema{Name: "logs"}, nil
		})
	require.NoError(t, err)
	require.Equal(t, 5, c.Len())

	c.InvalidateNamespace("s1", cacheNS)

	// Only the other namespace's schema survives.
	assert.Equal(t, 1, c.Len())
	assert.False(t, c.TableSchemaStale("s1", otherNS, "logs"))
	assert.True(t, c.TableSchemaStale("s1", cacheNS, "users"))
	assert.True(t, c.RoutinesStale("s1", cacheNS))
	assert.True(t, c.NamespacesStale("s1"))
}

func TestInvalidateSession(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	_, err := c.Namespaces(ctx, "s1", countingNamespaceFetch(new(int)))
	require.NoError(t, err)
	_, err = c.Namespaces(ctx, "s2", countingNamespaceFetch(new(int)))
	require.NoError(t, err)

	c.InvalidateSession("s1")
	assert.True(t, c.NamespacesStale("s1"))
	assert.False(t, c.NamespacesStale("s2"), "other sessions are untouched")
}

func TestSessionsDoNotShareEntries(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)
	ctx := context.Background()
	calls := 0
	fetch := countingNamespaceFetch(&calls)

	_, err := c.Namespaces(ctx, "s1", fetch)
	require.NoError(t, err)
	_, err = c.Namespaces(ctx, "s2", fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "each session fetches its own copy")
}

func TestNewRejectsNegativeTTL(t *testing.T) {
	_, err := New(types.Config{CacheTTL: -time.Second})
	assert.ErrorIs(t, err, types.ErrInvalidCacheTTL)
}
