package types

import (
	"context"
	"errors"
)

// Backend fetch errors.
var (
	// ErrFetchFailed wraps the collaborator's underlying error when a
	// cache-driven fetch fails. Both this sentinel and the original error
	// match errors.Is on the returned value.
	ErrFetchFailed = errors.New("backend fetch failed")
)

// Querier is the backend fetch interface this layer consumes. All
// connectivity, dialect handling, and retry policy live behind it; the
// implementations are the fetch functions handed to the metadata cache.
type Querier interface {
	// ExecuteQuery runs a query and returns its result set.
	ExecuteQuery(ctx context.Context, session, query string) (*ResultSet, error)

	// ListNamespaces returns the namespaces visible to the session.
	ListNamespaces(ctx context.Context, session string) ([]Namespace, error)

	// DescribeTable returns the introspected schema of one table.
	DescribeTable(ctx context.Context, session string, ns Namespace, table string) (*TableSchema, error)

	// ListRoutines returns the stored routines of one namespace.
	ListRoutines(ctx context.Context, session string, ns Namespace) ([]Routine, error)
}

// RowWriter is the backend write interface used at commit time. Each call
// mirrors one Change variant; the writer owns transactions and retries.
type RowWriter interface {
	// InsertRow writes one new row.
	InsertRow(ctx context.Context, session string, ns Namespace, table string, values map[string]Value) error

	// UpdateRow applies new values to the row identified by key.
	UpdateRow(ctx context.Context, session string, ns Namespace, table string, key RowKey, values map[string]Value) error

	// DeleteRow removes the row identified by key.
	DeleteRow(ctx context.Context, session string, ns Namespace, table string, key RowKey) error
}
