package types

import "errors"

// ChangeStore lifecycle errors.
var (
	ErrStoreDetached   = errors.New("change store is detached")
	ErrAlreadyAttached = errors.New("change store is already attached")
)

// ChangeStore persists exported change logs across restarts, keyed by
// session. It is the durable half of the overlay engine's export/import
// surface; the live log itself never depends on it.
type ChangeStore interface {
	// Attach opens the store using the given configuration.
	// Returns ErrAlreadyAttached if already attached.
	Attach(config Config) error

	// Detach closes the store. Detaching a detached store is an error.
	Detach() error

	// SaveSession replaces the stored change log for a session with the
	// given one, preserving order. Saving an empty log clears the session.
	SaveSession(session string, changes []Change) error

	// LoadSession returns the stored change log for a session in its
	// saved order. An unknown session yields an empty log, not an error.
	LoadSession(session string) ([]Change, error)

	// DeleteSession removes a session's stored change log.
	DeleteSession(session string) error

	// Sessions returns the IDs of all sessions with stored changes, sorted.
	Sessions() ([]string, error)
}
