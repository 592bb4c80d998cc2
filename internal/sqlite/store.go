// Package sqlite implements the SQLite-backed change store used to back up
// and restore session change logs across restarts.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/rowdelta/pkg/types"
)

// dbFileName is the SQLite database file created inside DataDir.
const dbFileName = "rowdelta.db"

// Store implements types.ChangeStore on a local SQLite file.
type Store struct {
	mu       sync.Mutex
	attached bool
	config   types.Config
	db       *sql.DB
	log      *slog.Logger
}

// NewStore creates a detached store; call Attach with a Config to open it.
func NewStore() *Store {
	return &Store{
		log: slog.Default().With("component", "changestore"),
	}
}

// Attach opens (creating if needed) the database file under DataDir and
// ensures the schema exists. Returns types.ErrAlreadyAttached if attached.
func (s *Store) Attach(config types.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	path := filepath.Join(dataDir, dbFileName)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	for _, ddl := range []string{createChanges, createChangesSessionIndex} {
		if _, err := db.Exec(ddl); err != nil {
			db.Close()
			return fmt.Errorf("initializing schema: %w", err)
		}
	}

	s.config = config
	s.db = db
	s.attached = true
	s.log.Debug("change store attached", "path", path)
	return nil
}

// Detach closes the database. Returns types.ErrStoreDetached if not attached.
func (s *Store) Detach() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.attached {
		return types.ErrStoreDetached
	}
	err := s.db.Close()
	s.db = nil
	s.attached = false
	if err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	return nil
}

// changeRow is the flat SQLite representation of one types.Change. The
// primary key and value maps are stored as JSON text.
type changeRow struct {
	changeID   string
	kind       string
	database   string
	schema     sql.NullString
	table      string
	primaryKey sql.NullString
	oldValues  sql.NullString
	newValues  sql.NullString
	createdAt  string
}

func encodeChange(c *types.Change) (changeRow, error) {
	row := changeRow{
		changeID:  c.ChangeID,
		kind:      c.Kind,
		database:  c.Namespace.Database,
		table:     c.Table,
		createdAt: c.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if c.Namespace.Schema != "" {
		row.schema = sql.NullString{String: c.Namespace.Schema, Valid: true}
	}
	for _, f := range []struct {
		src any
		dst *sql.NullString
	}{
		{c.PrimaryKey, &row.primaryKey},
		{c.OldValues, &row.oldValues},
		{c.NewValues, &row.newValues},
	} {
		switch v := f.src.(type) {
		case types.RowKey:
			if len(v) == 0 {
				continue
			}
		case map[string]types.Value:
			if len(v) == 0 {
				continue
			}
		}
		data, err := json.Marshal(f.src)
		if err != nil {
			return changeRow{}, fmt.Errorf("encoding change %s: %w", c.ChangeID, err)
		}
		*f.dst = sql.NullString{String: string(data), Valid: true}
	}
	return row, nil
}

func decodeChange(row changeRow) (types.Change, error) {
	c := types.Change{
		ChangeID: row.changeID,
		Kind:     row.kind,
		Namespace: types.Namespace{
			Database: row.database,
			Schema:   row.schema.String,
		},
		Table: row.table,
	}
	at, err := time.Parse(time.RFC3339Nano, row.createdAt)
	if err != nil {
		return types.Change{}, fmt.Errorf("decoding change %s timestamp: %w", row.changeID, err)
	}
	c.CreatedAt = at

	if row.primaryKey.Valid {
		if err := json.Unmarshal([]byte(row.primaryKey.String), &c.PrimaryKey); err != nil {
			return types.Change{}, fmt.Errorf("decoding change %s primary key: %w", row.changeID, err)
		}
	}
	if row.oldValues.Valid {
		if err := json.Unmarshal([]byte(row.oldValues.String), &c.OldValues); err != nil {
			return types.Change{}, fmt.Errorf("decoding change %s old values: %w", row.changeID, err)
		}
	}
	if row.newValues.Valid {
		if err := json.Unmarshal([]byte(row.newValues.String), &c.NewValues); err != nil {
			return types.Change{}, fmt.Errorf("decoding change %s new values: %w", row.changeID, err)
		}
	}
	return c, nil
}

// SaveSession replaces the stored log for a session in one transaction.
func (s *Store) SaveSession(session string, changes []types.Change) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.attached {
		return types.ErrStoreDetached
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning save transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM changes WHERE session_id = ?", session); err != nil {
		return fmt.Errorf("clearing session %s: %w", session, err)
	}
	for i := range changes {
		row, err := encodeChange(&changes[i])
		if err != nil {
			return err
		}
		_, err = tx.Exec(`INSERT INTO changes
			(change_id, session_id, position, kind, database_name, schema_name,
			 table_name, primary_key, old_values, new_values, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			row.changeID, session, i, row.kind, row.database, row.schema,
			row.table, row.primaryKey, row.oldValues, row.newValues, row.createdAt)
		if err != nil {
			return fmt.Errorf("saving change %s: %w", row.changeID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing save transaction: %w", err)
	}
	s.log.Debug("session saved", "session", session, "changes", len(changes))
	return nil
}

// LoadSession returns the stored log for a session in saved order.
func (s *Store) LoadSession(session string) ([]types.Change, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.attached {
		return nil, types.ErrStoreDetached
	}

	rows, err := s.db.Query(`SELECT change_id, kind, database_name, schema_name,
		table_name, primary_key, old_values, new_values, created_at
		FROM changes WHERE session_id = ? ORDER BY position`, session)
	if err != nil {
		return nil, fmt.Errorf("loading session %s: %w", session, err)
	}
	defer rows.Close()

	var out []types.Change
	for rows.Next() {
		var row changeRow
		err := rows.Scan(&row.changeID, &row.kind, &row.database, &row.schema,
			&row.table, &row.primaryKey, &row.oldValues, &row.newValues, &row.createdAt)
		if err != nil {
			return nil, fmt.Errorf("scanning session %s: %w", session, err)
		}
		c, err := decodeChange(row)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading session %s: %w", session, err)
	}
	return out, nil
}

// DeleteSession removes a session's stored log.
func (s *Store) DeleteSession(session string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.attached {
		return types.ErrStoreDetached
	}
	if _, err := s.db.Exec("DELETE FROM changes WHERE session_id = ?", session); err != nil {
		return fmt.Errorf("deleting session %s: %w", session, err)
	}
	return nil
}

// Sessions returns the IDs of all sessions with stored changes, sorted.
func (s *Store) Sessions() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.attached {
		return nil, types.ErrStoreDetached
	}

	rows, err := s.db.Query("SELECT DISTINCT session_id FROM changes ORDER BY session_id")
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning session id: %w", err)
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading sessions: %w", err)
	}
	return out, nil
}
