package sqlite

// Schema DDL for the changelog backup store. One row per pending change;
// position preserves commit order within a session.
const createChanges = `CREATE TABLE IF NOT EXISTS changes (
    change_id TEXT NOT NULL,
    session_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    kind TEXT NOT NULL,
    database_name TEXT NOT NULL,
    schema_name TEXT,
    table_name TEXT NOT NULL,
    primary_key TEXT,
    old_values TEXT,
    new_values TEXT,
    created_at TEXT NOT NULL,
    PRIMARY KEY (session_id, position)
);`

const createChangesSessionIndex = `CREATE INDEX IF NOT EXISTS idx_changes_session
    ON changes (session_id);`
