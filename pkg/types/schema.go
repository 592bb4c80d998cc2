package types

// SchemaColumn describes one column of an introspected table schema, as
// returned by the backend's describe-table call.
type SchemaColumn struct {
	Name         string `json:"name"`
	DeclaredType string `json:"declared_type"`
	Nullable     bool   `json:"nullable"`
	Default      string `json:"default,omitempty"`
	Position     int    `json:"position"`
}

// SchemaIndex describes one index on an introspected table.
type SchemaIndex struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
	Unique  bool     `json:"unique"`
	Primary bool     `json:"primary"`
}

// TableSchema is the introspected shape of one table: columns in position
// order, indexes, and the primary key column names the overlay engine needs
// to identify rows.
type TableSchema struct {
	Namespace         Namespace      `json:"namespace"`
	Name              string         `json:"name"`
	Columns           []SchemaColumn `json:"columns"`
	Indexes           []SchemaIndex  `json:"indexes,omitempty"`
	PrimaryKeyColumns []string       `json:"primary_key_columns,omitempty"`
}

// Routine kinds reported by backends that distinguish them.
const (
	RoutineFunction  = "function"
	RoutineProcedure = "procedure"
)

// Routine describes one stored routine in a namespace.
type Routine struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}
