// Shared helpers for lens CLI commands.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/mesh-intelligence/rowdelta/pkg/overlay"
	"github.com/mesh-intelligence/rowdelta/pkg/sqlite"
	"github.com/mesh-intelligence/rowdelta/pkg/types"
)

// buildConfig assembles the library Config from the resolved data directory
// and the loaded config.yaml values.
func buildConfig() (types.Config, error) {
	dataDir, err := resolveDataDir()
	if err != nil {
		return types.Config{}, fmt.Errorf("resolve data dir: %w", err)
	}

	cfg := types.Config{
		DataDir:       dataDir,
		DeleteDisplay: configDeleteDisplay,
	}
	if configCacheTTL != "" {
		ttl, err := time.ParseDuration(configCacheTTL)
		if err != nil {
			return types.Config{}, fmt.Errorf("parse %s: %w", cfgKeyCacheTTL, err)
		}
		cfg.CacheTTL = ttl
	}
	if err := cfg.Validate(); err != nil {
		return types.Config{}, err
	}
	return cfg, nil
}

// attachStore opens the SQLite change store under the resolved data
// directory. The caller must defer store.Detach().
func attachStore(cfg types.Config) (types.ChangeStore, error) {
	store := sqlite.NewStore()
	if err := store.Attach(cfg); err != nil {
		return nil, fmt.Errorf("attach change store: %w", err)
	}
	return store, nil
}

// sessionFromStore loads a session's stored change log into a fresh overlay
// session.
func sessionFromStore(store types.ChangeStore, cfg types.Config, id string) (*overlay.Session, error) {
	changes, err := store.LoadSession(id)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	sessions, err := overlay.NewStore(cfg)
	if err != nil {
		return nil, err
	}
	sess := sessions.Session(id)
	if err := sess.Import(changes); err != nil {
		return nil, fmt.Errorf("restore session %s: %w", id, err)
	}
	return sess, nil
}

// persistSession writes a session's current change log back to the store.
func persistSession(store types.ChangeStore, sess *overlay.Session) error {
	if err := store.SaveSession(sess.ID(), sess.Export()); err != nil {
		return fmt.Errorf("save session %s: %w", sess.ID(), err)
	}
	return nil
}

// readResultSet decodes a result-set JSON file and checks its row-width
// invariant.
func readResultSet(path string) (*types.ResultSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rs types.ResultSet
	if err := json.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := rs.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &rs, nil
}

// readChanges decodes a JSON file holding either one change object or an
// array of changes.
func readChanges(path string) ([]types.Change, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var changes []types.Change
		if err := json.Unmarshal(data, &changes); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		return changes, nil
	}
	var change types.Change
	if err := json.Unmarshal(data, &change); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return []types.Change{change}, nil
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// diffMarkers maps diff statuses to their one-character row prefix.
var diffMarkers = map[types.DiffStatus]string{
	types.DiffAdded:     "+",
	types.DiffRemoved:   "-",
	types.DiffModified:  "~",
	types.DiffUnchanged: " ",
}

// renderRow joins a row's values for text output.
func renderRow(row types.Row) string {
	parts := make([]string, len(row))
	for i, v := range row {
		parts[i] = v.String()
	}
	return strings.Join(parts, "\t")
}

// renderDiff writes the classified rows as marker-prefixed lines.
func renderDiff(rows []types.DiffRow) {
	for _, r := range rows {
		row := r.Right
		if r.Status == types.DiffRemoved {
			row = r.Left
		}
		line := diffMarkers[r.Status] + " " + renderRow(row)
		if r.Status == types.DiffModified {
			var cols []string
			for c := range r.ChangedColumns {
				cols = append(cols, c)
			}
			line += "\t(" + strings.Join(sortedStrings(cols), ", ") + ")"
		}
		fmt.Println(line)
	}
}

// renderResultSet writes a header line and the rows, prefixing flagged rows
// with their projection marker.
func renderResultSet(rs *types.ResultSet, flags map[int]types.RowFlags) {
	fmt.Println("  " + strings.Join(rs.ColumnNames(), "\t"))
	for i, row := range rs.Rows {
		marker := "  "
		switch f := flags[i]; {
		case f.Inserted:
			marker = "+ "
		case f.Deleted:
			marker = "x "
		case f.Modified:
			marker = "~ "
		}
		fmt.Println(marker + renderRow(row))
	}
}

func sortedStrings(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}
