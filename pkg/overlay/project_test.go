package overlay

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/rowdelta/pkg/types"
)

func baseResultSet() *types.ResultSet {
	return &types.ResultSet{
		Columns: []types.Column{
			{Name: "id", DeclaredType: "integer"},
			{Name: "name", DeclaredType: "text"},
			{Name: "qty", DeclaredType: "integer"},
		},
		Rows: []types.Row{
			{types.Number(1), types.Text("alpha"), types.Number(10)},
			{types.Number(2), types.Text("beta"), types.Number(20)},
			{types.Number(3), types.Text("gamma"), types.Number(30)},
		},
	}
}

var pkID = []string{"id"}

func TestProjectPlainBase(t *testing.T) {
	s := newTestSession(t)
	base := baseResultSet()

	out, flags, err := s.Project(testNS, "items", base, pkID)
	require.NoError(t, err)
	assert.Equal(t, base.Rows, out.Rows)
	assert.Equal(t, base.Columns, out.Columns)
	assert.Empty(t, flags)
}

func TestProjectUpdateOverlay(t *testing.T) {
	s := newTestSession(t)
	base := baseResultSet()

	_, err := s.Record(updateChange("items", types.RowKey{"id": types.Number(2)},
		map[string]types.Value{"name": types.Text("BETA"), "ghost": types.Number(0)}))
	require.NoError(t, err)

	out, flags, err := s.Project(testNS, "items", base, pkID)
	require.NoError(t, err)
	require.Len(t, out.Rows, 3)

	// Only the matching columns are overlaid; unknown columns are ignored.
	assert.True(t, out.Rows[1][1].Equal(types.Text("BETA")))
	assert.True(t, out.Rows[1][2].Equal(types.Number(20)))
	assert.Equal(t, types.RowFlags{Modified: true, ModifiedColumns: []string{"name"}}, flags[1])

	// The base result set is untouched.
	assert.True(t, base.Rows[1][1].Equal(types.Text("beta")))
}

func TestProjectDeleteStrikethrough(t *testing.T) {
	store, err := NewStore(types.Config{DeleteDisplay: types.DeleteDisplayStrikethrough})
	require.NoError(t, err)
	s := store.Session("sess")
	base := baseResultSet()

	_, err = s.Record(deleteChange("items", types.RowKey{"id": types.Number(1)}))
	require.NoError(t, err)

	out, flags, err := s.Project(testNS, "items", base, pkID)
	require.NoError(t, err)
	require.Len(t, out.Rows, 3, "strikethrough keeps deleted rows")
	assert.Equal(t, types.RowFlags{Deleted: true}, flags[0])
}

func TestProjectDeleteHidden(t *testing.T) {
	store, err := NewStore(types.Config{DeleteDisplay: types.DeleteDisplayHidden})
	require.NoError(t, err)
	s := store.Session("sess")
	base := baseResultSet()

	_, err = s.Record(deleteChange("items", types.RowKey{"id": types.Number(1)}))
	require.NoError(t, err)

	out, flags, err := s.Project(testNS, "items", base, pkID)
	require.NoError(t, err)
	require.Len(t, out.Rows, 2, "hidden drops deleted rows")
	assert.True(t, out.Rows[0][0].Equal(types.Number(2)))
	// Flag indexes refer to output rows, which shifted up by one.
	assert.Empty(t, flags)
}

func TestProjectPerSessionPolicyOverride(t *testing.T) {
	store, err := NewStore(types.Config{DeleteDisplay: types.DeleteDisplayStrikethrough})
	require.NoError(t, err)
	s := store.Session("sess")
	base := baseResultSet()

	_, err = s.Record(deleteChange("items", types.RowKey{"id": types.Number(1)}))
	require.NoError(t, err)

	assert.ErrorIs(t, s.SetDeleteDisplay("greyed"), types.ErrInvalidDeleteDisplay)
	require.NoError(t, s.SetDeleteDisplay(types.DeleteDisplayHidden))
	assert.Equal(t, types.DeleteDisplayHidden, s.DeleteDisplay())

	out, _, err := s.Project(testNS, "items", base, pkID)
	require.NoError(t, err)
	assert.Len(t, out.Rows, 2, "session override must win over the store default")

	other := store.Session("other")
	assert.Equal(t, types.DeleteDisplayStrikethrough, other.DeleteDisplay(),
		"other sessions keep the store default")
}

func TestProjectInsertAppendsWithNullFill(t *testing.T) {
	s := newTestSession(t)
	base := baseResultSet()

	_, err := s.Record(insertChange("items", map[string]types.Value{
		"id": types.Number(4), "name": types.Text("delta"),
		// qty omitted on purpose.
	}))
	require.NoError(t, err)

	out, flags, err := s.Project(testNS, "items", base, pkID)
	require.NoError(t, err)
	require.Len(t, out.Rows, 4)

	last := out.Rows[3]
	assert.True(t, last[0].Equal(types.Number(4)))
	assert.True(t, last[1].Equal(types.Text("delta")))
	assert.True(t, last[2].IsNull(), "omitted column surfaces as null")
	assert.Equal(t, types.RowFlags{Inserted: true}, flags[3])
}

func TestProjectIgnoresOtherTables(t *testing.T) {
	s := newTestSession(t)
	base := baseResultSet()

	_, err := s.Record(deleteChange("other_table", types.RowKey{"id": types.Number(1)}))
	require.NoError(t, err)
	_, err = s.Record(insertChange("other_table", map[string]types.Value{"id": types.Number(9)}))
	require.NoError(t, err)

	out, flags, err := s.Project(testNS, "items", base, pkID)
	require.NoError(t, err)
	assert.Len(t, out.Rows, 3)
	assert.Empty(t, flags)
}

func TestProjectIdempotent(t *testing.T) {
	s := newTestSession(t)
	base := baseResultSet()

	_, err := s.Record(updateChange("items", types.RowKey{"id": types.Number(3)},
		map[string]types.Value{"qty": types.Number(99)}))
	require.NoError(t, err)
	_, err = s.Record(insertChange("items", map[string]types.Value{"id": types.Number(4)}))
	require.NoError(t, err)
	_, err = s.Record(deleteChange("items", types.RowKey{"id": types.Number(1)}))
	require.NoError(t, err)

	first, firstFlags, err := s.Project(testNS, "items", base, pkID)
	require.NoError(t, err)
	second, secondFlags, err := s.Project(testNS, "items", base, pkID)
	require.NoError(t, err)

	// Byte-identical output across calls with unchanged inputs.
	fj, err := json.Marshal(first)
	require.NoError(t, err)
	sj, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, fj, sj)
	assert.Equal(t, firstFlags, secondFlags)
}

func TestProjectRejectsMalformedBase(t *testing.T) {
	s := newTestSession(t)
	base := baseResultSet()
	base.Rows = append(base.Rows, types.Row{types.Number(9)})

	_, _, err := s.Project(testNS, "items", base, pkID)
	assert.ErrorIs(t, err, types.ErrColumnCountMismatch)
}

func TestProjectDeletedRowStillShowsPendingUpdate(t *testing.T) {
	s := newTestSession(t)
	base := baseResultSet()

	_, err := s.Record(updateChange("items", types.RowKey{"id": types.Number(2)},
		map[string]types.Value{"name": types.Text("BETA")}))
	require.NoError(t, err)
	_, err = s.Record(deleteChange("items", types.RowKey{"id": types.Number(2)}))
	require.NoError(t, err)

	out, flags, err := s.Project(testNS, "items", base, pkID)
	require.NoError(t, err)
	require.Len(t, out.Rows, 3)
	assert.True(t, out.Rows[1][1].Equal(types.Text("BETA")))
	assert.Equal(t, types.RowFlags{
		Deleted: true, Modified: true, ModifiedColumns: []string{"name"},
	}, flags[1])
}

func BenchmarkProject(b *testing.B) {
	store, err := NewStore(types.Config{})
	if err != nil {
		b.Fatal(err)
	}
	s := store.Session("bench")

	base := &types.ResultSet{Columns: []types.Column{{Name: "id"}, {Name: "name"}}}
	for i := 0; i < 1000; i++ {
		base.Rows = append(base.Rows, types.Row{
			types.Number(float64(i)), types.Text("row"),
		})
	}
	for i := 0; i < 50; i++ {
		_, err := s.Record(types.Change{
			Kind: types.ChangeUpdate, Namespace: testNS, Table: "items",
			PrimaryKey: types.RowKey{"id": types.Number(float64(i * 20))},
			NewValues:  map[string]types.Value{"name": types.Text("edited")},
		})
		if err != nil {
			b.Fatal(err)
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := s.Project(testNS, "items", base, []string{"id"}); err != nil {
			b.Fatal(err)
		}
	}
}
