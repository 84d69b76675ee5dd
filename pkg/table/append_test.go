package table_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabular-labs/tabular/pkg/changelog"
	"github.com/tabular-labs/tabular/pkg/core"
	"github.com/tabular-labs/tabular/pkg/table"
)

func newScriptedSource(rows int) *fakeTable {
	src := newFakeTable(core.Integer)
	src.AddColumn("n", core.Integer)
	for i := 0; i < rows; i++ {
		src.addRow(core.NewIntKey(int64(i)), int64(i*10))
	}
	return src
}

func TestAppend_CommitBatches(t *testing.T) {
	tests := []struct {
		rows        int
		wantBegins  int
		wantCommits int
	}{
		{0, 0, 0},
		{1, 1, 1},
		{100, 1, 1},
		{4095, 1, 1},
		{4096, 1, 1},
		{4097, 2, 2},
		{8192, 2, 2},
		{10000, 3, 3},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d rows", tt.rows), func(t *testing.T) {
			src := newScriptedSource(tt.rows)
			dst := newFakeTable()

			require.NoError(t, table.Append(context.Background(), dst, src))

			assert.Equal(t, tt.wantBegins, dst.begins, "begin count")
			assert.Equal(t, tt.wantCommits, dst.commits, "commit count")
			assert.Len(t, dst.rows, tt.rows, "row count")
		})
	}
}

func TestAppend_AdoptsSchemaOnEmptyDestination(t *testing.T) {
	src := newFakeTable(core.Integer, core.Text)
	require.NoError(t, src.AddColumn("id", core.Integer, core.NotNull(), core.Unique()))
	require.NoError(t, src.AddColumn("ratio", core.Double, core.WithDecimals(2)))
	require.NoError(t, src.AddColumn("note", core.Text))

	dst := newFakeTable()
	require.NoError(t, table.Append(context.Background(), dst, src))

	assert.Equal(t, []core.ColumnType{core.Integer, core.Text}, dst.KeyType())
	require.Equal(t, 3, dst.NumFields(0))

	assert.Equal(t, "id", dst.ColumnName(0, 0))
	assert.Equal(t, core.Integer, dst.ColumnType(0, 0))
	assert.False(t, dst.ColumnNullable(0, 0))
	assert.True(t, dst.ColumnUnique(0, 0))

	assert.Equal(t, "ratio", dst.ColumnName(1, 0))
	assert.Equal(t, 2, dst.ColumnDecimals(1, 0))

	assert.Equal(t, "note", dst.ColumnName(2, 0))
	assert.True(t, dst.ColumnNullable(2, 0))
	assert.Equal(t, -1, dst.ColumnDecimals(2, 0))
}

func TestAppend_KeepsExistingSchema(t *testing.T) {
	src := newScriptedSource(2)

	dst := newFakeTable(core.Text)
	require.NoError(t, dst.AddColumn("existing", core.Text))

	require.NoError(t, table.Append(context.Background(), dst, src))

	assert.Equal(t, 1, dst.NumFields(0), "a non-empty destination keeps its schema")
	assert.Equal(t, []core.ColumnType{core.Text}, dst.KeyType())
	assert.Len(t, dst.rows, 2, "rows still flow")
}

func TestAppend_BindsByFamily(t *testing.T) {
	src := newFakeTable(core.Integer)
	src.AddColumn("count", core.Integer)
	src.AddColumn("ratio", core.Double)
	src.AddColumn("name", core.Text)
	src.AddColumn("payload", core.Blob)
	src.addRow(core.NewIntKey(1), int64(7), 2.5, "alpha", "raw-bytes")
	src.addRow(core.NewIntKey(2), nil, nil, nil, nil)

	dst := newFakeTable()
	require.NoError(t, table.Append(context.Background(), dst, src))
	require.Len(t, dst.rows, 2)

	// Values travel through their binding family; Blob has none and
	// arrives null even when the source holds bytes.
	assert.Equal(t, []any{int64(7), 2.5, "alpha", nil}, dst.rows[0].values)
	assert.Equal(t, core.NewIntKey(1), dst.rows[0].key)

	// Null fields stay null.
	assert.Equal(t, []any{nil, nil, nil, nil}, dst.rows[1].values)
}

func TestAppend_EmptySourceStillAdoptsSchema(t *testing.T) {
	src := newFakeTable(core.Integer)
	require.NoError(t, src.AddColumn("n", core.Integer))

	dst := newFakeTable()
	require.NoError(t, table.Append(context.Background(), dst, src))

	assert.Equal(t, 0, dst.begins, "empty source opens no transaction")
	assert.Equal(t, 0, dst.commits)
	assert.Empty(t, dst.rows)
	assert.Equal(t, 1, dst.NumFields(0), "schema is adopted before scanning")
}

func TestAppend_MergesChangeLogs(t *testing.T) {
	src := newScriptedSource(1)
	src.Log().Record(changelog.Change{Op: changelog.OpInsert, Key: core.NewIntKey(0)})
	src.Log().Record(changelog.Change{Op: changelog.OpRemove, Key: core.NewIntKey(5)})

	dst := newFakeTable()
	dst.Log().Record(changelog.Change{Op: changelog.OpClear})

	require.NoError(t, table.Append(context.Background(), dst, src))

	changes := dst.Log().Changes()
	require.Len(t, changes, 3, "source history follows destination history")
	assert.Equal(t, changelog.OpClear, changes[0].Op)
	assert.Equal(t, changelog.OpInsert, changes[1].Op)
	assert.Equal(t, changelog.OpRemove, changes[2].Op)

	assert.Equal(t, 2, src.Log().Len(), "source log is unchanged")
}

func TestAssignAll(t *testing.T) {
	f := newFakeTable(core.Integer)
	f.AddColumn("a", core.Text)
	f.AddColumn("b", core.Integer)
	f.AddColumn("c", core.Double)

	cur, err := table.AssignAll(context.Background(), f)
	require.NoError(t, err)
	require.NotNil(t, cur)

	assert.Equal(t, []int{0, 1, 2}, f.assignCols)
}
