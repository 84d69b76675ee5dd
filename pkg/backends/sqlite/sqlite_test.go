package sqlite

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabular-labs/tabular/internal/testutil"
	"github.com/tabular-labs/tabular/pkg/backends/sqltable"
	"github.com/tabular-labs/tabular/pkg/core"
	"github.com/tabular-labs/tabular/pkg/table"
)

func testConfig(t *testing.T) core.Config {
	t.Helper()
	return core.Config{
		Backend: "sqlite",
		Path:    filepath.Join(t.TempDir(), "test.db"),
		Table:   "people",
		Options: map[string]string{"journal_mode": "WAL", "busy_timeout_ms": "500"},
	}
}

func openPeopleTable(t *testing.T, cfg core.Config) *sqltable.Table {
	t.Helper()

	tbl, err := Open(context.Background(), cfg, testutil.NewTestLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = tbl.Close() })

	tbl.SetKeyType([]core.ColumnType{core.TextKey})
	if tbl.NumFields(0) == 0 {
		require.NoError(t, tbl.AddColumn("name", core.Text))
		require.NoError(t, tbl.AddColumn("age", core.Integer))
		require.NoError(t, tbl.AddColumn("score", core.Double))
	}
	return tbl
}

func insertPerson(t *testing.T, tbl *sqltable.Table, key core.Key, name string, age int64, score float64) {
	t.Helper()

	cur, err := tbl.Insert(context.Background(), key)
	require.NoError(t, err)
	cur.BindText(name, true)
	cur.BindInt(age, true)
	cur.BindFloat(score, true)
	require.NoError(t, cur.Execute())
	require.NoError(t, cur.Close())
}

func TestOpenRequiresTableName(t *testing.T) {
	cfg := testConfig(t)
	cfg.Table = ""

	_, err := Open(context.Background(), cfg, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "table not specified")
}

func TestInsertAndSeek(t *testing.T) {
	ctx := context.Background()
	tbl := openPeopleTable(t, testConfig(t))
	key := core.NewTextKey("ada")
	insertPerson(t, tbl, key, "Ada", 36, 9.5)

	cur, err := tbl.Seek(ctx, key)
	require.NoError(t, err)
	defer cur.Close()

	assert.Equal(t, key, cur.RowKey())
	assert.Equal(t, "Ada", cur.Text(0))
	assert.Equal(t, int64(36), cur.Int(1))
	assert.Equal(t, 9.5, cur.Float(2))
	assert.False(t, cur.Next())
}

func TestInsertReplacesExistingRow(t *testing.T) {
	ctx := context.Background()
	tbl := openPeopleTable(t, testConfig(t))
	key := core.NewTextKey("ada")
	insertPerson(t, tbl, key, "Ada", 36, 9.5)
	insertPerson(t, tbl, key, "Ada Lovelace", 37, 9.9)

	cur, err := tbl.Seek(ctx, key)
	require.NoError(t, err)
	defer cur.Close()
	assert.Equal(t, "Ada Lovelace", cur.Text(0))
	assert.Equal(t, int64(37), cur.Int(1))
}

func TestReopenIntrospectsSchema(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)

	tbl := openPeopleTable(t, cfg)
	insertPerson(t, tbl, core.NewTextKey("ada"), "Ada", 36, 9.5)
	require.NoError(t, tbl.Close())

	reopened, err := Open(ctx, cfg, nil)
	require.NoError(t, err)
	defer reopened.Close()

	require.Equal(t, 3, reopened.NumFields(0))
	assert.Equal(t, "name", reopened.ColumnName(0, 0))
	assert.Equal(t, core.Text, reopened.ColumnType(0, 0))
	assert.Equal(t, core.Integer, reopened.ColumnType(1, 0))
	assert.Equal(t, core.Double, reopened.ColumnType(2, 0))

	cur, err := reopened.Seek(ctx, core.NewTextKey("ada"))
	require.NoError(t, err)
	defer cur.Close()
	assert.Equal(t, "Ada", cur.Text(0))
}

func TestIncrementFoldsValues(t *testing.T) {
	ctx := context.Background()
	tbl := openPeopleTable(t, testConfig(t))
	key := core.NewTextKey("ada")
	insertPerson(t, tbl, key, "Ada", 36, 9.5)

	cur, err := tbl.Increment(ctx, key)
	require.NoError(t, err)
	cur.BindText("", false)
	cur.BindInt(1, true)
	cur.BindFloat(0.5, true)
	require.NoError(t, cur.Execute())
	require.NoError(t, cur.Close())

	got, err := tbl.Seek(ctx, key)
	require.NoError(t, err)
	defer got.Close()
	assert.Equal(t, "Ada", got.Text(0), "absent binds keep the old value")
	assert.Equal(t, int64(37), got.Int(1))
	assert.Equal(t, 10.0, got.Float(2))
}

func TestIncrementCreatesAbsentRow(t *testing.T) {
	ctx := context.Background()
	tbl := openPeopleTable(t, testConfig(t))
	key := core.NewTextKey("new")

	cur, err := tbl.Increment(ctx, key)
	require.NoError(t, err)
	cur.BindText("New", true)
	cur.BindInt(5, true)
	require.NoError(t, cur.Execute())
	require.NoError(t, cur.Close())

	got, err := tbl.Seek(ctx, key)
	require.NoError(t, err)
	defer got.Close()
	assert.Equal(t, int64(5), got.Int(1))
	assert.True(t, got.IsNull(2))
}

func TestAssignUpdatesRow(t *testing.T) {
	ctx := context.Background()
	tbl := openPeopleTable(t, testConfig(t))
	insertPerson(t, tbl, core.NewTextKey("ada"), "Ada", 36, 9.5)

	cur, err := tbl.Assign(ctx, []int{1})
	require.NoError(t, err)
	cur.BindInt(37, true)
	cur.BindText("ada", true)
	require.NoError(t, cur.Execute())
	require.NoError(t, cur.Close())

	got, err := tbl.Seek(ctx, core.NewTextKey("ada"))
	require.NoError(t, err)
	defer got.Close()
	assert.Equal(t, int64(37), got.Int(1))
	assert.Equal(t, "Ada", got.Text(0))
}

func TestFilterPushdown(t *testing.T) {
	ctx := context.Background()
	tbl := openPeopleTable(t, testConfig(t))
	insertPerson(t, tbl, core.NewTextKey("ada"), "Ada", 36, 9.5)
	insertPerson(t, tbl, core.NewTextKey("grace"), "Grace", 85, 8.0)
	insertPerson(t, tbl, core.NewTextKey("alan"), "Alan", 36, 7.5)

	tbl.SetFilter(1, map[core.Key]struct{}{core.NewIntKey(36): {}})

	cur, err := tbl.SeekBegin(ctx, 0)
	require.NoError(t, err)
	var names []string
	for {
		names = append(names, cur.Text(0))
		if !cur.Next() {
			break
		}
	}
	require.NoError(t, cur.Err())
	require.NoError(t, cur.Close())

	// Scan order follows the key column.
	assert.Equal(t, []string{"Ada", "Alan"}, names)
}

func TestSeekIgnoresFilters(t *testing.T) {
	ctx := context.Background()
	tbl := openPeopleTable(t, testConfig(t))
	key := core.NewTextKey("ada")
	insertPerson(t, tbl, key, "Ada", 36, 9.5)

	tbl.SetFilter(1, map[core.Key]struct{}{core.NewIntKey(99): {}})

	cur, err := tbl.Seek(ctx, key)
	require.NoError(t, err)
	defer cur.Close()
	assert.Equal(t, "Ada", cur.Text(0))
}

func TestTransactionRollback(t *testing.T) {
	ctx := context.Background()
	tbl := openPeopleTable(t, testConfig(t))

	require.NoError(t, tbl.Begin(ctx))
	cur, err := tbl.Insert(ctx, core.NewTextKey("ada"))
	require.NoError(t, err)
	cur.BindText("Ada", true)
	cur.BindInt(36, true)
	cur.BindFloat(9.5, true)
	require.NoError(t, cur.Execute())
	require.NoError(t, tbl.Rollback(ctx))

	_, err = tbl.Seek(ctx, core.NewTextKey("ada"))
	assert.ErrorIs(t, err, table.ErrNotFound)
}

func TestRemoveAndClear(t *testing.T) {
	ctx := context.Background()
	tbl := openPeopleTable(t, testConfig(t))
	insertPerson(t, tbl, core.NewTextKey("ada"), "Ada", 36, 9.5)
	insertPerson(t, tbl, core.NewTextKey("grace"), "Grace", 85, 8.0)

	require.NoError(t, tbl.Remove(ctx, core.NewTextKey("ada")))
	_, err := tbl.Seek(ctx, core.NewTextKey("ada"))
	assert.ErrorIs(t, err, table.ErrNotFound)

	require.NoError(t, tbl.Clear(ctx))
	_, err = tbl.SeekBegin(ctx, 0)
	assert.ErrorIs(t, err, table.ErrNotFound)
	assert.Equal(t, 3, tbl.NumFields(0), "schema survives a clear")
}

func TestCopySnapshotsData(t *testing.T) {
	ctx := context.Background()
	tbl := openPeopleTable(t, testConfig(t))
	insertPerson(t, tbl, core.NewTextKey("ada"), "Ada", 36, 9.5)

	dupTable, err := tbl.Copy(ctx)
	require.NoError(t, err)
	dup := dupTable.(*sqltable.Table)

	assert.True(t, strings.HasPrefix(dup.Name(), "people_copy_"))
	assert.Equal(t, 0, dup.Log().Len())

	cur, err := dup.Seek(ctx, core.NewTextKey("ada"))
	require.NoError(t, err)
	assert.Equal(t, "Ada", cur.Text(0))
	require.NoError(t, cur.Close())

	// The copy is a snapshot: later writes to the original stay there.
	insertPerson(t, tbl, core.NewTextKey("grace"), "Grace", 85, 8.0)
	_, err = dup.Seek(ctx, core.NewTextKey("grace"))
	assert.ErrorIs(t, err, table.ErrNotFound)
}

func TestInsertRowAutoKeys(t *testing.T) {
	ctx := context.Background()
	tbl := openPeopleTable(t, testConfig(t))

	cur, err := tbl.InsertRow(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, core.NewIntKey(1), cur.RowKey())
	cur.BindText("first", true)
	require.NoError(t, cur.Execute())
	require.NoError(t, cur.Close())

	cur, err = tbl.InsertRow(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, core.NewIntKey(2), cur.RowKey())
	require.NoError(t, cur.Close())
}

func TestOpenThroughRegistry(t *testing.T) {
	cfg := testConfig(t)

	tbl, err := table.Open(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer tbl.Close()

	require.NoError(t, tbl.AddColumn("name", core.Text))
	assert.Equal(t, 1, tbl.NumFields(0))
}

func TestScanTypeMapping(t *testing.T) {
	assert.Equal(t, core.Integer, scanType("INTEGER"))
	assert.Equal(t, core.Integer, scanType("bigint"))
	assert.Equal(t, core.Double, scanType("REAL"))
	assert.Equal(t, core.Blob, scanType("BLOB"))
	assert.Equal(t, core.Text, scanType("VARCHAR"))
}

func TestTypeDDLMapping(t *testing.T) {
	assert.Equal(t, "INTEGER", typeDDL(core.NewColumn("a", core.DateTime)))
	assert.Equal(t, "REAL", typeDDL(core.NewColumn("b", core.Double)))
	assert.Equal(t, "TEXT", typeDDL(core.NewColumn("c", core.URL)))
	assert.Equal(t, "BLOB", typeDDL(core.NewColumn("d", core.Vector)))
}
