package table_test

import (
	"context"
	"fmt"
	"strconv"

	"github.com/tabular-labs/tabular/pkg/core"
	"github.com/tabular-labs/tabular/pkg/table"
)

// fakeTable is a scripted in-memory Table for exercising the package's
// free functions. It counts transaction calls so tests can check batch
// boundaries.
type fakeTable struct {
	table.Base

	cols []core.Column
	rows []fakeRow

	begins     int
	commits    int
	assignCols []int
}

type fakeRow struct {
	key core.Key
	// values holds one entry per column: int64, float64, string, or
	// nil for null.
	values []any
}

func newFakeTable(keyType ...core.ColumnType) *fakeTable {
	return &fakeTable{Base: table.NewBase(keyType...)}
}

func (f *fakeTable) addRow(key core.Key, values ...any) {
	f.rows = append(f.rows, fakeRow{key: key, values: values})
}

func (f *fakeTable) SeekBegin(_ context.Context, _ int) (table.Cursor, error) {
	if len(f.rows) == 0 {
		return nil, table.ErrNotFound
	}
	return &fakeReadCursor{t: f}, nil
}

func (f *fakeTable) Seek(_ context.Context, key core.Key) (table.Cursor, error) {
	for i := range f.rows {
		if f.rows[i].key == key {
			return &fakeReadCursor{t: f, idx: i}, nil
		}
	}
	return nil, table.ErrNotFound
}

func (f *fakeTable) Insert(_ context.Context, key core.Key) (table.Cursor, error) {
	return &fakeWriteCursor{t: f, key: key}, nil
}

func (f *fakeTable) InsertRow(_ context.Context, _ int) (table.Cursor, error) {
	return &fakeWriteCursor{t: f, key: core.NewIntKey(int64(len(f.rows) + 1))}, nil
}

func (f *fakeTable) Increment(_ context.Context, key core.Key) (table.Cursor, error) {
	return &fakeWriteCursor{t: f, key: key}, nil
}

func (f *fakeTable) Assign(_ context.Context, columns []int) (table.Cursor, error) {
	f.assignCols = append([]int(nil), columns...)
	return &fakeWriteCursor{t: f, key: core.Key{}}, nil
}

func (f *fakeTable) Remove(_ context.Context, key core.Key) error {
	for i := range f.rows {
		if f.rows[i].key == key {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeTable) Clear(_ context.Context) error {
	f.rows = nil
	return nil
}

func (f *fakeTable) Copy(_ context.Context) (table.Table, error) {
	return nil, fmt.Errorf("fake does not copy")
}

func (f *fakeTable) AddColumn(name string, typ core.ColumnType, opts ...core.ColumnOption) error {
	f.cols = append(f.cols, core.NewColumn(name, typ, opts...))
	return nil
}

func (f *fakeTable) NumFields(_ int) int { return len(f.cols) }

func (f *fakeTable) ColumnType(col, _ int) core.ColumnType { return f.cols[col].Type }
func (f *fakeTable) ColumnName(col, _ int) string          { return f.cols[col].Name }
func (f *fakeTable) ColumnNullable(col, _ int) bool        { return f.cols[col].Nullable }
func (f *fakeTable) ColumnUnique(col, _ int) bool          { return f.cols[col].Unique }
func (f *fakeTable) ColumnDecimals(col, _ int) int         { return f.cols[col].Decimals }

func (f *fakeTable) Begin(_ context.Context) error {
	f.begins++
	return nil
}

func (f *fakeTable) Commit(_ context.Context) error {
	f.commits++
	return nil
}

var _ table.Table = (*fakeTable)(nil)

// fakeReadCursor walks the fake's rows.
type fakeReadCursor struct {
	t   *fakeTable
	idx int
}

func (c *fakeReadCursor) RowKey() core.Key { return c.t.rows[c.idx].key }
func (c *fakeReadCursor) NumFields() int   { return len(c.t.cols) }

func (c *fakeReadCursor) ColumnType(col int) core.ColumnType { return c.t.cols[col].Type }

func (c *fakeReadCursor) IsNull(col int) bool {
	return c.t.rows[c.idx].values[col] == nil
}

func (c *fakeReadCursor) Int(col int) int64 {
	v, _ := c.t.rows[c.idx].values[col].(int64)
	return v
}

func (c *fakeReadCursor) Float(col int) float64 {
	v, _ := c.t.rows[c.idx].values[col].(float64)
	return v
}

func (c *fakeReadCursor) Text(col int) string {
	switch v := c.t.rows[c.idx].values[col].(type) {
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	default:
		return ""
	}
}

func (c *fakeReadCursor) BindInt(int64, bool)     {}
func (c *fakeReadCursor) BindFloat(float64, bool) {}
func (c *fakeReadCursor) BindText(string, bool)   {}
func (c *fakeReadCursor) Execute() error          { return nil }

func (c *fakeReadCursor) Next() bool {
	c.idx++
	return c.idx < len(c.t.rows)
}

func (c *fakeReadCursor) Err() error   { return nil }
func (c *fakeReadCursor) Close() error { return nil }

var _ table.Cursor = (*fakeReadCursor)(nil)

// fakeWriteCursor collects positional binds and stores a row on Execute.
type fakeWriteCursor struct {
	t     *fakeTable
	key   core.Key
	binds []fakeBind
}

type fakeBind struct {
	kind    byte // 'i', 'f' or 't'
	i       int64
	f       float64
	s       string
	present bool
}

func (c *fakeWriteCursor) RowKey() core.Key { return c.key }
func (c *fakeWriteCursor) NumFields() int   { return len(c.t.cols) }

func (c *fakeWriteCursor) ColumnType(col int) core.ColumnType { return c.t.cols[col].Type }

func (c *fakeWriteCursor) IsNull(int) bool   { return true }
func (c *fakeWriteCursor) Int(int) int64     { return 0 }
func (c *fakeWriteCursor) Float(int) float64 { return 0 }
func (c *fakeWriteCursor) Text(int) string   { return "" }

func (c *fakeWriteCursor) BindInt(v int64, present bool) {
	c.binds = append(c.binds, fakeBind{kind: 'i', i: v, present: present})
}

func (c *fakeWriteCursor) BindFloat(v float64, present bool) {
	c.binds = append(c.binds, fakeBind{kind: 'f', f: v, present: present})
}

func (c *fakeWriteCursor) BindText(v string, present bool) {
	c.binds = append(c.binds, fakeBind{kind: 't', s: v, present: present})
}

func (c *fakeWriteCursor) Execute() error {
	values := make([]any, len(c.binds))
	for i, b := range c.binds {
		if !b.present {
			continue
		}
		switch b.kind {
		case 'i':
			values[i] = b.i
		case 'f':
			values[i] = b.f
		default:
			values[i] = b.s
		}
	}
	c.t.rows = append(c.t.rows, fakeRow{key: c.key, values: values})
	c.binds = c.binds[:0]
	return nil
}

func (c *fakeWriteCursor) Next() bool   { return false }
func (c *fakeWriteCursor) Err() error   { return nil }
func (c *fakeWriteCursor) Close() error { return nil }

var _ table.Cursor = (*fakeWriteCursor)(nil)
