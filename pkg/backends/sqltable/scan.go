package sqltable

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/tabular-labs/tabular/pkg/core"
	"github.com/tabular-labs/tabular/pkg/table"
)

// selectList renders the key column plus every data column, quoted, in
// schema order.
func (t *Table) selectList() string {
	parts := make([]string, 0, len(t.cols)+1)
	parts = append(parts, t.dialect.Quote(keyColumn))
	for _, col := range t.cols {
		parts = append(parts, t.dialect.Quote(col.Name))
	}
	return strings.Join(parts, ", ")
}

// SeekBegin positions a read cursor on the first row the filters let
// through, in key order.
func (t *Table) SeekBegin(ctx context.Context, sheet int) (table.Cursor, error) {
	if sheet != 0 {
		return nil, fmt.Errorf("sheet %d out of range (table has 1)", sheet)
	}
	if !t.created {
		return nil, table.ErrNotFound
	}

	query, args := t.scanQuery()
	return t.query(ctx, query, args...)
}

// Seek positions a read cursor on the row at key. Filters do not apply
// to direct seeks.
func (t *Table) Seek(ctx context.Context, key core.Key) (table.Cursor, error) {
	if !t.created {
		return nil, table.ErrNotFound
	}

	q := fmt.Sprintf("SELECT %s FROM %s WHERE %s = %s",
		t.selectList(), t.dialect.Quote(t.name), t.dialect.Quote(keyColumn), t.dialect.Placeholder(1))
	return t.query(ctx, q, key.Encode())
}

// SeekRow positions a read cursor on the n-th visible row, counting in
// scan order from 0.
func (t *Table) SeekRow(ctx context.Context, row, sheet int) (table.Cursor, error) {
	if row < 0 {
		return nil, table.ErrNotFound
	}

	cur, err := t.SeekBegin(ctx, sheet)
	if err != nil {
		return nil, err
	}
	for i := 0; i < row; i++ {
		if cur.Next() {
			continue
		}
		err := cur.Err()
		_ = cur.Close()
		if err != nil {
			return nil, err
		}
		return nil, table.ErrNotFound
	}
	return cur, nil
}

// query runs a row-returning statement and wraps the result in a
// cursor positioned on the first row, or ErrNotFound when the result
// is empty.
func (t *Table) query(ctx context.Context, query string, args ...any) (table.Cursor, error) {
	if t.db == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	rows, err := t.runner().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", t.name, err)
	}

	cur := &rowCursor{t: t, rows: rows}
	if !cur.advance() {
		_ = rows.Close()
		if cur.err != nil {
			return nil, cur.err
		}
		return nil, table.ErrNotFound
	}
	return cur, nil
}

// scanCell receives one column of one row. Which member is scanned
// into depends on the column's binding family.
type scanCell struct {
	i sql.NullInt64
	f sql.NullFloat64
	s sql.NullString
}

// rowCursor walks a result set. Rows are scanned one ahead so RowKey
// and the readers always see the current row.
type rowCursor struct {
	t     *Table
	rows  *sql.Rows
	key   core.Key
	cells []scanCell
	err   error
}

func (c *rowCursor) advance() bool {
	if c.err != nil {
		return false
	}
	if !c.rows.Next() {
		if err := c.rows.Err(); err != nil {
			c.err = fmt.Errorf("failed to iterate rows: %w", err)
		}
		return false
	}

	var rawKey string
	cells := make([]scanCell, len(c.t.cols))
	dest := make([]any, 0, len(cells)+1)
	dest = append(dest, &rawKey)
	for i, col := range c.t.cols {
		switch col.Type.BindingClass() {
		case core.BindInteger:
			dest = append(dest, &cells[i].i)
		case core.BindFloat:
			dest = append(dest, &cells[i].f)
		default:
			dest = append(dest, &cells[i].s)
		}
	}
	if err := c.rows.Scan(dest...); err != nil {
		c.err = fmt.Errorf("failed to scan row: %w", err)
		return false
	}

	key, err := core.DecodeKey(rawKey)
	if err != nil {
		// Rows written by other tools may carry plain string keys.
		key = core.NewTextKey(rawKey)
	}
	c.key = key
	c.cells = cells
	return true
}

func (c *rowCursor) RowKey() core.Key { return c.key }
func (c *rowCursor) NumFields() int   { return len(c.t.cols) }

func (c *rowCursor) ColumnType(col int) core.ColumnType {
	if col < 0 || col >= len(c.t.cols) {
		return core.Text
	}
	return c.t.cols[col].Type
}

func (c *rowCursor) cell(col int) (scanCell, bool) {
	if col < 0 || col >= len(c.cells) {
		return scanCell{}, false
	}
	return c.cells[col], true
}

func (c *rowCursor) IsNull(col int) bool {
	v, ok := c.cell(col)
	if !ok {
		return true
	}
	switch c.t.cols[col].Type.BindingClass() {
	case core.BindInteger:
		return !v.i.Valid
	case core.BindFloat:
		return !v.f.Valid
	default:
		return !v.s.Valid
	}
}

func (c *rowCursor) Int(col int) int64 {
	v, ok := c.cell(col)
	if !ok {
		return 0
	}
	switch c.t.cols[col].Type.BindingClass() {
	case core.BindInteger:
		return v.i.Int64
	case core.BindFloat:
		return int64(v.f.Float64)
	default:
		n, _ := strconv.ParseInt(v.s.String, 10, 64)
		return n
	}
}

func (c *rowCursor) Float(col int) float64 {
	v, ok := c.cell(col)
	if !ok {
		return 0
	}
	switch c.t.cols[col].Type.BindingClass() {
	case core.BindInteger:
		return float64(v.i.Int64)
	case core.BindFloat:
		return v.f.Float64
	default:
		f, _ := strconv.ParseFloat(v.s.String, 64)
		return f
	}
}

func (c *rowCursor) Text(col int) string {
	v, ok := c.cell(col)
	if !ok {
		return ""
	}
	switch c.t.cols[col].Type.BindingClass() {
	case core.BindInteger:
		if !v.i.Valid {
			return ""
		}
		return strconv.FormatInt(v.i.Int64, 10)
	case core.BindFloat:
		if !v.f.Valid {
			return ""
		}
		if d := c.t.cols[col].Decimals; d >= 0 {
			return strconv.FormatFloat(v.f.Float64, 'f', d, 64)
		}
		return strconv.FormatFloat(v.f.Float64, 'g', -1, 64)
	default:
		return v.s.String
	}
}

func (c *rowCursor) BindInt(int64, bool)     {}
func (c *rowCursor) BindFloat(float64, bool) {}
func (c *rowCursor) BindText(string, bool)   {}

func (c *rowCursor) Execute() error {
	return fmt.Errorf("cursor is read-only")
}

func (c *rowCursor) Next() bool {
	return c.advance()
}

func (c *rowCursor) Err() error { return c.err }

func (c *rowCursor) Close() error {
	return c.rows.Close()
}

var _ table.Cursor = (*rowCursor)(nil)
