package sqltable

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/tabular-labs/tabular/pkg/changelog"
	"github.com/tabular-labs/tabular/pkg/core"
	"github.com/tabular-labs/tabular/pkg/table"
)

type writeMode int

const (
	modeInsert writeMode = iota
	modeIncrement
	modeAssign
)

// Insert returns a write cursor that creates or replaces the row at
// key on Execute. Unbound trailing columns become null.
func (t *Table) Insert(ctx context.Context, key core.Key) (table.Cursor, error) {
	if err := t.ensureCreated(ctx); err != nil {
		return nil, err
	}
	return &execCursor{ctx: ctx, t: t, mode: modeInsert, key: key}, nil
}

// InsertRow returns a write cursor that creates a row under the next
// free integer auto-key.
func (t *Table) InsertRow(ctx context.Context, sheet int) (table.Cursor, error) {
	if sheet != 0 {
		return nil, fmt.Errorf("sheet %d out of range (table has 1)", sheet)
	}
	if err := t.ensureCreated(ctx); err != nil {
		return nil, err
	}

	key, err := t.nextAutoKey(ctx)
	if err != nil {
		return nil, err
	}
	return &execCursor{ctx: ctx, t: t, mode: modeInsert, key: key}, nil
}

// Increment returns a write cursor that adds the bound values onto the
// row at key, creating it when absent. Numeric columns add, text
// columns overwrite, absent binds leave cells untouched.
func (t *Table) Increment(ctx context.Context, key core.Key) (table.Cursor, error) {
	if err := t.ensureCreated(ctx); err != nil {
		return nil, err
	}
	return &execCursor{ctx: ctx, t: t, mode: modeIncrement, key: key}, nil
}

// Assign returns a write cursor that updates the listed columns of one
// row per Execute. Binds are positional: the listed columns' values
// first, then the key parts.
func (t *Table) Assign(ctx context.Context, columns []int) (table.Cursor, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("no columns to assign")
	}
	for _, col := range columns {
		if col < 0 || col >= len(t.cols) {
			return nil, fmt.Errorf("column %d out of range (table has %d)", col, len(t.cols))
		}
	}
	if err := t.ensureCreated(ctx); err != nil {
		return nil, err
	}
	return &execCursor{ctx: ctx, t: t, mode: modeAssign, cols: append([]int(nil), columns...)}, nil
}

// execCursor queues positional binds and turns them into one statement
// per Execute. It carries the context it was created under because
// Execute takes none. Execute resets the binds so the cursor can be
// reused for the next row.
type execCursor struct {
	ctx   context.Context
	t     *Table
	mode  writeMode
	key   core.Key
	cols  []int
	binds []bind
}

type bind struct {
	class   core.BindingClass
	i       int64
	f       float64
	s       string
	present bool
}

func (c *execCursor) BindInt(v int64, present bool) {
	c.binds = append(c.binds, bind{class: core.BindInteger, i: v, present: present})
}

func (c *execCursor) BindFloat(v float64, present bool) {
	c.binds = append(c.binds, bind{class: core.BindFloat, f: v, present: present})
}

func (c *execCursor) BindText(v string, present bool) {
	c.binds = append(c.binds, bind{class: core.BindText, s: v, present: present})
}

func (c *execCursor) Execute() error {
	defer func() { c.binds = c.binds[:0] }()

	switch c.mode {
	case modeAssign:
		return c.executeAssign()
	case modeIncrement:
		return c.executeIncrement()
	default:
		return c.executeInsert()
	}
}

func (c *execCursor) executeInsert() error {
	args, err := c.columnArgs(true)
	if err != nil {
		return err
	}

	q := c.upsertQuery(false)
	execArgs := append([]any{c.key.Encode()}, args...)
	if _, err := c.t.exec(c.ctx, q, execArgs...); err != nil {
		return fmt.Errorf("failed to insert row: %w", err)
	}

	c.t.Log().Record(changelog.Change{Op: changelog.OpInsert, Key: c.key})
	return nil
}

func (c *execCursor) executeIncrement() error {
	args, err := c.columnArgs(false)
	if err != nil {
		return err
	}

	q := c.upsertQuery(true)
	execArgs := append([]any{c.key.Encode()}, args...)
	if _, err := c.t.exec(c.ctx, q, execArgs...); err != nil {
		return fmt.Errorf("failed to increment row: %w", err)
	}

	c.t.Log().Record(changelog.Change{Op: changelog.OpIncrement, Key: c.key})
	return nil
}

func (c *execCursor) executeAssign() error {
	want := len(c.cols) + c.t.KeySize()
	if len(c.binds) != want {
		return fmt.Errorf("%d binds for %d columns plus %d key parts", len(c.binds), len(c.cols), c.t.KeySize())
	}

	key, err := keyFromBinds(c.t.KeyType(), c.binds[len(c.cols):])
	if err != nil {
		return err
	}
	c.key = key

	d := c.t.dialect
	sets := make([]string, len(c.cols))
	args := make([]any, 0, len(c.cols)+1)
	for i, col := range c.cols {
		v, err := bindArg(c.t.cols[col], c.binds[i], true)
		if err != nil {
			return err
		}
		sets[i] = fmt.Sprintf("%s = %s", d.Quote(c.t.cols[col].Name), d.Placeholder(i+1))
		args = append(args, v)
	}
	args = append(args, key.Encode())

	q := fmt.Sprintf("UPDATE %s SET %s WHERE %s = %s",
		d.Quote(c.t.name), strings.Join(sets, ", "), d.Quote(keyColumn), d.Placeholder(len(c.cols)+1))
	res, err := c.t.exec(c.ctx, q, args...)
	if err != nil {
		return fmt.Errorf("failed to update row: %w", err)
	}

	// An update that touches no rows changes nothing and is not logged.
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil
	}
	c.t.Log().Record(changelog.Change{Op: changelog.OpUpdate, Key: key})
	return nil
}

// upsertQuery renders the INSERT used by both insert and increment.
// Insert replaces the conflicting row outright; increment folds the
// proposed values onto it, adding on numeric columns, overwriting on
// text columns and keeping the old value where the bind was absent.
func (c *execCursor) upsertQuery(increment bool) string {
	d := c.t.dialect
	qname := d.Quote(c.t.name)

	names := make([]string, 0, len(c.t.cols)+1)
	marks := make([]string, 0, len(c.t.cols)+1)
	names = append(names, d.Quote(keyColumn))
	marks = append(marks, d.Placeholder(1))
	for i, col := range c.t.cols {
		names = append(names, d.Quote(col.Name))
		marks = append(marks, d.Placeholder(i+2))
	}

	sets := make([]string, 0, len(c.t.cols))
	for _, col := range c.t.cols {
		qcol := d.Quote(col.Name)
		tcol := qname + "." + qcol
		xcol := "excluded." + qcol
		switch {
		case !increment:
			sets = append(sets, fmt.Sprintf("%s = %s", qcol, xcol))
		case col.Type.IsNumeric():
			sets = append(sets, fmt.Sprintf("%s = CASE WHEN %s IS NULL THEN %s ELSE COALESCE(%s, 0) + %s END",
				qcol, xcol, tcol, tcol, xcol))
		default:
			sets = append(sets, fmt.Sprintf("%s = COALESCE(%s, %s)", qcol, xcol, tcol))
		}
	}

	conflict := fmt.Sprintf("ON CONFLICT(%s) DO NOTHING", d.Quote(keyColumn))
	if len(sets) > 0 {
		conflict = fmt.Sprintf("ON CONFLICT(%s) DO UPDATE SET %s",
			d.Quote(keyColumn), strings.Join(sets, ", "))
	}

	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) %s",
		qname, strings.Join(names, ", "), strings.Join(marks, ", "), conflict)
}

// columnArgs lays the queued binds over the schema columns, leaving
// unbound trailing columns null.
func (c *execCursor) columnArgs(checkNotNull bool) ([]any, error) {
	if len(c.binds) > len(c.t.cols) {
		return nil, fmt.Errorf("%d binds for %d columns", len(c.binds), len(c.t.cols))
	}

	args := make([]any, len(c.t.cols))
	for i := range c.t.cols {
		if i >= len(c.binds) {
			continue
		}
		v, err := bindArg(c.t.cols[i], c.binds[i], checkNotNull)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}

// bindArg coerces a bound value into a driver argument of the column's
// storage family.
func bindArg(col core.Column, b bind, checkNotNull bool) (any, error) {
	if !b.present {
		if checkNotNull && !col.Nullable {
			return nil, fmt.Errorf("column %q is not nullable", col.Name)
		}
		return nil, nil
	}

	switch col.Type.BindingClass() {
	case core.BindInteger:
		switch b.class {
		case core.BindInteger:
			return b.i, nil
		case core.BindFloat:
			return int64(b.f), nil
		default:
			n, err := strconv.ParseInt(b.s, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("cannot store %q in integer column %q", b.s, col.Name)
			}
			return n, nil
		}
	case core.BindFloat:
		switch b.class {
		case core.BindInteger:
			return float64(b.i), nil
		case core.BindFloat:
			return b.f, nil
		default:
			f, err := strconv.ParseFloat(b.s, 64)
			if err != nil {
				return nil, fmt.Errorf("cannot store %q in float column %q", b.s, col.Name)
			}
			return f, nil
		}
	default:
		switch b.class {
		case core.BindInteger:
			return strconv.FormatInt(b.i, 10), nil
		case core.BindFloat:
			return strconv.FormatFloat(b.f, 'g', -1, 64), nil
		default:
			return b.s, nil
		}
	}
}

// keyFromBinds reassembles a row key from its bound parts, following
// the declared key part types.
func keyFromBinds(keyType []core.ColumnType, binds []bind) (core.Key, error) {
	parts := make([]core.Key, len(binds))
	for i, b := range binds {
		if !b.present {
			return core.Key{}, fmt.Errorf("key part %d bound null", i)
		}

		typ := core.Text
		if i < len(keyType) {
			typ = keyType[i]
		}

		if typ.BindingClass() == core.BindInteger {
			switch b.class {
			case core.BindInteger:
				parts[i] = core.NewIntKey(b.i)
			case core.BindFloat:
				parts[i] = core.NewIntKey(int64(b.f))
			default:
				n, err := strconv.ParseInt(b.s, 10, 64)
				if err != nil {
					return core.Key{}, fmt.Errorf("key part %d: cannot read %q as integer", i, b.s)
				}
				parts[i] = core.NewIntKey(n)
			}
			continue
		}

		switch b.class {
		case core.BindInteger:
			parts[i] = core.NewTextKey(strconv.FormatInt(b.i, 10))
		case core.BindFloat:
			parts[i] = core.NewTextKey(strconv.FormatFloat(b.f, 'g', -1, 64))
		default:
			parts[i] = core.NewTextKey(b.s)
		}
	}
	return core.ComposeKeys(parts...), nil
}

func (c *execCursor) RowKey() core.Key { return c.key }
func (c *execCursor) NumFields() int   { return len(c.t.cols) }

func (c *execCursor) ColumnType(col int) core.ColumnType {
	if col < 0 || col >= len(c.t.cols) {
		return core.Text
	}
	return c.t.cols[col].Type
}

func (c *execCursor) IsNull(int) bool   { return true }
func (c *execCursor) Int(int) int64     { return 0 }
func (c *execCursor) Float(int) float64 { return 0 }
func (c *execCursor) Text(int) string   { return "" }
func (c *execCursor) Next() bool        { return false }
func (c *execCursor) Err() error        { return nil }
func (c *execCursor) Close() error      { return nil }

var _ table.Cursor = (*execCursor)(nil)
