package memory

import (
	"fmt"
	"strconv"

	"github.com/tabular-labs/tabular/pkg/changelog"
	"github.com/tabular-labs/tabular/pkg/core"
	"github.com/tabular-labs/tabular/pkg/table"
)

// readCursor walks a snapshot of row keys taken when the seek ran.
// Rows removed after the snapshot are skipped, not surfaced as stale
// data.
type readCursor struct {
	t    *Table
	sh   *sheet
	keys []core.Key
	pos  int
}

func (c *readCursor) RowKey() core.Key {
	if c.pos >= len(c.keys) {
		return core.Key{}
	}
	return c.keys[c.pos]
}

func (c *readCursor) NumFields() int { return len(c.sh.cols) }

func (c *readCursor) ColumnType(col int) core.ColumnType {
	if col < 0 || col >= len(c.sh.cols) {
		return core.Text
	}
	return c.sh.cols[col].Type
}

func (c *readCursor) cell(col int) (cell, bool) {
	if c.pos >= len(c.keys) || col < 0 || col >= len(c.sh.cols) {
		return cell{}, false
	}
	row, ok := c.sh.rows[c.keys[c.pos]]
	if !ok || col >= len(row) {
		return cell{}, false
	}
	return row[col], true
}

func (c *readCursor) IsNull(col int) bool {
	v, ok := c.cell(col)
	return !ok || !v.present
}

func (c *readCursor) Int(col int) int64 {
	v, ok := c.cell(col)
	if !ok || !v.present {
		return 0
	}
	switch c.sh.cols[col].Type.BindingClass() {
	case core.BindInteger:
		return v.i
	case core.BindFloat:
		return int64(v.f)
	default:
		n, _ := strconv.ParseInt(v.s, 10, 64)
		return n
	}
}

func (c *readCursor) Float(col int) float64 {
	v, ok := c.cell(col)
	if !ok || !v.present {
		return 0
	}
	switch c.sh.cols[col].Type.BindingClass() {
	case core.BindInteger:
		return float64(v.i)
	case core.BindFloat:
		return v.f
	default:
		f, _ := strconv.ParseFloat(v.s, 64)
		return f
	}
}

func (c *readCursor) Text(col int) string {
	v, ok := c.cell(col)
	if !ok || !v.present {
		return ""
	}
	switch c.sh.cols[col].Type.BindingClass() {
	case core.BindInteger:
		return strconv.FormatInt(v.i, 10)
	case core.BindFloat:
		if d := c.sh.cols[col].Decimals; d >= 0 {
			return strconv.FormatFloat(v.f, 'f', d, 64)
		}
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	default:
		return v.s
	}
}

func (c *readCursor) BindInt(int64, bool)     {}
func (c *readCursor) BindFloat(float64, bool) {}
func (c *readCursor) BindText(string, bool)   {}

func (c *readCursor) Execute() error {
	return fmt.Errorf("cursor is read-only")
}

func (c *readCursor) Next() bool {
	c.pos++
	for c.pos < len(c.keys) {
		if _, ok := c.sh.rows[c.keys[c.pos]]; ok {
			return true
		}
		c.pos++
	}
	return false
}

func (c *readCursor) Err() error   { return nil }
func (c *readCursor) Close() error { return nil }

type writeMode int

const (
	modeInsert writeMode = iota
	modeIncrement
	modeAssign
)

// writeCursor queues positional binds and applies them on Execute.
// Execute resets the binds so the cursor can be reused for the next
// row.
type writeCursor struct {
	t        *Table
	sh       *sheet
	sheetIdx int
	mode     writeMode
	key      core.Key
	cols     []int
	binds    []bind
}

type bind struct {
	class   core.BindingClass
	i       int64
	f       float64
	s       string
	present bool
}

func (c *writeCursor) BindInt(v int64, present bool) {
	c.binds = append(c.binds, bind{class: core.BindInteger, i: v, present: present})
}

func (c *writeCursor) BindFloat(v float64, present bool) {
	c.binds = append(c.binds, bind{class: core.BindFloat, f: v, present: present})
}

func (c *writeCursor) BindText(v string, present bool) {
	c.binds = append(c.binds, bind{class: core.BindText, s: v, present: present})
}

func (c *writeCursor) Execute() error {
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

func (c *writeCursor) executeInsert() error {
	row, err := c.rowFromBinds()
	if err != nil {
		return err
	}

	c.store(c.key, row)
	c.t.Log().Record(changelog.Change{Op: changelog.OpInsert, Key: c.key, Sheet: c.sheetIdx})
	return nil
}

func (c *writeCursor) executeIncrement() error {
	existing, exists := c.sh.rows[c.key]
	if !exists {
		row, err := c.rowFromBinds()
		if err != nil {
			return err
		}
		c.store(c.key, row)
		c.t.Log().Record(changelog.Change{Op: changelog.OpIncrement, Key: c.key, Sheet: c.sheetIdx})
		return nil
	}

	if len(c.binds) > len(c.sh.cols) {
		return fmt.Errorf("%d binds for %d columns", len(c.binds), len(c.sh.cols))
	}
	for i, b := range c.binds {
		if !b.present {
			continue
		}
		v, err := convertBind(c.sh.cols[i], b)
		if err != nil {
			return err
		}
		cur := existing[i]
		if cur.present {
			switch c.sh.cols[i].Type.BindingClass() {
			case core.BindInteger:
				v.i += cur.i
			case core.BindFloat:
				v.f += cur.f
			}
		}
		existing[i] = v
	}

	c.t.Log().Record(changelog.Change{Op: changelog.OpIncrement, Key: c.key, Sheet: c.sheetIdx})
	return nil
}

func (c *writeCursor) executeAssign() error {
	want := len(c.cols) + c.t.KeySize()
	if len(c.binds) != want {
		return fmt.Errorf("%d binds for %d columns plus %d key parts", len(c.binds), len(c.cols), c.t.KeySize())
	}

	key, err := keyFromBinds(c.t.KeyType(), c.binds[len(c.cols):])
	if err != nil {
		return err
	}
	c.key = key

	row, exists := c.sh.rows[key]
	if !exists {
		// Updating an absent row changes nothing.
		return nil
	}

	for i, col := range c.cols {
		v, err := convertBind(c.sh.cols[col], c.binds[i])
		if err != nil {
			return err
		}
		row[col] = v
	}

	c.t.Log().Record(changelog.Change{Op: changelog.OpUpdate, Key: key, Sheet: c.sheetIdx})
	return nil
}

// rowFromBinds lays the queued binds over the sheet's columns, leaving
// unbound trailing columns null.
func (c *writeCursor) rowFromBinds() ([]cell, error) {
	if len(c.binds) > len(c.sh.cols) {
		return nil, fmt.Errorf("%d binds for %d columns", len(c.binds), len(c.sh.cols))
	}

	row := make([]cell, len(c.sh.cols))
	for i, b := range c.binds {
		v, err := convertBind(c.sh.cols[i], b)
		if err != nil {
			return nil, err
		}
		row[i] = v
	}
	return row, nil
}

func (c *writeCursor) store(key core.Key, row []cell) {
	if _, exists := c.sh.rows[key]; !exists {
		c.sh.keys = append(c.sh.keys, key)
	}
	c.sh.rows[key] = row
}

// convertBind coerces a bound value into the column's storage family.
func convertBind(col core.Column, b bind) (cell, error) {
	if !b.present {
		if !col.Nullable {
			return cell{}, fmt.Errorf("column %q is not nullable", col.Name)
		}
		return cell{}, nil
	}

	out := cell{present: true}
	switch col.Type.BindingClass() {
	case core.BindInteger:
		switch b.class {
		case core.BindInteger:
			out.i = b.i
		case core.BindFloat:
			out.i = int64(b.f)
		default:
			n, err := strconv.ParseInt(b.s, 10, 64)
			if err != nil {
				return cell{}, fmt.Errorf("cannot store %q in integer column %q", b.s, col.Name)
			}
			out.i = n
		}
	case core.BindFloat:
		switch b.class {
		case core.BindInteger:
			out.f = float64(b.i)
		case core.BindFloat:
			out.f = b.f
		default:
			f, err := strconv.ParseFloat(b.s, 64)
			if err != nil {
				return cell{}, fmt.Errorf("cannot store %q in float column %q", b.s, col.Name)
			}
			out.f = f
		}
	default:
		switch b.class {
		case core.BindInteger:
			out.s = strconv.FormatInt(b.i, 10)
		case core.BindFloat:
			out.s = strconv.FormatFloat(b.f, 'g', -1, 64)
		default:
			out.s = b.s
		}
	}
	return out, nil
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

func (c *writeCursor) RowKey() core.Key { return c.key }
func (c *writeCursor) NumFields() int   { return len(c.sh.cols) }

func (c *writeCursor) ColumnType(col int) core.ColumnType {
	if col < 0 || col >= len(c.sh.cols) {
		return core.Text
	}
	return c.sh.cols[col].Type
}

func (c *writeCursor) IsNull(int) bool   { return true }
func (c *writeCursor) Int(int) int64     { return 0 }
func (c *writeCursor) Float(int) float64 { return 0 }
func (c *writeCursor) Text(int) string   { return "" }
func (c *writeCursor) Next() bool        { return false }
func (c *writeCursor) Err() error        { return nil }
func (c *writeCursor) Close() error      { return nil }

var (
	_ table.Cursor = (*readCursor)(nil)
	_ table.Cursor = (*writeCursor)(nil)
)
