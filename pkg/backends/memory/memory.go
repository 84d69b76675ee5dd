package memory

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/tabular-labs/tabular/pkg/changelog"
	"github.com/tabular-labs/tabular/pkg/core"
	"github.com/tabular-labs/tabular/pkg/table"
)

// cell is one stored field value. Which of i, f and s is live depends
// on the column's binding family.
type cell struct {
	present bool
	i       int64
	f       float64
	s       string
}

// sheet is one independent sub-table: its own schema and rows, scanned
// in insertion order.
type sheet struct {
	cols    []core.Column
	keys    []core.Key
	rows    map[core.Key][]cell
	autoKey int64
}

func newSheet() *sheet {
	return &sheet{rows: make(map[core.Key][]cell)}
}

// nextAutoKey returns the next free integer key of the sheet.
func (sh *sheet) nextAutoKey() core.Key {
	for {
		sh.autoKey++
		key := core.NewIntKey(sh.autoKey)
		if _, exists := sh.rows[key]; !exists {
			return key
		}
	}
}

// Table is an in-memory table. It supports everything the contract
// names, including ordinal seeks, schema evolution on non-empty sheets
// and multiple sheets. Mutations other than InsertRow target sheet 0.
type Table struct {
	table.Base

	logger *slog.Logger
	sheets []*sheet
}

// Option adjusts a Table under construction.
type Option func(*Table)

// WithSheets makes the table start with n sheets instead of one.
func WithSheets(n int) Option {
	return func(t *Table) {
		for len(t.sheets) < n {
			t.sheets = append(t.sheets, newSheet())
		}
	}
}

// WithKeyType declares the key part types up front.
func WithKeyType(kt ...core.ColumnType) Option {
	return func(t *Table) { t.SetKeyType(kt) }
}

// New creates an empty in-memory table with one sheet.
func New(logger *slog.Logger, opts ...Option) *Table {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	t := &Table{
		Base:   table.NewBase(),
		logger: logger,
		sheets: []*sheet{newSheet()},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Table) sheet(i int) (*sheet, error) {
	if i < 0 || i >= len(t.sheets) {
		return nil, fmt.Errorf("sheet %d out of range (table has %d)", i, len(t.sheets))
	}
	return t.sheets[i], nil
}

// AddColumn appends a column to sheet 0, padding existing rows with
// nulls.
func (t *Table) AddColumn(name string, typ core.ColumnType, opts ...core.ColumnOption) error {
	return t.AddColumnToSheet(0, name, typ, opts...)
}

// AddColumnToSheet appends a column to the given sheet.
func (t *Table) AddColumnToSheet(sheetIdx int, name string, typ core.ColumnType, opts ...core.ColumnOption) error {
	sh, err := t.sheet(sheetIdx)
	if err != nil {
		return err
	}

	sh.cols = append(sh.cols, core.NewColumn(name, typ, opts...))
	for k, row := range sh.rows {
		sh.rows[k] = append(row, cell{})
	}

	t.logger.Debug("added column", "name", name, "type", typ.String(), "sheet", sheetIdx)
	return nil
}

// NumSheets returns the number of sheets.
func (t *Table) NumSheets() int { return len(t.sheets) }

// NumFields returns the number of columns in the sheet, 0 when the
// sheet does not exist.
func (t *Table) NumFields(sheetIdx int) int {
	if sheetIdx < 0 || sheetIdx >= len(t.sheets) {
		return 0
	}
	return len(t.sheets[sheetIdx].cols)
}

func (t *Table) column(col, sheetIdx int) (core.Column, bool) {
	if sheetIdx < 0 || sheetIdx >= len(t.sheets) {
		return core.Column{}, false
	}
	sh := t.sheets[sheetIdx]
	if col < 0 || col >= len(sh.cols) {
		return core.Column{}, false
	}
	return sh.cols[col], true
}

func (t *Table) ColumnType(col, sheetIdx int) core.ColumnType {
	c, ok := t.column(col, sheetIdx)
	if !ok {
		return core.Text
	}
	return c.Type
}

func (t *Table) ColumnName(col, sheetIdx int) string {
	c, _ := t.column(col, sheetIdx)
	return c.Name
}

func (t *Table) ColumnNullable(col, sheetIdx int) bool {
	c, ok := t.column(col, sheetIdx)
	return ok && c.Nullable
}

func (t *Table) ColumnUnique(col, sheetIdx int) bool {
	c, _ := t.column(col, sheetIdx)
	return c.Unique
}

func (t *Table) ColumnDecimals(col, sheetIdx int) int {
	c, ok := t.column(col, sheetIdx)
	if !ok {
		return -1
	}
	return c.Decimals
}

// SeekBegin returns a cursor on the first visible row of the sheet.
func (t *Table) SeekBegin(_ context.Context, sheetIdx int) (table.Cursor, error) {
	sh, err := t.sheet(sheetIdx)
	if err != nil {
		return nil, err
	}

	keys := t.visibleKeys(sh)
	if len(keys) == 0 {
		return nil, table.ErrNotFound
	}
	return &readCursor{t: t, sh: sh, keys: keys}, nil
}

// Seek returns a single-row cursor on the row at key. Filters do not
// apply to direct seeks.
func (t *Table) Seek(_ context.Context, key core.Key) (table.Cursor, error) {
	sh := t.sheets[0]
	if _, ok := sh.rows[key]; !ok {
		return nil, table.ErrNotFound
	}
	return &readCursor{t: t, sh: sh, keys: []core.Key{key}}, nil
}

// SeekRow returns a cursor on the n-th visible row of the sheet,
// counting in scan order from 0.
func (t *Table) SeekRow(_ context.Context, row, sheetIdx int) (table.Cursor, error) {
	sh, err := t.sheet(sheetIdx)
	if err != nil {
		return nil, err
	}

	keys := t.visibleKeys(sh)
	if row < 0 || row >= len(keys) {
		return nil, table.ErrNotFound
	}
	return &readCursor{t: t, sh: sh, keys: keys, pos: row}, nil
}

// visibleKeys snapshots the sheet's keys in insertion order, dropping
// rows the active filters exclude.
func (t *Table) visibleKeys(sh *sheet) []core.Key {
	keys := make([]core.Key, 0, len(sh.keys))
	for _, k := range sh.keys {
		if t.rowPasses(sh, k) {
			keys = append(keys, k)
		}
	}
	return keys
}

// rowPasses applies every active column filter to the row. A null
// value never passes a filtered column.
func (t *Table) rowPasses(sh *sheet, key core.Key) bool {
	row, ok := sh.rows[key]
	if !ok {
		return false
	}
	for col := range t.Filters() {
		if col < 0 || col >= len(sh.cols) || col >= len(row) {
			return false
		}
		c := row[col]
		if !c.present {
			return false
		}
		if !t.FilterAllows(col, cellKey(sh.cols[col].Type, c)) {
			return false
		}
	}
	return true
}

// cellKey converts a stored value to the key form filter sets are
// written in: integer-family values as integer keys, everything else
// as text keys.
func cellKey(typ core.ColumnType, c cell) core.Key {
	switch typ.BindingClass() {
	case core.BindInteger:
		return core.NewIntKey(c.i)
	case core.BindFloat:
		return core.NewTextKey(strconv.FormatFloat(c.f, 'g', -1, 64))
	default:
		return core.NewTextKey(c.s)
	}
}

// Insert returns a write cursor that creates or replaces the row at
// key on Execute.
func (t *Table) Insert(_ context.Context, key core.Key) (table.Cursor, error) {
	return &writeCursor{t: t, sh: t.sheets[0], mode: modeInsert, key: key}, nil
}

// InsertRow returns a write cursor that creates a row under the next
// free integer auto-key of the sheet.
func (t *Table) InsertRow(_ context.Context, sheetIdx int) (table.Cursor, error) {
	sh, err := t.sheet(sheetIdx)
	if err != nil {
		return nil, err
	}
	return &writeCursor{t: t, sh: sh, sheetIdx: sheetIdx, mode: modeInsert, key: sh.nextAutoKey()}, nil
}

// Increment returns a write cursor that adds the bound values onto the
// row at key, creating it when absent. Numeric columns add, text
// columns overwrite, absent binds leave cells untouched.
func (t *Table) Increment(_ context.Context, key core.Key) (table.Cursor, error) {
	return &writeCursor{t: t, sh: t.sheets[0], mode: modeIncrement, key: key}, nil
}

// Assign returns a write cursor that updates the listed columns of one
// row per Execute. Binds are positional: the listed columns' values
// first, then the key parts.
func (t *Table) Assign(_ context.Context, columns []int) (table.Cursor, error) {
	sh := t.sheets[0]
	for _, col := range columns {
		if col < 0 || col >= len(sh.cols) {
			return nil, fmt.Errorf("column %d out of range (sheet has %d)", col, len(sh.cols))
		}
	}
	return &writeCursor{t: t, sh: sh, mode: modeAssign, cols: append([]int(nil), columns...)}, nil
}

// Remove deletes the row at key. Removing an absent key is a no-op and
// is not recorded in the change log.
func (t *Table) Remove(_ context.Context, key core.Key) error {
	sh := t.sheets[0]
	if _, ok := sh.rows[key]; !ok {
		return nil
	}

	delete(sh.rows, key)
	for i, k := range sh.keys {
		if k == key {
			sh.keys = append(sh.keys[:i], sh.keys[i+1:]...)
			break
		}
	}

	t.Log().Record(changelog.Change{Op: changelog.OpRemove, Key: key})
	return nil
}

// Clear wipes every row of every sheet while keeping the schema.
func (t *Table) Clear(_ context.Context) error {
	for _, sh := range t.sheets {
		sh.keys = nil
		sh.rows = make(map[core.Key][]cell)
	}

	t.Log().Record(changelog.Change{Op: changelog.OpClear})
	t.logger.Debug("cleared table", "sheets", len(t.sheets))
	return nil
}

// Copy returns an independent duplicate: same key type, schema and
// data, fresh filters and a fresh change log.
func (t *Table) Copy(_ context.Context) (table.Table, error) {
	dup := New(t.logger, WithSheets(len(t.sheets)))
	dup.SetKeyType(t.KeyType())
	dup.SetHumanReadableKey(t.HasHumanReadableKey())

	for i, sh := range t.sheets {
		d := dup.sheets[i]
		d.cols = append([]core.Column(nil), sh.cols...)
		d.keys = append([]core.Key(nil), sh.keys...)
		d.autoKey = sh.autoKey
		for k, row := range sh.rows {
			d.rows[k] = append([]cell(nil), row...)
		}
	}

	t.logger.Debug("copied table", "sheets", len(t.sheets))
	return dup, nil
}

var _ table.Table = (*Table)(nil)
