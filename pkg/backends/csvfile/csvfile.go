package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/tabular-labs/tabular/pkg/core"
	"github.com/tabular-labs/tabular/pkg/table"
)

// fileSheet is the parsed contents of one CSV file: the header row as
// columns, then the data rows. Row n is keyed NewIntKey(n+1).
type fileSheet struct {
	path string
	cols []core.Column
	rows [][]string
}

// Table is a read-only view over one or more CSV files, one sheet per
// file. Every column is nullable Text, the key is the 1-based row
// ordinal within the file, and every mutation returns ErrReadOnly.
type Table struct {
	table.Base

	logger *slog.Logger
	paths  []string
	sheets []*fileSheet
}

// Open reads the given CSV files into a table, one sheet per file in
// argument order. The first record of each file names its columns.
func Open(ctx context.Context, logger *slog.Logger, paths ...string) (*Table, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no csv files specified")
	}

	t := &Table{
		Base:   table.NewBase(core.Integer),
		logger: logger,
		paths:  append([]string(nil), paths...),
	}
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sh, err := loadFile(path)
		if err != nil {
			return nil, err
		}
		t.sheets = append(t.sheets, sh)
		logger.Debug("loaded csv file", "path", path, "columns", len(sh.cols), "rows", len(sh.rows))
	}
	return t, nil
}

func loadFile(path string) (*fileSheet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	// Short rows read as nulls rather than failing the whole file.
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("csv file %s has no header row", path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	sh := &fileSheet{path: path}
	for _, name := range header {
		sh.cols = append(sh.cols, core.NewColumn(strings.TrimSpace(name), core.Text))
	}

	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv row: %w", err)
		}
		sh.rows = append(sh.rows, record)
	}
	return sh, nil
}

func (t *Table) sheet(i int) (*fileSheet, error) {
	if i < 0 || i >= len(t.sheets) {
		return nil, fmt.Errorf("sheet %d out of range (table has %d)", i, len(t.sheets))
	}
	return t.sheets[i], nil
}

// NumSheets returns the number of files the table reads.
func (t *Table) NumSheets() int { return len(t.sheets) }

// NumFields returns the number of header columns in the sheet, 0 when
// the sheet does not exist.
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

	rows := t.visibleRows(sh)
	if len(rows) == 0 {
		return nil, table.ErrNotFound
	}
	return &readCursor{sh: sh, rows: rows}, nil
}

// Seek returns a single-row cursor on the row whose 1-based ordinal is
// the key's integer part. Filters do not apply to direct seeks.
func (t *Table) Seek(_ context.Context, key core.Key) (table.Cursor, error) {
	sh := t.sheets[0]
	n := key.Int(0)
	if n < 1 || n > int64(len(sh.rows)) {
		return nil, table.ErrNotFound
	}
	return &readCursor{sh: sh, rows: []int{int(n) - 1}}, nil
}

// SeekRow returns a cursor on the n-th visible row of the sheet,
// counting in file order from 0.
func (t *Table) SeekRow(_ context.Context, row, sheetIdx int) (table.Cursor, error) {
	sh, err := t.sheet(sheetIdx)
	if err != nil {
		return nil, err
	}

	rows := t.visibleRows(sh)
	if row < 0 || row >= len(rows) {
		return nil, table.ErrNotFound
	}
	return &readCursor{sh: sh, rows: rows, pos: row}, nil
}

// visibleRows lists the sheet's 0-based row ordinals that pass the
// active filters, in file order.
func (t *Table) visibleRows(sh *fileSheet) []int {
	rows := make([]int, 0, len(sh.rows))
	for i := range sh.rows {
		if t.rowPasses(sh, sh.rows[i]) {
			rows = append(rows, i)
		}
	}
	return rows
}

// rowPasses applies every active column filter to a record. Empty and
// missing cells are null and never pass a filtered column.
func (t *Table) rowPasses(sh *fileSheet, record []string) bool {
	for col := range t.Filters() {
		if col < 0 || col >= len(sh.cols) || col >= len(record) {
			return false
		}
		v := record[col]
		if v == "" {
			return false
		}
		if !t.FilterAllows(col, core.NewTextKey(v)) {
			return false
		}
	}
	return true
}

// Insert returns ErrReadOnly.
func (t *Table) Insert(_ context.Context, _ core.Key) (table.Cursor, error) {
	return nil, table.ErrReadOnly
}

// InsertRow returns ErrReadOnly.
func (t *Table) InsertRow(_ context.Context, _ int) (table.Cursor, error) {
	return nil, table.ErrReadOnly
}

// Increment returns ErrReadOnly.
func (t *Table) Increment(_ context.Context, _ core.Key) (table.Cursor, error) {
	return nil, table.ErrReadOnly
}

// Assign returns ErrReadOnly.
func (t *Table) Assign(_ context.Context, _ []int) (table.Cursor, error) {
	return nil, table.ErrReadOnly
}

// Remove returns ErrReadOnly.
func (t *Table) Remove(_ context.Context, _ core.Key) error {
	return table.ErrReadOnly
}

// Clear returns ErrReadOnly.
func (t *Table) Clear(_ context.Context) error {
	return table.ErrReadOnly
}

// AddColumn returns ErrReadOnly. Columns come from the header row.
func (t *Table) AddColumn(_ string, _ core.ColumnType, _ ...core.ColumnOption) error {
	return table.ErrReadOnly
}

// Copy re-reads the same files into a fresh table with its own change
// log and no filters.
func (t *Table) Copy(ctx context.Context) (table.Table, error) {
	dup, err := Open(ctx, t.logger, t.paths...)
	if err != nil {
		return nil, err
	}
	dup.SetHumanReadableKey(t.HasHumanReadableKey())
	return dup, nil
}

var _ table.Table = (*Table)(nil)
