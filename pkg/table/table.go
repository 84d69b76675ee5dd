package table

import (
	"context"

	"github.com/tabular-labs/tabular/pkg/changelog"
	"github.com/tabular-labs/tabular/pkg/core"
)

// Table is the contract every backend implements. Rows are addressed
// by composite keys, columns are typed, and a table may carry several
// sheets (independent sub-tables numbered from 0).
//
// Embed Base to pick up the state-carrying half of the contract
// (key type, filters, change log) plus the documented defaults.
// Tables and their cursors are not safe for concurrent use.
type Table interface {
	// SeekBegin positions a read cursor on the first row of the sheet.
	// An empty sheet yields ErrNotFound.
	SeekBegin(ctx context.Context, sheet int) (Cursor, error)

	// Seek positions a read cursor on the row with the given key, or
	// returns ErrNotFound.
	Seek(ctx context.Context, key core.Key) (Cursor, error)

	// SeekRow positions a read cursor on the row with the given ordinal
	// in the sheet. Backends without ordinal addressing return
	// ErrNotFound (the Base default).
	SeekRow(ctx context.Context, row, sheet int) (Cursor, error)

	// Insert returns a write cursor that creates or replaces the row at
	// key when executed.
	Insert(ctx context.Context, key core.Key) (Cursor, error)

	// InsertRow returns a write cursor that creates a row with a
	// backend-generated key in the sheet.
	InsertRow(ctx context.Context, sheet int) (Cursor, error)

	// Increment returns a write cursor that adds the bound values onto
	// the row at key when executed, creating the row if absent. Numeric
	// columns add; text columns overwrite.
	Increment(ctx context.Context, key core.Key) (Cursor, error)

	// Assign returns a write cursor that updates the listed columns of
	// one row per Execute. Binds are positional: the listed columns'
	// values first, then the key parts selecting the row.
	Assign(ctx context.Context, columns []int) (Cursor, error)

	// Remove deletes the row at key. Removing an absent key is a no-op.
	Remove(ctx context.Context, key core.Key) error

	// Clear deletes every row while keeping the schema.
	Clear(ctx context.Context) error

	// Copy returns an independent duplicate of the table with a fresh
	// change log.
	Copy(ctx context.Context) (Table, error)

	// AddColumn appends a column to sheet 0. Backends that support
	// schema evolution pad existing rows with nulls.
	AddColumn(name string, typ core.ColumnType, opts ...core.ColumnOption) error

	// NumSheets returns the number of sheets (Base default 1).
	NumSheets() int

	// NumFields returns the number of columns in the sheet.
	NumFields(sheet int) int

	// ColumnType returns the type of the column in the sheet.
	ColumnType(col, sheet int) core.ColumnType

	// ColumnName returns the name of the column in the sheet.
	ColumnName(col, sheet int) string

	// ColumnNullable reports whether the column accepts nulls.
	ColumnNullable(col, sheet int) bool

	// ColumnUnique reports whether the column carries distinct values.
	ColumnUnique(col, sheet int) bool

	// ColumnDecimals returns the column's decimals hint, -1 when unset.
	ColumnDecimals(col, sheet int) int

	// Begin opens a transaction. The Base default is a no-op: backends
	// without transactions are always committed.
	Begin(ctx context.Context) error

	// Commit closes the open transaction. Begin/Commit is the only
	// crash-consistency boundary the contract offers.
	Commit(ctx context.Context) error

	// Rollback abandons the open transaction.
	Rollback(ctx context.Context) error

	// KeyType returns the types of the key parts, in order.
	KeyType() []core.ColumnType

	// SetKeyType declares the types of the key parts.
	SetKeyType(kt []core.ColumnType)

	// KeySize returns the number of key parts.
	KeySize() int

	// HasNumericKey reports a single-part key of numeric type.
	HasNumericKey() bool

	// SetHumanReadableKey marks the key as meaningful to people, so
	// diagnostics should show it.
	SetHumanReadableKey(on bool)

	// HasHumanReadableKey reports the human-readable key mark.
	HasHumanReadableKey() bool

	// SetFilter restricts scans to rows whose value in the column is in
	// the key set. Setting a filter on a column replaces any previous
	// filter on that column, it never merges.
	SetFilter(col int, keys map[core.Key]struct{})

	// ClearFilter removes the filter on the column.
	ClearFilter(col int)

	// HasFilter reports whether the column is filtered.
	HasFilter(col int) bool

	// Filters returns the active filters by column. Treat the result as
	// read-only.
	Filters() map[int]map[core.Key]struct{}

	// Log returns the table's change history.
	Log() *changelog.Log

	// Close releases the table's resources. Closing a table that holds
	// none is a no-op (the Base default).
	Close() error
}
