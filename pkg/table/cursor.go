package table

import "github.com/tabular-labs/tabular/pkg/core"

// Cursor is a positioned view over rows. Read cursors come from the
// seek operations and walk rows with Next; write cursors come from the
// mutation operations and take positional binds that Execute applies.
type Cursor interface {
	// RowKey returns the key of the current row.
	RowKey() core.Key

	// NumFields returns the number of columns the cursor exposes.
	NumFields() int

	// ColumnType returns the type of the given column.
	ColumnType(col int) core.ColumnType

	// IsNull reports whether the given column is null in the current row.
	IsNull(col int) bool

	// Int returns the given column of the current row as an integer.
	Int(col int) int64

	// Float returns the given column of the current row as a float.
	Float(col int) float64

	// Text returns the given column of the current row as text.
	// Null fields read as "".
	Text(col int) string

	// BindInt queues an integer for the next positional slot.
	// present=false binds null and ignores v.
	BindInt(v int64, present bool)

	// BindFloat queues a float for the next positional slot.
	BindFloat(v float64, present bool)

	// BindText queues text for the next positional slot.
	BindText(v string, present bool)

	// Execute applies the queued binds and resets them for the next row.
	Execute() error

	// Next advances a read cursor to the following row, returning false
	// when no rows remain.
	Next() bool

	// Err returns the traversal failure, if any, once Next has returned
	// false.
	Err() error

	// Close releases backend resources held by the cursor. It is a
	// no-op where there are none.
	Close() error
}
