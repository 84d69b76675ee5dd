package sqltable

import (
	"strings"

	"github.com/tabular-labs/tabular/pkg/core"
)

// Dialect describes what differs between the SQL engines the shared
// table engine runs on. Backend packages provide one value each.
type Dialect struct {
	// Name identifies the dialect in errors and logs.
	Name string

	// Placeholder renders the i-th bind marker, counting from 1.
	Placeholder func(i int) string

	// Quote wraps an identifier in the dialect's quoting style.
	Quote func(ident string) string

	// TypeDDL renders a column's SQL type for CREATE and ALTER
	// statements.
	TypeDDL func(col core.Column) string

	// ScanType maps a type name from the dialect's catalog back to a
	// column type.
	ScanType func(dbType string) core.ColumnType

	// ColumnsQuery returns a query listing the table's columns as
	// (name, type, nullable 'YES'/'NO') rows in ordinal order. It must
	// return no rows when the table does not exist.
	ColumnsQuery func(table string) (string, []any)
}

// QuestionPlaceholder renders the "?" bind marker most drivers use.
func QuestionPlaceholder(int) string { return "?" }

// DoubleQuote quotes an identifier with ANSI double quotes.
func DoubleQuote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}
