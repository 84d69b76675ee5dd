package table

import "github.com/tabular-labs/tabular/pkg/core"

// Typed column helpers. Each fixes the column type and forwards the
// remaining attributes to AddColumn.

// AddBoolColumn appends a BOOL column.
func AddBoolColumn(t Table, name string, opts ...core.ColumnOption) error {
	return t.AddColumn(name, core.Bool, opts...)
}

// AddEnumColumn appends an ENUM column.
func AddEnumColumn(t Table, name string, opts ...core.ColumnOption) error {
	return t.AddColumn(name, core.Enum, opts...)
}

// AddIntegerColumn appends an INTEGER column.
func AddIntegerColumn(t Table, name string, opts ...core.ColumnOption) error {
	return t.AddColumn(name, core.Integer, opts...)
}

// AddDateTimeColumn appends a DATETIME column.
func AddDateTimeColumn(t Table, name string, opts ...core.ColumnOption) error {
	return t.AddColumn(name, core.DateTime, opts...)
}

// AddDateColumn appends a DATE column.
func AddDateColumn(t Table, name string, opts ...core.ColumnOption) error {
	return t.AddColumn(name, core.Date, opts...)
}

// AddDoubleColumn appends a DOUBLE column.
func AddDoubleColumn(t Table, name string, opts ...core.ColumnOption) error {
	return t.AddColumn(name, core.Double, opts...)
}

// AddTextColumn appends a TEXT column.
func AddTextColumn(t Table, name string, opts ...core.ColumnOption) error {
	return t.AddColumn(name, core.Text, opts...)
}

// AddURLColumn appends a URL column.
func AddURLColumn(t Table, name string, opts ...core.ColumnOption) error {
	return t.AddColumn(name, core.URL, opts...)
}

// AddTextKeyColumn appends a TEXT_KEY column.
func AddTextKeyColumn(t Table, name string, opts ...core.ColumnOption) error {
	return t.AddColumn(name, core.TextKey, opts...)
}

// AddBinaryKeyColumn appends a BINARY_KEY column.
func AddBinaryKeyColumn(t Table, name string, opts ...core.ColumnOption) error {
	return t.AddColumn(name, core.BinaryKey, opts...)
}

// AddCharColumn appends a CHAR column.
func AddCharColumn(t Table, name string, opts ...core.ColumnOption) error {
	return t.AddColumn(name, core.Char, opts...)
}

// AddVarCharColumn appends a VARCHAR column.
func AddVarCharColumn(t Table, name string, opts ...core.ColumnOption) error {
	return t.AddColumn(name, core.VarChar, opts...)
}

// AddBlobColumn appends a BLOB column. Blob contents are held by the
// backend but never travel through row copies.
func AddBlobColumn(t Table, name string, opts ...core.ColumnOption) error {
	return t.AddColumn(name, core.Blob, opts...)
}
