package core

// Column describes one column of a table sheet.
type Column struct {
	Name     string
	Type     ColumnType
	Nullable bool
	Unique   bool
	// Decimals is the display precision hint for Double columns,
	// -1 when unspecified.
	Decimals int
}

// ColumnOption adjusts a Column under construction.
type ColumnOption func(*Column)

// NotNull marks the column as rejecting null values.
func NotNull() ColumnOption {
	return func(c *Column) { c.Nullable = false }
}

// Unique marks the column as carrying distinct values.
func Unique() ColumnOption {
	return func(c *Column) { c.Unique = true }
}

// WithDecimals sets the display precision hint for Double columns.
func WithDecimals(n int) ColumnOption {
	return func(c *Column) { c.Decimals = n }
}

// NewColumn returns a column with the given name and type. Columns are
// nullable and non-unique by default, with no decimals hint.
func NewColumn(name string, typ ColumnType, opts ...ColumnOption) Column {
	c := Column{Name: name, Type: typ, Nullable: true, Decimals: -1}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
