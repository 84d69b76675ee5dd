// Package table defines the backend-agnostic table contract.
//
// A Table exposes typed columns over rows addressed by composite keys,
// regardless of whether the rows live in memory, in a SQL database or in
// flat files. Backends implement the Table and Cursor interfaces and
// register themselves by name; the free functions in this package
// (Append, ColumnByName, DumpRow, ...) build the shared behavior on top
// of those primitives so every backend gets it unchanged.
//
// Concrete backends live in pkg/backends/ subdirectories and are
// imported for side effects:
//
//	import _ "github.com/tabular-labs/tabular/pkg/backends/sqlite"
package table
