// Package core defines the shared language of the tabular system.
//
// This package contains:
//   - The closed set of column value kinds (ColumnType) and their
//     binding-family classification
//   - The composite row identifier (Key)
//   - Column schema metadata (Column) and its construction options
//   - Backend connection configuration (Config)
//
// The Golden Rule: pkg/core imports ONLY the standard library.
// All other packages depend on core, not the reverse.
package core
