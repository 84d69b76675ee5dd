package core

import "strings"

// ColumnType is the closed set of column value kinds a table can carry.
type ColumnType int

// Column value kinds.
const (
	// Bool is a true/false flag, bound as an integer.
	Bool ColumnType = iota
	// Enum is a small integer-coded enumeration.
	Enum
	// Integer is a 64-bit signed integer.
	Integer
	// DateTime is a timestamp, bound as an integer (seconds since epoch).
	DateTime
	// Date is a calendar date, bound as an integer.
	Date
	// Double is a 64-bit floating point number.
	Double
	// Any is an untyped value, bound as text.
	Any
	// Text is free-form text.
	Text
	// URL is a link, bound as text.
	URL
	// TextKey is a text value that identifies a row.
	TextKey
	// BinaryKey is an opaque binary identifier, bound as text.
	BinaryKey
	// Char is a single character, bound as text.
	Char
	// VarChar is length-limited text.
	VarChar
	// Blob is an opaque byte payload. Recognized, but it has no binding
	// family: row copies leave Blob fields null.
	Blob
	// Vector is a packed numeric vector. Recognized, but like Blob it has
	// no binding family and is never transferred by row copies.
	Vector
)

// BindingClass is the family a column type binds through when a row is
// read from one cursor and written to another.
type BindingClass int

// Binding families.
const (
	// BindInteger covers Bool, Enum, Integer, DateTime and Date.
	BindInteger BindingClass = iota
	// BindFloat covers Double.
	BindFloat
	// BindText covers Any, Text, URL, TextKey, BinaryKey, Char and VarChar.
	BindText
	// BindNone covers Blob and Vector, which have no defined binding.
	BindNone
)

// BindingClass returns the binding family for the column type.
func (t ColumnType) BindingClass() BindingClass {
	switch t {
	case Bool, Enum, Integer, DateTime, Date:
		return BindInteger
	case Double:
		return BindFloat
	case Any, Text, URL, TextKey, BinaryKey, Char, VarChar:
		return BindText
	default:
		return BindNone
	}
}

// IsNumeric reports whether the column type holds numeric values.
// A single-column key counts as numeric exactly when its type does.
func (t ColumnType) IsNumeric() bool {
	switch t.BindingClass() {
	case BindInteger, BindFloat:
		return true
	default:
		return false
	}
}

// String returns the canonical upper-case name of the column type.
func (t ColumnType) String() string {
	switch t {
	case Bool:
		return "BOOL"
	case Enum:
		return "ENUM"
	case Integer:
		return "INTEGER"
	case DateTime:
		return "DATETIME"
	case Date:
		return "DATE"
	case Double:
		return "DOUBLE"
	case Any:
		return "ANY"
	case Text:
		return "TEXT"
	case URL:
		return "URL"
	case TextKey:
		return "TEXT_KEY"
	case BinaryKey:
		return "BINARY_KEY"
	case Char:
		return "CHAR"
	case VarChar:
		return "VARCHAR"
	case Blob:
		return "BLOB"
	case Vector:
		return "VECTOR"
	default:
		return "UNKNOWN"
	}
}

// ParseColumnType converts a name to a ColumnType value.
// Returns the type and true if valid, or Text and false if invalid.
func ParseColumnType(s string) (ColumnType, bool) {
	switch strings.ToUpper(s) {
	case "BOOL":
		return Bool, true
	case "ENUM":
		return Enum, true
	case "INTEGER":
		return Integer, true
	case "DATETIME":
		return DateTime, true
	case "DATE":
		return Date, true
	case "DOUBLE":
		return Double, true
	case "ANY":
		return Any, true
	case "TEXT":
		return Text, true
	case "URL":
		return URL, true
	case "TEXT_KEY":
		return TextKey, true
	case "BINARY_KEY":
		return BinaryKey, true
	case "CHAR":
		return Char, true
	case "VARCHAR":
		return VarChar, true
	case "BLOB":
		return Blob, true
	case "VECTOR":
		return Vector, true
	default:
		return Text, false
	}
}
