package table

import "github.com/tabular-labs/tabular/pkg/core"

// ColumnByName returns the index of the newest column with the given
// name. The scan runs from the last added column down, so a later
// addition shadows an earlier one of the same name. Returns -1 when no
// column matches.
func ColumnByName(t Table, name string, sheet int) int {
	for col := t.NumFields(sheet) - 1; col >= 0; col-- {
		if t.ColumnName(col, sheet) == name {
			return col
		}
	}
	return -1
}

// ColumnByNames is ColumnByName over a set of acceptable names: the
// newest column carrying any of them, or -1.
func ColumnByNames(t Table, names map[string]struct{}, sheet int) int {
	for col := t.NumFields(sheet) - 1; col >= 0; col-- {
		if _, ok := names[t.ColumnName(col, sheet)]; ok {
			return col
		}
	}
	return -1
}

// ColumnsByNames returns every column whose name is in the set, newest
// first.
func ColumnsByNames(t Table, names map[string]struct{}, sheet int) []int {
	var cols []int
	for col := t.NumFields(sheet) - 1; col >= 0; col-- {
		if _, ok := names[t.ColumnName(col, sheet)]; ok {
			cols = append(cols, col)
		}
	}
	return cols
}

// ColumnByType returns the index of the oldest column with the given
// type. Unlike the name lookups this scans from the first column up.
// Returns -1 when no column matches.
func ColumnByType(t Table, typ core.ColumnType, sheet int) int {
	for col := 0; col < t.NumFields(sheet); col++ {
		if t.ColumnType(col, sheet) == typ {
			return col
		}
	}
	return -1
}
