// Package changelog records the mutations applied to a table.
//
// Every table owns a Log. Backends record a Change for each successful
// insert, update, increment, remove and clear, and merging one table
// into another carries the source history along (see Log.Append). The
// optional Store persists histories to SQLite.
package changelog

import (
	"time"

	"github.com/google/uuid"

	"github.com/tabular-labs/tabular/pkg/core"
)

// Op identifies the kind of mutation a change records.
type Op int

// Mutation kinds.
const (
	// OpInsert records a new row.
	OpInsert Op = iota
	// OpUpdate records an in-place row update.
	OpUpdate
	// OpIncrement records an additive update.
	OpIncrement
	// OpRemove records a row deletion.
	OpRemove
	// OpClear records a whole-table wipe.
	OpClear
)

// String returns the lower-case name of the operation.
func (o Op) String() string {
	switch o {
	case OpInsert:
		return "insert"
	case OpUpdate:
		return "update"
	case OpIncrement:
		return "increment"
	case OpRemove:
		return "remove"
	case OpClear:
		return "clear"
	default:
		return "unknown"
	}
}

// Change is one recorded mutation.
type Change struct {
	ID    string
	Op    Op
	Key   core.Key
	Sheet int
	At    time.Time
}

// generateID creates a new UUID.
func generateID() string {
	return uuid.New().String()
}
