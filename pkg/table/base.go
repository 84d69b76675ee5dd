package table

import (
	"context"

	"github.com/tabular-labs/tabular/pkg/changelog"
	"github.com/tabular-labs/tabular/pkg/core"
)

// Base carries the per-table state every backend keeps: the key type,
// the human-readable key mark, the per-column filters and the change
// log. Backends embed it and override the defaults they improve on.
type Base struct {
	keyType          []core.ColumnType
	humanReadableKey bool
	filters          map[int]map[core.Key]struct{}
	log              *changelog.Log
}

// NewBase returns table state with the given key part types.
func NewBase(keyType ...core.ColumnType) Base {
	return Base{
		keyType: keyType,
		filters: make(map[int]map[core.Key]struct{}),
		log:     changelog.NewLog(),
	}
}

// KeyType returns the types of the key parts, in order.
func (b *Base) KeyType() []core.ColumnType {
	out := make([]core.ColumnType, len(b.keyType))
	copy(out, b.keyType)
	return out
}

// SetKeyType declares the types of the key parts.
func (b *Base) SetKeyType(kt []core.ColumnType) {
	b.keyType = make([]core.ColumnType, len(kt))
	copy(b.keyType, kt)
}

// KeySize returns the number of key parts.
func (b *Base) KeySize() int {
	return len(b.keyType)
}

// HasNumericKey reports a single-part key of numeric type.
func (b *Base) HasNumericKey() bool {
	return len(b.keyType) == 1 && b.keyType[0].IsNumeric()
}

// SetHumanReadableKey marks the key as meaningful to people.
func (b *Base) SetHumanReadableKey(on bool) {
	b.humanReadableKey = on
}

// HasHumanReadableKey reports the human-readable key mark.
func (b *Base) HasHumanReadableKey() bool {
	return b.humanReadableKey
}

// SetFilter restricts scans to rows whose value in the column is in the
// key set. A new filter on a column replaces the previous one.
func (b *Base) SetFilter(col int, keys map[core.Key]struct{}) {
	set := make(map[core.Key]struct{}, len(keys))
	for k := range keys {
		set[k] = struct{}{}
	}
	b.filters[col] = set
}

// ClearFilter removes the filter on the column.
func (b *Base) ClearFilter(col int) {
	delete(b.filters, col)
}

// HasFilter reports whether the column is filtered.
func (b *Base) HasFilter(col int) bool {
	_, ok := b.filters[col]
	return ok
}

// Filters returns the active filters by column. Treat the result as
// read-only.
func (b *Base) Filters() map[int]map[core.Key]struct{} {
	return b.filters
}

// FilterAllows reports whether a row whose column holds the given value
// passes the column's filter. Unfiltered columns allow everything.
// Backends call this on their scan path.
func (b *Base) FilterAllows(col int, value core.Key) bool {
	set, ok := b.filters[col]
	if !ok {
		return true
	}
	_, ok = set[value]
	return ok
}

// Log returns the table's change history.
func (b *Base) Log() *changelog.Log {
	return b.log
}

// ResetLog replaces the change history with an empty one. Copy
// implementations use it to hand the duplicate a fresh log.
func (b *Base) ResetLog() {
	b.log = changelog.NewLog()
}

// NumSheets returns 1. Backends with several sheets override it.
func (b *Base) NumSheets() int {
	return 1
}

// SeekRow returns ErrNotFound. Backends with ordinal addressing
// override it.
func (b *Base) SeekRow(_ context.Context, _, _ int) (Cursor, error) {
	return nil, ErrNotFound
}

// Begin is a no-op. Transactional backends override it.
func (b *Base) Begin(_ context.Context) error { return nil }

// Commit is a no-op. Transactional backends override it.
func (b *Base) Commit(_ context.Context) error { return nil }

// Rollback is a no-op. Transactional backends override it.
func (b *Base) Rollback(_ context.Context) error { return nil }

// Close is a no-op. Backends holding connections override it.
func (b *Base) Close() error { return nil }
