package changelog

import "time"

// Log accumulates the changes applied to one table, in order. A Log is
// owned by a single table and, like the table itself, is not safe for
// concurrent use.
type Log struct {
	changes []Change
}

// NewLog returns an empty log.
func NewLog() *Log {
	return &Log{}
}

// Record appends one change, filling in the ID and timestamp when the
// caller left them unset.
func (l *Log) Record(c Change) {
	if c.ID == "" {
		c.ID = generateID()
	}
	if c.At.IsZero() {
		c.At = time.Now().UTC()
	}
	l.changes = append(l.changes, c)
}

// Append concatenates the records of other onto this log. The other
// log is left untouched; a nil other is a no-op.
func (l *Log) Append(other *Log) {
	if other == nil {
		return
	}
	l.changes = append(l.changes, other.changes...)
}

// Changes returns a copy of the recorded changes in order.
func (l *Log) Changes() []Change {
	out := make([]Change, len(l.changes))
	copy(out, l.changes)
	return out
}

// Len returns the number of recorded changes.
func (l *Log) Len() int {
	return len(l.changes)
}
