package csvfile

import (
	"fmt"
	"strconv"

	"github.com/tabular-labs/tabular/pkg/core"
)

// readCursor walks a fixed list of 0-based row ordinals. The backing
// data never changes, so no snapshot bookkeeping is needed.
type readCursor struct {
	sh   *fileSheet
	rows []int
	pos  int
}

func (c *readCursor) RowKey() core.Key {
	if c.pos >= len(c.rows) {
		return core.Key{}
	}
	return core.NewIntKey(int64(c.rows[c.pos]) + 1)
}

func (c *readCursor) NumFields() int { return len(c.sh.cols) }

func (c *readCursor) ColumnType(_ int) core.ColumnType { return core.Text }

// value returns the cell text and whether it is present. Empty cells
// and cells past the end of a short record are null.
func (c *readCursor) value(col int) (string, bool) {
	if c.pos >= len(c.rows) || col < 0 || col >= len(c.sh.cols) {
		return "", false
	}
	record := c.sh.rows[c.rows[c.pos]]
	if col >= len(record) || record[col] == "" {
		return "", false
	}
	return record[col], true
}

func (c *readCursor) IsNull(col int) bool {
	_, ok := c.value(col)
	return !ok
}

func (c *readCursor) Int(col int) int64 {
	v, ok := c.value(col)
	if !ok {
		return 0
	}
	n, _ := strconv.ParseInt(v, 10, 64)
	return n
}

func (c *readCursor) Float(col int) float64 {
	v, ok := c.value(col)
	if !ok {
		return 0
	}
	f, _ := strconv.ParseFloat(v, 64)
	return f
}

func (c *readCursor) Text(col int) string {
	v, _ := c.value(col)
	return v
}

func (c *readCursor) BindInt(int64, bool)     {}
func (c *readCursor) BindFloat(float64, bool) {}
func (c *readCursor) BindText(string, bool)   {}

func (c *readCursor) Execute() error {
	return fmt.Errorf("cursor is read-only")
}

func (c *readCursor) Next() bool {
	c.pos++
	return c.pos < len(c.rows)
}

func (c *readCursor) Err() error   { return nil }
func (c *readCursor) Close() error { return nil }
