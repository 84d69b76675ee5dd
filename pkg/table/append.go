package table

import (
	"context"
	"errors"
	"fmt"

	"github.com/tabular-labs/tabular/pkg/core"
)

// batchSize is the number of rows written per transaction by Append.
const batchSize = 4096

// Append copies every row of src's first sheet into dst, committing in
// batches of 4096 rows, then merges src's change history onto dst's. A
// destination without columns adopts the source schema first, so
// appending into a blank table clones it.
//
// Rows travel by binding family: integer-like fields through BindInt,
// Double through BindFloat, text-like fields through BindText, nulls as
// absent binds. Blob and Vector fields have no binding family and
// arrive null. An empty source is a no-op that opens no transaction.
func Append(ctx context.Context, dst, src Table) error {
	if dst.NumFields(0) == 0 {
		if err := adoptSchema(dst, src); err != nil {
			return err
		}
	}

	cur, err := src.SeekBegin(ctx, 0)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to scan source: %w", err)
	}
	defer cur.Close()

	n := 0
	for {
		if n == 0 {
			if err := dst.Begin(ctx); err != nil {
				return fmt.Errorf("failed to begin batch: %w", err)
			}
		}

		ins, err := dst.Insert(ctx, cur.RowKey())
		if err != nil {
			return fmt.Errorf("failed to insert row %s: %w", cur.RowKey(), err)
		}
		bindRow(ins, cur)
		if err := ins.Execute(); err != nil {
			return fmt.Errorf("failed to write row %s: %w", cur.RowKey(), err)
		}

		n++
		if n == batchSize {
			if err := dst.Commit(ctx); err != nil {
				return fmt.Errorf("failed to commit batch: %w", err)
			}
			n = 0
		}

		if !cur.Next() {
			break
		}
	}
	if err := cur.Err(); err != nil {
		return fmt.Errorf("failed to scan source: %w", err)
	}

	if n > 0 {
		if err := dst.Commit(ctx); err != nil {
			return fmt.Errorf("failed to commit batch: %w", err)
		}
	}

	dst.Log().Append(src.Log())
	return nil
}

// adoptSchema copies the source key type and every source column onto
// an empty destination, preserving order and column attributes.
func adoptSchema(dst, src Table) error {
	dst.SetKeyType(src.KeyType())

	for col := 0; col < src.NumFields(0); col++ {
		var opts []core.ColumnOption
		if !src.ColumnNullable(col, 0) {
			opts = append(opts, core.NotNull())
		}
		if src.ColumnUnique(col, 0) {
			opts = append(opts, core.Unique())
		}
		if d := src.ColumnDecimals(col, 0); d >= 0 {
			opts = append(opts, core.WithDecimals(d))
		}

		name := src.ColumnName(col, 0)
		if err := dst.AddColumn(name, src.ColumnType(col, 0), opts...); err != nil {
			return fmt.Errorf("failed to add column %q: %w", name, err)
		}
	}
	return nil
}

// bindRow queues every field of the current src row onto the write
// cursor, binding by the column's family.
func bindRow(dst, src Cursor) {
	for col := 0; col < src.NumFields(); col++ {
		present := !src.IsNull(col)
		switch src.ColumnType(col).BindingClass() {
		case core.BindInteger:
			var v int64
			if present {
				v = src.Int(col)
			}
			dst.BindInt(v, present)
		case core.BindFloat:
			var v float64
			if present {
				v = src.Float(col)
			}
			dst.BindFloat(v, present)
		case core.BindText:
			var v string
			if present {
				v = src.Text(col)
			}
			dst.BindText(v, present)
		default:
			// Blob and Vector have no binding family.
			dst.BindText("", false)
		}
	}
}

// AssignAll returns an assign cursor over every column of the table.
func AssignAll(ctx context.Context, t Table) (Cursor, error) {
	cols := make([]int, t.NumFields(0))
	for i := range cols {
		cols[i] = i
	}
	return t.Assign(ctx, cols)
}
