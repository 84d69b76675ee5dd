package table

import (
	"context"
	"errors"
	"fmt"
	"io"

	pretty "github.com/jedib0t/go-pretty/v6/table"
)

// Render pretty-prints a sheet to w for diagnostics: the key column
// first, then every field column, nulls shown as NULL, and a row count
// trailer. An empty sheet prints "(0 rows)".
func Render(ctx context.Context, w io.Writer, t Table, sheet int) error {
	cur, err := t.SeekBegin(ctx, sheet)
	if errors.Is(err, ErrNotFound) {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to scan sheet: %w", err)
	}
	defer cur.Close()

	tw := pretty.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(pretty.StyleLight)

	header := make(pretty.Row, 0, t.NumFields(sheet)+1)
	header = append(header, "key")
	for col := 0; col < t.NumFields(sheet); col++ {
		header = append(header, t.ColumnName(col, sheet))
	}
	tw.AppendHeader(header)

	n := 0
	for {
		row := make(pretty.Row, 0, cur.NumFields()+1)
		row = append(row, cur.RowKey().String())
		for col := 0; col < cur.NumFields(); col++ {
			if cur.IsNull(col) {
				row = append(row, "NULL")
			} else {
				row = append(row, cur.Text(col))
			}
		}
		tw.AppendRow(row)
		n++

		if !cur.Next() {
			break
		}
	}
	if err := cur.Err(); err != nil {
		return fmt.Errorf("failed to scan sheet: %w", err)
	}

	tw.Render()
	_, _ = fmt.Fprintf(w, "(%d rows)\n", n)
	return nil
}
