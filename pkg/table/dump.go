package table

import (
	"context"
	"strings"

	"github.com/tabular-labs/tabular/pkg/core"
)

// DumpRow renders the row at key with its fields joined by ";", null
// fields as empty segments. A key that matches no row (or a seek that
// fails) renders as the literal "not found".
func DumpRow(ctx context.Context, t Table, key core.Key) string {
	cur, err := t.Seek(ctx, key)
	if err != nil {
		return "not found"
	}
	defer cur.Close()

	var b strings.Builder
	for col := 0; col < cur.NumFields(); col++ {
		if col > 0 {
			b.WriteString(";")
		}
		b.WriteString(cur.Text(col))
	}
	return b.String()
}
