// Package sqlite provides a SQLite table backend on the pure-Go
// modernc driver.
//
// This file registers the backend with the table registry. Import this
// package with a blank identifier to register it:
//
//	import _ "github.com/tabular-labs/tabular/pkg/backends/sqlite"
package sqlite

import (
	"context"
	"log/slog"

	"github.com/tabular-labs/tabular/pkg/core"
	"github.com/tabular-labs/tabular/pkg/table"
)

func init() {
	table.Register("sqlite", func(ctx context.Context, cfg core.Config, logger *slog.Logger) (table.Table, error) {
		return Open(ctx, cfg, logger)
	})
}
