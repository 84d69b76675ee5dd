// Package postgres provides a PostgreSQL table backend on the pgx
// driver.
//
// This file registers the backend with the table registry. Import this
// package with a blank identifier to register it:
//
//	import _ "github.com/tabular-labs/tabular/pkg/backends/postgres"
package postgres

import (
	"context"
	"log/slog"

	"github.com/tabular-labs/tabular/pkg/core"
	"github.com/tabular-labs/tabular/pkg/table"
)

func init() {
	table.Register("postgres", func(ctx context.Context, cfg core.Config, logger *slog.Logger) (table.Table, error) {
		return Open(ctx, cfg, logger)
	})
}
