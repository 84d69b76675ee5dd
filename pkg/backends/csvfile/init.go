// Package csvfile provides a read-only table backend over CSV files.
//
// This file registers the backend with the table registry. Import this
// package with a blank identifier to register it:
//
//	import _ "github.com/tabular-labs/tabular/pkg/backends/csvfile"
package csvfile

import (
	"context"
	"log/slog"

	"github.com/tabular-labs/tabular/pkg/core"
	"github.com/tabular-labs/tabular/pkg/table"
)

func init() {
	table.Register("csv", func(ctx context.Context, cfg core.Config, logger *slog.Logger) (table.Table, error) {
		paths := cfg.Paths
		if len(paths) == 0 && cfg.Path != "" {
			paths = []string{cfg.Path}
		}
		return Open(ctx, logger, paths...)
	})
}
