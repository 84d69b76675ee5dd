// Package memory provides an in-memory table backend.
//
// This file registers the backend with the table registry. Import this
// package with a blank identifier to register it:
//
//	import _ "github.com/tabular-labs/tabular/pkg/backends/memory"
package memory

import (
	"context"
	"log/slog"

	"github.com/tabular-labs/tabular/pkg/core"
	"github.com/tabular-labs/tabular/pkg/table"
)

func init() {
	table.Register("memory", func(_ context.Context, cfg core.Config, logger *slog.Logger) (table.Table, error) {
		params, err := parseParams(cfg.Options)
		if err != nil {
			return nil, err
		}

		var opts []Option
		if params.Sheets > 1 {
			opts = append(opts, WithSheets(params.Sheets))
		}
		return New(logger, opts...), nil
	})
}
