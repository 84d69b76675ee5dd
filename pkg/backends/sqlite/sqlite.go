package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/tabular-labs/tabular/pkg/backends/sqltable"
	"github.com/tabular-labs/tabular/pkg/core"
)

// Open opens or creates the SQLite database at cfg.Path and wraps
// cfg.Table in a table handle. An empty path opens an in-memory
// database.
func Open(ctx context.Context, cfg core.Config, logger *slog.Logger) (*sqltable.Table, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Table == "" {
		return nil, fmt.Errorf("table not specified")
	}

	params, err := parseParams(cfg.Options)
	if err != nil {
		return nil, err
	}

	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}

	logger.Debug("connecting to sqlite", slog.String("path", path))

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if path == ":memory:" {
		// Every pooled connection of a plain :memory: DSN sees its own
		// database, so the pool must stay at one connection.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite: %w", err)
	}

	if err := applyPragmas(ctx, db, params); err != nil {
		_ = db.Close()
		return nil, err
	}

	tbl, err := sqltable.Open(ctx, db, Dialect(), cfg.Table, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return tbl, nil
}

func applyPragmas(ctx context.Context, db *sql.DB, params *Params) error {
	if params.JournalMode != "" {
		q := "PRAGMA journal_mode = " + params.JournalMode
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("failed to set journal_mode: %w", err)
		}
	}
	if params.BusyTimeoutMS > 0 {
		q := fmt.Sprintf("PRAGMA busy_timeout = %d", params.BusyTimeoutMS)
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("failed to set busy_timeout: %w", err)
		}
	}
	if params.ForeignKeys {
		if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			return fmt.Errorf("failed to enable foreign_keys: %w", err)
		}
	}
	return nil
}

// Dialect returns the SQLite dialect.
func Dialect() sqltable.Dialect {
	return sqltable.Dialect{
		Name:        "sqlite",
		Placeholder: sqltable.QuestionPlaceholder,
		Quote:       sqltable.DoubleQuote,
		TypeDDL:     typeDDL,
		ScanType:    scanType,
		ColumnsQuery: func(table string) (string, []any) {
			q := `SELECT name, type, CASE WHEN "notnull" = 0 THEN 'YES' ELSE 'NO' END FROM pragma_table_info(?) ORDER BY cid`
			return q, []any{table}
		},
	}
}

func typeDDL(col core.Column) string {
	switch col.Type.BindingClass() {
	case core.BindInteger:
		return "INTEGER"
	case core.BindFloat:
		return "REAL"
	case core.BindNone:
		return "BLOB"
	default:
		return "TEXT"
	}
}

func scanType(dbType string) core.ColumnType {
	switch strings.ToUpper(dbType) {
	case "INTEGER", "INT", "BIGINT":
		return core.Integer
	case "REAL", "DOUBLE", "FLOAT", "NUMERIC":
		return core.Double
	case "BLOB":
		return core.Blob
	default:
		return core.Text
	}
}
