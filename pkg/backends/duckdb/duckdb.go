package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver

	"github.com/tabular-labs/tabular/pkg/backends/sqltable"
	"github.com/tabular-labs/tabular/pkg/core"
)

// Open opens or creates the DuckDB database at cfg.Path and wraps
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

	logger.Debug("connecting to duckdb", slog.String("path", path))

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping duckdb: %w", err)
	}

	if err := applySettings(ctx, db, params); err != nil {
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

// applySettings configures the database instance. memory_limit and
// threads are global options in DuckDB, so one statement covers every
// pooled connection.
func applySettings(ctx context.Context, db *sql.DB, params *Params) error {
	if params.MemoryLimit != "" {
		q := fmt.Sprintf("SET memory_limit = '%s'", params.MemoryLimit)
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("failed to set memory_limit: %w", err)
		}
	}
	if params.Threads > 0 {
		q := fmt.Sprintf("SET threads = %d", params.Threads)
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("failed to set threads: %w", err)
		}
	}
	return nil
}

// Dialect returns the DuckDB dialect.
func Dialect() sqltable.Dialect {
	return sqltable.Dialect{
		Name:        "duckdb",
		Placeholder: sqltable.QuestionPlaceholder,
		Quote:       sqltable.DoubleQuote,
		TypeDDL:     typeDDL,
		ScanType:    scanType,
		ColumnsQuery: func(table string) (string, []any) {
			q := `SELECT column_name, data_type, is_nullable FROM information_schema.columns WHERE table_schema = current_schema() AND table_name = ? ORDER BY ordinal_position`
			return q, []any{table}
		},
	}
}

func typeDDL(col core.Column) string {
	switch col.Type.BindingClass() {
	case core.BindInteger:
		return "BIGINT"
	case core.BindFloat:
		if col.Decimals >= 0 {
			return fmt.Sprintf("DECIMAL(38,%d)", col.Decimals)
		}
		return "DOUBLE"
	case core.BindNone:
		return "BLOB"
	default:
		return "VARCHAR"
	}
}

func scanType(dbType string) core.ColumnType {
	t := strings.ToUpper(dbType)
	if strings.HasPrefix(t, "DECIMAL") {
		return core.Double
	}
	switch t {
	case "BIGINT", "INTEGER", "SMALLINT", "TINYINT", "HUGEINT", "UBIGINT", "UINTEGER", "USMALLINT", "UTINYINT":
		return core.Integer
	case "DOUBLE", "FLOAT", "REAL":
		return core.Double
	case "BLOB":
		return core.Blob
	default:
		return core.Text
	}
}
