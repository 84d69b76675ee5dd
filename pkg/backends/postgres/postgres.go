package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/tabular-labs/tabular/pkg/backends/sqltable"
	"github.com/tabular-labs/tabular/pkg/core"
)

// Open connects to PostgreSQL and wraps cfg.Table in a table handle.
func Open(ctx context.Context, cfg core.Config, logger *slog.Logger) (*sqltable.Table, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Table == "" {
		return nil, fmt.Errorf("table not specified")
	}

	dsn := buildDSN(cfg)

	logger.Debug("connecting to postgres",
		slog.String("host", cfg.Host),
		slog.String("database", cfg.Database))

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	tbl, err := sqltable.Open(ctx, db, Dialect(), cfg.Table, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return tbl, nil
}

// buildDSN constructs a PostgreSQL connection string.
func buildDSN(cfg core.Config) string {
	// Build key=value format: host=localhost port=5432 user=postgres ...
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}

	port := cfg.Port
	if port == 0 {
		port = 5432
	}

	sslmode := "disable"
	if cfg.Options != nil {
		if mode, ok := cfg.Options["sslmode"]; ok {
			sslmode = mode
		}
	}

	dsn := fmt.Sprintf("host=%s port=%d dbname=%s sslmode=%s",
		host, port, cfg.Database, sslmode)

	if cfg.Username != "" {
		dsn += fmt.Sprintf(" user=%s", cfg.Username)
	}
	if cfg.Password != "" {
		dsn += fmt.Sprintf(" password=%s", cfg.Password)
	}
	if cfg.Schema != "" {
		// pgx forwards unknown keys as server runtime parameters.
		dsn += fmt.Sprintf(" search_path=%s", cfg.Schema)
	}

	return dsn
}

// Dialect returns the PostgreSQL dialect. Names resolve against the
// connection's current schema.
func Dialect() sqltable.Dialect {
	return sqltable.Dialect{
		Name:        "postgres",
		Placeholder: dollarPlaceholder,
		Quote:       sqltable.DoubleQuote,
		TypeDDL:     typeDDL,
		ScanType:    scanType,
		ColumnsQuery: func(table string) (string, []any) {
			q := `SELECT column_name, data_type, is_nullable FROM information_schema.columns WHERE table_schema = current_schema() AND table_name = $1 ORDER BY ordinal_position`
			return q, []any{table}
		},
	}
}

func dollarPlaceholder(i int) string { return "$" + strconv.Itoa(i) }

func typeDDL(col core.Column) string {
	switch col.Type.BindingClass() {
	case core.BindInteger:
		return "BIGINT"
	case core.BindFloat:
		if col.Decimals >= 0 {
			return fmt.Sprintf("DECIMAL(38,%d)", col.Decimals)
		}
		return "DOUBLE PRECISION"
	case core.BindNone:
		return "BYTEA"
	default:
		return "TEXT"
	}
}

func scanType(dbType string) core.ColumnType {
	switch strings.ToLower(dbType) {
	case "bigint", "integer", "smallint":
		return core.Integer
	case "double precision", "real", "numeric":
		return core.Double
	case "bytea":
		return core.Blob
	default:
		return core.Text
	}
}
