// Package sqltable implements the table contract on top of a
// database/sql handle. Backend packages supply the driver and a
// Dialect; the scans, upserts, transactions and schema DDL are shared
// here.
//
// Physical layout: one backing table per Table, with the composite row
// key persisted in a single primary-key column (see keyColumn) using
// core.Key.Encode. Data columns follow in schema order. The engine is
// single-sheet.
package sqltable

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/tabular-labs/tabular/pkg/changelog"
	"github.com/tabular-labs/tabular/pkg/core"
	"github.com/tabular-labs/tabular/pkg/table"
)

// keyColumn holds the encoded row key. The underscore keeps it clear
// of user column names.
const keyColumn = "_key"

// runner is satisfied by *sql.DB and *sql.Tx, so statements route
// through the open transaction when one exists.
type runner interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Table implements the table contract over database/sql.
type Table struct {
	table.Base

	logger  *slog.Logger
	db      *sql.DB
	dialect Dialect
	name    string
	cols    []core.Column
	created bool
	ownsDB  bool

	tx *sql.Tx

	autoKey    int64
	autoSeeded bool
}

// Open wraps a database handle as a table. When the backing table
// already exists its columns are introspected; otherwise it is created
// lazily on the first write or AddColumn. The table takes ownership of
// db and closes it on Close.
func Open(ctx context.Context, db *sql.DB, dialect Dialect, name string, logger *slog.Logger) (*Table, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if db == nil {
		return nil, fmt.Errorf("database connection not established")
	}
	if name == "" {
		return nil, fmt.Errorf("table name not specified")
	}

	t := &Table{
		Base:    table.NewBase(),
		logger:  logger,
		db:      db,
		dialect: dialect,
		name:    name,
		ownsDB:  true,
	}
	if err := t.introspect(ctx); err != nil {
		return nil, err
	}

	logger.Debug("opened table",
		slog.String("dialect", dialect.Name),
		slog.String("table", name),
		slog.Int("columns", len(t.cols)))
	return t, nil
}

// introspect reads the backing table's columns from the catalog. The
// unique mark and the decimals hint do not round-trip through SQL
// catalogs; reopened tables report them unset.
func (t *Table) introspect(ctx context.Context) error {
	query, args := t.dialect.ColumnsQuery(t.name)
	rows, err := t.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to query columns of %s: %w", t.name, err)
	}
	defer func() { _ = rows.Close() }()

	var cols []core.Column
	for rows.Next() {
		var name, dbType, nullable string
		if err := rows.Scan(&name, &dbType, &nullable); err != nil {
			return fmt.Errorf("failed to scan column metadata: %w", err)
		}
		t.created = true
		if name == keyColumn {
			continue
		}
		cols = append(cols, core.Column{
			Name:     name,
			Type:     t.dialect.ScanType(dbType),
			Nullable: nullable == "YES",
			Decimals: -1,
		})
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating column metadata: %w", err)
	}

	t.cols = cols
	return nil
}

func (t *Table) runner() runner {
	if t.tx != nil {
		return t.tx
	}
	return t.db
}

func (t *Table) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if t.db == nil {
		return nil, fmt.Errorf("database connection not established")
	}
	return t.runner().ExecContext(ctx, query, args...)
}

// ensureCreated creates the backing table on first use: just the key
// column, data columns arrive through AddColumn.
func (t *Table) ensureCreated(ctx context.Context) error {
	if t.created {
		return nil
	}

	q := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s TEXT PRIMARY KEY)",
		t.dialect.Quote(t.name), t.dialect.Quote(keyColumn))
	if _, err := t.exec(ctx, q); err != nil {
		return fmt.Errorf("failed to create table %s: %w", t.name, err)
	}

	t.created = true
	t.logger.Debug("created table", slog.String("table", t.name))
	return nil
}

// AddColumn appends a column to the backing table. NOT NULL is not
// rendered into the DDL, since adding such a column to a populated
// table is not portable; presence is enforced at bind time instead.
// Unique columns get a unique index.
func (t *Table) AddColumn(name string, typ core.ColumnType, opts ...core.ColumnOption) error {
	ctx := context.Background()
	if err := t.ensureCreated(ctx); err != nil {
		return err
	}

	col := core.NewColumn(name, typ, opts...)
	q := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s",
		t.dialect.Quote(t.name), t.dialect.Quote(name), t.dialect.TypeDDL(col))
	if _, err := t.exec(ctx, q); err != nil {
		return fmt.Errorf("failed to add column %s: %w", name, err)
	}

	if col.Unique {
		idx := fmt.Sprintf("CREATE UNIQUE INDEX IF NOT EXISTS %s ON %s (%s)",
			t.dialect.Quote(t.name+"_"+name+"_uniq"), t.dialect.Quote(t.name), t.dialect.Quote(name))
		if _, err := t.exec(ctx, idx); err != nil {
			return fmt.Errorf("failed to index column %s: %w", name, err)
		}
	}

	t.cols = append(t.cols, col)
	t.logger.Debug("added column",
		slog.String("table", t.name),
		slog.String("name", name),
		slog.String("type", typ.String()))
	return nil
}

func (t *Table) NumFields(sheet int) int {
	if sheet != 0 {
		return 0
	}
	return len(t.cols)
}

func (t *Table) column(col, sheet int) (core.Column, bool) {
	if sheet != 0 || col < 0 || col >= len(t.cols) {
		return core.Column{}, false
	}
	return t.cols[col], true
}

func (t *Table) ColumnType(col, sheet int) core.ColumnType {
	c, ok := t.column(col, sheet)
	if !ok {
		return core.Text
	}
	return c.Type
}

func (t *Table) ColumnName(col, sheet int) string {
	c, _ := t.column(col, sheet)
	return c.Name
}

func (t *Table) ColumnNullable(col, sheet int) bool {
	c, ok := t.column(col, sheet)
	return ok && c.Nullable
}

func (t *Table) ColumnUnique(col, sheet int) bool {
	c, _ := t.column(col, sheet)
	return c.Unique
}

func (t *Table) ColumnDecimals(col, sheet int) int {
	c, ok := t.column(col, sheet)
	if !ok {
		return -1
	}
	return c.Decimals
}

// Begin opens a transaction. Statements run through it until Commit or
// Rollback.
func (t *Table) Begin(ctx context.Context) error {
	if t.db == nil {
		return fmt.Errorf("database connection not established")
	}
	if t.tx != nil {
		return fmt.Errorf("transaction already open")
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	t.tx = tx
	return nil
}

// Commit closes the open transaction. Committing with none open is a
// no-op.
func (t *Table) Commit(_ context.Context) error {
	if t.tx == nil {
		return nil
	}

	err := t.tx.Commit()
	t.tx = nil
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Rollback abandons the open transaction. Rolling back with none open
// is a no-op.
func (t *Table) Rollback(_ context.Context) error {
	if t.tx == nil {
		return nil
	}

	err := t.tx.Rollback()
	t.tx = nil
	if err != nil {
		return fmt.Errorf("failed to roll back transaction: %w", err)
	}
	return nil
}

// Remove deletes the row at key. A delete that touches no rows is not
// recorded in the change log.
func (t *Table) Remove(ctx context.Context, key core.Key) error {
	if !t.created {
		return nil
	}

	q := fmt.Sprintf("DELETE FROM %s WHERE %s = %s",
		t.dialect.Quote(t.name), t.dialect.Quote(keyColumn), t.dialect.Placeholder(1))
	res, err := t.exec(ctx, q, key.Encode())
	if err != nil {
		return fmt.Errorf("failed to remove row: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil
	}
	t.Log().Record(changelog.Change{Op: changelog.OpRemove, Key: key})
	return nil
}

// Clear deletes every row while keeping the schema.
func (t *Table) Clear(ctx context.Context) error {
	if t.created {
		q := fmt.Sprintf("DELETE FROM %s", t.dialect.Quote(t.name))
		if _, err := t.exec(ctx, q); err != nil {
			return fmt.Errorf("failed to clear table %s: %w", t.name, err)
		}
	}

	t.Log().Record(changelog.Change{Op: changelog.OpClear})
	t.logger.Debug("cleared table", slog.String("table", t.name))
	return nil
}

// Copy duplicates the backing table inside the same database under a
// fresh name. The duplicate borrows the connection, so closing it does
// not close the original.
func (t *Table) Copy(ctx context.Context) (table.Table, error) {
	copyName := fmt.Sprintf("%s_copy_%s", t.name, uuid.New().String()[:8])

	if t.created {
		q := fmt.Sprintf("CREATE TABLE %s AS SELECT * FROM %s",
			t.dialect.Quote(copyName), t.dialect.Quote(t.name))
		if _, err := t.exec(ctx, q); err != nil {
			return nil, fmt.Errorf("failed to copy table %s: %w", t.name, err)
		}
	}

	dup := &Table{
		Base:    table.NewBase(),
		logger:  t.logger,
		db:      t.db,
		dialect: t.dialect,
		name:    copyName,
		cols:    append([]core.Column(nil), t.cols...),
		created: t.created,
	}
	dup.SetKeyType(t.KeyType())
	dup.SetHumanReadableKey(t.HasHumanReadableKey())

	t.logger.Debug("copied table",
		slog.String("table", t.name),
		slog.String("copy", copyName))
	return dup, nil
}

// Name returns the backing table's name. Copies get generated names.
func (t *Table) Name() string { return t.name }

// Close rolls back any open transaction and, when the table owns the
// handle, closes the database.
func (t *Table) Close() error {
	if t.tx != nil {
		_ = t.tx.Rollback()
		t.tx = nil
	}
	if t.db == nil || !t.ownsDB {
		return nil
	}

	err := t.db.Close()
	t.db = nil
	if err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

// nextAutoKey hands out integer keys for InsertRow. The counter seeds
// from the current row count and probes past keys already taken.
func (t *Table) nextAutoKey(ctx context.Context) (core.Key, error) {
	if !t.autoSeeded {
		var n int64
		q := fmt.Sprintf("SELECT COUNT(*) FROM %s", t.dialect.Quote(t.name))
		if err := t.runner().QueryRowContext(ctx, q).Scan(&n); err != nil {
			return core.Key{}, fmt.Errorf("failed to count rows in %s: %w", t.name, err)
		}
		t.autoKey = n
		t.autoSeeded = true
	}

	probe := fmt.Sprintf("SELECT 1 FROM %s WHERE %s = %s",
		t.dialect.Quote(t.name), t.dialect.Quote(keyColumn), t.dialect.Placeholder(1))
	for {
		t.autoKey++
		key := core.NewIntKey(t.autoKey)
		var one int
		err := t.runner().QueryRowContext(ctx, probe, key.Encode()).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return key, nil
		}
		if err != nil {
			return core.Key{}, fmt.Errorf("failed to probe key %s: %w", key, err)
		}
	}
}

// filterValues renders a filter's key set as driver arguments, sorted
// for deterministic SQL.
func filterValues(typ core.ColumnType, set map[core.Key]struct{}) []any {
	keys := make([]core.Key, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Encode() < keys[j].Encode() })

	vals := make([]any, 0, len(keys))
	for _, k := range keys {
		switch typ.BindingClass() {
		case core.BindInteger:
			vals = append(vals, k.Int(0))
		case core.BindFloat:
			if f, err := strconv.ParseFloat(k.Text(0), 64); err == nil {
				vals = append(vals, f)
				continue
			}
			vals = append(vals, k.Text(0))
		default:
			vals = append(vals, k.Text(0))
		}
	}
	return vals
}

// scanQuery builds the SELECT used by scans, pushing filters down as
// IN lists. An empty filter excludes every row.
func (t *Table) scanQuery() (string, []any) {
	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(t.selectList())
	sb.WriteString(" FROM ")
	sb.WriteString(t.dialect.Quote(t.name))

	filtered := make([]int, 0, len(t.Filters()))
	for col := range t.Filters() {
		filtered = append(filtered, col)
	}
	sort.Ints(filtered)

	var (
		conds []string
		args  []any
		n     int
	)
	for _, col := range filtered {
		set := t.Filters()[col]
		if col < 0 || col >= len(t.cols) || len(set) == 0 {
			conds = append(conds, "1 = 0")
			continue
		}

		vals := filterValues(t.cols[col].Type, set)
		marks := make([]string, len(vals))
		for i, v := range vals {
			n++
			marks[i] = t.dialect.Placeholder(n)
			args = append(args, v)
		}
		conds = append(conds, fmt.Sprintf("%s IN (%s)",
			t.dialect.Quote(t.cols[col].Name), strings.Join(marks, ", ")))
	}
	if len(conds) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(conds, " AND "))
	}

	sb.WriteString(" ORDER BY ")
	sb.WriteString(t.dialect.Quote(keyColumn))
	return sb.String(), args
}

var _ table.Table = (*Table)(nil)
