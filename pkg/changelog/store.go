package changelog

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/tabular-labs/tabular/pkg/core"
)

// Store persists change histories to SQLite so they survive process
// restarts. Use ":memory:" for throwaway stores.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates an unopened store.
func NewStore() *Store {
	return &Store{}
}

// Open opens the backing SQLite database.
func (s *Store) Open(path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open changelog database: %w", err)
	}
	if path == ":memory:" {
		// Every pooled connection of a plain :memory: DSN sees its own
		// database, so the pool must stay at one connection.
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping changelog database: %w", err)
	}

	s.db = db
	s.path = path
	return nil
}

// Close closes the backing database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveLog persists every change of the log under the given table name.
// Change IDs already present in the store are skipped, so saving the
// same log twice does not duplicate history.
func (s *Store) SaveLog(table string, log *Log) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, c := range log.Changes() {
		_, err := tx.Exec(
			`INSERT OR IGNORE INTO changes (id, table_name, op, row_key, sheet, at) VALUES (?, ?, ?, ?, ?, ?)`,
			c.ID, table, int(c.Op), c.Key.Encode(), c.Sheet, c.At,
		)
		if err != nil {
			return fmt.Errorf("failed to insert change: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// LoadLog reads back the history recorded under a table name, in the
// order it was saved.
func (s *Store) LoadLog(table string) (*Log, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.Query(
		`SELECT id, op, row_key, sheet, at FROM changes WHERE table_name = ? ORDER BY seq`,
		table,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load changes: %w", err)
	}
	defer rows.Close()

	log := NewLog()
	for rows.Next() {
		var (
			c   Change
			op  int
			enc string
		)
		if err := rows.Scan(&c.ID, &op, &enc, &c.Sheet, &c.At); err != nil {
			return nil, fmt.Errorf("failed to scan change: %w", err)
		}
		c.Op = Op(op)

		key, err := core.DecodeKey(enc)
		if err != nil {
			return nil, fmt.Errorf("failed to decode change key: %w", err)
		}
		c.Key = key

		log.changes = append(log.changes, c)
	}

	return log, rows.Err()
}
