// Package sources loads a catalog of named table sources from a
// tabular.yaml file and opens them through the backend registry.
//
// A catalog file names each source and carries the connection settings
// its backend needs:
//
//	default_backend: memory
//	sources:
//	  events:
//	    backend: sqlite
//	    path: ./events.db
//	    table: events
//	    options: { journal_mode: WAL }
//	  users:
//	    backend: csv
//	    paths: [./users.csv]
package sources

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/tabular-labs/tabular/pkg/core"
	"github.com/tabular-labs/tabular/pkg/table"
)

// Source is the configuration of one named table.
type Source struct {
	Backend  string            `koanf:"backend"`
	Path     string            `koanf:"path"`
	Paths    []string          `koanf:"paths"`
	Table    string            `koanf:"table"`
	Host     string            `koanf:"host"`
	Port     int               `koanf:"port"`
	Database string            `koanf:"database"`
	Username string            `koanf:"username"`
	Password string            `koanf:"password"`
	Schema   string            `koanf:"schema"`
	Options  map[string]string `koanf:"options"`
}

// Catalog is a loaded set of named sources.
type Catalog struct {
	// DefaultBackend is used by sources that do not name a backend.
	DefaultBackend string `koanf:"default_backend"`

	Sources map[string]Source `koanf:"sources"`
}

// UnknownSourceError is returned when a name the catalog does not
// define is opened.
type UnknownSourceError struct {
	Name      string
	Available []string
}

func (e *UnknownSourceError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("unknown source %q (catalog is empty)", e.Name)
	}
	return fmt.Sprintf("unknown source %q (available: %s)", e.Name, strings.Join(e.Available, ", "))
}

// Names returns the catalog's source names, sorted.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.Sources))
	for name := range c.Sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether the catalog defines the source.
func (c *Catalog) Has(name string) bool {
	_, ok := c.Sources[name]
	return ok
}

// config turns a source into the backend configuration, filling in the
// catalog's default backend and expanding ${VAR} references in the
// credential fields.
func (c *Catalog) config(src Source) core.Config {
	backend := src.Backend
	if backend == "" {
		backend = c.DefaultBackend
	}
	return core.Config{
		Backend:  backend,
		Path:     src.Path,
		Paths:    src.Paths,
		Table:    src.Table,
		Host:     expandEnvVars(src.Host),
		Port:     src.Port,
		Database: expandEnvVars(src.Database),
		Username: expandEnvVars(src.Username),
		Password: expandEnvVars(src.Password),
		Schema:   src.Schema,
		Options:  src.Options,
	}
}

// Open opens the named source through the backend registry.
func (c *Catalog) Open(ctx context.Context, name string, logger *slog.Logger) (table.Table, error) {
	src, ok := c.Sources[name]
	if !ok {
		return nil, &UnknownSourceError{Name: name, Available: c.Names()}
	}

	tbl, err := table.Open(ctx, c.config(src), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open source %q: %w", name, err)
	}
	return tbl, nil
}

// OpenAll opens every source in the catalog concurrently. The first
// failure cancels the rest, closes whatever already opened, and is
// returned.
func (c *Catalog) OpenAll(ctx context.Context, logger *slog.Logger) (map[string]table.Table, error) {
	var mu sync.Mutex
	tables := make(map[string]table.Table, len(c.Sources))

	eg, egctx := errgroup.WithContext(ctx)
	for _, name := range c.Names() {
		eg.Go(func() error {
			tbl, err := c.Open(egctx, name, logger)
			if err != nil {
				return err
			}
			mu.Lock()
			tables[name] = tbl
			mu.Unlock()
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		for _, tbl := range tables {
			_ = tbl.Close()
		}
		return nil, err
	}
	return tables, nil
}
