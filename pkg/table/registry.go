package table

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/tabular-labs/tabular/pkg/core"
)

// Factory opens a table on a backend.
type Factory func(ctx context.Context, cfg core.Config, logger *slog.Logger) (Table, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register adds a backend factory to the registry.
// Called by backend implementations in their init() functions.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// Get retrieves a backend factory by name.
func Get(name string) (Factory, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := registry[name]
	return f, ok
}

// Open opens a table using the backend named in cfg.Backend.
// The logger is handed to the backend (nil uses a discard logger).
func Open(ctx context.Context, cfg core.Config, logger *slog.Logger) (Table, error) {
	if cfg.Backend == "" {
		return nil, fmt.Errorf("backend not specified")
	}

	factory, ok := Get(cfg.Backend)
	if !ok {
		return nil, &UnknownBackendError{
			Backend:   cfg.Backend,
			Available: ListBackends(),
		}
	}
	return factory(ctx, cfg, logger)
}

// ListBackends returns all registered backend names (sorted).
func ListBackends() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered checks if a backend name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[name]
	return ok
}
