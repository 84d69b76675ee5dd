package table

import (
	"errors"
	"fmt"
)

// ErrNotFound reports a seek that matched no row. It never wraps a
// backend failure, so errors.Is can tell absence from breakage.
var ErrNotFound = errors.New("row not found")

// ErrReadOnly reports a mutation attempted on a read-only backend.
var ErrReadOnly = errors.New("table is read-only")

// UnknownBackendError is returned when an unregistered backend name is
// requested.
type UnknownBackendError struct {
	Backend   string
	Available []string
}

func (e *UnknownBackendError) Error() string {
	return fmt.Sprintf("unknown backend %q\nAvailable backends: %v\nHint: Check the source backend in tabular.yaml", e.Backend, e.Available)
}
