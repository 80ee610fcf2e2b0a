// internal/store/backend.go
//
// Raw key-value persistence for player data.
// Everything the engine persists (puzzle snapshots, last-played pointers,
// settings, accounts) is serialised JSON stored under a string key. The typed
// repositories in this package build the keys; callers never do.
//
// Implementations:
//   - memory (this package): process-local map, lost on restart.
//   - SQL (sql.go): a single kv table on sqlite, postgres or mysql.

package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Backend.Get when the key has no value.
var ErrNotFound = errors.New("store: not found")

// Backend is a synchronous byte store keyed by string.
type Backend interface {
	// Get returns the value for key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set creates or replaces the value for key.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// DeletePrefix removes every key starting with prefix.
	DeletePrefix(ctx context.Context, prefix string) error

	// Close releases the backend's resources.
	Close() error
}
