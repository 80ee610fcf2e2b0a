// internal/store/memory.go
//
// In-memory implementation of Backend.
// Used for ephemeral deployments (STORE_BACKEND=memory) and in tests.
//
// Characteristics:
//   - Values keyed by string in a map; copies are made on the way in and out.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - State is lost when the process restarts.

package store

import (
	"context"
	"strings"
	"sync"
)

// memory is an in-memory map-based Backend implementation.
type memory struct {
	mu   sync.RWMutex      // guards data
	data map[string][]byte // keyed by full namespaced key
}

// NewMemory constructs a new in-memory Backend.
func NewMemory() Backend {
	return &memory{data: make(map[string][]byte)}
}

// Get looks up a value by key.
func (m *memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.data[key]; ok {
		return append([]byte(nil), v...), nil
	}
	return nil, ErrNotFound
}

// Set adds or replaces the value in the map.
func (m *memory) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memory) DeletePrefix(_ context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			delete(m.data, k)
		}
	}
	return nil
}

func (m *memory) Close() error { return nil }
