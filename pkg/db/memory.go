package db

import (
	"context"
	"fmt"
	"sync"

	"github.com/matt-steen/attendance-tracker/pkg/ledger"
)

// Memory keeps values in a map. Nothing survives the process.
type Memory struct {
	mu     sync.Mutex
	values map[string][]byte
}

// NewMemory returns an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{values: map[string][]byte{}}
}

// Get returns a copy of the value stored under key, or an error wrapping ledger.ErrKeyNotFound.
func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	value, ok := m.values[key]
	if !ok {
		return nil, fmt.Errorf("error loading key %s: %w", key, ledger.ErrKeyNotFound)
	}

	return append([]byte{}, value...), nil
}

// Set stores a copy of value under key.
func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = append([]byte{}, value...)

	return nil
}

// Delete removes key.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.values, key)

	return nil
}
