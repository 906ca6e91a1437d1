package storage

import (
	"context"
	"sync"

	"github.com/atriumhq/sdk/capability"
)

// Memory is an in-process implementation of the storage capability.
// It is the default provider for hosts that configure nothing else and
// the natural choice for tests: fast, ephemeral, and safe for
// concurrent use.
type Memory struct {
	mu   sync.RWMutex
	data map[string]any
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]any)}
}

// Get retrieves a value by key.
// Returns capability.ErrKeyNotFound if the key does not exist.
func (m *Memory) Get(ctx context.Context, key string) (any, error) {
	if key == "" {
		return nil, capability.ErrInvalidKey
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key]
	if !ok {
		return nil, capability.ErrKeyNotFound
	}
	return v, nil
}

// Set stores a value with the given key, replacing any existing value.
func (m *Memory) Set(ctx context.Context, key string, value any) error {
	if key == "" {
		return capability.ErrInvalidKey
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = value
	return nil
}

// Delete removes a value by key.
// Returns capability.ErrKeyNotFound if the key does not exist.
func (m *Memory) Delete(ctx context.Context, key string) error {
	if key == "" {
		return capability.ErrInvalidKey
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.data[key]; !ok {
		return capability.ErrKeyNotFound
	}
	delete(m.data, key)
	return nil
}

// Keys returns all keys currently in the store.
func (m *Memory) Keys(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	return keys, nil
}

// Clear removes all values from the store.
func (m *Memory) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data = make(map[string]any)
	return nil
}

var _ capability.Storage = (*Memory)(nil)
