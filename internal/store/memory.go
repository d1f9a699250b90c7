package store

import (
	"context"
	"sync"

	"github.com/The-Noona-Project/Noona-Vault/internal/core"
)

const MemoryType = "memory"

var _ core.Directory = (*MemoryDirectory)(nil)

// MemoryDirectory is a process-local directory, used for tests and single-node setups.
type MemoryDirectory struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{
		values: make(map[string]string),
	}
}

func (m *MemoryDirectory) Name() string {
	return MemoryType
}

func (m *MemoryDirectory) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", unavailable(MemoryType, err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.values[key]
	if !ok {
		return "", core.ErrNotFound
	}
	return value, nil
}

func (m *MemoryDirectory) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return unavailable(MemoryType, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = value
	return nil
}

func (m *MemoryDirectory) Delete(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, unavailable(MemoryType, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	_, existed := m.values[key]
	delete(m.values, key)
	return existed, nil
}

func (m *MemoryDirectory) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return unavailable(MemoryType, err)
	}
	return nil
}

// Len returns the number of stored entries.
func (m *MemoryDirectory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.values)
}

func (m *MemoryDirectory) Close() error {
	return nil // nothing to close :)
}
