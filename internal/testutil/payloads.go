package testutil

import (
	"context"
	"sync"
)

// MemoryPayloads is an in-memory cart.PayloadStore.
type MemoryPayloads struct {
	mu     sync.Mutex
	values map[string][]byte
	writes int
	err    error
}

// NewMemoryPayloads returns an empty store.
func NewMemoryPayloads() *MemoryPayloads {
	return &MemoryPayloads{values: make(map[string][]byte)}
}

// FailWith makes every Put return err. Pass nil to clear.
func (m *MemoryPayloads) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *MemoryPayloads) Put(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.values[key] = append([]byte(nil), value...)
	m.writes++
	return nil
}

// Get returns the stored value for key.
func (m *MemoryPayloads) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok
}

// Writes counts successful Puts.
func (m *MemoryPayloads) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}
