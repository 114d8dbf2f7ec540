package store

import (
	"context"
	"fmt"
	"sync"
)

// Memory is an in-process KV. A positive maxBytes caps the total size of all
// stored values; writes past the cap are rejected like a full disk.
type Memory struct {
	mu       sync.RWMutex
	data     map[string][]byte
	maxBytes int
}

// NewMemory creates an empty in-memory store.
func NewMemory(maxBytes int) *Memory {
	return &Memory{data: make(map[string][]byte), maxBytes: maxBytes}
}

// Read returns a copy of the value stored under key.
func (m *Memory) Read(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

// Write stores a copy of value under key.
func (m *Memory) Write(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.maxBytes > 0 {
		total := len(value)
		for k, v := range m.data {
			if k != key {
				total += len(v)
			}
		}
		if total > m.maxBytes {
			return storageErr("writing", key, fmt.Errorf("quota exceeded: %d > %d bytes", total, m.maxBytes))
		}
	}

	v := make([]byte, len(value))
	copy(v, value)
	m.data[key] = v
	return nil
}

// Remove deletes key.
func (m *Memory) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Close is a no-op.
func (m *Memory) Close() error {
	return nil
}
