package kv

import (
	"context"
	"sync"

	"ctoken/core"
)

// Memory in-memory store, used by tests and the memory driver
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory new empty in-memory store
func NewMemory() *Memory {
	return &Memory{
		data: make(map[string][]byte),
	}
}

func (m *Memory) Get(_ context.Context, key []byte) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.data[string(key)]
	if !ok {
		return nil, core.ErrKeyNotFound
	}

	return copyBytes(value), nil
}

func (m *Memory) Write(_ context.Context, batch *core.KVBatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, op := range batch.Ops {
		if op.Delete {
			delete(m.data, string(op.Key))
			continue
		}

		m.data[string(op.Key)] = copyBytes(op.Value)
	}

	return nil
}

// Len number of keys
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

func (m *Memory) Close() error {
	return nil
}

func copyBytes(b []byte) []byte {
	if b == nil {
		return nil
	}

	c := make([]byte, len(b))
	copy(c, b)
	return c
}
