package storage

import (
	"context"
	"sync"
)

var _ KV = (*MemoryKV)(nil)

type MemoryKV struct {
	mutex sync.RWMutex
	items map[string]string
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{
		items: make(map[string]string),
	}
}

func (m *MemoryKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	v, ok := m.items[key]
	return v, ok, nil
}

func (m *MemoryKV) Set(_ context.Context, key, value string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.items[key] = value
	return nil
}

func (m *MemoryKV) Remove(_ context.Context, key string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.items, key)
	return nil
}

// Keys returns the currently stored keys, in no particular order.
func (m *MemoryKV) Keys() []string {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	keys := make([]string, 0, len(m.items))
	for k := range m.items {
		keys = append(keys, k)
	}
	return keys
}
