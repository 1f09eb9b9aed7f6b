package kv

import (
	"context"
	"encoding/json"
	"sync"
)

// MemoryStore guarda os valores serializados em JSON num map, como os backends reais fariam
type MemoryStore[T any] struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStore[T any]() *MemoryStore[T] {
	return &MemoryStore[T]{data: make(map[string][]byte)}
}

func (m *MemoryStore[T]) Load(_ context.Context, key string, def T) (T, error) {
	m.mu.RLock()
	b, ok := m.data[key]
	m.mu.RUnlock()
	if !ok {
		return def, nil
	}
	return decode(b, def)
}

func (m *MemoryStore[T]) Save(_ context.Context, key string, v T) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data[key] = b
	m.mu.Unlock()
	return nil
}
