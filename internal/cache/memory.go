package cache

import (
	"context"
	"sync"

	"StockForecast/internal/model"
)

// MemoryStore keeps entries in process memory for the life of the server.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string][]model.OHLCV
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string][]model.OHLCV)}
}

func (m *MemoryStore) Name() string { return "memory" }

func (m *MemoryStore) Get(_ context.Context, key string) ([]model.OHLCV, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	bars, ok := m.entries[key]
	return bars, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, bars []model.OHLCV) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = bars
	return nil
}

func (m *MemoryStore) Purge(_ context.Context, keep func(key string) bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.entries {
		if !keep(k) {
			delete(m.entries, k)
		}
	}
	return nil
}

// Len returns the number of cached series.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
