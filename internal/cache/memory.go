package cache

import (
	"context"
	"sync"
	"time"

	"github.com/Sovereigndwp/mcp-agent-kit-sub000/internal/alert"
	"github.com/Sovereigndwp/mcp-agent-kit-sub000/internal/clock"
)

type entry struct {
	value     []alert.Alert
	expiresAt time.Time
}

// Memory is an in-process cache. Expired entries are removed when read.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry
	clock   clock.Clock
}

func NewMemory(c clock.Clock) *Memory {
	if c == nil {
		c = clock.Real()
	}
	return &Memory{entries: make(map[string]entry), clock: c}
}

func (m *Memory) Get(_ context.Context, key string) ([]alert.Alert, bool, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !m.clock.Now().Before(e.expiresAt) {
		m.mu.Lock()
		if cur, ok := m.entries[key]; ok && cur.expiresAt.Equal(e.expiresAt) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return nil, false, nil
	}
	return e.value, true, nil
}

func (m *Memory) Set(_ context.Context, key string, value []alert.Alert, ttl time.Duration) error {
	m.mu.Lock()
	m.entries[key] = entry{value: value, expiresAt: m.clock.Now().Add(ttl)}
	m.mu.Unlock()
	return nil
}

// Len reports the number of stored entries, expired ones included.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func (m *Memory) Close() error { return nil }
