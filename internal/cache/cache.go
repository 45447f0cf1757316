// Package cache holds shared copies of full table reads so repeated lookups
// (login, signup duplicate checks) do not refetch the table every time.
package cache

import (
	"context"
	"sync"
	"time"
)

// TableCache stores header-first table rows under a key
type TableCache interface {
	Get(ctx context.Context, key string) ([][]string, bool)
	Set(ctx context.Context, key string, rows [][]string) error
	Delete(ctx context.Context, key string) error
}

// Nop never holds anything
type Nop struct{}

func (Nop) Get(context.Context, string) ([][]string, bool) { return nil, false }
func (Nop) Set(context.Context, string, [][]string) error { return nil }
func (Nop) Delete(context.Context, string) error { return nil }

type memoryEntry struct {
	rows    [][]string
	expires time.Time
}

// Memory is an in-process TableCache with a fixed TTL
type Memory struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]memoryEntry
}

// NewMemory creates an in-process cache. ttl must be positive.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]memoryEntry),
	}
}

func (m *Memory) Get(ctx context.Context, key string) ([][]string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	if m.now().After(e.expires) {
		delete(m.entries, key)
		return nil, false
	}
	return copyRows(e.rows), true
}

func (m *Memory) Set(ctx context.Context, key string, rows [][]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = memoryEntry{rows: copyRows(rows), expires: m.now().Add(m.ttl)}
	return nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, key)
	return nil
}

func copyRows(rows [][]string) [][]string {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = append([]string(nil), r...)
	}
	return out
}
