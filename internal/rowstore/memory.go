package rowstore

import (
	"context"
	"fmt"
	"sync"
)

// Memory is an in-process Store. Tables listed at construction exist empty;
// appending to an unknown table creates it.
type Memory struct {
	mu     sync.Mutex
	tables map[string][][]string
}

// NewMemory creates a memory store with the given (empty) tables
func NewMemory(tables ...string) *Memory {
	m := &Memory{tables: make(map[string][][]string)}
	for _, t := range tables {
		m.tables[t] = nil
	}
	return m
}

// Read returns a copy of every row of the table, header first
func (m *Memory) Read(ctx context.Context, table string) ([][]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows, ok := m.tables[table]
	if !ok {
		return nil, fmt.Errorf("read %s: %w", table, ErrTableNotFound)
	}
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = append([]string(nil), r...)
	}
	return out, nil
}

// Append adds row at the end of the table
func (m *Memory) Append(ctx context.Context, table string, row []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tables[table] = append(m.tables[table], append([]string(nil), row...))
	return nil
}

// DeleteRow removes the row at position index (0 is the header)
func (m *Memory) DeleteRow(ctx context.Context, table string, index int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows, ok := m.tables[table]
	if !ok {
		return fmt.Errorf("delete from %s: %w", table, ErrTableNotFound)
	}
	if index < 0 || index >= len(rows) {
		return fmt.Errorf("delete row %d from %s: %w", index, table, ErrRowOutOfRange)
	}
	m.tables[table] = append(rows[:index], rows[index+1:]...)
	return nil
}
