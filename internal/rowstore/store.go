// Package rowstore wraps a flat, header-first tabular store (a spreadsheet or
// an equivalent database table) behind read-all, append and delete-by-position.
package rowstore

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Table names used by the application
const (
	TableCheckins = "Checkins"
	TableUsers    = "Usuarios"
	TableMessages = "Recados"
)

// DefaultTimeout bounds every backend call
const DefaultTimeout = 10 * time.Second

var (
	// ErrTableNotFound is returned when the named table does not exist
	ErrTableNotFound = errors.New("table not found")
	// ErrColumnNotFound is returned when a header name cannot be resolved
	ErrColumnNotFound = errors.New("column not found")
	// ErrRowOutOfRange is returned by DeleteRow for a position past the end
	ErrRowOutOfRange = errors.New("row index out of range")
)

// Store is the contract every backend implements.
// Rows are returned header first; index 0 in DeleteRow is the header row.
type Store interface {
	Read(ctx context.Context, table string) ([][]string, error)
	Append(ctx context.Context, table string, row []string) error
	DeleteRow(ctx context.Context, table string, index int) error
}

// Table is one full read of a logical table split into header and data rows
type Table struct {
	Name   string
	Header []string
	Rows   [][]string
}

// Load reads the full table. An empty table yields no header and no rows.
func Load(ctx context.Context, s Store, name string) (*Table, error) {
	all, err := s.Read(ctx, name)
	if err != nil {
		return nil, err
	}
	return FromRows(name, all), nil
}

// FromRows splits raw header-first rows into a Table
func FromRows(name string, all [][]string) *Table {
	t := &Table{Name: name}
	if len(all) == 0 {
		return t
	}
	t.Header = all[0]
	t.Rows = all[1:]
	return t
}

// Column resolves a header name to its index
func (t *Table) Column(name string) (int, error) {
	for i, h := range t.Header {
		if h == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("column %q not found in table %s: %w", name, t.Name, ErrColumnNotFound)
}

// Columns resolves several header names at once, failing on the first miss
func (t *Table) Columns(names ...string) ([]int, error) {
	idx := make([]int, len(names))
	for i, name := range names {
		c, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		idx[i] = c
	}
	return idx, nil
}

// StorePosition converts an index into Rows to the position DeleteRow expects
func (t *Table) StorePosition(rowIndex int) int {
	return rowIndex + 1
}

// Cell returns row[i], or "" when the row is too short
func Cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

// EnsureHeader writes header as the first row of an empty table.
// A table that already has rows is left untouched.
func EnsureHeader(ctx context.Context, s Store, table string, header []string) (bool, error) {
	all, err := s.Read(ctx, table)
	if err != nil && !errors.Is(err, ErrTableNotFound) {
		return false, err
	}
	if len(all) > 0 {
		return false, nil
	}
	if err := s.Append(ctx, table, header); err != nil {
		return false, fmt.Errorf("failed to write header for %s: %w", table, err)
	}
	return true, nil
}
