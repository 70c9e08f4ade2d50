package core

import (
	"context"
	"sync"
)

// MemorySink keeps written tables in memory. Safe for concurrent use.
type MemorySink struct {
	mu     sync.RWMutex
	tables map[string]*Table
	order  []string

	// PrepareErr is returned by Prepare when set.
	PrepareErr error

	// WriteErrs maps table names to the error Write returns for them.
	WriteErrs map[string]error
}

// NewMemorySink creates an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{tables: make(map[string]*Table)}
}

// Prepare implements Sink.
func (s *MemorySink) Prepare(ctx context.Context) error {
	return s.PrepareErr
}

// Write implements Sink.
func (s *MemorySink) Write(ctx context.Context, table *Table) error {
	if err := s.WriteErrs[table.Name]; err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tables[table.Name]; !ok {
		s.order = append(s.order, table.Name)
	}
	s.tables[table.Name] = table
	return nil
}

// Table returns the last table written under name.
func (s *MemorySink) Table(name string) (*Table, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tables[name]
	return t, ok
}

// Names returns table names in first-write order.
func (s *MemorySink) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...)
}

// Column returns the formatted values of one column of a written table.
func (s *MemorySink) Column(table, column string) []string {
	t, ok := s.Table(table)
	if !ok {
		return nil
	}
	idx := -1
	for i, c := range t.Columns {
		if c.Name == column {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}

	out := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = FormatValue(row[idx])
	}
	return out
}
