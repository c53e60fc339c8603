package versionstore

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps records in process memory
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

// Load returns the record for name
func (m *MemoryStore) Load(ctx context.Context, name string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[name]
	if !ok {
		return Record{}, ErrNotFound{Name: name}
	}
	return rec, nil
}

// Save inserts or replaces records
func (m *MemoryStore) Save(ctx context.Context, records ...Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range records {
		m.records[rec.Name] = rec
	}
	return nil
}

// All returns every record ordered by name
func (m *MemoryStore) All(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Record, 0, len(m.records))
	for _, rec := range m.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Close is a no-op for the memory store
func (m *MemoryStore) Close() error {
	return nil
}
