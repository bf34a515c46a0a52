package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/vyrodovalexey/media-catalog/internal/model"
)

// MemoryStore implements Store in memory. Nothing survives a restart.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[model.Category][]model.Record
}

// NewMemoryStore creates a new MemoryStore instance.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[model.Category][]model.Record),
	}
}

// Load returns a copy of the category collection.
func (s *MemoryStore) Load(ctx context.Context, c model.Category) ([]model.Record, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("load %s: %w", c, ctx.Err())
	default:
	}

	if !c.Valid() {
		return nil, ErrInvalidCategory
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return cloneAll(s.collections[c]), nil
}

// Save replaces the category collection with a copy of records.
func (s *MemoryStore) Save(ctx context.Context, c model.Category, records []model.Record) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("save %s: %w", c, ctx.Err())
	default:
	}

	if !c.Valid() {
		return ErrInvalidCategory
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.collections[c] = cloneAll(records)

	return nil
}
