package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"FundGraph/internal/model"
)

// MemoryStore implements Store with in-memory maps. Used for testing and
// development; not suitable for production (no persistence).
//
// Entities are stored as JSON so that Load returns an independent copy —
// callers mutate freely and persist via Upsert, exactly as with the
// Postgres store.
type MemoryStore struct {
	mu       sync.RWMutex
	entities map[model.EntityKind]map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entities: make(map[model.EntityKind]map[string][]byte),
	}
}

func (s *MemoryStore) Load(_ context.Context, kind model.EntityKind, id string) (model.Entity, error) {
	s.mu.RLock()
	data, ok := s.entities[kind][id]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}

	entity, err := newEntity(kind)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, entity); err != nil {
		return nil, fmt.Errorf("decode %s/%s: %w", kind, id, err)
	}
	return entity, nil
}

func (s *MemoryStore) Upsert(_ context.Context, entity model.Entity) error {
	data, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", entity.Kind(), entity.EntityID(), err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	byID, ok := s.entities[entity.Kind()]
	if !ok {
		byID = make(map[string][]byte)
		s.entities[entity.Kind()] = byID
	}
	byID[entity.EntityID()] = data
	return nil
}

// Count returns the number of stored entities of a kind. Test helper.
func (s *MemoryStore) Count(kind model.EntityKind) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entities[kind])
}

// IDs returns the stored ids of a kind. Test helper.
func (s *MemoryStore) IDs(kind model.EntityKind) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.entities[kind]))
	for id := range s.entities[kind] {
		ids = append(ids, id)
	}
	return ids
}
