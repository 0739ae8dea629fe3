package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"FundGraph/internal/model"
)

// CachedStore wraps a primary Store (Postgres) with a Redis read-through
// cache. Writes go to the primary store then refresh the cache; reads check
// Redis first and fall back to the primary. A cache failure is never
// fatal — the primary always answers.
type CachedStore struct {
	primary Store
	rdb     *redis.Client
	ttl     time.Duration
}

// NewCachedStore creates a cached wrapper around a primary store.
func NewCachedStore(primary Store, rdb *redis.Client, ttl time.Duration) *CachedStore {
	return &CachedStore{primary: primary, rdb: rdb, ttl: ttl}
}

func (s *CachedStore) Load(ctx context.Context, kind model.EntityKind, id string) (model.Entity, error) {
	if data, err := s.rdb.Get(ctx, entityKey(kind, id)).Bytes(); err == nil {
		entity, err := newEntity(kind)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, entity); err == nil {
			return entity, nil
		}
		// Corrupt cache entry: fall through to primary
	}

	entity, err := s.primary.Load(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	s.cache(ctx, entity)
	return entity, nil
}

func (s *CachedStore) Upsert(ctx context.Context, entity model.Entity) error {
	if err := s.primary.Upsert(ctx, entity); err != nil {
		return err
	}
	s.cache(ctx, entity)
	return nil
}

func (s *CachedStore) cache(ctx context.Context, entity model.Entity) {
	data, err := json.Marshal(entity)
	if err != nil {
		return
	}
	// Best effort; Redis being down only costs cache hits
	s.rdb.Set(ctx, entityKey(entity.Kind(), entity.EntityID()), data, s.ttl)
}

func entityKey(kind model.EntityKind, id string) string {
	return fmt.Sprintf("fundgraph:%s:%s", kind, id)
}
