package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"FundGraph/internal/model"
)

// PostgresStore implements Store over a single entities table keyed by
// (kind, id) with a JSONB payload. Upserts use ON CONFLICT DO UPDATE so a
// replayed write converges on the same row.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the entities and processed-events tables if absent.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS entities (
			kind       TEXT NOT NULL,
			id         TEXT NOT NULL,
			data       JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (kind, id)
		)`,
		`CREATE TABLE IF NOT EXISTS processed_events (
			idempotency_key TEXT PRIMARY KEY,
			processed_at    TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context, kind model.EntityKind, id string) (model.Entity, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM entities WHERE kind = $1 AND id = $2`,
		string(kind), id,
	).Scan(&data)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load %s/%s: %w", kind, id, err)
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

func (s *PostgresStore) Upsert(ctx context.Context, entity model.Entity) error {
	data, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", entity.Kind(), entity.EntityID(), err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO entities (kind, id, data, updated_at)
		 VALUES ($1, $2, $3, now())
		 ON CONFLICT (kind, id) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`,
		string(entity.Kind()), entity.EntityID(), data,
	)
	if err != nil {
		return fmt.Errorf("upsert %s/%s: %w", entity.Kind(), entity.EntityID(), err)
	}
	return nil
}

// IsDuplicate implements the cold tier of the reconciler's idempotency
// check against the processed_events table.
func (s *PostgresStore) IsDuplicate(idempotencyKey string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM processed_events WHERE idempotency_key = $1 LIMIT 1`,
		idempotencyKey,
	).Scan(&exists)

	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// MarkProcessed records an idempotency key after the handler returns.
func (s *PostgresStore) MarkProcessed(ctx context.Context, idempotencyKey string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO processed_events (idempotency_key) VALUES ($1)
		 ON CONFLICT (idempotency_key) DO NOTHING`,
		idempotencyKey,
	)
	return err
}

// RecentKeys returns the most recently processed idempotency keys, used to
// warm the reconciler's LRU on restart.
func (s *PostgresStore) RecentKeys(ctx context.Context, limit int) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT idempotency_key FROM processed_events
		 ORDER BY processed_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}
