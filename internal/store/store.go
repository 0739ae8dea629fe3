// Package store provides the key-value entity store backing the
// reconciler's aggregates. Postgres is the source of truth; Redis is an
// optional read-through cache; the in-memory store serves tests and
// development.
package store

import (
	"context"
	"errors"
	"fmt"

	"FundGraph/internal/model"
)

// ErrNotFound is returned by Load when no entity exists under the id.
var ErrNotFound = errors.New("entity not found")

// Store is the persistence interface the core depends on. Load returns
// ErrNotFound for absent ids; Upsert is an independent atomic write of one
// entity — the store is in a valid state the moment Upsert returns.
type Store interface {
	Load(ctx context.Context, kind model.EntityKind, id string) (model.Entity, error)
	Upsert(ctx context.Context, entity model.Entity) error
}

// newEntity allocates the concrete type for a kind, for deserialization.
func newEntity(kind model.EntityKind) (model.Entity, error) {
	switch kind {
	case model.KindFund:
		return &model.Fund{}, nil
	case model.KindUser:
		return &model.User{}, nil
	case model.KindPosition:
		return &model.Position{}, nil
	case model.KindTransaction:
		return &model.Transaction{}, nil
	case model.KindPurchase:
		return &model.Purchase{}, nil
	case model.KindRedeem:
		return &model.Redeem{}, nil
	case model.KindRedemptionRequest:
		return &model.RedemptionRequest{}, nil
	case model.KindFundHourData:
		return &model.FundHourData{}, nil
	case model.KindRebalance:
		return &model.Rebalance{}, nil
	default:
		return nil, fmt.Errorf("unknown entity kind: %s", kind)
	}
}
