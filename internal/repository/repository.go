// Package repository provides get-or-create accessors for the durable
// aggregates. Creation applies every default before the first Upsert, so no
// partially initialized entity is ever observable in the store.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"FundGraph/internal/chain"
	"FundGraph/internal/event"
	"FundGraph/internal/model"
	"FundGraph/internal/store"
)

// Repository wraps the entity store, the read-only call gateway and the
// static fund→strategy mapping. The strategy mapping is configuration, not
// a contract call.
type Repository struct {
	store      store.Store
	gateway    chain.Gateway
	strategies map[string]string
	log        zerolog.Logger
}

func New(s store.Store, g chain.Gateway, strategies map[string]string, log zerolog.Logger) *Repository {
	if strategies == nil {
		strategies = map[string]string{}
	}
	return &Repository{store: s, gateway: g, strategies: strategies, log: log}
}

// Store exposes the underlying entity store for direct record writes.
func (r *Repository) Store() store.Store { return r.store }

// Fund loads the fund aggregate, creating it with probed metadata on first
// reference. Probe failures degrade individual fields; they never fail the
// creation.
func (r *Repository) Fund(ctx context.Context, address string) (*model.Fund, error) {
	entity, err := r.store.Load(ctx, model.KindFund, address)
	if err == nil {
		return entity.(*model.Fund), nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("load fund %s: %w", address, err)
	}

	fund := &model.Fund{
		ID:       address,
		Symbol:   r.tokenSymbol(ctx, address),
		Name:     r.tokenName(ctx, address),
		State:    model.FundStateNormal,
		Strategy: r.strategies[address],
	}

	if perpetual, err := r.gateway.Perpetual(ctx, address); err != nil {
		r.log.Warn().Err(err).Str("fund", address).Msg("perpetual probe failed")
	} else {
		fund.Perpetual = perpetual
	}

	if collateral, err := r.gateway.Collateral(ctx, address); err != nil {
		r.log.Warn().Err(err).Str("fund", address).Msg("collateral probe failed")
	} else {
		fund.Collateral = collateral
	}

	if err := r.store.Upsert(ctx, fund); err != nil {
		return nil, fmt.Errorf("create fund %s: %w", address, err)
	}
	return fund, nil
}

// User loads or creates the holder identity anchor.
func (r *Repository) User(ctx context.Context, address string) (*model.User, error) {
	entity, err := r.store.Load(ctx, model.KindUser, address)
	if err == nil {
		return entity.(*model.User), nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("load user %s: %w", address, err)
	}

	user := &model.User{ID: address}
	if err := r.store.Upsert(ctx, user); err != nil {
		return nil, fmt.Errorf("create user %s: %w", address, err)
	}
	return user, nil
}

// Position loads or creates the user × fund position with zero counters.
// Creation also materializes the User and Fund aggregates so every
// reference in the record graph resolves.
func (r *Repository) Position(ctx context.Context, userAddr, fundAddr string) (*model.Position, error) {
	id := model.PositionID(userAddr, fundAddr)

	entity, err := r.store.Load(ctx, model.KindPosition, id)
	if err == nil {
		return entity.(*model.Position), nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("load position %s: %w", id, err)
	}

	if _, err := r.User(ctx, userAddr); err != nil {
		return nil, err
	}
	if _, err := r.Fund(ctx, fundAddr); err != nil {
		return nil, err
	}

	position := &model.Position{
		ID:   id,
		User: userAddr,
		Fund: fundAddr,
	}
	if err := r.store.Upsert(ctx, position); err != nil {
		return nil, fmt.Errorf("create position %s: %w", id, err)
	}
	return position, nil
}

// Transaction loads or creates the per-tx record aggregate from event meta.
func (r *Repository) Transaction(ctx context.Context, meta event.Meta) (*model.Transaction, error) {
	entity, err := r.store.Load(ctx, model.KindTransaction, meta.TxHash)
	if err == nil {
		return entity.(*model.Transaction), nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("load transaction %s: %w", meta.TxHash, err)
	}

	tx := &model.Transaction{
		ID:          meta.TxHash,
		BlockNumber: meta.BlockNumber,
		Timestamp:   meta.Timestamp,
		PurchaseIDs: []string{},
		RedeemIDs:   []string{},
	}
	if err := r.store.Upsert(ctx, tx); err != nil {
		return nil, fmt.Errorf("create transaction %s: %w", meta.TxHash, err)
	}
	return tx, nil
}

// tokenSymbol probes the string-typed accessor first, then the
// fixed-bytes-typed accessor; a reverted or all-zero result is "unknown".
func (r *Repository) tokenSymbol(ctx context.Context, token string) string {
	if symbol, err := r.gateway.Symbol(ctx, token); err == nil && symbol != "" {
		return symbol
	}
	if symbol, err := r.gateway.SymbolBytes(ctx, token); err == nil && symbol != "" {
		return symbol
	}
	r.log.Warn().Str("token", token).Msg("symbol probe failed, using unknown")
	return "unknown"
}

func (r *Repository) tokenName(ctx context.Context, token string) string {
	if name, err := r.gateway.Name(ctx, token); err == nil && name != "" {
		return name
	}
	if name, err := r.gateway.NameBytes(ctx, token); err == nil && name != "" {
		return name
	}
	r.log.Warn().Str("token", token).Msg("name probe failed, using unknown")
	return "unknown"
}
