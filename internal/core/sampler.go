package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"FundGraph/internal/chain"
	"FundGraph/internal/event"
	"FundGraph/internal/model"
	"FundGraph/internal/observability"
	"FundGraph/internal/repository"
	"FundGraph/internal/store"
)

// Sampler writes the hourly valuation snapshot for each tracked fund. It
// runs on every block tick but writes at most one FundHourData per fund
// per hour bucket; an existing snapshot for the bucket ends the fund's
// sampling for that tick.
//
// Contract-call failures never fail the tick: each probe degrades to its
// field default (zero for valuations and indicators, one for mark price)
// so a flaky oracle cannot stall ingestion.
type Sampler struct {
	repo    *repository.Repository
	store   store.Store
	gateway chain.Gateway

	funds  []string
	isUSD  func(collateral string) bool
	metric *observability.Metrics
	log    zerolog.Logger
}

// NewSampler builds a sampler over the tracked fund addresses. isUSD
// reports whether a collateral token is a stablecoin; metrics may be nil.
func NewSampler(
	repo *repository.Repository,
	gateway chain.Gateway,
	funds []string,
	isUSD func(collateral string) bool,
	metrics *observability.Metrics,
	log zerolog.Logger,
) *Sampler {
	return &Sampler{
		repo:    repo,
		store:   repo.Store(),
		gateway: gateway,
		funds:   funds,
		isUSD:   isUSD,
		metric:  metrics,
		log:     log,
	}
}

// OnBlock samples every tracked fund at the given block. Per-fund errors
// are store errors only; probe failures are absorbed.
func (s *Sampler) OnBlock(ctx context.Context, tick event.BlockTick) error {
	if s.metric != nil {
		s.metric.BlockTicks.Inc()
	}
	for _, fund := range s.funds {
		if err := s.sampleFund(ctx, fund, tick); err != nil {
			return fmt.Errorf("sample fund %s at block %d: %w", fund, tick.Number, err)
		}
	}
	return nil
}

func (s *Sampler) sampleFund(ctx context.Context, fundAddr string, tick event.BlockTick) error {
	fund, err := s.repo.Fund(ctx, fundAddr)
	if err != nil {
		return err
	}
	// Emergency and shutdown funds have no meaningful live valuation
	if fund.State != model.FundStateNormal {
		return nil
	}

	hourIndex := model.HourIndex(tick.Timestamp)
	id := fmt.Sprintf("%s-%d", fundAddr, hourIndex)

	if _, err := s.store.Load(ctx, model.KindFundHourData, id); err == nil {
		return nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	nav := s.probeDecimal(ctx, "netAssetValuePerShare", decimal.Zero, func() (decimal.Decimal, error) {
		return s.gateway.NetAssetValuePerShare(ctx, fundAddr)
	})
	markPrice := s.probeDecimal(ctx, "markPrice", decimal.NewFromInt(1), func() (decimal.Decimal, error) {
		return s.gateway.MarkPrice(ctx, fund.Perpetual)
	})

	snapshot := &model.FundHourData{
		ID:                    id,
		Fund:                  fundAddr,
		HourStartUnix:         hourIndex * 3600,
		NetAssetValuePerShare: nav,
	}

	if s.isUSD != nil && s.isUSD(fund.Collateral) {
		snapshot.NetAssetValuePerShareUSD = nav
		snapshot.NetAssetValuePerShareUnderlying = nav.Mul(markPrice)
	} else {
		snapshot.NetAssetValuePerShareUSD = nav.Div(markPrice)
		snapshot.NetAssetValuePerShareUnderlying = nav
	}

	if fund.Strategy != "" {
		snapshot.CurrentRSI = s.probeDecimal(ctx, "currentRSI", decimal.Zero, func() (decimal.Decimal, error) {
			return s.gateway.CurrentRSI(ctx, fund.Strategy)
		})
		snapshot.NextTarget = s.probeDecimal(ctx, "nextTarget", decimal.Zero, func() (decimal.Decimal, error) {
			return s.gateway.NextTarget(ctx, fund.Strategy)
		})
	}

	if err := s.store.Upsert(ctx, snapshot); err != nil {
		return err
	}
	if s.metric != nil {
		s.metric.SnapshotsCreated.Inc()
	}
	s.log.Debug().
		Str("fund", fundAddr).
		Int64("hour", hourIndex).
		Str("nav", nav.String()).
		Msg("hourly snapshot written")
	return nil
}

func (s *Sampler) probeDecimal(ctx context.Context, accessor string, fallback decimal.Decimal, probe func() (decimal.Decimal, error)) decimal.Decimal {
	value, err := probe()
	if err != nil {
		if s.metric != nil {
			s.metric.ProbeFailures.WithLabelValues(accessor).Inc()
		}
		s.log.Warn().Err(err).Str("accessor", accessor).Msg("contract probe failed, using default")
		return fallback
	}
	return value
}
