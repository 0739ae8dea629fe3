package ingestion

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"FundGraph/internal/event"
)

// EventApplier applies one typed chain event. Implemented by the core
// reconciler.
type EventApplier interface {
	Process(ctx context.Context, evt event.Event) error
}

// BlockApplier handles one block header notification. Implemented by the
// core snapshot sampler.
type BlockApplier interface {
	OnBlock(ctx context.Context, tick event.BlockTick) error
}

// Runner drains the raw-event channel, parses each message, and applies it
// to the core in a single goroutine, which is all the ordering the core
// needs.
//
// Unparseable messages are acked and skipped — redelivery cannot fix a bad
// payload. Apply failures nak the message and stop the runner: a handler
// error means the derived state would diverge from the chain, and resuming
// past it silently is worse than halting.
type Runner struct {
	rawChan    <-chan RawEvent
	reconciler EventApplier
	sampler    BlockApplier
	updates    chan<- EntityUpdate // nil disables outbound notifications
	log        zerolog.Logger
}

func NewRunner(rawChan <-chan RawEvent, reconciler EventApplier, sampler BlockApplier, updates chan<- EntityUpdate, log zerolog.Logger) *Runner {
	return &Runner{
		rawChan:    rawChan,
		reconciler: reconciler,
		sampler:    sampler,
		updates:    updates,
		log:        log,
	}
}

// Run processes messages until the context is cancelled, the channel is
// closed, or an apply error occurs.
func (r *Runner) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case raw, ok := <-r.rawChan:
			if !ok {
				return nil
			}
			if err := r.handle(ctx, raw); err != nil {
				return err
			}
		}
	}
}

func (r *Runner) handle(ctx context.Context, raw RawEvent) error {
	if raw.EventType == "BlockTick" {
		tick, err := ParseBlockTick(raw.Data)
		if err != nil {
			r.log.Warn().Err(err).Str("subject", raw.Subject).Msg("unparseable block tick")
			ack(raw)
			return nil
		}
		if err := r.sampler.OnBlock(ctx, tick); err != nil {
			nak(raw)
			return fmt.Errorf("block %d: %w", tick.Number, err)
		}
		ack(raw)
		return nil
	}

	evt, err := ParseRawEvent(raw, raw.EventType)
	if err != nil {
		r.log.Warn().Err(err).Str("subject", raw.Subject).Msg("unparseable event")
		ack(raw)
		return nil
	}

	if err := r.reconciler.Process(ctx, evt); err != nil {
		nak(raw)
		return err
	}
	ack(raw)
	r.notify(evt)
	return nil
}

// notify announces an applied event on the updates channel. The send never
// blocks; the store is the source of truth and a dropped notification only
// delays a cache refresh.
func (r *Runner) notify(evt event.Event) {
	if r.updates == nil {
		return
	}
	select {
	case r.updates <- EntityUpdate{
		EntityKind:     updateKind(evt.Kind()),
		EntityID:       evt.FundAddress(),
		Fund:           evt.FundAddress(),
		IdempotencyKey: evt.IdempotencyKey(),
		Timestamp:      time.Now(),
	}:
	default:
	}
}

// updateKind names the aggregate an event primarily mutates, so consumers
// can filter the update subject by entity kind.
func updateKind(k event.Kind) string {
	switch k {
	case event.KindSharesTransferred, event.KindPurchaseSettled, event.KindRedemptionSettled,
		event.KindSettled, event.KindRedeemingShareIncreased, event.KindRedeemingShareDecreased:
		return "position"
	case event.KindRedeemRequested, event.KindRedeemCancelled:
		return "redemption_request"
	case event.KindRebalanced:
		return "rebalance"
	default:
		return "fund"
	}
}

func ack(raw RawEvent) {
	if raw.AckFunc != nil {
		raw.AckFunc()
	}
}

func nak(raw RawEvent) {
	if raw.NakFunc != nil {
		raw.NakFunc()
	}
}
