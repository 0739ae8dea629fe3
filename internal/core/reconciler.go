// Package core holds the event-to-state reconciliation logic: the dispatch
// of chain events onto the aggregate entities, and the hourly snapshot
// sampler. Processing is single-threaded and strictly chain-ordered; later
// handlers depend on state written by earlier ones within the same
// transaction.
package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"FundGraph/internal/event"
	fpmath "FundGraph/internal/math"
	"FundGraph/internal/model"
	"FundGraph/internal/observability"
	"FundGraph/internal/repository"
	"FundGraph/internal/store"
)

// ProcessedMarker persists idempotency keys for the cold dedup tier.
type ProcessedMarker interface {
	MarkProcessed(ctx context.Context, idempotencyKey string) error
}

// Reconciler applies one event at a time, in chain order, to the aggregate
// entities. It must not be shared across goroutines.
type Reconciler struct {
	repo    *repository.Repository
	store   store.Store
	dedup   *IdempotencyChecker
	marker  ProcessedMarker
	metrics *observability.Metrics
	log     zerolog.Logger

	// Pending mint/burn legs per transaction, awaiting their settlement
	// events. An explicit FIFO per tx hash removes the ambiguity of the
	// "last record in the list" convention when a transaction carries
	// several legs.
	pendingPurchases map[string][]string
	pendingRedeems   map[string][]string
}

// NewReconciler builds a reconciler. marker and metrics may be nil.
func NewReconciler(
	repo *repository.Repository,
	dedup *IdempotencyChecker,
	marker ProcessedMarker,
	metrics *observability.Metrics,
	log zerolog.Logger,
) *Reconciler {
	return &Reconciler{
		repo:             repo,
		store:            repo.Store(),
		dedup:            dedup,
		marker:           marker,
		metrics:          metrics,
		log:              log,
		pendingPurchases: make(map[string][]string),
		pendingRedeems:   make(map[string][]string),
	}
}

// Process applies a single event. Replayed events are skipped; handler
// errors stop the stream (the caller decides whether to halt or resume
// after operator intervention).
func (r *Reconciler) Process(ctx context.Context, evt event.Event) error {
	start := time.Now()
	kind := evt.Kind().String()
	key := evt.IdempotencyKey()

	if r.dedup.IsDuplicate(key) {
		if r.metrics != nil {
			r.metrics.EventsDuplicate.WithLabelValues(kind).Inc()
		}
		r.log.Debug().Str("key", key).Msg("duplicate event skipped")
		return nil
	}

	if err := r.dispatch(ctx, evt); err != nil {
		if r.metrics != nil {
			r.metrics.EventsFailed.WithLabelValues(kind).Inc()
		}
		return fmt.Errorf("%s %s: %w", kind, key, err)
	}

	r.dedup.MarkProcessed(key)
	if r.marker != nil {
		if err := r.marker.MarkProcessed(ctx, key); err != nil {
			// The entity writes already landed; a lost marker only costs a
			// redundant (and convergent) replay.
			r.log.Warn().Err(err).Str("key", key).Msg("mark processed failed")
		}
	}

	if r.metrics != nil {
		r.metrics.EventsApplied.WithLabelValues(kind).Inc()
		r.metrics.EventDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	}
	return nil
}

func (r *Reconciler) dispatch(ctx context.Context, evt event.Event) error {
	switch e := evt.(type) {
	case *event.ParameterSet:
		return r.handleParameterSet(ctx, e)
	case *event.ManagerSet:
		return r.handleManagerSet(ctx, e)
	case *event.StateUpdated:
		return r.handleStateUpdated(ctx, e)
	case *event.SharesTransferred:
		return r.handleSharesTransferred(ctx, e)
	case *event.PurchaseSettled:
		return r.handlePurchaseSettled(ctx, e)
	case *event.RedemptionSettled:
		return r.handleRedemptionSettled(ctx, e)
	case *event.Settled:
		return r.handleSettled(ctx, e)
	case *event.RedeemingShareIncreased:
		return r.handleRedeemingShareIncreased(ctx, e)
	case *event.RedeemingShareDecreased:
		return r.handleRedeemingShareDecreased(ctx, e)
	case *event.RedeemRequested:
		return r.handleRedeemRequested(ctx, e)
	case *event.RedeemCancelled:
		return r.handleRedeemCancelled(ctx, e)
	case *event.Rebalanced:
		return r.handleRebalanced(ctx, e)
	default:
		return fmt.Errorf("unknown event type: %T", evt)
	}
}

func (r *Reconciler) handleParameterSet(ctx context.Context, e *event.ParameterSet) error {
	key, ok := ParseParamKey(e.Key)
	if !ok {
		// Unrecognized keys are not an error
		return nil
	}

	fund, err := r.repo.Fund(ctx, e.FundAddress())
	if err != nil {
		return err
	}
	applyParam(fund, key, fpmath.FromTokenAmount(e.Value))
	return r.store.Upsert(ctx, fund)
}

func (r *Reconciler) handleManagerSet(ctx context.Context, e *event.ManagerSet) error {
	fund, err := r.repo.Fund(ctx, e.FundAddress())
	if err != nil {
		return err
	}
	// Last-writer-wins; the contract already validated the change
	fund.Manager = e.NewManager
	return r.store.Upsert(ctx, fund)
}

func (r *Reconciler) handleStateUpdated(ctx context.Context, e *event.StateUpdated) error {
	fund, err := r.repo.Fund(ctx, e.FundAddress())
	if err != nil {
		return err
	}
	fund.State = model.FundState(e.NewState)
	return r.store.Upsert(ctx, fund)
}

// handleSharesTransferred classifies a share transfer into exactly one of
// three disjoint cases: a mint leg, a burn leg, or a holder-to-holder
// transfer.
func (r *Reconciler) handleSharesTransferred(ctx context.Context, e *event.SharesTransferred) error {
	switch {
	case e.IsMint():
		return r.recordMintLeg(ctx, e)
	case e.IsBurn():
		return r.recordBurnLeg(ctx, e)
	default:
		return r.transferBetweenHolders(ctx, e)
	}
}

// recordMintLeg creates the Purchase record for a mint leg and queues it
// for the PurchaseSettled event later in the same transaction. The share
// amount recorded here is provisional — the settlement leg carries the
// valuation that was unknown at mint time.
func (r *Reconciler) recordMintLeg(ctx context.Context, e *event.SharesTransferred) error {
	meta := e.EventMeta()
	fund := e.FundAddress()

	tx, err := r.repo.Transaction(ctx, meta)
	if err != nil {
		return err
	}
	if _, err := r.repo.User(ctx, e.To); err != nil {
		return err
	}
	position, err := r.repo.Position(ctx, e.To, fund)
	if err != nil {
		return err
	}

	purchase := &model.Purchase{
		ID:          recordID(meta),
		Transaction: tx.ID,
		Timestamp:   tx.Timestamp,
		Fund:        fund,
		To:          e.To,
		Position:    position.ID,
		ShareAmount: fpmath.FromTokenAmount(e.Value),
	}
	if err := r.store.Upsert(ctx, purchase); err != nil {
		return err
	}

	if appendUnique(&tx.PurchaseIDs, purchase.ID) {
		if err := r.store.Upsert(ctx, tx); err != nil {
			return err
		}
	}
	r.pendingPurchases[tx.ID] = enqueue(r.pendingPurchases[tx.ID], purchase.ID)
	return nil
}

func (r *Reconciler) recordBurnLeg(ctx context.Context, e *event.SharesTransferred) error {
	meta := e.EventMeta()
	fund := e.FundAddress()

	tx, err := r.repo.Transaction(ctx, meta)
	if err != nil {
		return err
	}
	if _, err := r.repo.User(ctx, e.From); err != nil {
		return err
	}
	position, err := r.repo.Position(ctx, e.From, fund)
	if err != nil {
		return err
	}

	redeem := &model.Redeem{
		ID:          recordID(meta),
		Transaction: tx.ID,
		Timestamp:   tx.Timestamp,
		Fund:        fund,
		From:        e.From,
		Position:    position.ID,
		ShareAmount: fpmath.FromTokenAmount(e.Value),
	}
	if err := r.store.Upsert(ctx, redeem); err != nil {
		return err
	}

	if appendUnique(&tx.RedeemIDs, redeem.ID) {
		if err := r.store.Upsert(ctx, tx); err != nil {
			return err
		}
	}
	r.pendingRedeems[tx.ID] = enqueue(r.pendingRedeems[tx.ID], redeem.ID)
	return nil
}

// transferBetweenHolders reallocates shares and proportional cost basis
// from sender to receiver. The per-share cost rate of both positions is
// unchanged: transfers move shares without changing their basis per unit.
func (r *Reconciler) transferBetweenHolders(ctx context.Context, e *event.SharesTransferred) error {
	fund := e.FundAddress()
	value := fpmath.FromTokenAmount(e.Value)

	sender, err := r.repo.Position(ctx, e.From, fund)
	if err != nil {
		return err
	}
	if sender.ShareAmount.IsZero() {
		return fmt.Errorf("transfer of %s shares from empty position %s: %w",
			value, sender.ID, ErrInconsistentPosition)
	}

	receiver, err := r.repo.Position(ctx, e.To, fund)
	if err != nil {
		return err
	}

	movedCost := sender.CostPerShare().Mul(value)

	sender.ShareAmount = sender.ShareAmount.Sub(value)
	sender.CostCollateral = sender.CostCollateral.Sub(movedCost)
	if err := r.store.Upsert(ctx, sender); err != nil {
		return err
	}

	receiver.ShareAmount = receiver.ShareAmount.Add(value)
	receiver.CostCollateral = receiver.CostCollateral.Add(movedCost)
	return r.store.Upsert(ctx, receiver)
}

// handlePurchaseSettled fills in the valuation on the oldest pending
// Purchase record of the transaction, then applies the purchase to the
// buyer's position and the fund supply.
func (r *Reconciler) handlePurchaseSettled(ctx context.Context, e *event.PurchaseSettled) error {
	meta := e.EventMeta()

	queue, err := r.pendingQueue(ctx, r.pendingPurchases, model.KindPurchase, meta.TxHash)
	if err != nil {
		return err
	}
	pendingID, rest, ok := dequeue(queue)
	if !ok {
		return fmt.Errorf("purchase settlement in tx %s: %w", meta.TxHash, ErrMissingSettlementTarget)
	}

	entity, err := r.store.Load(ctx, model.KindPurchase, pendingID)
	if err != nil {
		return fmt.Errorf("load purchase %s: %w", pendingID, err)
	}
	purchase := entity.(*model.Purchase)

	nav := fpmath.FromTokenAmount(e.NetAssetValuePerShare)
	share := fpmath.FromTokenAmount(e.ShareAmount)
	cost := nav.Mul(share)

	purchase.NetAssetValuePerShare = nav
	purchase.SettleLogIndex = meta.LogIndex
	if err := r.store.Upsert(ctx, purchase); err != nil {
		return err
	}

	position, err := r.repo.Position(ctx, e.Account, e.FundAddress())
	if err != nil {
		return err
	}
	position.ShareAmount = position.ShareAmount.Add(share)
	position.TotalPurchaseShare = position.TotalPurchaseShare.Add(share)
	position.TotalPurchaseCollateral = position.TotalPurchaseCollateral.Add(cost)
	position.CostCollateral = position.CostCollateral.Add(cost)
	if position.FirstPurchaseTime == 0 {
		position.FirstPurchaseTime = meta.Timestamp
	}
	position.LastPurchaseTime = meta.Timestamp
	if err := r.store.Upsert(ctx, position); err != nil {
		return err
	}

	fund, err := r.repo.Fund(ctx, e.FundAddress())
	if err != nil {
		return err
	}
	if fund.TotalSupply.IsZero() {
		// The fund's very first purchase fixes its inception valuation
		fund.InitNetAssetValuePerShare = nav
		fund.InitTimestamp = meta.Timestamp
	}
	fund.TotalSupply = fund.TotalSupply.Add(share)
	if err := r.store.Upsert(ctx, fund); err != nil {
		return err
	}

	r.setPendingPurchases(meta.TxHash, rest)
	return nil
}

// handleRedemptionSettled is symmetric with handlePurchaseSettled. The
// cost basis decreases by the returned collateral rather than a recomputed
// basis — an intentional simplification treating returned collateral as
// the cost reduction.
func (r *Reconciler) handleRedemptionSettled(ctx context.Context, e *event.RedemptionSettled) error {
	meta := e.EventMeta()

	queue, err := r.pendingQueue(ctx, r.pendingRedeems, model.KindRedeem, meta.TxHash)
	if err != nil {
		return err
	}
	pendingID, rest, ok := dequeue(queue)
	if !ok {
		return fmt.Errorf("redeem settlement in tx %s: %w", meta.TxHash, ErrMissingSettlementTarget)
	}

	entity, err := r.store.Load(ctx, model.KindRedeem, pendingID)
	if err != nil {
		return fmt.Errorf("load redeem %s: %w", pendingID, err)
	}
	redeem := entity.(*model.Redeem)

	returned := fpmath.FromTokenAmount(e.ReturnedCollateral)
	share := fpmath.FromTokenAmount(e.ShareAmount)

	redeem.ReturnedCollateral = returned
	redeem.SettleLogIndex = meta.LogIndex
	if err := r.store.Upsert(ctx, redeem); err != nil {
		return err
	}

	if err := r.settleRedemption(ctx, e.Account, e.FundAddress(), share, returned); err != nil {
		return err
	}

	r.setPendingRedeems(meta.TxHash, rest)
	return nil
}

// handleSettled applies an emergency settlement: same position and fund
// mutation as a redemption, but with no burn leg and no redeem record.
func (r *Reconciler) handleSettled(ctx context.Context, e *event.Settled) error {
	share := fpmath.FromTokenAmount(e.ShareAmount)
	returned := fpmath.FromTokenAmount(e.CollateralToReturn)
	return r.settleRedemption(ctx, e.Account, e.FundAddress(), share, returned)
}

func (r *Reconciler) settleRedemption(ctx context.Context, account, fundAddr string, share, returned decimal.Decimal) error {
	position, err := r.repo.Position(ctx, account, fundAddr)
	if err != nil {
		return err
	}
	position.ShareAmount = position.ShareAmount.Sub(share)
	position.TotalRedeemedShare = position.TotalRedeemedShare.Add(share)
	position.TotalRedeemedCollateral = position.TotalRedeemedCollateral.Add(returned)
	position.CostCollateral = position.CostCollateral.Sub(returned)
	if err := r.store.Upsert(ctx, position); err != nil {
		return err
	}

	fund, err := r.repo.Fund(ctx, fundAddr)
	if err != nil {
		return err
	}
	fund.TotalSupply = fund.TotalSupply.Sub(share)
	return r.store.Upsert(ctx, fund)
}

func (r *Reconciler) handleRedeemingShareIncreased(ctx context.Context, e *event.RedeemingShareIncreased) error {
	position, err := r.repo.Position(ctx, e.Trader, e.FundAddress())
	if err != nil {
		return err
	}
	position.RedeemingShareAmount = position.RedeemingShareAmount.Add(fpmath.FromTokenAmount(e.Amount))
	return r.store.Upsert(ctx, position)
}

func (r *Reconciler) handleRedeemingShareDecreased(ctx context.Context, e *event.RedeemingShareDecreased) error {
	position, err := r.repo.Position(ctx, e.Trader, e.FundAddress())
	if err != nil {
		return err
	}
	position.RedeemingShareAmount = position.RedeemingShareAmount.Sub(fpmath.FromTokenAmount(e.Amount))
	return r.store.Upsert(ctx, position)
}

func (r *Reconciler) handleRedeemRequested(ctx context.Context, e *event.RedeemRequested) error {
	return r.recordRedemptionRequest(ctx, e.EventMeta(), e.Account,
		model.RedemptionRequested,
		fpmath.FromTokenAmount(e.ShareAmount),
		fpmath.FromTokenAmount(e.Slippage))
}

func (r *Reconciler) handleRedeemCancelled(ctx context.Context, e *event.RedeemCancelled) error {
	return r.recordRedemptionRequest(ctx, e.EventMeta(), e.Account,
		model.RedemptionCancelled,
		fpmath.FromTokenAmount(e.ShareAmount),
		decimal.Zero)
}

func (r *Reconciler) recordRedemptionRequest(
	ctx context.Context,
	meta event.Meta,
	account string,
	requestType model.RedemptionRequestType,
	share, slippage decimal.Decimal,
) error {
	position, err := r.repo.Position(ctx, account, meta.Address)
	if err != nil {
		return err
	}

	request := &model.RedemptionRequest{
		ID:              fmt.Sprintf("%s-%s-%d", account, meta.TxHash, meta.LogIndex),
		TransactionHash: meta.TxHash,
		Timestamp:       meta.Timestamp,
		Fund:            meta.Address,
		User:            account,
		Position:        position.ID,
		Type:            requestType,
		ShareAmount:     share,
		Slippage:        slippage,
	}
	return r.store.Upsert(ctx, request)
}

func (r *Reconciler) handleRebalanced(ctx context.Context, e *event.Rebalanced) error {
	meta := e.EventMeta()
	if _, err := r.repo.Fund(ctx, e.FundAddress()); err != nil {
		return err
	}

	// Keyed by fund+tx: a later rebalance in the same transaction
	// overwrites the same record, which is the intended idempotency
	rebalance := &model.Rebalance{
		ID:        fmt.Sprintf("%s-%s", e.FundAddress(), meta.TxHash),
		Fund:      e.FundAddress(),
		Timestamp: meta.Timestamp,
		Side:      e.Side,
		Price:     fpmath.FromTokenAmount(e.Price),
		Amount:    fpmath.FromTokenAmount(e.Amount),
	}
	return r.store.Upsert(ctx, rebalance)
}

// pendingQueue resolves the per-transaction settlement queue, falling back
// to the durable records when the in-memory map has no entry. After a
// restart the maps are empty while the mint/burn legs are already marked
// processed, so a redelivered leg cannot rebuild them; the settlement must
// recover its target from the store instead.
func (r *Reconciler) pendingQueue(ctx context.Context, pending map[string][]string, kind model.EntityKind, txHash string) ([]string, error) {
	if queue, ok := pending[txHash]; ok {
		return queue, nil
	}
	queue, err := r.unsettledRecordIDs(ctx, kind, txHash)
	if err != nil {
		return nil, err
	}
	if len(queue) > 0 {
		pending[txHash] = queue
	}
	return queue, nil
}

// unsettledRecordIDs reconstructs a transaction's pending legs from its
// Purchase/Redeem records. A zero SettleLogIndex marks a record as
// unsettled: the settlement log always follows the transfer leg in the
// same transaction, so a settled record never carries index zero. The
// transaction's id lists preserve leg order.
func (r *Reconciler) unsettledRecordIDs(ctx context.Context, kind model.EntityKind, txHash string) ([]string, error) {
	entity, err := r.store.Load(ctx, model.KindTransaction, txHash)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load transaction %s: %w", txHash, err)
	}
	tx := entity.(*model.Transaction)

	ids := tx.PurchaseIDs
	if kind == model.KindRedeem {
		ids = tx.RedeemIDs
	}

	var queue []string
	for _, id := range ids {
		record, err := r.store.Load(ctx, kind, id)
		if err != nil {
			return nil, fmt.Errorf("load %s %s: %w", kind, id, err)
		}
		var settleIndex int64
		switch rec := record.(type) {
		case *model.Purchase:
			settleIndex = rec.SettleLogIndex
		case *model.Redeem:
			settleIndex = rec.SettleLogIndex
		}
		if settleIndex == 0 {
			queue = append(queue, id)
		}
	}
	return queue, nil
}

func (r *Reconciler) setPendingPurchases(txHash string, queue []string) {
	if len(queue) == 0 {
		delete(r.pendingPurchases, txHash)
		return
	}
	r.pendingPurchases[txHash] = queue
}

func (r *Reconciler) setPendingRedeems(txHash string, queue []string) {
	if len(queue) == 0 {
		delete(r.pendingRedeems, txHash)
		return
	}
	r.pendingRedeems[txHash] = queue
}

// recordID builds the deterministic Purchase/Redeem record id from the
// originating log position.
func recordID(meta event.Meta) string {
	return fmt.Sprintf("%s-%d", meta.TxHash, meta.LogIndex)
}

// appendUnique appends id to the list unless already present, reporting
// whether the list changed.
func appendUnique(ids *[]string, id string) bool {
	for _, existing := range *ids {
		if existing == id {
			return false
		}
	}
	*ids = append(*ids, id)
	return true
}

// enqueue appends an id to a pending queue, skipping exact duplicates
// from partial replays.
func enqueue(queue []string, id string) []string {
	for _, existing := range queue {
		if existing == id {
			return queue
		}
	}
	return append(queue, id)
}

func dequeue(queue []string) (string, []string, bool) {
	if len(queue) == 0 {
		return "", nil, false
	}
	return queue[0], queue[1:], true
}
