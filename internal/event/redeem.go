package event

import "math/big"

// RedeemingShareIncreased earmarks shares for a pending redemption. The
// emitting contract keeps the earmarked amount within [0, shareAmount]; the
// reconciler trusts it and enforces no bounds.
type RedeemingShareIncreased struct {
	Meta
	Trader string
	Amount *big.Int
}

func (e *RedeemingShareIncreased) Kind() Kind { return KindRedeemingShareIncreased }

func (e *RedeemingShareIncreased) IdempotencyKey() string {
	return e.Meta.key(KindRedeemingShareIncreased)
}

// RedeemingShareDecreased releases earmarked shares.
type RedeemingShareDecreased struct {
	Meta
	Trader string
	Amount *big.Int
}

func (e *RedeemingShareDecreased) Kind() Kind { return KindRedeemingShareDecreased }

func (e *RedeemingShareDecreased) IdempotencyKey() string {
	return e.Meta.key(KindRedeemingShareDecreased)
}

// RedeemRequested is a user's signal of intent to redeem shares, tracked
// separately from the eventual settlement.
type RedeemRequested struct {
	Meta
	Account     string
	ShareAmount *big.Int
	Slippage    *big.Int
}

func (e *RedeemRequested) Kind() Kind { return KindRedeemRequested }

func (e *RedeemRequested) IdempotencyKey() string { return e.Meta.key(KindRedeemRequested) }

// RedeemCancelled withdraws a prior redemption request.
type RedeemCancelled struct {
	Meta
	Account     string
	ShareAmount *big.Int
}

func (e *RedeemCancelled) Kind() Kind { return KindRedeemCancelled }

func (e *RedeemCancelled) IdempotencyKey() string { return e.Meta.key(KindRedeemCancelled) }

// Rebalanced reports an auto-trading fund's rebalance trade. At most one
// rebalance record exists per transaction; a later rebalance in the same
// transaction overwrites the same key.
type Rebalanced struct {
	Meta
	Side   int32
	Price  *big.Int
	Amount *big.Int
}

func (e *Rebalanced) Kind() Kind { return KindRebalanced }

func (e *Rebalanced) IdempotencyKey() string { return e.Meta.key(KindRebalanced) }
