package event

import "math/big"

// SharesTransferred is the fund share token's ERC-20 Transfer log. The
// reconciler classifies it into a mint leg (From == AddressZero), a burn
// leg (To == AddressZero) or a holder-to-holder transfer.
type SharesTransferred struct {
	Meta
	From  string
	To    string
	Value *big.Int // Raw on-chain amount, scaled by the token's decimals
}

func (e *SharesTransferred) Kind() Kind { return KindSharesTransferred }

func (e *SharesTransferred) IdempotencyKey() string { return e.Meta.key(KindSharesTransferred) }

// IsMint reports whether this transfer issues new shares.
func (e *SharesTransferred) IsMint() bool { return e.From == AddressZero }

// IsBurn reports whether this transfer destroys shares.
func (e *SharesTransferred) IsBurn() bool { return e.To == AddressZero }

// PurchaseSettled is the purchase-detail log that follows a mint leg within
// the same transaction. It carries the valuation the mint leg lacked.
type PurchaseSettled struct {
	Meta
	Account               string
	ShareAmount           *big.Int
	NetAssetValuePerShare *big.Int
}

func (e *PurchaseSettled) Kind() Kind { return KindPurchaseSettled }

func (e *PurchaseSettled) IdempotencyKey() string { return e.Meta.key(KindPurchaseSettled) }

// RedemptionSettled is the redemption-detail log that follows a burn leg
// within the same transaction.
type RedemptionSettled struct {
	Meta
	Account            string
	ShareAmount        *big.Int
	ReturnedCollateral *big.Int
}

func (e *RedemptionSettled) Kind() Kind { return KindRedemptionSettled }

func (e *RedemptionSettled) IdempotencyKey() string { return e.Meta.key(KindRedemptionSettled) }

// Settled is the emergency settlement log emitted when a shut-down fund
// returns collateral to a holder outside the normal redemption path. It
// mutates the position and fund supply like RedemptionSettled but has no
// preceding burn leg and produces no redeem record.
type Settled struct {
	Meta
	Account            string
	ShareAmount        *big.Int
	CollateralToReturn *big.Int
}

func (e *Settled) Kind() Kind { return KindSettled }

func (e *Settled) IdempotencyKey() string { return e.Meta.key(KindSettled) }
