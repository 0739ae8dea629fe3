package testutil

import (
	"math/big"

	"FundGraph/internal/event"
)

// Well-known test addresses.
const (
	FundAddr     = "0xf000000000000000000000000000000000000001"
	AliceAddr    = "0xa000000000000000000000000000000000000001"
	BobAddr      = "0xb000000000000000000000000000000000000002"
	ManagerAddr  = "0x3000000000000000000000000000000000000003"
	StrategyAddr = "0x5000000000000000000000000000000000000005"
)

// Tokens scales a whole-token amount into its raw 18-decimal on-chain
// representation.
func Tokens(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
}

// EventMeta builds the chain provenance for a synthetic event. Timestamps
// advance one second per block so hour buckets are easy to steer.
func EventMeta(txHash string, blockNumber, logIndex int64) event.Meta {
	return event.Meta{
		Address:     FundAddr,
		TxHash:      txHash,
		BlockNumber: blockNumber,
		Timestamp:   1_700_000_000 + blockNumber,
		LogIndex:    logIndex,
	}
}

// MintLeg builds the share-token transfer that issues value shares to
// account.
func MintLeg(meta event.Meta, account string, value *big.Int) *event.SharesTransferred {
	return &event.SharesTransferred{Meta: meta, From: event.AddressZero, To: account, Value: value}
}

// BurnLeg builds the share-token transfer that destroys value shares held
// by account.
func BurnLeg(meta event.Meta, account string, value *big.Int) *event.SharesTransferred {
	return &event.SharesTransferred{Meta: meta, From: account, To: event.AddressZero, Value: value}
}

// Transfer builds a holder-to-holder share transfer.
func Transfer(meta event.Meta, from, to string, value *big.Int) *event.SharesTransferred {
	return &event.SharesTransferred{Meta: meta, From: from, To: to, Value: value}
}

// PurchaseSettle builds the settlement leg that follows a mint in the same
// transaction.
func PurchaseSettle(meta event.Meta, account string, share, nav *big.Int) *event.PurchaseSettled {
	return &event.PurchaseSettled{Meta: meta, Account: account, ShareAmount: share, NetAssetValuePerShare: nav}
}

// RedemptionSettle builds the settlement leg that follows a burn in the
// same transaction.
func RedemptionSettle(meta event.Meta, account string, share, returned *big.Int) *event.RedemptionSettled {
	return &event.RedemptionSettled{Meta: meta, Account: account, ShareAmount: share, ReturnedCollateral: returned}
}
