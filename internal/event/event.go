package event

import "fmt"

// Kind discriminator for event payloads
type Kind int32

const (
	KindUnknown Kind = iota
	KindParameterSet
	KindManagerSet
	KindStateUpdated
	KindSharesTransferred
	KindPurchaseSettled
	KindRedemptionSettled
	KindSettled
	KindRedeemingShareIncreased
	KindRedeemingShareDecreased
	KindRedeemRequested
	KindRedeemCancelled
	KindRebalanced
)

// AddressZero is the canonical zero address. A transfer from it is a mint
// leg, a transfer to it is a burn leg.
const AddressZero = "0x0000000000000000000000000000000000000000"

// Meta carries the chain-log context every event shares. The tx hash plus
// log index pair is globally unique and is the basis for all deterministic
// record keys.
type Meta struct {
	// Emitting fund contract address (lowercase hex)
	Address string

	// Containing transaction hash
	TxHash string

	// Block context
	BlockNumber int64
	Timestamp   int64

	// Position of the log within the block
	LogIndex int64
}

// Event is the interface all chain-event payloads implement
type Event interface {
	// Kind returns the discriminator
	Kind() Kind

	// FundAddress returns the emitting fund contract address
	FundAddress() string

	// IdempotencyKey returns the stable dedup key for replay detection
	IdempotencyKey() string

	// EventMeta returns the shared chain-log context
	EventMeta() Meta
}

// BlockTick notifies the snapshot sampler of a newly observed block. It is
// deliberately not an Event: it carries no fund context and is never
// deduplicated (the sampler is idempotent on its own).
type BlockTick struct {
	Number    int64
	Timestamp int64
}

func (m Meta) FundAddress() string { return m.Address }

func (m Meta) EventMeta() Meta { return m }

func (m Meta) key(k Kind) string {
	return fmt.Sprintf("%s:%s:%d", k, m.TxHash, m.LogIndex)
}

func (k Kind) String() string {
	switch k {
	case KindParameterSet:
		return "ParameterSet"
	case KindManagerSet:
		return "ManagerSet"
	case KindStateUpdated:
		return "StateUpdated"
	case KindSharesTransferred:
		return "SharesTransferred"
	case KindPurchaseSettled:
		return "PurchaseSettled"
	case KindRedemptionSettled:
		return "RedemptionSettled"
	case KindSettled:
		return "Settled"
	case KindRedeemingShareIncreased:
		return "RedeemingShareIncreased"
	case KindRedeemingShareDecreased:
		return "RedeemingShareDecreased"
	case KindRedeemRequested:
		return "RedeemRequested"
	case KindRedeemCancelled:
		return "RedeemCancelled"
	case KindRebalanced:
		return "Rebalanced"
	default:
		return "Unknown"
	}
}
