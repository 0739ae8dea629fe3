// Package chain provides the read-only contract-call gateway the core uses
// for valuation snapshots and token-metadata probes. Every accessor returns
// a value or an explicit error; callers degrade a failed call to a default
// field value rather than aborting, and nothing here retries — the next
// block's snapshot attempt is the natural retry path.
package chain

import (
	"context"

	"github.com/shopspring/decimal"
)

// Gateway is the set of read-only accessors the core needs. Implementations
// must be synchronous and bounded; they never panic.
type Gateway interface {
	// Fund contract
	NetAssetValuePerShare(ctx context.Context, fund string) (decimal.Decimal, error)
	Perpetual(ctx context.Context, fund string) (string, error)
	Collateral(ctx context.Context, fund string) (string, error)

	// Valuation oracle (perpetual)
	MarkPrice(ctx context.Context, perpetual string) (decimal.Decimal, error)

	// RSI trending strategy
	CurrentRSI(ctx context.Context, strategy string) (decimal.Decimal, error)
	NextTarget(ctx context.Context, strategy string) (decimal.Decimal, error)

	// ERC-20 metadata. Some legacy tokens expose bytes32 instead of string;
	// the *Bytes variants probe that shape.
	Symbol(ctx context.Context, token string) (string, error)
	SymbolBytes(ctx context.Context, token string) (string, error)
	Name(ctx context.Context, token string) (string, error)
	NameBytes(ctx context.Context, token string) (string, error)
}
