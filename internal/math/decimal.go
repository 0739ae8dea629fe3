// Package math converts raw on-chain integer amounts into exact decimal
// values. This is the most safety-critical primitive in the core: every
// aggregate total is built by repeated addition and subtraction of its
// outputs, so binary floating point is never acceptable here.
package math

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// TokenDecimals is the decimal count the fund family declares for shares
// and collateral amounts.
const TokenDecimals int32 = 18

// ToDecimal divides amount by 10^decimals. decimals == 0 returns the
// amount unchanged, avoiding a degenerate division.
func ToDecimal(amount *big.Int, decimals int32) decimal.Decimal {
	if amount == nil {
		return decimal.Zero
	}
	if decimals == 0 {
		return decimal.NewFromBigInt(amount, 0)
	}
	return decimal.NewFromBigInt(amount, -decimals)
}

// FromTokenAmount converts an amount using the fund family's standard
// 18-decimal scaling.
func FromTokenAmount(amount *big.Int) decimal.Decimal {
	return ToDecimal(amount, TokenDecimals)
}
