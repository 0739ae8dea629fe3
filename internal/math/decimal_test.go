package math_test

import (
	"math/big"
	"testing"

	fpmath "FundGraph/internal/math"

	"github.com/shopspring/decimal"
)

func TestToDecimal(t *testing.T) {
	cases := []struct {
		name     string
		amount   string
		decimals int32
		want     string
	}{
		{"whole token", "1000000000000000000", 18, "1"},
		{"fractional", "1050000000000000000", 18, "1.05"},
		{"zero decimals returns raw", "42", 0, "42"},
		{"zero amount", "0", 18, "0"},
		{"dust", "1", 18, "0.000000000000000001"},
		{"six decimals", "2500000", 6, "2.5"},
		{"negative", "-500000000000000000", 18, "-0.5"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			amount, ok := new(big.Int).SetString(tc.amount, 10)
			if !ok {
				t.Fatalf("bad amount literal %q", tc.amount)
			}
			got := fpmath.ToDecimal(amount, tc.decimals)
			want := decimal.RequireFromString(tc.want)
			if !got.Equal(want) {
				t.Errorf("ToDecimal(%s, %d) = %s, want %s", tc.amount, tc.decimals, got, want)
			}
		})
	}
}

func TestToDecimalNil(t *testing.T) {
	if got := fpmath.ToDecimal(nil, 18); !got.IsZero() {
		t.Errorf("ToDecimal(nil) = %s, want 0", got)
	}
}

// Repeated accumulation of converted amounts must not drift. This is the
// property float64 would fail: 1e6 additions of 0.1 tokens.
func TestToDecimalAccumulationExact(t *testing.T) {
	tenth, _ := new(big.Int).SetString("100000000000000000", 10) // 0.1 tokens
	sum := decimal.Zero
	for i := 0; i < 1_000_000; i++ {
		sum = sum.Add(fpmath.FromTokenAmount(tenth))
	}
	if want := decimal.RequireFromString("100000"); !sum.Equal(want) {
		t.Errorf("accumulated sum = %s, want %s", sum, want)
	}
}

func TestFromTokenAmount(t *testing.T) {
	amount, _ := new(big.Int).SetString("123450000000000000000", 10)
	got := fpmath.FromTokenAmount(amount)
	if want := decimal.RequireFromString("123.45"); !got.Equal(want) {
		t.Errorf("FromTokenAmount = %s, want %s", got, want)
	}
}
