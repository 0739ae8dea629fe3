package model

import "github.com/shopspring/decimal"

// Position is one user's holding record within one fund, id `{user}-{fund}`.
//
// ShareAmount never goes negative: it decreases only through burn
// settlements, emergency settlements and transfer-out, and increases only
// through purchase settlements and transfer-in. RedeemingShareAmount stays
// within [0, ShareAmount]; the emitting contract guarantees it.
type Position struct {
	ID   string `json:"id"`
	User string `json:"user"`
	Fund string `json:"fund"`

	ShareAmount          decimal.Decimal `json:"shareAmount"`
	RedeemingShareAmount decimal.Decimal `json:"redeemingShareAmount"`

	// Cumulative totals over the position's lifetime
	TotalPurchaseShare      decimal.Decimal `json:"totalPurchaseShare"`
	TotalPurchaseCollateral decimal.Decimal `json:"totalPurchaseCollateral"`
	TotalRedeemedShare      decimal.Decimal `json:"totalRedeemedShare"`
	TotalRedeemedCollateral decimal.Decimal `json:"totalRedeemedCollateral"`

	// Running average-cost basis in collateral units. Holder-to-holder
	// transfers move basis proportionally so the per-share rate of both
	// sides is preserved.
	CostCollateral decimal.Decimal `json:"costCollateral"`

	FirstPurchaseTime int64 `json:"firstPurchaseTime"`
	LastPurchaseTime  int64 `json:"lastPurchaseTime"`
}

func (p *Position) Kind() EntityKind { return KindPosition }

func (p *Position) EntityID() string { return p.ID }

// CostPerShare returns the position's average cost basis per share.
// Callers must check ShareAmount is nonzero first.
func (p *Position) CostPerShare() decimal.Decimal {
	return p.CostCollateral.Div(p.ShareAmount)
}
