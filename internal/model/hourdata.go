package model

import "github.com/shopspring/decimal"

// FundHourData is the hourly valuation snapshot, id `{fund}-{hourIndex}`
// where hourIndex = blockTimestamp / 3600. At most one exists per bucket
// and it is never overwritten after creation.
//
// NetAssetValuePerShare is denominated in the fund's own collateral token.
// The USD and underlying figures depend on whether that collateral is a
// stablecoin: for USD collateral, USD == the raw figure and underlying is
// derived by multiplying by mark price; otherwise underlying == the raw
// figure and USD is derived by dividing by mark price.
type FundHourData struct {
	ID            string `json:"id"`
	Fund          string `json:"fund"`
	HourStartUnix int64  `json:"hourStartUnix"`

	NetAssetValuePerShare           decimal.Decimal `json:"netAssetValuePerShare"`
	NetAssetValuePerShareUSD        decimal.Decimal `json:"netAssetValuePerShareUSD"`
	NetAssetValuePerShareUnderlying decimal.Decimal `json:"netAssetValuePerShareUnderlying"`

	// Strategy indicators, zero for funds without a strategy
	CurrentRSI decimal.Decimal `json:"currentRSI"`
	NextTarget decimal.Decimal `json:"nextTarget"`
}

func (h *FundHourData) Kind() EntityKind { return KindFundHourData }

func (h *FundHourData) EntityID() string { return h.ID }

// HourIndex buckets a block timestamp into its hour.
func HourIndex(timestamp int64) int64 { return timestamp / 3600 }
