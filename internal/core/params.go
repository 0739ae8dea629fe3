package core

import (
	"github.com/shopspring/decimal"

	"FundGraph/internal/model"
)

// ParamKey enumerates the recognized dynamic fund parameters. A finite
// enumeration consumed through one update function gives exhaustiveness
// checking instead of a cascading string comparison.
type ParamKey int32

const (
	ParamCap ParamKey = iota
	ParamRedeemingLockPeriod
	ParamEntranceFeeRate
	ParamStreamingFeeRate
	ParamPerformanceFeeRate
	ParamGlobalRedeemingSlippage
	ParamDrawdownHighWaterMark
	ParamLeverageHighWaterMark
	ParamRebalanceSlippage
	ParamRebalanceTolerance
)

// ParseParamKey maps a raw on-chain parameter name onto its ParamKey.
// Unrecognized names return ok=false and are ignored without error.
func ParseParamKey(key string) (ParamKey, bool) {
	switch key {
	case "cap":
		return ParamCap, true
	case "redeemingLockPeriod":
		return ParamRedeemingLockPeriod, true
	case "entranceFeeRate":
		return ParamEntranceFeeRate, true
	case "streamingFeeRate":
		return ParamStreamingFeeRate, true
	case "performanceFeeRate":
		return ParamPerformanceFeeRate, true
	case "globalRedeemingSlippage":
		return ParamGlobalRedeemingSlippage, true
	case "drawdownHighWaterMark":
		return ParamDrawdownHighWaterMark, true
	case "leverageHighWaterMark":
		return ParamLeverageHighWaterMark, true
	case "rebalanceSlippage":
		return ParamRebalanceSlippage, true
	case "rebalanceTolerance":
		return ParamRebalanceTolerance, true
	default:
		return 0, false
	}
}

// applyParam overwrites the fund field addressed by the key.
func applyParam(fund *model.Fund, key ParamKey, value decimal.Decimal) {
	switch key {
	case ParamCap:
		fund.Cap = value
	case ParamRedeemingLockPeriod:
		fund.RedeemingLockPeriod = value
	case ParamEntranceFeeRate:
		fund.EntranceFeeRate = value
	case ParamStreamingFeeRate:
		fund.StreamingFeeRate = value
	case ParamPerformanceFeeRate:
		fund.PerformanceFeeRate = value
	case ParamGlobalRedeemingSlippage:
		fund.GlobalRedeemingSlippage = value
	case ParamDrawdownHighWaterMark:
		fund.DrawdownHighWaterMark = value
	case ParamLeverageHighWaterMark:
		fund.LeverageHighWaterMark = value
	case ParamRebalanceSlippage:
		fund.RebalanceSlippage = value
	case ParamRebalanceTolerance:
		fund.RebalanceTolerance = value
	}
}
