package model

import "github.com/shopspring/decimal"

// FundState is the fund contract's lifecycle state.
type FundState int32

const (
	FundStateNormal    FundState = 0
	FundStateEmergency FundState = 1
	FundStateShutdown  FundState = 2
)

// Fund is the root aggregate, one per fund contract address. The address
// (lowercase hex) is the entity id.
//
// TotalSupply equals the sum of all Position.ShareAmount values for the
// fund. The equality holds across the event stream, not per write: a mint
// leg and its settlement arrive as separate events.
type Fund struct {
	ID string `json:"id"`

	// Token metadata, probed once at creation
	Symbol string `json:"symbol"`
	Name   string `json:"name"`

	// Linked contracts
	Perpetual  string `json:"perpetual"`  // valuation oracle
	Collateral string `json:"collateral"` // collateral token
	Strategy   string `json:"strategy"`   // empty unless an auto-trading fund

	State FundState `json:"state"`

	// Dynamic configuration parameters, overwritten by ParameterSet events
	Cap                     decimal.Decimal `json:"cap"`
	RedeemingLockPeriod     decimal.Decimal `json:"redeemingLockPeriod"`
	EntranceFeeRate         decimal.Decimal `json:"entranceFeeRate"`
	StreamingFeeRate        decimal.Decimal `json:"streamingFeeRate"`
	PerformanceFeeRate      decimal.Decimal `json:"performanceFeeRate"`
	GlobalRedeemingSlippage decimal.Decimal `json:"globalRedeemingSlippage"`
	DrawdownHighWaterMark   decimal.Decimal `json:"drawdownHighWaterMark"`
	LeverageHighWaterMark   decimal.Decimal `json:"leverageHighWaterMark"`
	RebalanceSlippage       decimal.Decimal `json:"rebalanceSlippage"`
	RebalanceTolerance      decimal.Decimal `json:"rebalanceTolerance"`

	// Manager-governed funds only; empty otherwise
	Manager string `json:"manager"`

	TotalSupply decimal.Decimal `json:"totalSupply"`

	// Valuation at the moment the fund first had nonzero supply
	InitNetAssetValuePerShare decimal.Decimal `json:"initNetAssetValuePerShare"`
	InitTimestamp             int64           `json:"initTimestamp"`
}

func (f *Fund) Kind() EntityKind { return KindFund }

func (f *Fund) EntityID() string { return f.ID }

// User is a holder address. It carries no fund-specific state — purely an
// identity anchor referenced by positions and records.
type User struct {
	ID string `json:"id"`
}

func (u *User) Kind() EntityKind { return KindUser }

func (u *User) EntityID() string { return u.ID }
