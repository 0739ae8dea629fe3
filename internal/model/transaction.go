package model

import "github.com/shopspring/decimal"

// Transaction groups the purchase and redeem records produced within one
// chain transaction, in log order. Created on the first mint or burn leg
// seen for the tx hash.
type Transaction struct {
	ID          string `json:"id"` // tx hash
	BlockNumber int64  `json:"blockNumber"`
	Timestamp   int64  `json:"timestamp"`

	PurchaseIDs []string `json:"purchases"`
	RedeemIDs   []string `json:"redeems"`
}

func (t *Transaction) Kind() EntityKind { return KindTransaction }

func (t *Transaction) EntityID() string { return t.ID }

// Purchase is the append-only record of a single mint leg, id
// `{txHash}-{logIndex}`. Created with the raw share amount when the mint
// leg is observed; NetAssetValuePerShare and SettleLogIndex are filled in
// by the PurchaseSettled event later in the same transaction.
type Purchase struct {
	ID          string `json:"id"`
	Transaction string `json:"transaction"`
	Timestamp   int64  `json:"timestamp"`
	Fund        string `json:"fund"`
	To          string `json:"to"`
	Position    string `json:"position"`

	ShareAmount           decimal.Decimal `json:"shareAmount"`
	NetAssetValuePerShare decimal.Decimal `json:"netAssetValuePerShare"`

	// Log index of the settlement event, for deterministic ordering within
	// the transaction
	SettleLogIndex int64 `json:"settleLogIndex"`
}

func (p *Purchase) Kind() EntityKind { return KindPurchase }

func (p *Purchase) EntityID() string { return p.ID }

// Redeem is the append-only record of a single burn leg, symmetric with
// Purchase. ReturnedCollateral is filled in by RedemptionSettled.
type Redeem struct {
	ID          string `json:"id"`
	Transaction string `json:"transaction"`
	Timestamp   int64  `json:"timestamp"`
	Fund        string `json:"fund"`
	From        string `json:"from"`
	Position    string `json:"position"`

	ShareAmount        decimal.Decimal `json:"shareAmount"`
	ReturnedCollateral decimal.Decimal `json:"returnedCollateral"`

	SettleLogIndex int64 `json:"settleLogIndex"`
}

func (r *Redeem) Kind() EntityKind { return KindRedeem }

func (r *Redeem) EntityID() string { return r.ID }

// RedemptionRequestType discriminates request from cancellation.
type RedemptionRequestType int32

const (
	RedemptionRequested RedemptionRequestType = 0
	RedemptionCancelled RedemptionRequestType = 1
)

// RedemptionRequest records a user-initiated redeem request or cancel, id
// `{account}-{txHash}-{logIndex}` so repeated requests in one transaction
// never collide.
type RedemptionRequest struct {
	ID              string `json:"id"`
	TransactionHash string `json:"transactionHash"`
	Timestamp       int64  `json:"timestamp"`
	Fund            string `json:"fund"`
	User            string `json:"user"`
	Position        string `json:"position"`

	Type        RedemptionRequestType `json:"type"`
	ShareAmount decimal.Decimal       `json:"shareAmount"`
	Slippage    decimal.Decimal       `json:"slippage"`
}

func (r *RedemptionRequest) Kind() EntityKind { return KindRedemptionRequest }

func (r *RedemptionRequest) EntityID() string { return r.ID }

// Rebalance records one auto-trading fund rebalance, id `{fund}-{txHash}`.
type Rebalance struct {
	ID        string          `json:"id"`
	Fund      string          `json:"fund"`
	Timestamp int64           `json:"timestamp"`
	Side      int32           `json:"side"`
	Price     decimal.Decimal `json:"price"`
	Amount    decimal.Decimal `json:"amount"`
}

func (r *Rebalance) Kind() EntityKind { return KindRebalance }

func (r *Rebalance) EntityID() string { return r.ID }
