// Package model defines the aggregate entities materialized from the fund
// event stream. All monetary and share quantities use shopspring/decimal —
// never float64 — because every total is built by millions of accumulating
// additions and subtractions.
package model

// EntityKind discriminates the durable entity kinds in the store.
type EntityKind string

const (
	KindFund              EntityKind = "fund"
	KindUser              EntityKind = "user"
	KindPosition          EntityKind = "position"
	KindTransaction       EntityKind = "transaction"
	KindPurchase          EntityKind = "purchase"
	KindRedeem            EntityKind = "redeem"
	KindRedemptionRequest EntityKind = "redemption_request"
	KindFundHourData      EntityKind = "fund_hour_data"
	KindRebalance         EntityKind = "rebalance"
)

// Entity is implemented by every aggregate persisted in the entity store.
// IDs are stable strings, unique within a kind, derived from chain
// identifiers so that replays converge on the same rows.
type Entity interface {
	Kind() EntityKind
	EntityID() string
}

// PositionID builds the deterministic id for a user × fund position.
func PositionID(user, fund string) string {
	return user + "-" + fund
}
