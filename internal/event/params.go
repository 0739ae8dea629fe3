package event

import "math/big"

// ParameterSet reports a change to one of the fund's dynamic configuration
// parameters. Key is the raw on-chain parameter name; unrecognized keys are
// ignored by the reconciler.
type ParameterSet struct {
	Meta
	Key   string
	Value *big.Int
}

func (e *ParameterSet) Kind() Kind { return KindParameterSet }

func (e *ParameterSet) IdempotencyKey() string { return e.Meta.key(KindParameterSet) }

// ManagerSet reports a manager change on a manager-governed fund.
// Last-writer-wins; the contract is the source of truth.
type ManagerSet struct {
	Meta
	NewManager string
}

func (e *ManagerSet) Kind() Kind { return KindManagerSet }

func (e *ManagerSet) IdempotencyKey() string { return e.Meta.key(KindManagerSet) }

// StateUpdated reports a fund lifecycle transition (Normal, Emergency,
// Shutdown). Any value is accepted without transition validation.
type StateUpdated struct {
	Meta
	NewState int32
}

func (e *StateUpdated) Kind() Kind { return KindStateUpdated }

func (e *StateUpdated) IdempotencyKey() string { return e.Meta.key(KindStateUpdated) }
