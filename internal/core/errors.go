package core

import "errors"

// The reconciler assumes a well-ordered, complete event feed. When that
// assumption breaks it fails hard rather than materializing garbage: a
// skipped event would silently corrupt every downstream aggregate, while a
// stopped stream is recoverable by replay.
var (
	// ErrInconsistentPosition is returned when a holder-to-holder transfer
	// names a sender with zero shares — the cost-basis rate would require a
	// division by zero.
	ErrInconsistentPosition = errors.New("inconsistent position state")

	// ErrMissingSettlementTarget is returned when a settlement event
	// arrives for a transaction with no pending mint/burn leg.
	ErrMissingSettlementTarget = errors.New("no pending record awaiting settlement")
)
