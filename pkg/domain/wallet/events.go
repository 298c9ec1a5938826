package wallet

import "time"

// Event is implemented by all transaction lifecycle events published on the
// event bus. Consumers (notification hooks, reconciliation alerting) subscribe
// by event type name.
type Event interface {
	EventType() string
}

// DepositInitiated is published when a deposit collection has been created at
// the gateway and its artifacts returned to the caller.
type DepositInitiated struct {
	TransactionID string
	AccountID     string
	Amount        int64
	ExternalRef   string
	At            time.Time
}

func (DepositInitiated) EventType() string { return "wallet.deposit_initiated" }

// TransactionSettled is published when a record reaches StatusSettled.
type TransactionSettled struct {
	TransactionID string
	AccountID     string
	Amount        int64
	Kind          Kind
	At            time.Time
}

func (TransactionSettled) EventType() string { return "wallet.transaction_settled" }

// WithdrawalFailed is published when a withdrawal fails at the gateway and the
// compensating credit has landed.
type WithdrawalFailed struct {
	TransactionID string
	AccountID     string
	Amount        int64
	Reason        string
	At            time.Time
}

func (WithdrawalFailed) EventType() string { return "wallet.withdrawal_failed" }

// ReversalStuck is published when a compensating credit keeps failing and the
// record is parked in StatusReversalPending. This is the alerting hook for
// manual reconciliation; it must have at least one consumer in production.
type ReversalStuck struct {
	TransactionID string
	AccountID     string
	Amount        int64
	Attempts      int
	LastError     string
	At            time.Time
}

func (ReversalStuck) EventType() string { return "wallet.reversal_stuck" }
