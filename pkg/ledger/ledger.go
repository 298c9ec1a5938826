// Package ledger defines the balance store contract. Implementations live in
// infra/ledger.
package ledger

import "context"

// Store is the durable per-account balance store. It is the only mutually
// shared mutable resource in the system.
//
// Implementations must provide per-account serializability: concurrent
// adjustments to one account never lose an update and never let the balance
// go negative, while adjustments to different accounts do not block each
// other. The mechanism is optimistic read-compute-conditional-write with
// retry (or a native equivalent); a lock is never held across a payment
// gateway call.
type Store interface {
	// AtomicAdjust applies delta to the account's balance as one indivisible
	// step. If delta is negative and would take the balance below zero, no
	// change is applied and committed is false (the insufficient-funds
	// guard). newBalance is the balance after the adjustment when committed,
	// the untouched current balance otherwise.
	AtomicAdjust(ctx context.Context, accountID string, delta int64) (newBalance int64, committed bool, err error)

	// Balance reads the current balance without mutating it. Returns
	// wallet.ErrWalletNotFound for unknown accounts.
	Balance(ctx context.Context, accountID string) (int64, error)

	// CreateWallet registers a zero-balance record for a new account. It is a
	// no-op if the record already exists.
	CreateWallet(ctx context.Context, accountID string) error
}
