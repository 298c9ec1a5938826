package wallet

import "errors"

var (
	// ErrInvalidAmount is returned when an amount is not a positive integer or
	// is below the configured minimum. Rejected before any state mutation.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidKey is returned when a withdrawal destination key is empty,
	// too short, or does not match the declared key type's shape.
	ErrInvalidKey = errors.New("invalid destination key")

	// ErrInsufficientFunds is returned when a debit would take the balance
	// below zero. No mutation occurred; safe to retry after funding.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrWalletNotFound is returned when no balance record exists for an account.
	ErrWalletNotFound = errors.New("wallet not found")

	// ErrTransactionNotFound is returned when a transaction id is unknown.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrDuplicateTransaction is returned when appending a transaction whose
	// id already exists in the log.
	ErrDuplicateTransaction = errors.New("duplicate transaction id")

	// ErrInvalidTransition is returned when a status transition is attempted
	// from a status other than the expected one. It means a race was caught;
	// the triggering call is a no-op, never a corruption.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrCompensationFailed is returned when a withdrawal debit succeeded, the
	// payout failed, and crediting the funds back also failed. The record stays
	// in StatusReversalPending and the reversal worker keeps retrying; this
	// error must be escalated, never swallowed.
	ErrCompensationFailed = errors.New("compensation failed")
)
