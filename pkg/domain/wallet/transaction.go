// Package wallet holds the domain model for the ledger core: balance records,
// transaction records and their status state machine, and PIX destination key
// validation. All amounts are integers in minor currency units.
package wallet

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"time"
)

// Kind distinguishes the two money movements the ledger records.
type Kind string

const (
	KindDeposit    Kind = "deposit"
	KindWithdrawal Kind = "withdrawal"
)

// Method is the payment rail a transaction rides on.
type Method string

// MethodPix is the only method the ledger currently supports.
const MethodPix Method = "pix"

// Status is the lifecycle state of a transaction record.
type Status string

const (
	// StatusCreated is the initial status of every record, written before any
	// external call is made.
	StatusCreated Status = "created"
	// StatusPending marks a deposit whose collection exists at the gateway but
	// whose payment has not been confirmed yet.
	StatusPending Status = "pending"
	// StatusProcessing marks a withdrawal whose debit committed and whose
	// payout is in flight.
	StatusProcessing Status = "processing"
	// StatusSettling marks a deposit whose payment is confirmed but whose
	// credit has not landed yet. The record only becomes settled once the
	// balance reflects the money; a stuck credit stays here, visible to the
	// reversal worker.
	StatusSettling Status = "settling"
	// StatusReversalPending marks a failed withdrawal whose compensating
	// credit has not landed yet. Non-terminal on purpose: the reversal worker
	// owns it until the credit commits.
	StatusReversalPending Status = "reversal_pending"
	// StatusSettled is the successful terminal status.
	StatusSettled Status = "settled"
	// StatusFailed is the unsuccessful terminal status. For withdrawals it is
	// only reached after the compensating credit has landed.
	StatusFailed Status = "failed"
	// StatusExpired marks a deposit collection that lapsed unpaid.
	StatusExpired Status = "expired"
	// StatusCanceled marks a deposit collection canceled at the gateway.
	StatusCanceled Status = "canceled"
)

// Terminal reports whether the status can never change again. Corrections to
// terminal records are new records, not mutations.
func (s Status) Terminal() bool {
	switch s {
	case StatusSettled, StatusFailed, StatusExpired, StatusCanceled:
		return true
	}
	return false
}

var transitions = map[Status][]Status{
	StatusCreated:         {StatusPending, StatusProcessing, StatusFailed},
	StatusPending:         {StatusSettling, StatusExpired, StatusCanceled, StatusFailed},
	StatusSettling:        {StatusSettled},
	StatusProcessing:      {StatusSettled, StatusFailed, StatusReversalPending},
	StatusReversalPending: {StatusFailed},
}

// CanTransitionTo reports whether the state machine permits moving from s to
// next. Terminal statuses permit nothing.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Transaction is one deposit or withdrawal attempt and its outcome. Records
// are append-only: once written they transition forward through the status
// machine and never get rewritten wholesale.
type Transaction struct {
	ID        string
	AccountID string
	Amount    int64
	Kind      Kind
	Method    Method
	Status    Status

	// ExternalRef is the gateway-assigned id, empty until the gateway responds.
	ExternalRef string

	// Deposit artifacts returned by the gateway's collection call.
	PixQRCode    string
	PixCopyPaste string
	ExpiresAt    *time.Time

	// Withdrawal destination.
	DestinationKey     string
	DestinationKeyType KeyType

	// IdempotencyKey is the caller-supplied replay guard for withdrawals.
	// Empty means the caller opted out.
	IdempotencyKey string

	CreatedAt time.Time
	UpdatedAt time.Time
}

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewID generates a collision-resistant transaction id from the current
// monotonic time plus a random suffix, e.g. "tx_sj6dk1q2b3hc_4x9fh27qk".
func NewID() string {
	suffix := make([]byte, 9)
	max := big.NewInt(int64(len(idAlphabet)))
	for i := range suffix {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the platform entropy source is
			// broken; degrade to a time-derived byte rather than panic.
			n = big.NewInt(time.Now().UnixNano() % int64(len(idAlphabet)))
		}
		suffix[i] = idAlphabet[n.Int64()]
	}
	return "tx_" + strconv.FormatInt(time.Now().UnixNano(), 36) + "_" + string(suffix)
}
