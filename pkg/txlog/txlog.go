// Package txlog defines the append-only transaction log contract.
// Implementations live in infra/txlog.
package txlog

import (
	"context"
	"iter"

	"github.com/novawallet/novawallet/pkg/domain/wallet"
	"github.com/novawallet/novawallet/pkg/dto"
)

// Log records every deposit/withdrawal attempt and its terminal outcome.
// Records are append-only: corrections are new records, and a record that
// reached a terminal status never changes again.
type Log interface {
	// Append creates a new record. Fails with wallet.ErrDuplicateTransaction
	// if the id already exists.
	Append(ctx context.Context, create dto.TransactionCreate) error

	// Transition moves a record from exactly `from` to `to`, merging the
	// non-nil fields of extra and bumping the updated timestamp. If the
	// record's current status is not `from`, it fails with
	// wallet.ErrInvalidTransition and changes nothing — this is the guard
	// that makes racing writers and double-processing safe.
	Transition(ctx context.Context, id string, from, to wallet.Status, extra dto.TransactionUpdate) error

	// Get returns one record by id, or wallet.ErrTransactionNotFound.
	Get(ctx context.Context, id string) (*dto.TransactionRead, error)

	// GetByIdempotencyKey returns the record a caller already created with
	// this key for this account, or wallet.ErrTransactionNotFound.
	GetByIdempotencyKey(ctx context.Context, accountID, key string) (*dto.TransactionRead, error)

	// GetByExternalRef returns the record carrying a gateway reference, or
	// wallet.ErrTransactionNotFound. Used by the settlement webhook.
	GetByExternalRef(ctx context.Context, externalRef string) (*dto.TransactionRead, error)

	// ListByAccount yields the account's records newest-first, at most limit
	// of them. The sequence is lazy and restartable: each range re-runs the
	// underlying query, and the caller may stop early at any point. A nil
	// record with a non-nil error terminates the sequence on query failure.
	ListByAccount(ctx context.Context, accountID string, limit int) iter.Seq2[*dto.TransactionRead, error]

	// ListByStatus yields records currently in the given status, oldest
	// first. The reversal worker uses it to find stuck compensations.
	ListByStatus(ctx context.Context, status wallet.Status, limit int) iter.Seq2[*dto.TransactionRead, error]
}
