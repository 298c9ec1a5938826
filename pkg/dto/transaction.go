// Package dto holds read/write data shapes exchanged between the orchestrator,
// the transaction log implementations, and the API layer.
package dto

import (
	"time"

	"github.com/novawallet/novawallet/pkg/domain/wallet"
)

// TransactionRead is a read-optimized shape for transaction queries and API
// responses.
type TransactionRead struct {
	ID                 string
	AccountID          string
	Amount             int64 // minor currency units
	Kind               wallet.Kind
	Method             wallet.Method
	Status             wallet.Status
	ExternalRef        string
	PixQRCode          string
	PixCopyPaste       string
	DestinationKey     string
	DestinationKeyType wallet.KeyType
	IdempotencyKey     string
	ExpiresAt          *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// TransactionCreate is the write shape for appending a new record. The log
// stores it verbatim in StatusCreated unless Status says otherwise.
type TransactionCreate struct {
	ID                 string
	AccountID          string
	Amount             int64
	Kind               wallet.Kind
	Method             wallet.Method
	Status             wallet.Status
	DestinationKey     string
	DestinationKeyType wallet.KeyType
	IdempotencyKey     string
}

// TransactionUpdate carries the optional fields a status transition may merge
// into a record. Nil pointers leave the stored value untouched.
type TransactionUpdate struct {
	ExternalRef  *string
	PixQRCode    *string
	PixCopyPaste *string
	ExpiresAt    *time.Time
}
