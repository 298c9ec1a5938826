// Package model holds the gorm persistence models. They are mapped to and
// from domain/dto shapes at the repository boundary and never leak upward.
package model

import "time"

// Wallet is the balance row for one account. Version backs the optimistic
// compare-and-swap in infra/ledger: every committed adjustment bumps it, and a
// conditional update that misses the expected version affects zero rows.
type Wallet struct {
	AccountID string `gorm:"primaryKey;size:64"`
	Balance   int64  `gorm:"not null;default:0"`
	Version   int64  `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides gorm's pluralization.
func (Wallet) TableName() string { return "wallets" }

// Transaction is one append-only ledger record.
type Transaction struct {
	ID                 string `gorm:"primaryKey;size:64"`
	AccountID          string `gorm:"size:64;not null;index:idx_transactions_account_created,priority:1;uniqueIndex:idx_transactions_account_idem,priority:1"`
	Amount             int64  `gorm:"not null"`
	Kind               string `gorm:"size:16;not null"`
	Method             string `gorm:"size:16;not null"`
	Status             string `gorm:"size:24;not null;index"`
	ExternalRef        string `gorm:"size:128;index"`
	PixQRCode          string `gorm:"type:text"`
	PixCopyPaste       string `gorm:"type:text"`
	DestinationKey     string `gorm:"size:128"`
	DestinationKeyType string `gorm:"size:16"`

	// The partial unique index closes the window where two submissions with
	// the same key both miss the pre-debit lookup.
	IdempotencyKey string `gorm:"size:128;uniqueIndex:idx_transactions_account_idem,priority:2,where:idempotency_key <> ''"`

	ExpiresAt *time.Time
	CreatedAt time.Time `gorm:"index:idx_transactions_account_created,priority:2,sort:desc"`
	UpdatedAt time.Time
}

// TableName overrides gorm's pluralization.
func (Transaction) TableName() string { return "transactions" }
