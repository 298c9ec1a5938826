package wallet

import (
	"time"

	"github.com/novawallet/novawallet/pkg/money"
)

// Wallet is the balance record for one account. The balance is mutated
// exclusively through the ledger store's atomic adjust; this type is the
// read-side shape of that record.
//
// Invariants:
//   - Balance is never negative at any observable time.
//   - Created with a zero balance at account registration.
type Wallet struct {
	AccountID string
	Balance   money.Money
	UpdatedAt time.Time
	CreatedAt time.Time
}

// Builder constructs Wallet values, mostly when hydrating from a store.
type Builder struct {
	accountID string
	balance   int64
	currency  string
	createdAt time.Time
	updatedAt time.Time
}

// New returns a Builder with a zero balance in the default currency.
func New() *Builder {
	return &Builder{currency: money.DefaultCurrency, createdAt: time.Now()}
}

// WithAccountID sets the owning account. Mandatory.
func (b *Builder) WithAccountID(id string) *Builder {
	b.accountID = id
	return b
}

// WithBalance sets the balance in minor units, for hydration or test setup.
func (b *Builder) WithBalance(balance int64) *Builder {
	b.balance = balance
	return b
}

// WithCurrency sets the wallet currency.
func (b *Builder) WithCurrency(code string) *Builder {
	b.currency = code
	return b
}

// WithCreatedAt sets the creation timestamp, for hydration.
func (b *Builder) WithCreatedAt(t time.Time) *Builder {
	b.createdAt = t
	return b
}

// WithUpdatedAt sets the last-updated timestamp, for hydration.
func (b *Builder) WithUpdatedAt(t time.Time) *Builder {
	b.updatedAt = t
	return b
}

// Build validates the invariants and returns the Wallet.
func (b *Builder) Build() (*Wallet, error) {
	if b.accountID == "" {
		return nil, ErrWalletNotFound
	}
	if b.balance < 0 {
		return nil, ErrInsufficientFunds
	}
	bal, err := money.NewFromMinor(b.balance, b.currency)
	if err != nil {
		return nil, err
	}
	return &Wallet{
		AccountID: b.accountID,
		Balance:   bal,
		CreatedAt: b.createdAt,
		UpdatedAt: b.updatedAt,
	}, nil
}

// ValidateAmount checks that an operation amount is a positive integer at or
// above the configured minimum. Rejections happen before any state mutation.
func ValidateAmount(amount, minimum int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if amount < minimum {
		return ErrInvalidAmount
	}
	return nil
}
