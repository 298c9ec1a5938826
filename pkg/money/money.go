// Package money provides a minimal monetary value object for wallet balances
// and transaction amounts. Amounts are always integers in the smallest
// currency unit (centavos for BRL); floating point never enters arithmetic.
package money

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/shopspring/decimal"
)

// Amount is an integer amount in the smallest currency unit.
type Amount = int64

// DefaultCurrency is the currency assumed when none is given.
const DefaultCurrency = "BRL"

var (
	// ErrInvalidCurrencyCode is returned when a currency code is not a valid
	// ISO 4217 three-letter code.
	ErrInvalidCurrencyCode = errors.New("invalid currency code")

	// ErrCurrencyMismatch is returned when two Money values with different
	// currencies are combined.
	ErrCurrencyMismatch = errors.New("currency mismatch")
)

var currencyFormat = regexp.MustCompile(`^[A-Z]{3}$`)

// Money represents a monetary value in a specific currency.
//
// Invariants:
//   - Amount is stored in the smallest currency unit.
//   - Currency code is a valid ISO 4217 code (3 uppercase letters).
type Money struct {
	amount   Amount
	currency string
}

// NewFromMinor creates a Money value from an amount already expressed in the
// smallest currency unit. An empty currency defaults to DefaultCurrency.
func NewFromMinor(amount Amount, currency string) (Money, error) {
	if currency == "" {
		currency = DefaultCurrency
	}
	if !currencyFormat.MatchString(currency) {
		return Money{}, ErrInvalidCurrencyCode
	}
	return Money{amount: amount, currency: currency}, nil
}

// Amount returns the amount in the smallest currency unit.
func (m Money) Amount() Amount { return m.amount }

// Currency returns the ISO 4217 currency code.
func (m Money) Currency() string { return m.currency }

// IsPositive reports whether the amount is strictly greater than zero.
func (m Money) IsPositive() bool { return m.amount > 0 }

// Add returns the sum of two Money values with matching currencies.
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, ErrCurrencyMismatch
	}
	return Money{amount: m.amount + other.amount, currency: m.currency}, nil
}

// Sub returns the difference of two Money values with matching currencies.
func (m Money) Sub(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, ErrCurrencyMismatch
	}
	return Money{amount: m.amount - other.amount, currency: m.currency}, nil
}

// String renders the amount in major units for display, e.g. "150.00 BRL".
// Display is the only place decimals appear; arithmetic stays on integers.
func (m Money) String() string {
	major := decimal.NewFromInt(m.amount).Shift(-2)
	return fmt.Sprintf("%s %s", major.StringFixed(2), m.currency)
}
