// Package ledger provides the balance store implementations: an in-memory
// store for tests and local runs, and a gorm/postgres store with optimistic
// compare-and-swap for production.
package ledger

import (
	"context"
	"sync"

	"github.com/novawallet/novawallet/pkg/domain/wallet"
)

type memoryAccount struct {
	mu      sync.Mutex
	balance int64
}

// Memory is an in-process ledger.Store. Each account carries its own mutex,
// so adjustments to one account serialize while different accounts proceed in
// parallel — the same isolation shape the gorm store gets from per-row CAS.
type Memory struct {
	mu       sync.RWMutex
	accounts map[string]*memoryAccount
}

// NewMemory returns an empty in-memory ledger store.
func NewMemory() *Memory {
	return &Memory{accounts: make(map[string]*memoryAccount)}
}

// CreateWallet registers a zero-balance account. No-op if it already exists.
func (m *Memory) CreateWallet(_ context.Context, accountID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[accountID]; !ok {
		m.accounts[accountID] = &memoryAccount{}
	}
	return nil
}

func (m *Memory) account(accountID string) (*memoryAccount, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	acc, ok := m.accounts[accountID]
	return acc, ok
}

// AtomicAdjust applies delta under the account's mutex. The insufficient-funds
// guard rejects any negative delta that would take the balance below zero
// without applying it.
func (m *Memory) AtomicAdjust(_ context.Context, accountID string, delta int64) (int64, bool, error) {
	acc, ok := m.account(accountID)
	if !ok {
		return 0, false, wallet.ErrWalletNotFound
	}
	acc.mu.Lock()
	defer acc.mu.Unlock()
	next := acc.balance + delta
	if delta < 0 && next < 0 {
		return acc.balance, false, nil
	}
	acc.balance = next
	return next, true, nil
}

// Balance reads the current balance.
func (m *Memory) Balance(_ context.Context, accountID string) (int64, error) {
	acc, ok := m.account(accountID)
	if !ok {
		return 0, wallet.ErrWalletNotFound
	}
	acc.mu.Lock()
	defer acc.mu.Unlock()
	return acc.balance, nil
}
