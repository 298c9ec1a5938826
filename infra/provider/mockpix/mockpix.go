// Package mockpix is a scriptable in-process pix.Provider for tests and local
// runs. Failures are injected per call through function hooks; unset hooks
// succeed with deterministic fake artifacts.
package mockpix

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/novawallet/novawallet/pkg/domain/wallet"
	"github.com/novawallet/novawallet/pkg/provider/pix"
)

// Provider implements pix.Provider in memory.
type Provider struct {
	// CollectionFunc, when set, fully replaces CreateCollection.
	CollectionFunc func(ctx context.Context, amount int64, payer pix.Payer) (*pix.Collection, error)
	// PayoutFunc, when set, fully replaces CreatePayout.
	PayoutFunc func(ctx context.Context, amount int64, key string, keyType wallet.KeyType) (*pix.Payout, error)

	mu      sync.Mutex
	seq     atomic.Int64
	payouts []PayoutCall
}

// PayoutCall records one CreatePayout invocation.
type PayoutCall struct {
	Amount  int64
	Key     string
	KeyType wallet.KeyType
}

// New returns a mock provider that succeeds by default.
func New() *Provider { return &Provider{} }

// CreateCollection returns a fake collection or defers to CollectionFunc.
func (p *Provider) CreateCollection(ctx context.Context, amount int64, payer pix.Payer) (*pix.Collection, error) {
	if p.CollectionFunc != nil {
		return p.CollectionFunc(ctx, amount, payer)
	}
	n := p.seq.Add(1)
	return &pix.Collection{
		ExternalRef:  fmt.Sprintf("mock_hash_%d", n),
		QRCodeBase64: "bW9jay1xcmNvZGU=",
		CopyPaste:    fmt.Sprintf("00020126mockpix%d", n),
		ExpiresAt:    time.Now().Add(time.Hour),
	}, nil
}

// CreatePayout records the call and returns a fake payout or defers to
// PayoutFunc.
func (p *Provider) CreatePayout(ctx context.Context, amount int64, key string, keyType wallet.KeyType) (*pix.Payout, error) {
	p.mu.Lock()
	p.payouts = append(p.payouts, PayoutCall{Amount: amount, Key: key, KeyType: keyType})
	p.mu.Unlock()
	if p.PayoutFunc != nil {
		return p.PayoutFunc(ctx, amount, key, keyType)
	}
	return &pix.Payout{ExternalRef: fmt.Sprintf("mock_transfer_%d", p.seq.Add(1))}, nil
}

// Payouts returns a copy of the recorded payout calls.
func (p *Provider) Payouts() []PayoutCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]PayoutCall, len(p.payouts))
	copy(out, p.payouts)
	return out
}
