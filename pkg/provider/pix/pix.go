// Package pix defines the payment gateway contract for PIX collections
// (deposits) and payouts (withdrawals). The gateway is an external, unreliable
// dependency: every call can fail or time out independently of the ledger, and
// implementations must bound each call with a timeout.
package pix

import (
	"context"
	"errors"
	"time"

	"github.com/novawallet/novawallet/pkg/domain/wallet"
)

var (
	// ErrGatewayUnavailable covers timeouts, connection failures, and 5xx
	// responses. For withdrawals it triggers mandatory compensation. A payout
	// that timed out may still have succeeded server-side; callers must treat
	// the outcome as unknown, not as a clean failure.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")

	// ErrGatewayRejected covers 4xx responses: the gateway understood the
	// request and refused it.
	ErrGatewayRejected = errors.New("payment gateway rejected the request")
)

// Payer identifies the customer on a collection request.
type Payer struct {
	Name  string
	Email string
}

// Collection is the gateway's answer to a deposit collection request.
type Collection struct {
	// ExternalRef is the gateway-assigned id ("hash" in the PIX provider's
	// vocabulary) used to correlate the settlement webhook later.
	ExternalRef string
	// QRCodeBase64 is the rendered QR image for the payer.
	QRCodeBase64 string
	// CopyPaste is the "pix copia e cola" payment string.
	CopyPaste string
	// ExpiresAt is when the collection lapses unpaid.
	ExpiresAt time.Time
}

// Payout is the gateway's answer to a payout request. There is no synchronous
// confirmation of completion; only the reference comes back.
type Payout struct {
	ExternalRef string
}

// Provider is the client-side contract for the external PIX gateway.
type Provider interface {
	// CreateCollection asks the gateway to open a PIX collection for amount
	// minor units. Fails with ErrGatewayUnavailable or ErrGatewayRejected.
	CreateCollection(ctx context.Context, amount int64, payer Payer) (*Collection, error)

	// CreatePayout asks the gateway to pay amount minor units to the given
	// destination key. Same failure modes as CreateCollection, plus the
	// fundamental ambiguity that a timed-out payout may have gone through.
	CreatePayout(ctx context.Context, amount int64, key string, keyType wallet.KeyType) (*Payout, error)
}
