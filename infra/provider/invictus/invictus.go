// Package invictus is the HTTP client for the Invictus PIX gateway. It maps
// the gateway's wire format onto the pix.Provider contract and its failure
// modes onto the gateway sentinel errors. Every call is bounded by the
// configured timeout; past it the gateway is treated as unavailable.
package invictus

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/novawallet/novawallet/pkg/config"
	"github.com/novawallet/novawallet/pkg/domain/wallet"
	"github.com/novawallet/novawallet/pkg/provider/pix"
)

// Provider implements pix.Provider against the Invictus public API.
type Provider struct {
	cfg        *config.Gateway
	httpClient *http.Client
	logger     *slog.Logger
}

// New returns a gateway client with a timeout-bounded HTTP client.
func New(cfg *config.Gateway, logger *slog.Logger) *Provider {
	return &Provider{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.HTTPTimeout,
		},
		logger: logger,
	}
}

type collectionRequest struct {
	Amount        int64           `json:"amount"`
	PaymentMethod string          `json:"payment_method"`
	Customer      collectionPayer `json:"customer"`
}

type collectionPayer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type collectionResponse struct {
	Hash         string `json:"hash"`
	QRCodeBase64 string `json:"qrcode_base64"`
	PixCopyPaste string `json:"pix_copia_cola"`
}

type payoutRequest struct {
	Amount     int64  `json:"amount"`
	PixKey     string `json:"pix_key"`
	PixKeyType string `json:"pix_key_type"`
}

type payoutResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func (p *Provider) endpoint(path string) string {
	q := url.Values{"api_token": {p.cfg.APIToken}}
	return fmt.Sprintf("%s%s?%s", p.cfg.BaseURL, path, q.Encode())
}

// post sends a JSON request and decodes the response into out, mapping
// transport failures and 5xx to ErrGatewayUnavailable and 4xx to
// ErrGatewayRejected.
func (p *Provider) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("invictus: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint(path), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("invictus: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.logger.Warn("gateway call failed", "path", path, "error", err)
		return fmt.Errorf("%w: %v", pix.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	switch {
	case resp.StatusCode >= 500:
		p.logger.Warn("gateway server error", "path", path, "status", resp.StatusCode)
		return fmt.Errorf("%w: status %d", pix.ErrGatewayUnavailable, resp.StatusCode)
	case resp.StatusCode >= 400:
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		p.logger.Warn("gateway rejected request",
			"path", path, "status", resp.StatusCode, "body", string(raw))
		return fmt.Errorf("%w: status %d", pix.ErrGatewayRejected, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", pix.ErrGatewayUnavailable, err)
	}
	return nil
}

// CreateCollection opens a PIX collection for a deposit.
func (p *Provider) CreateCollection(ctx context.Context, amount int64, payer pix.Payer) (*pix.Collection, error) {
	var resp collectionResponse
	err := p.post(ctx, "/public/v1/transactions", collectionRequest{
		Amount:        amount,
		PaymentMethod: "pix",
		Customer:      collectionPayer{Name: payer.Name, Email: payer.Email},
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Hash == "" {
		return nil, fmt.Errorf("%w: response missing collection hash", pix.ErrGatewayUnavailable)
	}
	return &pix.Collection{
		ExternalRef:  resp.Hash,
		QRCodeBase64: resp.QRCodeBase64,
		CopyPaste:    resp.PixCopyPaste,
		ExpiresAt:    time.Now().Add(p.cfg.CollectionTTL),
	}, nil
}

// CreatePayout asks the gateway to pay out to a PIX key.
func (p *Provider) CreatePayout(ctx context.Context, amount int64, key string, keyType wallet.KeyType) (*pix.Payout, error) {
	var resp payoutResponse
	err := p.post(ctx, "/public/v1/transfers", payoutRequest{
		Amount:     amount,
		PixKey:     key,
		PixKeyType: string(keyType),
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.ID == "" {
		return nil, fmt.Errorf("%w: response missing transfer id", pix.ErrGatewayUnavailable)
	}
	return &pix.Payout{ExternalRef: resp.ID}, nil
}
