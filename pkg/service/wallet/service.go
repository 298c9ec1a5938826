// Package wallet implements the transaction orchestrator: the state machine
// that coordinates the ledger store, the transaction log, and the payment
// gateway so that money is never created, destroyed, or double-spent, even
// when the gateway fails mid-flow.
package wallet

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/novawallet/novawallet/pkg/cache"
	"github.com/novawallet/novawallet/pkg/config"
	"github.com/novawallet/novawallet/pkg/domain/wallet"
	"github.com/novawallet/novawallet/pkg/dto"
	"github.com/novawallet/novawallet/pkg/eventbus"
	"github.com/novawallet/novawallet/pkg/ledger"
	"github.com/novawallet/novawallet/pkg/provider/pix"
	"github.com/novawallet/novawallet/pkg/txlog"
)

// Service orchestrates deposits and withdrawals. It exclusively owns the
// decision of when the balance mutates and when log entries are written; the
// ledger store and transaction log stay free of business logic.
type Service struct {
	ledger  ledger.Store
	log     txlog.Log
	gateway pix.Provider
	index   cache.Cache
	bus     eventbus.Bus
	logger  *slog.Logger
	cfg     *config.Wallet
	revCfg  *config.Reversal
}

// New wires the orchestrator.
func New(
	store ledger.Store,
	log txlog.Log,
	gateway pix.Provider,
	index cache.Cache,
	bus eventbus.Bus,
	cfg *config.Wallet,
	revCfg *config.Reversal,
	logger *slog.Logger,
) *Service {
	return &Service{
		ledger:  store,
		log:     log,
		gateway: gateway,
		index:   index,
		bus:     bus,
		logger:  logger,
		cfg:     cfg,
		revCfg:  revCfg,
	}
}

// DepositReceipt is returned to the caller after a collection is created. The
// balance is NOT credited yet; that happens on confirmed settlement.
type DepositReceipt struct {
	TransactionID string
	ExternalRef   string
	Status        wallet.Status
	QRCodeBase64  string
	CopyPaste     string
	ExpiresAt     time.Time
}

// Deposit validates the amount, records the attempt, and asks the gateway to
// open a PIX collection. No balance change happens here: deposits credit only
// on confirmed settlement (ConfirmSettlement), so a gateway failure needs no
// compensation.
func (s *Service) Deposit(ctx context.Context, accountID string, amount int64, payer pix.Payer) (*DepositReceipt, error) {
	if err := wallet.ValidateAmount(amount, s.cfg.MinDeposit); err != nil {
		return nil, err
	}

	id := wallet.NewID()
	logger := s.logger.With("transaction_id", id, "account_id", accountID, "amount", amount)

	if err := s.log.Append(ctx, dto.TransactionCreate{
		ID:        id,
		AccountID: accountID,
		Amount:    amount,
		Kind:      wallet.KindDeposit,
		Method:    wallet.MethodPix,
	}); err != nil {
		return nil, fmt.Errorf("deposit: append record: %w", err)
	}

	collection, err := s.gateway.CreateCollection(ctx, amount, payer)
	if err != nil {
		logger.Warn("deposit collection failed at gateway", "error", err)
		// Log writes outlive a canceled caller so the record always reaches a
		// terminal state.
		if terr := s.log.Transition(context.WithoutCancel(ctx), id,
			wallet.StatusCreated, wallet.StatusFailed, dto.TransactionUpdate{}); terr != nil {
			logger.Error("deposit failure transition rejected", "error", terr)
		}
		return nil, err
	}

	dctx := context.WithoutCancel(ctx)
	if err := s.log.Transition(dctx, id, wallet.StatusCreated, wallet.StatusPending, dto.TransactionUpdate{
		ExternalRef:  &collection.ExternalRef,
		PixQRCode:    &collection.QRCodeBase64,
		PixCopyPaste: &collection.CopyPaste,
		ExpiresAt:    &collection.ExpiresAt,
	}); err != nil {
		logger.Error("deposit pending transition rejected", "error", err)
		return nil, fmt.Errorf("deposit: transition: %w", err)
	}

	if err := s.index.Set(dctx, collection.ExternalRef, id, time.Until(collection.ExpiresAt)); err != nil {
		// The webhook falls back to the log on a cache miss.
		logger.Warn("collection index write failed", "error", err)
	}

	s.bus.Publish(dctx, wallet.DepositInitiated{
		TransactionID: id,
		AccountID:     accountID,
		Amount:        amount,
		ExternalRef:   collection.ExternalRef,
		At:            time.Now(),
	})
	logger.Info("deposit collection created", "external_ref", collection.ExternalRef)

	return &DepositReceipt{
		TransactionID: id,
		ExternalRef:   collection.ExternalRef,
		Status:        wallet.StatusPending,
		QRCodeBase64:  collection.QRCodeBase64,
		CopyPaste:     collection.CopyPaste,
		ExpiresAt:     collection.ExpiresAt,
	}, nil
}

// ConfirmSettlement credits a pending deposit and marks it settled. The
// pending→settling transition acts as the claim: a duplicate webhook delivery
// loses the transition race and never reaches the credit, so the balance
// cannot be credited twice for one collection. The record only becomes
// settled after the credit lands; if it does not land inline, the record
// stays in settling and the reversal worker keeps retrying the credit.
func (s *Service) ConfirmSettlement(ctx context.Context, transactionID string) error {
	rec, err := s.log.Get(ctx, transactionID)
	if err != nil {
		return err
	}
	if rec.Kind != wallet.KindDeposit {
		return fmt.Errorf("confirm settlement: %w: %s is a %s", wallet.ErrInvalidTransition, transactionID, rec.Kind)
	}

	dctx := context.WithoutCancel(ctx)
	if err := s.log.Transition(dctx, transactionID,
		wallet.StatusPending, wallet.StatusSettling, dto.TransactionUpdate{}); err != nil {
		return err
	}

	// The claim succeeded, so this credit must land; it is retried with the
	// same persistence as a withdrawal compensation.
	if err := s.creditWithRetry(dctx, rec.AccountID, rec.Amount); err != nil {
		s.logger.Error("settlement credit did not land, leaving in settling for the worker",
			"transaction_id", transactionID, "account_id", rec.AccountID, "error", err)
		return fmt.Errorf("confirm settlement: %w", wallet.ErrCompensationFailed)
	}

	if err := s.log.Transition(dctx, transactionID,
		wallet.StatusSettling, wallet.StatusSettled, dto.TransactionUpdate{}); err != nil {
		// Lost the close-out to the worker; the credit above is the only one
		// because the settling claim admits exactly one crediting party.
		s.logger.Warn("settled transition rejected after credit",
			"transaction_id", transactionID, "error", err)
		return nil
	}

	s.bus.Publish(dctx, wallet.TransactionSettled{
		TransactionID: transactionID,
		AccountID:     rec.AccountID,
		Amount:        rec.Amount,
		Kind:          wallet.KindDeposit,
		At:            time.Now(),
	})
	s.logger.Info("deposit settled",
		"transaction_id", transactionID, "account_id", rec.AccountID, "amount", rec.Amount)
	return nil
}

// ExpireCollection marks an unpaid pending deposit expired.
func (s *Service) ExpireCollection(ctx context.Context, transactionID string) error {
	return s.log.Transition(ctx, transactionID,
		wallet.StatusPending, wallet.StatusExpired, dto.TransactionUpdate{})
}

// CancelCollection marks a pending deposit canceled at the gateway.
func (s *Service) CancelCollection(ctx context.Context, transactionID string) error {
	return s.log.Transition(ctx, transactionID,
		wallet.StatusPending, wallet.StatusCanceled, dto.TransactionUpdate{})
}

// ResolveExternalRef maps a gateway reference to the transaction id it
// belongs to, consulting the collection index first and the log on a miss.
func (s *Service) ResolveExternalRef(ctx context.Context, externalRef string) (string, error) {
	if id, ok, err := s.index.Get(ctx, externalRef); err == nil && ok {
		return id, nil
	}
	rec, err := s.log.GetByExternalRef(ctx, externalRef)
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

// ListTransactions returns the account's records newest-first. limit <= 0
// falls back to the configured default.
func (s *Service) ListTransactions(ctx context.Context, accountID string, limit int) ([]*dto.TransactionRead, error) {
	if limit <= 0 || limit > s.cfg.ListLimit {
		limit = s.cfg.ListLimit
	}
	out := make([]*dto.TransactionRead, 0, limit)
	for rec, err := range s.log.ListByAccount(ctx, accountID, limit) {
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// GetTransaction returns one record by id.
func (s *Service) GetTransaction(ctx context.Context, id string) (*dto.TransactionRead, error) {
	return s.log.Get(ctx, id)
}

// Balance returns the account's current balance in minor units.
func (s *Service) Balance(ctx context.Context, accountID string) (int64, error) {
	return s.ledger.Balance(ctx, accountID)
}

// Wallet hydrates the account's balance record for read surfaces.
func (s *Service) Wallet(ctx context.Context, accountID string) (*wallet.Wallet, error) {
	balance, err := s.ledger.Balance(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return wallet.New().WithAccountID(accountID).WithBalance(balance).Build()
}

// CreateWallet registers a zero-balance record for a new account. Called by
// the registration collaborator; a no-op for existing accounts.
func (s *Service) CreateWallet(ctx context.Context, accountID string) error {
	return s.ledger.CreateWallet(ctx, accountID)
}

// creditWithRetry applies a positive adjustment, retrying inline up to the
// configured immediate attempts. Credits cannot fail the insufficient-funds
// guard, so committed=false never happens here; only infra errors retry.
func (s *Service) creditWithRetry(ctx context.Context, accountID string, amount int64) error {
	var lastErr error
	backoff := 50 * time.Millisecond
	for attempt := 0; attempt < s.revCfg.ImmediateRetries; attempt++ {
		_, committed, err := s.ledger.AtomicAdjust(ctx, accountID, amount)
		if err == nil && committed {
			return nil
		}
		if err == nil {
			err = fmt.Errorf("credit of %d not committed", amount)
		}
		lastErr = err
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return lastErr
}
