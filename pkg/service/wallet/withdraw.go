package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/novawallet/novawallet/pkg/domain/wallet"
	"github.com/novawallet/novawallet/pkg/dto"
)

// WithdrawParams carries the caller's payout request.
type WithdrawParams struct {
	Amount         int64
	Key            string
	KeyType        wallet.KeyType
	IdempotencyKey string
}

// WithdrawReceipt reports where a withdrawal ended up. NewBalance reflects
// the balance right after the debit (or after re-credit when the withdrawal
// failed and was compensated).
type WithdrawReceipt struct {
	TransactionID string
	Status        wallet.Status
	NewBalance    int64
	Replayed      bool
}

// Withdraw runs the debit-first payout flow:
//
//	replay check → validate → debit → record → gateway payout → settle,
//	or on gateway failure: compensating credit → failed.
//
// The debit happens before the gateway call so the account can never spend
// the same funds twice while a payout is in flight. If the compensating
// credit itself fails, the record parks in reversal_pending and the reversal
// worker keeps retrying in the background.
func (s *Service) Withdraw(ctx context.Context, accountID string, p WithdrawParams) (*WithdrawReceipt, error) {
	if p.IdempotencyKey != "" {
		rcpt, err := s.replay(ctx, accountID, p.IdempotencyKey)
		if err != nil {
			return nil, err
		}
		if rcpt != nil {
			return rcpt, nil
		}
	}

	if err := wallet.ValidateAmount(p.Amount, s.cfg.MinWithdrawal); err != nil {
		return nil, err
	}
	if err := wallet.ValidateKey(p.Key, p.KeyType); err != nil {
		return nil, err
	}

	newBalance, committed, err := s.ledger.AtomicAdjust(ctx, accountID, -p.Amount)
	if err != nil {
		return nil, fmt.Errorf("withdraw: debit: %w", err)
	}
	if !committed {
		return nil, wallet.ErrInsufficientFunds
	}

	id := wallet.NewID()
	logger := s.logger.With("transaction_id", id, "account_id", accountID, "amount", p.Amount)

	// From here on, the account has been debited. Everything below runs
	// detached from the caller's cancellation: an abandoned request must not
	// strand the debit without a record or a payout.
	dctx := context.WithoutCancel(ctx)

	// The record is born in processing: a single append, so a transient log
	// failure can never strand a debited record short of the status machine.
	if err := s.log.Append(dctx, dto.TransactionCreate{
		ID:                 id,
		AccountID:          accountID,
		Amount:             p.Amount,
		Kind:               wallet.KindWithdrawal,
		Method:             wallet.MethodPix,
		Status:             wallet.StatusProcessing,
		DestinationKey:     p.Key,
		DestinationKeyType: p.KeyType,
		IdempotencyKey:     p.IdempotencyKey,
	}); err != nil {
		logger.Error("withdrawal record append failed, reverting debit", "error", err)
		if cerr := s.creditWithRetry(dctx, accountID, p.Amount); cerr != nil {
			logger.Error("debit revert did not land", "error", cerr)
			return nil, fmt.Errorf("withdraw: append record: %w", errors.Join(err, wallet.ErrCompensationFailed))
		}
		if errors.Is(err, wallet.ErrDuplicateTransaction) && p.IdempotencyKey != "" {
			// A concurrent submission with the same key won the append; its
			// record answers for both requests.
			if rcpt, rerr := s.replay(dctx, accountID, p.IdempotencyKey); rerr == nil && rcpt != nil {
				return rcpt, nil
			}
		}
		return nil, fmt.Errorf("withdraw: append record: %w", err)
	}

	payout, gerr := s.gateway.CreatePayout(dctx, p.Amount, p.Key, p.KeyType)
	if gerr != nil {
		logger.Warn("payout failed at gateway, compensating", "error", gerr)
		return s.compensate(dctx, id, accountID, p.Amount, gerr)
	}

	if err := s.log.Transition(dctx, id, wallet.StatusProcessing, wallet.StatusSettled, dto.TransactionUpdate{
		ExternalRef: &payout.ExternalRef,
	}); err != nil {
		logger.Error("settled transition rejected", "error", err)
	}
	s.bus.Publish(dctx, wallet.TransactionSettled{
		TransactionID: id,
		AccountID:     accountID,
		Amount:        p.Amount,
		Kind:          wallet.KindWithdrawal,
		At:            time.Now(),
	})
	logger.Info("withdrawal settled", "external_ref", payout.ExternalRef, "new_balance", newBalance)

	return &WithdrawReceipt{
		TransactionID: id,
		Status:        wallet.StatusSettled,
		NewBalance:    newBalance,
	}, nil
}

// replay returns the receipt of the prior withdrawal created with this
// idempotency key, or nil when there is none.
func (s *Service) replay(ctx context.Context, accountID, key string) (*WithdrawReceipt, error) {
	prior, err := s.log.GetByIdempotencyKey(ctx, accountID, key)
	if err != nil {
		if errors.Is(err, wallet.ErrTransactionNotFound) {
			return nil, nil
		}
		return nil, err
	}
	balance, err := s.ledger.Balance(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return &WithdrawReceipt{
		TransactionID: prior.ID,
		Status:        prior.Status,
		NewBalance:    balance,
		Replayed:      true,
	}, nil
}

// compensate re-credits a debited withdrawal whose payout failed. The happy
// path lands the credit inline and marks the record failed; if the credit
// itself cannot land, the record parks in reversal_pending for the background
// worker and the caller is told the funds are in reversal.
func (s *Service) compensate(ctx context.Context, id, accountID string, amount int64, gatewayErr error) (*WithdrawReceipt, error) {
	logger := s.logger.With("transaction_id", id, "account_id", accountID, "amount", amount)

	if cerr := s.creditWithRetry(ctx, accountID, amount); cerr != nil {
		logger.Error("compensating credit did not land, parking for reversal", "error", cerr)
		if terr := s.log.Transition(ctx, id,
			wallet.StatusProcessing, wallet.StatusReversalPending, dto.TransactionUpdate{}); terr != nil {
			logger.Error("reversal_pending transition rejected", "error", terr)
		}
		return nil, errors.Join(gatewayErr, wallet.ErrCompensationFailed)
	}

	if terr := s.log.Transition(ctx, id,
		wallet.StatusProcessing, wallet.StatusFailed, dto.TransactionUpdate{}); terr != nil {
		logger.Error("failed transition rejected", "error", terr)
	}
	balance, _ := s.ledger.Balance(ctx, accountID)
	s.bus.Publish(ctx, wallet.WithdrawalFailed{
		TransactionID: id,
		AccountID:     accountID,
		Amount:        amount,
		Reason:        gatewayErr.Error(),
		At:            time.Now(),
	})
	logger.Info("withdrawal compensated", "new_balance", balance)
	return nil, gatewayErr
}
