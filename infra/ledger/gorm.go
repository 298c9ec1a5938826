package ledger

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"log/slog"

	"github.com/novawallet/novawallet/infra/repository/model"
	"github.com/novawallet/novawallet/pkg/domain/wallet"
	"gorm.io/gorm"
)

// casRetries bounds the optimistic retry loop. Contention on a single account
// is short (the write is one conditional UPDATE, never a network call), so a
// handful of attempts is enough; exhausting them signals real trouble.
const casRetries = 8

// ErrContention is returned when the CAS loop exhausts its retries.
var ErrContention = errors.New("ledger: too much contention on account")

// Gorm implements ledger.Store on a relational database through optimistic
// concurrency: read the row, compute the new balance, and commit with a
// conditional UPDATE keyed on the version read. A concurrent writer makes the
// UPDATE match zero rows, and the loop retries from a fresh read. No lock or
// transaction is ever held across the retry boundary, let alone a gateway call.
type Gorm struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewGorm returns a gorm-backed ledger store.
func NewGorm(db *gorm.DB, logger *slog.Logger) *Gorm {
	return &Gorm{db: db, logger: logger}
}

// CreateWallet inserts a zero-balance row, ignoring the insert if one exists.
func (g *Gorm) CreateWallet(ctx context.Context, accountID string) error {
	row := model.Wallet{AccountID: accountID}
	err := g.db.WithContext(ctx).Create(&row).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil
	}
	return err
}

// AtomicAdjust applies delta with the read-compute-conditional-write loop.
func (g *Gorm) AtomicAdjust(ctx context.Context, accountID string, delta int64) (int64, bool, error) {
	for attempt := 0; attempt < casRetries; attempt++ {
		var row model.Wallet
		err := g.db.WithContext(ctx).First(&row, "account_id = ?", accountID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, false, wallet.ErrWalletNotFound
			}
			return 0, false, fmt.Errorf("ledger: read balance: %w", err)
		}

		next := row.Balance + delta
		if delta < 0 && next < 0 {
			return row.Balance, false, nil
		}

		res := g.db.WithContext(ctx).
			Model(&model.Wallet{}).
			Where("account_id = ? AND version = ?", accountID, row.Version).
			Updates(map[string]any{
				"balance":    next,
				"version":    row.Version + 1,
				"updated_at": time.Now(),
			})
		if res.Error != nil {
			return 0, false, fmt.Errorf("ledger: conditional write: %w", res.Error)
		}
		if res.RowsAffected == 1 {
			return next, true, nil
		}

		// Lost the race; back off briefly with jitter and re-read.
		g.logger.Debug("ledger CAS conflict, retrying",
			"account_id", accountID, "attempt", attempt+1)
		select {
		case <-ctx.Done():
			return 0, false, ctx.Err()
		case <-time.After(time.Duration(rand.IntN(1<<uint(attempt))+1) * time.Millisecond):
		}
	}
	return 0, false, fmt.Errorf("%w: %s", ErrContention, accountID)
}

// Balance reads the current balance without mutating it.
func (g *Gorm) Balance(ctx context.Context, accountID string) (int64, error) {
	var row model.Wallet
	err := g.db.WithContext(ctx).First(&row, "account_id = ?", accountID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, wallet.ErrWalletNotFound
		}
		return 0, fmt.Errorf("ledger: read balance: %w", err)
	}
	return row.Balance, nil
}
