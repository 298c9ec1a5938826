package txlog

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/novawallet/novawallet/infra/repository/model"
	"github.com/novawallet/novawallet/pkg/domain/wallet"
	"github.com/novawallet/novawallet/pkg/dto"
	"gorm.io/gorm"
)

// Gorm implements txlog.Log on a relational database. The Transition guard is
// a single conditional UPDATE (`WHERE id = ? AND status = ?`), so two racing
// writers resolve in the database: one affects a row, the other affects none.
type Gorm struct {
	db *gorm.DB
}

// NewGorm returns a gorm-backed transaction log.
func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

func mapCreateToModel(create dto.TransactionCreate) model.Transaction {
	status := create.Status
	if status == "" {
		status = wallet.StatusCreated
	}
	return model.Transaction{
		ID:                 create.ID,
		AccountID:          create.AccountID,
		Amount:             create.Amount,
		Kind:               string(create.Kind),
		Method:             string(create.Method),
		Status:             string(status),
		DestinationKey:     create.DestinationKey,
		DestinationKeyType: string(create.DestinationKeyType),
		IdempotencyKey:     create.IdempotencyKey,
	}
}

func mapModelToRead(row *model.Transaction) *dto.TransactionRead {
	return &dto.TransactionRead{
		ID:                 row.ID,
		AccountID:          row.AccountID,
		Amount:             row.Amount,
		Kind:               wallet.Kind(row.Kind),
		Method:             wallet.Method(row.Method),
		Status:             wallet.Status(row.Status),
		ExternalRef:        row.ExternalRef,
		PixQRCode:          row.PixQRCode,
		PixCopyPaste:       row.PixCopyPaste,
		DestinationKey:     row.DestinationKey,
		DestinationKeyType: wallet.KeyType(row.DestinationKeyType),
		IdempotencyKey:     row.IdempotencyKey,
		ExpiresAt:          row.ExpiresAt,
		CreatedAt:          row.CreatedAt,
		UpdatedAt:          row.UpdatedAt,
	}
}

// Append creates a record, rejecting duplicate ids.
func (g *Gorm) Append(ctx context.Context, create dto.TransactionCreate) error {
	row := mapCreateToModel(create)
	if err := g.db.WithContext(ctx).Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return wallet.ErrDuplicateTransaction
		}
		return fmt.Errorf("txlog: append: %w", err)
	}
	return nil
}

// Transition moves a record from exactly `from` to `to` with one conditional
// UPDATE. Zero affected rows means either the record is unknown or another
// writer got there first.
func (g *Gorm) Transition(
	ctx context.Context,
	id string,
	from, to wallet.Status,
	extra dto.TransactionUpdate,
) error {
	if !from.CanTransitionTo(to) {
		return wallet.ErrInvalidTransition
	}
	updates := map[string]any{
		"status":     string(to),
		"updated_at": time.Now(),
	}
	if extra.ExternalRef != nil {
		updates["external_ref"] = *extra.ExternalRef
	}
	if extra.PixQRCode != nil {
		updates["pix_qr_code"] = *extra.PixQRCode
	}
	if extra.PixCopyPaste != nil {
		updates["pix_copy_paste"] = *extra.PixCopyPaste
	}
	if extra.ExpiresAt != nil {
		updates["expires_at"] = *extra.ExpiresAt
	}

	res := g.db.WithContext(ctx).
		Model(&model.Transaction{}).
		Where("id = ? AND status = ?", id, string(from)).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("txlog: transition: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := g.db.WithContext(ctx).
			Model(&model.Transaction{}).
			Where("id = ?", id).
			Count(&count).Error; err != nil {
			return fmt.Errorf("txlog: transition: %w", err)
		}
		if count == 0 {
			return wallet.ErrTransactionNotFound
		}
		return wallet.ErrInvalidTransition
	}
	return nil
}

// Get returns one record by id.
func (g *Gorm) Get(ctx context.Context, id string) (*dto.TransactionRead, error) {
	var row model.Transaction
	if err := g.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, wallet.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("txlog: get: %w", err)
	}
	return mapModelToRead(&row), nil
}

// GetByIdempotencyKey returns the record previously created with this key.
func (g *Gorm) GetByIdempotencyKey(ctx context.Context, accountID, key string) (*dto.TransactionRead, error) {
	var row model.Transaction
	err := g.db.WithContext(ctx).
		Where("account_id = ? AND idempotency_key = ?", accountID, key).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, wallet.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("txlog: get by idempotency key: %w", err)
	}
	return mapModelToRead(&row), nil
}

// GetByExternalRef returns the record carrying a gateway reference.
func (g *Gorm) GetByExternalRef(ctx context.Context, externalRef string) (*dto.TransactionRead, error) {
	var row model.Transaction
	err := g.db.WithContext(ctx).
		Where("external_ref = ?", externalRef).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, wallet.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("txlog: get by external ref: %w", err)
	}
	return mapModelToRead(&row), nil
}

func (g *Gorm) list(
	ctx context.Context,
	where string,
	arg any,
	order string,
	limit int,
) iter.Seq2[*dto.TransactionRead, error] {
	return func(yield func(*dto.TransactionRead, error) bool) {
		q := g.db.WithContext(ctx).
			Model(&model.Transaction{}).
			Where(where, arg).
			Order(order)
		if limit > 0 {
			q = q.Limit(limit)
		}
		rows, err := q.Rows()
		if err != nil {
			yield(nil, fmt.Errorf("txlog: list: %w", err))
			return
		}
		defer rows.Close() //nolint:errcheck
		for rows.Next() {
			var row model.Transaction
			if err := g.db.ScanRows(rows, &row); err != nil {
				yield(nil, fmt.Errorf("txlog: scan: %w", err))
				return
			}
			if !yield(mapModelToRead(&row), nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(nil, fmt.Errorf("txlog: iterate: %w", err))
		}
	}
}

// ListByAccount yields the account's records newest-first, at most limit.
// Rows stream from the database as the caller consumes them, and each range
// over the sequence re-runs the query.
func (g *Gorm) ListByAccount(ctx context.Context, accountID string, limit int) iter.Seq2[*dto.TransactionRead, error] {
	return g.list(ctx, "account_id = ?", accountID, "created_at DESC", limit)
}

// ListByStatus yields records in the given status, oldest first.
func (g *Gorm) ListByStatus(ctx context.Context, status wallet.Status, limit int) iter.Seq2[*dto.TransactionRead, error] {
	return g.list(ctx, "status = ?", string(status), "created_at ASC", limit)
}
