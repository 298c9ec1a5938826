package ledger

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/novawallet/novawallet/pkg/domain/wallet"
)

func newMockStore(t *testing.T) (*Gorm, sqlmock.Sqlmock) {
	t.Helper()
	mockDb, mock, err := sqlmock.New()
	require.NoError(t, err)
	dialector := postgres.New(postgres.Config{
		Conn:       mockDb,
		DriverName: "postgres",
	})
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)
	return NewGorm(db, slog.New(slog.NewTextHandler(io.Discard, nil))), mock
}

func walletRow(balance, version int64) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"account_id", "balance", "version", "created_at", "updated_at"}).
		AddRow("acc_1", balance, version, now, now)
}

func TestGorm_AtomicAdjust_CommitsOnFirstTry(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT \* FROM "wallets" WHERE account_id = \$1`).
		WithArgs("acc_1", 1).
		WillReturnRows(walletRow(1000, 4))
	mock.ExpectExec(`UPDATE "wallets" SET`).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), "acc_1", int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	balance, committed, err := store.AtomicAdjust(context.Background(), "acc_1", -300)
	require.NoError(t, err)
	assert.True(t, committed)
	assert.EqualValues(t, 700, balance)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGorm_AtomicAdjust_RetriesAfterVersionConflict(t *testing.T) {
	store, mock := newMockStore(t)

	// First round: the conditional write misses because another writer bumped
	// the version between our read and our update.
	mock.ExpectQuery(`SELECT \* FROM "wallets" WHERE account_id = \$1`).
		WithArgs("acc_1", 1).
		WillReturnRows(walletRow(1000, 4))
	mock.ExpectExec(`UPDATE "wallets" SET`).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), "acc_1", int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	// Second round: fresh read sees the new version and the write lands.
	mock.ExpectQuery(`SELECT \* FROM "wallets" WHERE account_id = \$1`).
		WithArgs("acc_1", 1).
		WillReturnRows(walletRow(700, 5))
	mock.ExpectExec(`UPDATE "wallets" SET`).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), "acc_1", int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	balance, committed, err := store.AtomicAdjust(context.Background(), "acc_1", -300)
	require.NoError(t, err)
	assert.True(t, committed)
	assert.EqualValues(t, 400, balance)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGorm_AtomicAdjust_InsufficientFundsSkipsWrite(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT \* FROM "wallets" WHERE account_id = \$1`).
		WithArgs("acc_1", 1).
		WillReturnRows(walletRow(200, 1))

	balance, committed, err := store.AtomicAdjust(context.Background(), "acc_1", -500)
	require.NoError(t, err)
	assert.False(t, committed)
	assert.EqualValues(t, 200, balance)
	assert.NoError(t, mock.ExpectationsWereMet(), "no UPDATE may run")
}

func TestGorm_AtomicAdjust_UnknownAccount(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT \* FROM "wallets" WHERE account_id = \$1`).
		WithArgs("missing", 1).
		WillReturnRows(sqlmock.NewRows([]string{"account_id", "balance", "version", "created_at", "updated_at"}))

	_, _, err := store.AtomicAdjust(context.Background(), "missing", 100)
	assert.ErrorIs(t, err, wallet.ErrWalletNotFound)
}

func TestGorm_Balance(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT \* FROM "wallets" WHERE account_id = \$1`).
		WithArgs("acc_1", 1).
		WillReturnRows(walletRow(4200, 9))

	balance, err := store.Balance(context.Background(), "acc_1")
	require.NoError(t, err)
	assert.EqualValues(t, 4200, balance)
}
