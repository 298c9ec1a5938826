package txlog

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/novawallet/novawallet/pkg/domain/wallet"
	"github.com/novawallet/novawallet/pkg/dto"
)

func newMockLog(t *testing.T) (*Gorm, sqlmock.Sqlmock) {
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
	return NewGorm(db), mock
}

func TestGorm_Transition_ConditionalUpdateWins(t *testing.T) {
	log, mock := newMockLog(t)

	mock.ExpectExec(`UPDATE "transactions" SET`).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "tx_1", "processing").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := log.Transition(context.Background(), "tx_1",
		wallet.StatusProcessing, wallet.StatusSettled, dto.TransactionUpdate{})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGorm_Transition_LostRaceIsInvalidTransition(t *testing.T) {
	log, mock := newMockLog(t)

	// Zero rows affected, but the record exists: a competing writer moved it.
	mock.ExpectExec(`UPDATE "transactions" SET`).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "tx_1", "processing").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "transactions" WHERE id = \$1`).
		WithArgs("tx_1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	err := log.Transition(context.Background(), "tx_1",
		wallet.StatusProcessing, wallet.StatusSettled, dto.TransactionUpdate{})
	assert.ErrorIs(t, err, wallet.ErrInvalidTransition)
}

func TestGorm_Transition_MissingRecord(t *testing.T) {
	log, mock := newMockLog(t)

	mock.ExpectExec(`UPDATE "transactions" SET`).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "tx_missing", "processing").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "transactions" WHERE id = \$1`).
		WithArgs("tx_missing").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	err := log.Transition(context.Background(), "tx_missing",
		wallet.StatusProcessing, wallet.StatusSettled, dto.TransactionUpdate{})
	assert.ErrorIs(t, err, wallet.ErrTransactionNotFound)
}

func TestGorm_Transition_IllegalJumpSkipsDatabase(t *testing.T) {
	log, mock := newMockLog(t)

	err := log.Transition(context.Background(), "tx_1",
		wallet.StatusSettled, wallet.StatusCreated, dto.TransactionUpdate{})
	assert.ErrorIs(t, err, wallet.ErrInvalidTransition)
	assert.NoError(t, mock.ExpectationsWereMet(), "no SQL may run")
}
