package txlog

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novawallet/novawallet/pkg/domain/wallet"
	"github.com/novawallet/novawallet/pkg/dto"
)

func appendWithdrawal(t *testing.T, log *Memory, id, accountID string, amount int64) {
	t.Helper()
	require.NoError(t, log.Append(context.Background(), dto.TransactionCreate{
		ID:        id,
		AccountID: accountID,
		Amount:    amount,
		Kind:      wallet.KindWithdrawal,
		Method:    wallet.MethodPix,
	}))
}

func TestMemory_AppendRejectsDuplicateID(t *testing.T) {
	t.Parallel()
	log := NewMemory()
	appendWithdrawal(t, log, "tx_1", "acc_1", 100)

	err := log.Append(context.Background(), dto.TransactionCreate{
		ID: "tx_1", AccountID: "acc_1", Amount: 100,
		Kind: wallet.KindWithdrawal, Method: wallet.MethodPix,
	})
	assert.ErrorIs(t, err, wallet.ErrDuplicateTransaction)
}

func TestMemory_TransitionGuards(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	log := NewMemory()
	appendWithdrawal(t, log, "tx_1", "acc_1", 100)

	// Legal step forward.
	require.NoError(t, log.Transition(ctx, "tx_1",
		wallet.StatusCreated, wallet.StatusProcessing, dto.TransactionUpdate{}))

	// Stale prior status: the record already moved on.
	err := log.Transition(ctx, "tx_1",
		wallet.StatusCreated, wallet.StatusProcessing, dto.TransactionUpdate{})
	assert.ErrorIs(t, err, wallet.ErrInvalidTransition)

	// Jump not in the status machine.
	err = log.Transition(ctx, "tx_1",
		wallet.StatusProcessing, wallet.StatusPending, dto.TransactionUpdate{})
	assert.ErrorIs(t, err, wallet.ErrInvalidTransition)

	// Unknown record.
	err = log.Transition(ctx, "tx_missing",
		wallet.StatusCreated, wallet.StatusProcessing, dto.TransactionUpdate{})
	assert.ErrorIs(t, err, wallet.ErrTransactionNotFound)

	// The failed guard left the record untouched.
	rec, err := log.Get(ctx, "tx_1")
	require.NoError(t, err)
	assert.Equal(t, wallet.StatusProcessing, rec.Status)
}

func TestMemory_TransitionMergesArtifacts(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	log := NewMemory()
	require.NoError(t, log.Append(ctx, dto.TransactionCreate{
		ID: "tx_dep", AccountID: "acc_1", Amount: 500,
		Kind: wallet.KindDeposit, Method: wallet.MethodPix,
	}))

	ref := "hash_abc"
	qr := "cXJjb2Rl"
	copyPaste := "00020126pix"
	require.NoError(t, log.Transition(ctx, "tx_dep",
		wallet.StatusCreated, wallet.StatusPending, dto.TransactionUpdate{
			ExternalRef:  &ref,
			PixQRCode:    &qr,
			PixCopyPaste: &copyPaste,
		}))

	rec, err := log.Get(ctx, "tx_dep")
	require.NoError(t, err)
	assert.Equal(t, ref, rec.ExternalRef)
	assert.Equal(t, qr, rec.PixQRCode)
	assert.Equal(t, copyPaste, rec.PixCopyPaste)

	byRef, err := log.GetByExternalRef(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, "tx_dep", byRef.ID)
}

func TestMemory_AppendRejectsReusedIdempotencyKey(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	log := NewMemory()
	require.NoError(t, log.Append(ctx, dto.TransactionCreate{
		ID: "tx_1", AccountID: "acc_1", Amount: 100,
		Kind: wallet.KindWithdrawal, Method: wallet.MethodPix,
		IdempotencyKey: "key-1",
	}))

	// Same account and key under a fresh id: the uniqueness guard, not the
	// id check, must reject it.
	err := log.Append(ctx, dto.TransactionCreate{
		ID: "tx_2", AccountID: "acc_1", Amount: 100,
		Kind: wallet.KindWithdrawal, Method: wallet.MethodPix,
		IdempotencyKey: "key-1",
	})
	assert.ErrorIs(t, err, wallet.ErrDuplicateTransaction)

	// The key is scoped to the account.
	require.NoError(t, log.Append(ctx, dto.TransactionCreate{
		ID: "tx_3", AccountID: "acc_2", Amount: 100,
		Kind: wallet.KindWithdrawal, Method: wallet.MethodPix,
		IdempotencyKey: "key-1",
	}))

	// Empty keys mean the caller opted out and never collide.
	appendWithdrawal(t, log, "tx_4", "acc_1", 100)
	appendWithdrawal(t, log, "tx_5", "acc_1", 100)
}

func TestMemory_GetByIdempotencyKeyScopedToAccount(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	log := NewMemory()
	require.NoError(t, log.Append(ctx, dto.TransactionCreate{
		ID: "tx_1", AccountID: "acc_1", Amount: 100,
		Kind: wallet.KindWithdrawal, Method: wallet.MethodPix,
		IdempotencyKey: "key-1",
	}))

	rec, err := log.GetByIdempotencyKey(ctx, "acc_1", "key-1")
	require.NoError(t, err)
	assert.Equal(t, "tx_1", rec.ID)

	// Another account's key must not match.
	_, err = log.GetByIdempotencyKey(ctx, "acc_2", "key-1")
	assert.ErrorIs(t, err, wallet.ErrTransactionNotFound)
}

func TestMemory_ListByAccountNewestFirstAndLimited(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	log := NewMemory()
	for i := 0; i < 5; i++ {
		appendWithdrawal(t, log, fmt.Sprintf("tx_%d", i), "acc_1", int64(100+i))
	}
	appendWithdrawal(t, log, "tx_other", "acc_2", 999)

	var got []string
	for rec, err := range log.ListByAccount(ctx, "acc_1", 3) {
		require.NoError(t, err)
		got = append(got, rec.ID)
	}
	assert.Equal(t, []string{"tx_4", "tx_3", "tx_2"}, got)
}

func TestMemory_ListIsRestartable(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	log := NewMemory()
	for i := 0; i < 3; i++ {
		appendWithdrawal(t, log, fmt.Sprintf("tx_%d", i), "acc_1", 100)
	}

	seq := log.ListByAccount(ctx, "acc_1", 0)

	// Abandon the first pass midway.
	var first []string
	for rec, err := range seq {
		require.NoError(t, err)
		first = append(first, rec.ID)
		break
	}
	require.Len(t, first, 1)

	// A second range restarts from the top.
	var second []string
	for rec, err := range seq {
		require.NoError(t, err)
		second = append(second, rec.ID)
	}
	assert.Len(t, second, 3)
	assert.Equal(t, first[0], second[0])
}

func TestMemory_ListByStatusOldestFirst(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	log := NewMemory()
	for i := 0; i < 3; i++ {
		id := fmt.Sprintf("tx_%d", i)
		appendWithdrawal(t, log, id, "acc_1", 100)
		require.NoError(t, log.Transition(ctx, id,
			wallet.StatusCreated, wallet.StatusProcessing, dto.TransactionUpdate{}))
		require.NoError(t, log.Transition(ctx, id,
			wallet.StatusProcessing, wallet.StatusReversalPending, dto.TransactionUpdate{}))
	}

	var got []string
	for rec, err := range log.ListByStatus(ctx, wallet.StatusReversalPending, 0) {
		require.NoError(t, err)
		got = append(got, rec.ID)
	}
	assert.Equal(t, []string{"tx_0", "tx_1", "tx_2"}, got)

	var none int
	for _, err := range log.ListByStatus(ctx, wallet.StatusSettled, 0) {
		require.NoError(t, err)
		none++
	}
	assert.Zero(t, none)
}
