package wallet_test

import (
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/novawallet/novawallet/pkg/domain/wallet"
	"github.com/stretchr/testify/assert"
)

// TestMain runs before any tests and applies globally for all tests in the package.
func TestMain(m *testing.M) {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	log.SetOutput(io.Discard)

	os.Exit(m.Run())
}

func TestStatusTerminal(t *testing.T) {
	t.Parallel()

	terminal := []wallet.Status{
		wallet.StatusSettled, wallet.StatusFailed, wallet.StatusExpired, wallet.StatusCanceled,
	}
	for _, s := range terminal {
		assert.True(t, s.Terminal(), "%s should be terminal", s)
	}

	open := []wallet.Status{
		wallet.StatusCreated, wallet.StatusPending, wallet.StatusSettling,
		wallet.StatusProcessing, wallet.StatusReversalPending,
	}
	for _, s := range open {
		assert.False(t, s.Terminal(), "%s should not be terminal", s)
	}
}

func TestStatusTransitions(t *testing.T) {
	t.Parallel()

	cases := []struct {
		from, to wallet.Status
		ok       bool
	}{
		{wallet.StatusCreated, wallet.StatusPending, true},
		{wallet.StatusCreated, wallet.StatusProcessing, true},
		{wallet.StatusCreated, wallet.StatusFailed, true},
		{wallet.StatusPending, wallet.StatusSettling, true},
		{wallet.StatusPending, wallet.StatusExpired, true},
		{wallet.StatusSettling, wallet.StatusSettled, true},
		{wallet.StatusProcessing, wallet.StatusSettled, true},
		{wallet.StatusProcessing, wallet.StatusFailed, true},
		{wallet.StatusProcessing, wallet.StatusReversalPending, true},
		{wallet.StatusReversalPending, wallet.StatusFailed, true},

		// A deposit may not skip the credit step.
		{wallet.StatusPending, wallet.StatusSettled, false},

		// Terminal statuses never move again.
		{wallet.StatusSettled, wallet.StatusFailed, false},
		{wallet.StatusFailed, wallet.StatusSettled, false},
		{wallet.StatusFailed, wallet.StatusFailed, false},
		{wallet.StatusExpired, wallet.StatusPending, false},

		// Backwards moves are rejected.
		{wallet.StatusPending, wallet.StatusCreated, false},
		{wallet.StatusProcessing, wallet.StatusCreated, false},
		{wallet.StatusReversalPending, wallet.StatusProcessing, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestNewID(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)
	for range 1000 {
		id := wallet.NewID()
		assert.True(t, strings.HasPrefix(id, "tx_"), "id %q should have tx_ prefix", id)
		assert.False(t, seen[id], "id %q generated twice", id)
		seen[id] = true
	}
}

func TestValidateAmount(t *testing.T) {
	t.Parallel()

	assert.NoError(t, wallet.ValidateAmount(100, 100))
	assert.NoError(t, wallet.ValidateAmount(5000, 100))
	assert.ErrorIs(t, wallet.ValidateAmount(0, 100), wallet.ErrInvalidAmount)
	assert.ErrorIs(t, wallet.ValidateAmount(-500, 100), wallet.ErrInvalidAmount)
	assert.ErrorIs(t, wallet.ValidateAmount(99, 100), wallet.ErrInvalidAmount)
}

func TestValidateKey(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		key     string
		keyType wallet.KeyType
		wantErr bool
	}{
		{"valid cpf", "12345678901", wallet.KeyTypeCPF, false},
		{"cpf too short", "1234567890", wallet.KeyTypeCPF, true},
		{"cpf with letters", "1234567890a", wallet.KeyTypeCPF, true},
		{"valid cnpj", "12345678000195", wallet.KeyTypeCNPJ, false},
		{"cnpj wrong length", "123456780001", wallet.KeyTypeCNPJ, true},
		{"valid email", "ana@example.com", wallet.KeyTypeEmail, false},
		{"email without domain", "ana@", wallet.KeyTypeEmail, true},
		{"valid phone", "+5511987654321", wallet.KeyTypePhone, false},
		{"phone too short", "+55119", wallet.KeyTypePhone, true},
		{"valid random", "9b3f1c2a8d4e5f60718293a4b5c6d7e8", wallet.KeyTypeRandom, false},
		{"random too short", "9b3f1c2a", wallet.KeyTypeRandom, true},
		{"below minimum length", "ab", wallet.KeyTypeEmail, true},
		{"unknown type", "whatever-key", wallet.KeyType("iban"), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := wallet.ValidateKey(tc.key, tc.keyType)
			if tc.wantErr {
				assert.ErrorIs(t, err, wallet.ErrInvalidKey)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestWalletBuilder(t *testing.T) {
	t.Parallel()

	w, err := wallet.New().WithAccountID("acct-1").WithBalance(2500).Build()
	assert.NoError(t, err)
	assert.Equal(t, "acct-1", w.AccountID)
	assert.Equal(t, int64(2500), w.Balance.Amount())
	assert.Equal(t, "BRL", w.Balance.Currency())

	_, err = wallet.New().WithBalance(100).Build()
	assert.ErrorIs(t, err, wallet.ErrWalletNotFound)

	_, err = wallet.New().WithAccountID("acct-1").WithBalance(-1).Build()
	assert.ErrorIs(t, err, wallet.ErrInsufficientFunds)
}
