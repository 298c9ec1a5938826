package webapi

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/suite"

	infracache "github.com/novawallet/novawallet/infra/cache"
	infraledger "github.com/novawallet/novawallet/infra/ledger"
	"github.com/novawallet/novawallet/infra/provider/mockpix"
	infratxlog "github.com/novawallet/novawallet/infra/txlog"
	"github.com/novawallet/novawallet/pkg/app"
	"github.com/novawallet/novawallet/pkg/config"
	"github.com/novawallet/novawallet/pkg/eventbus"
	"github.com/novawallet/novawallet/pkg/middleware"
)

const testJwtSecret = "webapi-test-secret"

// WalletE2ESuite spins the full Fiber app over in-memory infrastructure with
// a scriptable gateway.
type WalletE2ESuite struct {
	suite.Suite
	fiberApp *fiber.App
	app      *app.App
	gateway  *mockpix.Provider
	cfg      *config.App
}

func testConfig() *config.App {
	return &config.App{
		Env:       "test",
		Auth:      &config.Auth{Jwt: &config.Jwt{Secret: testJwtSecret}},
		RateLimit: &config.RateLimit{MaxRequests: 1000, Window: time.Minute},
		Server:    &config.Server{Host: "localhost", Port: 3000},
		Wallet:    &config.Wallet{MinDeposit: 100, MinWithdrawal: 100, ListLimit: 50},
		Reversal: &config.Reversal{
			ImmediateRetries: 3,
			Interval:         time.Minute,
			InitialBackoff:   time.Millisecond,
			MaxBackoff:       10 * time.Millisecond,
			EscalateAfter:    5,
			ScanLimit:        100,
		},
	}
}

func (s *WalletE2ESuite) SetupTest() {
	s.cfg = testConfig()
	s.gateway = mockpix.New()
	deps := &app.Deps{
		Ledger:          infraledger.NewMemory(),
		TxLog:           infratxlog.NewMemory(),
		Gateway:         s.gateway,
		CollectionIndex: infracache.NewMemory(),
		EventBus:        eventbus.NewMemory(),
		Logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	s.app = app.New(deps, s.cfg)
	s.fiberApp = NewApp(s.app, s.cfg)
}

// newAccount registers a wallet, funds it, and returns its bearer token.
func (s *WalletE2ESuite) newAccount(accountID string, balance int64) string {
	ctx := context.Background()
	s.Require().NoError(s.app.WalletService.CreateWallet(ctx, accountID))
	if balance != 0 {
		_, committed, err := s.app.Deps.Ledger.AtomicAdjust(ctx, accountID, balance)
		s.Require().NoError(err)
		s.Require().True(committed)
	}
	token, err := middleware.SignToken(testJwtSecret, middleware.Identity{
		AccountID: accountID,
		Name:      "Ana Souza",
		Email:     "ana@example.com",
	}, time.Minute)
	s.Require().NoError(err)
	return token
}

func (s *WalletE2ESuite) makeRequest(method, target, body, token string) *http.Response {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := s.fiberApp.Test(req, -1)
	s.Require().NoError(err)
	return resp
}
