// Read-only wallet endpoints:
//
//   - GET /api/transactions : list the caller's records, newest first.
//   - GET /api/wallet       : current balance.
package webapi

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/novawallet/novawallet/pkg/app"
	"github.com/novawallet/novawallet/pkg/config"
	"github.com/novawallet/novawallet/pkg/dto"
	"github.com/novawallet/novawallet/pkg/middleware"
	walletsvc "github.com/novawallet/novawallet/pkg/service/wallet"
)

// TransactionDTO is the API representation of a transaction record.
type TransactionDTO struct {
	ID         string `json:"id"`
	Amount     int64  `json:"amount"`
	Kind       string `json:"kind"`
	Method     string `json:"method"`
	Status     string `json:"status"`
	PixKey     string `json:"pix_key,omitempty"`
	PixKeyType string `json:"pix_key_type,omitempty"`
	ExpiresAt  string `json:"expires_at,omitempty"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

// BalanceDTO is the API representation of the wallet balance.
type BalanceDTO struct {
	AccountID string `json:"account_id"`
	Balance   int64  `json:"balance"`
	Display   string `json:"display"`
}

// ToTransactionDTO maps a read record to its API shape.
func ToTransactionDTO(rec *dto.TransactionRead) TransactionDTO {
	out := TransactionDTO{
		ID:         rec.ID,
		Amount:     rec.Amount,
		Kind:       string(rec.Kind),
		Method:     string(rec.Method),
		Status:     string(rec.Status),
		PixKey:     rec.DestinationKey,
		PixKeyType: string(rec.DestinationKeyType),
		CreatedAt:  rec.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  rec.UpdatedAt.Format(time.RFC3339),
	}
	if rec.ExpiresAt != nil {
		out.ExpiresAt = rec.ExpiresAt.Format(time.RFC3339)
	}
	return out
}

func TransactionRoutes(fiberApp *fiber.App, a *app.App, cfg *config.App) {
	fiberApp.Get("/api/transactions", middleware.JwtProtected(cfg.Auth.Jwt), ListTransactions(a.WalletService))
	fiberApp.Get("/api/wallet", middleware.JwtProtected(cfg.Auth.Jwt), GetBalance(a.WalletService))
}

// ListTransactions returns the handler for GET /api/transactions.
func ListTransactions(svc *walletsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := middleware.CurrentIdentity(c)
		if err != nil {
			return ProblemDetailsJSON(c, fiber.StatusUnauthorized, "Unauthorized", err.Error())
		}
		recs, err := svc.ListTransactions(c.UserContext(), id.AccountID, c.QueryInt("limit"))
		if err != nil {
			return ProblemDetailsJSON(c, ErrorToStatusCode(err), "Failed to list transactions", ErrorDetail(err))
		}
		out := make([]TransactionDTO, 0, len(recs))
		for _, rec := range recs {
			out = append(out, ToTransactionDTO(rec))
		}
		return c.JSON(Response{Status: fiber.StatusOK, Message: "Transactions", Data: out})
	}
}

// GetBalance returns the handler for GET /api/wallet.
func GetBalance(svc *walletsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := middleware.CurrentIdentity(c)
		if err != nil {
			return ProblemDetailsJSON(c, fiber.StatusUnauthorized, "Unauthorized", err.Error())
		}
		w, err := svc.Wallet(c.UserContext(), id.AccountID)
		if err != nil {
			return ProblemDetailsJSON(c, ErrorToStatusCode(err), "Failed to read balance", ErrorDetail(err))
		}
		return c.JSON(Response{Status: fiber.StatusOK, Message: "Balance", Data: BalanceDTO{
			AccountID: w.AccountID,
			Balance:   w.Balance.Amount(),
			Display:   w.Balance.String(),
		}})
	}
}
