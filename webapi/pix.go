// PixRoutes registers the money-movement endpoints:
//
//   - POST /api/pix/deposit  : open a PIX collection for the caller's wallet.
//   - POST /api/pix/withdraw : pay out to a PIX key from the caller's wallet.
//
// Both require a verified identity token.
package webapi

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/novawallet/novawallet/pkg/app"
	"github.com/novawallet/novawallet/pkg/config"
	"github.com/novawallet/novawallet/pkg/domain/wallet"
	"github.com/novawallet/novawallet/pkg/middleware"
	"github.com/novawallet/novawallet/pkg/provider/pix"
	walletsvc "github.com/novawallet/novawallet/pkg/service/wallet"
)

// DepositRequest opens a PIX collection. Amount is minor currency units.
type DepositRequest struct {
	Amount int64 `json:"amount" validate:"required,gt=0"`
}

// WithdrawRequest pays out to a PIX key. Amount is minor currency units.
type WithdrawRequest struct {
	Amount         int64  `json:"amount" validate:"required,gt=0"`
	PixKey         string `json:"pix_key" validate:"required,min=3"`
	PixKeyType     string `json:"pix_key_type" validate:"required,oneof=cpf cnpj email phone random"`
	IdempotencyKey string `json:"idempotency_key" validate:"omitempty,max=128"`
}

// DepositResponse carries the collection artifacts the payer needs.
type DepositResponse struct {
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
	QRCodeBase64  string `json:"qrcode_base64"`
	PixCopyPaste  string `json:"pix_copia_cola"`
	ExpiresAt     string `json:"expires_at"`
}

// WithdrawResponse reports the payout outcome and the remaining balance.
type WithdrawResponse struct {
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
	NewBalance    int64  `json:"new_balance"`
	Replayed      bool   `json:"replayed,omitempty"`
}

func PixRoutes(fiberApp *fiber.App, a *app.App, cfg *config.App) {
	fiberApp.Post("/api/pix/deposit", middleware.JwtProtected(cfg.Auth.Jwt), DepositPix(a.WalletService))
	fiberApp.Post("/api/pix/withdraw", middleware.JwtProtected(cfg.Auth.Jwt), WithdrawPix(a.WalletService))
}

// DepositPix returns the handler for POST /api/pix/deposit.
func DepositPix(svc *walletsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := middleware.CurrentIdentity(c)
		if err != nil {
			return ProblemDetailsJSON(c, fiber.StatusUnauthorized, "Unauthorized", err.Error())
		}
		input, err := BindAndValidate[DepositRequest](c)
		if err != nil {
			return nil
		}

		rcpt, err := svc.Deposit(c.UserContext(), id.AccountID, input.Amount, pix.Payer{
			Name:  id.Name,
			Email: id.Email,
		})
		if err != nil {
			return ProblemDetailsJSON(c, ErrorToStatusCode(err), "Deposit failed", ErrorDetail(err))
		}
		return c.Status(fiber.StatusCreated).JSON(Response{
			Status:  fiber.StatusCreated,
			Message: "Collection created",
			Data: DepositResponse{
				TransactionID: rcpt.TransactionID,
				Status:        string(rcpt.Status),
				QRCodeBase64:  rcpt.QRCodeBase64,
				PixCopyPaste:  rcpt.CopyPaste,
				ExpiresAt:     rcpt.ExpiresAt.Format(time.RFC3339),
			},
		})
	}
}

// WithdrawPix returns the handler for POST /api/pix/withdraw.
func WithdrawPix(svc *walletsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := middleware.CurrentIdentity(c)
		if err != nil {
			return ProblemDetailsJSON(c, fiber.StatusUnauthorized, "Unauthorized", err.Error())
		}
		input, err := BindAndValidate[WithdrawRequest](c)
		if err != nil {
			return nil
		}

		rcpt, err := svc.Withdraw(c.UserContext(), id.AccountID, walletsvc.WithdrawParams{
			Amount:         input.Amount,
			Key:            input.PixKey,
			KeyType:        wallet.KeyType(input.PixKeyType),
			IdempotencyKey: input.IdempotencyKey,
		})
		if err != nil {
			return ProblemDetailsJSON(c, ErrorToStatusCode(err), "Withdrawal failed", ErrorDetail(err))
		}
		return c.Status(fiber.StatusCreated).JSON(Response{
			Status:  fiber.StatusCreated,
			Message: "Withdrawal settled",
			Data: WithdrawResponse{
				TransactionID: rcpt.TransactionID,
				Status:        string(rcpt.Status),
				NewBalance:    rcpt.NewBalance,
				Replayed:      rcpt.Replayed,
			},
		})
	}
}
