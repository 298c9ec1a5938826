// Gateway callback endpoint. The gateway posts collection status changes
// here; the handler resolves the collection reference to a transaction and
// drives the matching transition. Deliveries are at-least-once, so every
// outcome of a duplicate must be a no-op.
package webapi

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/novawallet/novawallet/pkg/app"
	"github.com/novawallet/novawallet/pkg/domain/wallet"
	walletsvc "github.com/novawallet/novawallet/pkg/service/wallet"
)

// WebhookRequest is the gateway's postback payload.
type WebhookRequest struct {
	Hash   string `json:"hash" validate:"required"`
	Status string `json:"status" validate:"required"`
}

func WebhookRoutes(fiberApp *fiber.App, a *app.App) {
	fiberApp.Post("/api/pix/webhook", PixWebhook(a.WalletService))
}

// PixWebhook returns the handler for POST /api/pix/webhook.
func PixWebhook(svc *walletsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := BindAndValidate[WebhookRequest](c)
		if err != nil {
			return nil
		}

		ctx := c.UserContext()
		id, err := svc.ResolveExternalRef(ctx, input.Hash)
		if err != nil {
			if errors.Is(err, wallet.ErrTransactionNotFound) {
				return ProblemDetailsJSON(c, fiber.StatusNotFound, "Unknown collection", input.Hash)
			}
			return ProblemDetailsJSON(c, ErrorToStatusCode(err), "Webhook processing failed", err.Error())
		}

		switch input.Status {
		case "paid", "approved", "settled":
			err = svc.ConfirmSettlement(ctx, id)
		case "expired":
			err = svc.ExpireCollection(ctx, id)
		case "canceled", "refused":
			err = svc.CancelCollection(ctx, id)
		default:
			return ProblemDetailsJSON(c, fiber.StatusBadRequest, "Unknown status", input.Status)
		}
		if err != nil {
			// A lost transition race means the work is already done; the
			// gateway must not retry.
			if errors.Is(err, wallet.ErrInvalidTransition) {
				return c.JSON(Response{Status: fiber.StatusOK, Message: "Already processed"})
			}
			return ProblemDetailsJSON(c, ErrorToStatusCode(err), "Webhook processing failed", err.Error())
		}
		return c.JSON(Response{Status: fiber.StatusOK, Message: "Processed"})
	}
}
