package webapi

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/novawallet/novawallet/pkg/domain/wallet"
	"github.com/novawallet/novawallet/pkg/provider/pix"
)

// Response is the standard envelope for success cases.
type Response struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// ProblemDetails follows RFC 9457 Problem Details for HTTP APIs.
type ProblemDetails struct {
	Type     string `json:"type,omitempty"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
	Errors   any    `json:"errors,omitempty"`
}

// ProblemDetailsJSON writes an RFC 9457 error response.
func ProblemDetailsJSON(c *fiber.Ctx, status int, title string, detail any) error {
	pd := ProblemDetails{
		Type:   "about:blank",
		Title:  title,
		Status: status,
	}
	if detail != nil {
		if s, ok := detail.(string); ok {
			pd.Detail = s
		} else {
			pd.Errors = detail
		}
	}
	pd.Instance = c.OriginalURL()
	c.Set(fiber.HeaderContentType, "application/problem+json")
	return c.Status(status).JSON(pd)
}

// ErrorToStatusCode maps domain and gateway errors to HTTP status codes.
func ErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, wallet.ErrInvalidAmount):
		return fiber.StatusBadRequest
	case errors.Is(err, wallet.ErrInvalidKey):
		return fiber.StatusBadRequest
	case errors.Is(err, wallet.ErrInsufficientFunds):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, wallet.ErrWalletNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, wallet.ErrTransactionNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, wallet.ErrDuplicateTransaction):
		return fiber.StatusConflict
	case errors.Is(err, wallet.ErrInvalidTransition):
		return fiber.StatusConflict
	case errors.Is(err, pix.ErrGatewayRejected):
		return fiber.StatusBadGateway
	case errors.Is(err, pix.ErrGatewayUnavailable):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorDetail returns the user-facing message for an error. Money-movement
// failures surface in Portuguese to match the consumer app.
func ErrorDetail(err error) string {
	switch {
	case errors.Is(err, wallet.ErrInsufficientFunds):
		return "Saldo insuficiente"
	case errors.Is(err, wallet.ErrCompensationFailed):
		return "Falha no gateway de pagamento. Estorno em processamento."
	case errors.Is(err, pix.ErrGatewayUnavailable), errors.Is(err, pix.ErrGatewayRejected):
		return "Falha no gateway de pagamento. Saldo estornado."
	default:
		return err.Error()
	}
}

// BindAndValidate parses and validates the request body. On failure it has
// already written the error response; callers just return the error.
func BindAndValidate[T any](c *fiber.Ctx) (*T, error) {
	var input T
	if err := c.BodyParser(&input); err != nil {
		ProblemDetailsJSON(c, fiber.StatusBadRequest, "Invalid request body", err.Error()) //nolint:errcheck
		return nil, err
	}
	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		ProblemDetailsJSON(c, fiber.StatusBadRequest, "Validation failed", err.Error()) //nolint:errcheck
		return nil, err
	}
	return &input, nil
}
