// Package webapi exposes the wallet over HTTP with Fiber.
package webapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/novawallet/novawallet/pkg/app"
	"github.com/novawallet/novawallet/pkg/config"
)

// NewApp builds the Fiber application with all routes and middleware.
func NewApp(a *app.App, cfg *config.App) *fiber.App {
	fiberApp := fiber.New(fiber.Config{
		AppName: "novawallet",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			status := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				status = e.Code
			}
			return ProblemDetailsJSON(c, status, "Internal Server Error", err.Error())
		},
	})

	fiberApp.Use(limiter.New(limiter.Config{
		Max:        cfg.RateLimit.MaxRequests,
		Expiration: cfg.RateLimit.Window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return ProblemDetailsJSON(c, fiber.StatusTooManyRequests, "Too Many Requests", "Rate limit exceeded")
		},
	}))
	fiberApp.Use(recover.New())

	HealthRoutes(fiberApp, a.Deps.Ready)
	PixRoutes(fiberApp, a, cfg)
	TransactionRoutes(fiberApp, a, cfg)
	WebhookRoutes(fiberApp, a)

	return fiberApp
}
