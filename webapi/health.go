package webapi

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

// HealthRoutes registers the liveness and readiness probes. Liveness always
// answers; readiness checks the backing stores.
func HealthRoutes(fiberApp *fiber.App, ready func(ctx context.Context) error) {
	fiberApp.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	fiberApp.Get("/ready", func(c *fiber.Ctx) error {
		if ready != nil {
			if err := ready(c.UserContext()); err != nil {
				return ProblemDetailsJSON(c, fiber.StatusServiceUnavailable, "Not ready", err.Error())
			}
		}
		return c.JSON(fiber.Map{"status": "ready"})
	})
}
