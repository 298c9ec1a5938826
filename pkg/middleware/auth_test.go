package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novawallet/novawallet/pkg/config"
)

const testSecret = "test-secret"

func protectedApp() *fiber.App {
	app := fiber.New()
	app.Use(JwtProtected(&config.Jwt{Secret: testSecret}))
	app.Get("/", func(c *fiber.Ctx) error {
		id, err := CurrentIdentity(c)
		if err != nil {
			return c.SendStatus(fiber.StatusUnauthorized)
		}
		return c.SendString(id.AccountID)
	})
	return app
}

func TestJwtProtected_MissingToken(t *testing.T) {
	t.Parallel()
	app := protectedApp()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.NotEqual(t, fiber.StatusOK, resp.StatusCode)
}

func TestJwtProtected_InvalidToken(t *testing.T) {
	t.Parallel()
	app := protectedApp()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestJwtProtected_ValidToken(t *testing.T) {
	t.Parallel()
	token, err := SignToken(testSecret, Identity{
		AccountID: "acc_42", Name: "Ana Souza", Email: "ana@example.com",
	}, time.Minute)
	require.NoError(t, err)

	app := protectedApp()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestJwtProtected_WrongSecret(t *testing.T) {
	t.Parallel()
	token, err := SignToken("other-secret", Identity{AccountID: "acc_42"}, time.Minute)
	require.NoError(t, err)

	app := protectedApp()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
