// Package middleware holds Fiber middleware shared across route groups.
package middleware

import (
	"errors"
	"strings"
	"time"

	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/novawallet/novawallet/pkg/config"
)

// ErrNoAccountContext is returned when a handler runs without a verified
// token in the request context.
var ErrNoAccountContext = errors.New("missing account context")

// Identity is the caller extracted from a verified token.
type Identity struct {
	AccountID string
	Name      string
	Email     string
}

// JwtProtected verifies the Bearer token and stores it under the "user"
// local. Tokens are issued by the identity service; this service only
// verifies them.
func JwtProtected(cfg *config.Jwt) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:   jwtware.SigningKey{Key: []byte(cfg.Secret)},
		ErrorHandler: jwtError,
	})
}

func jwtError(c *fiber.Ctx, err error) error {
	status := fiber.StatusUnauthorized
	if strings.Contains(err.Error(), "malformed") || strings.Contains(err.Error(), "Missing") {
		status = fiber.StatusBadRequest
	}
	c.Set(fiber.HeaderContentType, "application/problem+json")
	return c.Status(status).JSON(fiber.Map{
		"type":   "about:blank",
		"title":  "Unauthorized",
		"status": status,
		"detail": err.Error(),
	})
}

// CurrentIdentity reads the verified token from the request context.
func CurrentIdentity(c *fiber.Ctx) (*Identity, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return nil, ErrNoAccountContext
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrNoAccountContext
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, ErrNoAccountContext
	}
	name, _ := claims["name"].(string)
	email, _ := claims["email"].(string)
	return &Identity{AccountID: sub, Name: name, Email: email}, nil
}

// SignToken mints a short-lived HS256 token for the given identity. Used by
// tests and local tooling; production tokens come from the identity service.
func SignToken(secret string, id Identity, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":   id.AccountID,
		"name":  id.Name,
		"email": id.Email,
		"jti":   uuid.NewString(),
		"exp":   time.Now().Add(ttl).Unix(),
		"iat":   time.Now().Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
