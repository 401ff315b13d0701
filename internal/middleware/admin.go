package middleware

import (
	"crypto/subtle"

	"github.com/ahmetcoskunkizilkaya/ridehail-auth/internal/config"
	"github.com/ahmetcoskunkizilkaya/ridehail-auth/internal/dto"
	"github.com/ahmetcoskunkizilkaya/ridehail-auth/internal/models"
	"github.com/gofiber/fiber/v2"
)

// AdminBootstrap marks requests carrying the configured X-Admin-Token so the
// first admin can be created before any admin can log in. It is a no-op
// when no token is configured.
func AdminBootstrap(cfg *config.Config) fiber.Handler {
	secret := []byte(cfg.AdminToken)
	return func(c *fiber.Ctx) error {
		if len(secret) == 0 {
			return c.Next()
		}
		header := c.Get("X-Admin-Token")
		if header != "" && subtle.ConstantTimeCompare([]byte(header), secret) == 1 {
			c.Locals(LocalBootstrap, true)
		}
		return c.Next()
	}
}

func Bootstrapped(c *fiber.Ctx) bool {
	ok, _ := c.Locals(LocalBootstrap).(bool)
	return ok
}

// RequireRoles lets the request through only when the resolved account has
// one of the given roles.
func RequireRoles(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if Bootstrapped(c) {
			return c.Next()
		}
		account, ok := CurrentAccount(c)
		if !ok {
			return unauthenticated(c, nil)
		}
		for _, role := range roles {
			if account.AccountRole() == role {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Status: "error", Message: "Forbidden",
		})
	}
}
