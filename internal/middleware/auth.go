package middleware

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/ridehail-auth/internal/config"
	"github.com/ahmetcoskunkizilkaya/ridehail-auth/internal/dto"
	"github.com/ahmetcoskunkizilkaya/ridehail-auth/internal/models"
	"github.com/ahmetcoskunkizilkaya/ridehail-auth/internal/services"
	"github.com/ahmetcoskunkizilkaya/ridehail-auth/internal/store"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	LocalToken     = "user"
	LocalAccount   = "account"
	LocalBootstrap = "admin_bootstrap"
)

func unauthenticated(c *fiber.Ctx, _ error) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Status: "error", Message: "Unauthenticated",
	})
}

// JWTProtected verifies the bearer token into *services.AccessClaims. Any
// missing, malformed, expired or foreign token is answered with 401.
func JWTProtected(cfg *config.Config) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:   jwtware.SigningKey{JWTAlg: jwtware.HS256, Key: []byte(cfg.JWTSecret)},
		Claims:       &services.AccessClaims{},
		ContextKey:   LocalToken,
		Filter:       Bootstrapped,
		ErrorHandler: unauthenticated,
	})
}

// ResolveAccount loads the account named by the verified token and stores it
// under LocalAccount. Tokens without an expiry and tokens whose account no
// longer exists are rejected.
func ResolveAccount(st store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if Bootstrapped(c) {
			return c.Next()
		}
		token, ok := c.Locals(LocalToken).(*jwt.Token)
		if !ok || token == nil {
			return unauthenticated(c, nil)
		}
		claims, ok := token.Claims.(*services.AccessClaims)
		if !ok {
			return unauthenticated(c, nil)
		}
		// jwtware only checks exp when present.
		if claims.ExpiresAt == nil {
			return unauthenticated(c, nil)
		}
		role, ok := models.ParseRole(string(claims.Role))
		if !ok {
			return unauthenticated(c, nil)
		}
		id, err := claims.AccountID()
		if err != nil {
			return unauthenticated(c, err)
		}

		account, err := st.FindByID(c.UserContext(), role, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return unauthenticated(c, err)
			}
			return err
		}
		c.Locals(LocalAccount, account)
		return c.Next()
	}
}

// CurrentAccount returns the account stored by ResolveAccount.
func CurrentAccount(c *fiber.Ctx) (models.Account, bool) {
	account, ok := c.Locals(LocalAccount).(models.Account)
	return account, ok
}
