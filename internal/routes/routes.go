package routes

import (
	"fmt"

	"github.com/ahmetcoskunkizilkaya/ridehail-auth/internal/config"
	"github.com/ahmetcoskunkizilkaya/ridehail-auth/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/ridehail-auth/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/ridehail-auth/internal/models"
	"github.com/ahmetcoskunkizilkaya/ridehail-auth/internal/store"
	"github.com/gofiber/fiber/v2"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	st store.Store,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	healthHandler *handlers.HealthHandler,
) {
	app.Get("/health", healthHandler.Check)

	v1 := app.Group("/v1")

	// Auth (public)
	auth := v1.Group("/auth")
	auth.Post("/customer/signup", authHandler.SignupCustomer)
	auth.Post("/driver/signup", authHandler.SignupDriver)
	for _, role := range []models.Role{models.RoleCustomer, models.RoleDriver, models.RoleAdmin} {
		auth.Post(fmt.Sprintf("/%s/login", role), authHandler.Login(role))
	}

	// One confirmation endpoint per role and channel, e.g. /verify/driver-mobile/:token
	for _, role := range []models.Role{models.RoleCustomer, models.RoleDriver} {
		for _, channel := range []models.Channel{models.ChannelEmail, models.ChannelMobile} {
			auth.Get(fmt.Sprintf("/verify/%s-%s/:token", role, channel), authHandler.Verify(role, channel))
		}
	}

	// Users (protected) - middleware applied per route so public routes stay untouched
	v1.Post("/users",
		middleware.AdminBootstrap(cfg),
		middleware.JWTProtected(cfg),
		middleware.ResolveAccount(st),
		middleware.RequireRoles(models.RoleAdmin),
		userHandler.CreateAdmin,
	)
	v1.Get("/users/me", middleware.JWTProtected(cfg), middleware.ResolveAccount(st), userHandler.Me)
}
