package handlers

import (
	"github.com/ahmetcoskunkizilkaya/ridehail-auth/internal/dto"
	"github.com/ahmetcoskunkizilkaya/ridehail-auth/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/ridehail-auth/internal/services"
	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	provisioning *services.ProvisioningService
}

func NewUserHandler(provisioning *services.ProvisioningService) *UserHandler {
	return &UserHandler{provisioning: provisioning}
}

func (h *UserHandler) CreateAdmin(c *fiber.Ctx) error {
	var req dto.CreateAdminRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Status: "error", Message: "Invalid request body",
		})
	}

	admin, err := h.provisioning.CreateAdmin(c.UserContext(), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewAccountSummary(admin))
}

func (h *UserHandler) Me(c *fiber.Ctx) error {
	account, ok := middleware.CurrentAccount(c)
	if !ok {
		return respondError(c, services.ErrUnauthenticated)
	}
	return c.JSON(dto.NewAccountSummary(account))
}
