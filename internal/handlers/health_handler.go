package handlers

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/ridehail-auth/internal/dto"
	"github.com/ahmetcoskunkizilkaya/ridehail-auth/internal/store"
	"github.com/gofiber/fiber/v2"
)

type HealthHandler struct {
	store store.Store
}

func NewHealthHandler(st store.Store) *HealthHandler {
	return &HealthHandler{store: st}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	status, storeStatus, code := "ok", "ok", fiber.StatusOK
	if err := h.store.Ping(c.UserContext()); err != nil {
		status, storeStatus, code = "degraded", "unhealthy: "+err.Error(), fiber.StatusServiceUnavailable
	}

	return c.Status(code).JSON(dto.HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Store:     storeStatus,
	})
}
