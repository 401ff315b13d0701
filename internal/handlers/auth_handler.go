package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ahmetcoskunkizilkaya/ridehail-auth/internal/dto"
	"github.com/ahmetcoskunkizilkaya/ridehail-auth/internal/media"
	"github.com/ahmetcoskunkizilkaya/ridehail-auth/internal/models"
	"github.com/ahmetcoskunkizilkaya/ridehail-auth/internal/services"
	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	provisioning *services.ProvisioningService
	verification *services.VerificationService
	sessions     *services.SessionService
}

func NewAuthHandler(provisioning *services.ProvisioningService, verification *services.VerificationService, sessions *services.SessionService) *AuthHandler {
	return &AuthHandler{provisioning: provisioning, verification: verification, sessions: sessions}
}

func (h *AuthHandler) SignupCustomer(c *fiber.Ctx) error {
	var req dto.CustomerSignupRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Status: "error", Message: "Invalid request body",
		})
	}

	msg, err := h.provisioning.SignupCustomer(c.UserContext(), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.StatusResponse{Status: "success", Message: msg})
}

// SignupDriver expects multipart form data: the profile and vehicle fields
// plus the nationalId and driveLicense images.
func (h *AuthHandler) SignupDriver(c *fiber.Ctx) error {
	var req dto.DriverSignupRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Status: "error", Message: "Invalid request body",
		})
	}

	nationalID, closeNationalID, err := formDocument(c, "nationalId")
	if err != nil {
		return respondError(c, err)
	}
	defer closeNationalID()
	driveLicense, closeDriveLicense, err := formDocument(c, "driveLicense")
	if err != nil {
		return respondError(c, err)
	}
	defer closeDriveLicense()

	msg, err := h.provisioning.SignupDriver(c.UserContext(), &req, services.DriverDocuments{
		NationalID:   nationalID,
		DriveLicense: driveLicense,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.StatusResponse{Status: "success", Message: msg})
}

// formDocument opens an uploaded image. Parts not declared as image/* are
// rejected before anything is uploaded.
func formDocument(c *fiber.Ctx, field string) (media.Document, func(), error) {
	header, err := c.FormFile(field)
	if err != nil {
		return media.Document{}, nil, fmt.Errorf("%w: %s image is required", services.ErrInvalidInput, field)
	}
	if ct := header.Header.Get(fiber.HeaderContentType); !strings.HasPrefix(ct, "image/") {
		return media.Document{}, nil, fmt.Errorf("%w: only images are allowed for %s", services.ErrInvalidInput, field)
	}
	file, err := header.Open()
	if err != nil {
		return media.Document{}, nil, fmt.Errorf("open %s: %w", field, err)
	}
	doc := media.Document{Field: field, Filename: header.Filename, Content: file}
	return doc, func() { _ = file.Close() }, nil
}

func (h *AuthHandler) Login(role models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req dto.LoginRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Status: "error", Message: "Invalid request body",
			})
		}

		resp, err := h.sessions.Login(c.UserContext(), role, &req)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(resp)
	}
}

func (h *AuthHandler) Verify(role models.Role, channel models.Channel) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := h.verification.Redeem(c.UserContext(), role, channel, c.Params("token"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(dto.StatusResponse{Status: "success", Message: res.Message})
	}
}

// respondError maps service errors onto HTTP responses. Client errors carry
// their own message; server errors are reported and answered generically.
func respondError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	msg := "Internal server error"

	switch {
	case errors.Is(err, services.ErrInvalidInput):
		status, msg = fiber.StatusBadRequest, clientMessage(err, services.ErrInvalidInput)
	case errors.Is(err, services.ErrDuplicateIdentity):
		status, msg = fiber.StatusConflict, clientMessage(err, services.ErrDuplicateIdentity)
	case errors.Is(err, services.ErrInvalidCredentials):
		status, msg = fiber.StatusUnauthorized, "Invalid email or password"
	case errors.Is(err, services.ErrInvalidToken):
		status, msg = fiber.StatusBadRequest, "Invalid or already used verification token"
	case errors.Is(err, services.ErrEmailNotVerified):
		status, msg = fiber.StatusForbidden, "Please verify your email address first"
	case errors.Is(err, services.ErrMobileNotVerified):
		status, msg = fiber.StatusForbidden, "Please verify your mobile number first"
	case errors.Is(err, services.ErrUnauthenticated):
		status, msg = fiber.StatusUnauthorized, "Unauthenticated"
	case errors.Is(err, services.ErrForbidden):
		status, msg = fiber.StatusForbidden, "Forbidden"
	case errors.Is(err, services.ErrDocumentUpload):
		status, msg = fiber.StatusBadGateway, "Failed to upload driver documents, please try again later"
	case errors.Is(err, services.ErrProvisioningFailed):
		msg = "Error while signing you up, please try again later"
		capture(c, err)
	default:
		slog.ErrorContext(c.UserContext(), "request failed", "path", c.Path(), "error", err)
		capture(c, err)
	}

	return c.Status(status).JSON(dto.ErrorResponse{Status: "error", Message: msg})
}

// clientMessage returns the detail of a wrapped user-facing error, falling
// back to the sentinel text.
func clientMessage(err, sentinel error) string {
	return strings.TrimPrefix(err.Error(), sentinel.Error()+": ")
}

func capture(c *fiber.Ctx, err error) {
	if hub := sentryfiber.GetHubFromContext(c); hub != nil {
		hub.WithScope(func(scope *sentry.Scope) {
			scope.SetTag("path", c.Path())
			hub.CaptureException(err)
		})
	}
}
