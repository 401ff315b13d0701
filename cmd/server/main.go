package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ahmetcoskunkizilkaya/ridehail-auth/internal/config"
	"github.com/ahmetcoskunkizilkaya/ridehail-auth/internal/database"
	"github.com/ahmetcoskunkizilkaya/ridehail-auth/internal/dto"
	"github.com/ahmetcoskunkizilkaya/ridehail-auth/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/ridehail-auth/internal/logging"
	"github.com/ahmetcoskunkizilkaya/ridehail-auth/internal/media"
	"github.com/ahmetcoskunkizilkaya/ridehail-auth/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/ridehail-auth/internal/notify"
	"github.com/ahmetcoskunkizilkaya/ridehail-auth/internal/routes"
	"github.com/ahmetcoskunkizilkaya/ridehail-auth/internal/services"
	"github.com/ahmetcoskunkizilkaya/ridehail-auth/internal/store"
	"github.com/ahmetcoskunkizilkaya/ridehail-auth/internal/telemetry"
	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"gorm.io/gorm"
)

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup("info")

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel)

	// Tracing (opt-in via OTEL_ENDPOINT)
	shutdownTracing, err := telemetry.Setup(context.Background(), cfg)
	if err != nil {
		slog.Error("tracing setup failed", "error", err)
		os.Exit(1)
	}

	// Credential store
	var (
		st           store.Store
		db           *gorm.DB
		pgLogHandler *logging.PGHandler
		cleanupDone  = make(chan struct{})
	)
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		slog.Warn("using in-memory store, data is lost on restart")
		st = store.NewMemoryStore()
	default:
		db, err = database.Connect(cfg)
		if err != nil {
			slog.Error("database connection failed", "error", err)
			os.Exit(1)
		}
		if err := database.Migrate(db); err != nil {
			slog.Error("migration failed", "error", err)
			os.Exit(1)
		}
		st = store.NewGormStore(db)

		// PostgreSQL log handler (ERROR+ async batch)
		pgLogHandler = logging.NewPGHandler(db)
		slog.SetDefault(slog.New(logging.NewMultiHandler(
			logging.NewJSONHandler(logging.ParseLevel(cfg.LogLevel)),
			logging.NewContextHandler(pgLogHandler),
		)))
		logging.StartCleanup(db, cfg.LogRetention, cleanupDone)
	}

	// External boundaries
	notifier, err := buildNotifier(cfg)
	if err != nil {
		slog.Error("notification setup failed", "error", err)
		os.Exit(1)
	}
	var uploader media.Uploader = media.Disabled{}
	if cfg.CloudinaryEnabled() {
		cu, err := media.NewCloudinaryUploader(cfg)
		if err != nil {
			slog.Error("cloudinary setup failed", "error", err)
			os.Exit(1)
		}
		uploader = cu
	} else {
		slog.Warn("cloudinary is not configured, driver signup is disabled")
	}

	// Services
	issuer := services.NewTokenIssuer(cfg)
	provisioningService := services.NewProvisioningService(st, notifier, uploader, cfg)
	verificationService := services.NewVerificationService(st)
	sessionService := services.NewSessionService(st, issuer)

	// Handlers
	authHandler := handlers.NewAuthHandler(provisioningService, verificationService, sessionService)
	userHandler := handlers.NewUserHandler(provisioningService)
	healthHandler := handlers.NewHealthHandler(st)

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    10 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	// Sentry middleware
	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(func(c *fiber.Ctx) error {
		if id, ok := c.Locals("requestid").(string); ok {
			c.SetUserContext(logging.WithRequestID(c.UserContext(), id))
		}
		return c.Next()
	})
	app.Use(telemetry.Middleware())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})

	// Routes
	routes.Setup(app, cfg, st, authHandler, userHandler, healthHandler)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port, "store", cfg.StoreDriver)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	close(cleanupDone)
	if pgLogHandler != nil {
		pgLogHandler.Stop()
	}
	sentry.Flush(2 * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdownTracing(ctx); err != nil {
		slog.Error("tracing shutdown error", "error", err)
	}

	// Close database connections
	if db != nil {
		if err := database.Close(db); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("server stopped")
}

// buildNotifier uses SMTP and Twilio when configured. Outside development
// both are required; in development a missing transport logs its messages.
func buildNotifier(cfg *config.Config) (notify.Notifier, error) {
	if !cfg.IsDevelopment() && (!cfg.SMTPEnabled() || !cfg.TwilioEnabled()) {
		return nil, errors.New("SMTP_* and TWILIO_* must be configured outside development")
	}
	logNotifier := notify.NewLogNotifier(slog.Default())

	var mail notify.Mailer = logNotifier
	if cfg.SMTPEnabled() {
		mail = notify.NewSMTPMailer(cfg)
	} else {
		slog.Warn("smtp is not configured, confirmation emails are logged instead of sent")
	}

	var sms notify.SMSSender = logNotifier
	if cfg.TwilioEnabled() {
		sms = notify.NewTwilioSender(cfg)
	} else {
		slog.Warn("twilio is not configured, confirmation sms are logged instead of sent")
	}

	return notify.NewDispatcher(mail, sms), nil
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.ErrorContext(c.UserContext(), "unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(dto.ErrorResponse{
		Status:  "error",
		Message: message,
	})
}
