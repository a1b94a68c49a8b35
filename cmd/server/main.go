package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/feed"
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/igdb"
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/jobs"
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/logging"
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/routes"
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/storage"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup()

	cfg := config.Load()

	if cfg.JWKSURL == "" && cfg.JWTSecret == "" {
		slog.Error("AUTH_JWKS_URL or JWT_SECRET environment variable is required")
		os.Exit(1)
	}
	if cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(database.DB); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// PostgreSQL log handler (ERROR+ async batch)
	pgLogHandler := logging.NewPGHandler(database.DB, 5*time.Second)
	slog.SetDefault(slog.New(logging.NewMultiHandler(
		logging.NewStdoutHandler(),
		pgLogHandler,
	)))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Game metadata provider
	var provider services.GameProvider
	if cfg.IGDBEnabled() {
		tokens := igdb.NewTokenCache(igdb.ClientCredentials(cfg.IGDBClientID, cfg.IGDBClientSecret, cfg.IGDBTokenURL))
		provider = igdb.NewClient(cfg.IGDBBaseURL, cfg.IGDBClientID, tokens, cfg.IGDBTimeout)
		slog.Info("igdb provider enabled")
	} else {
		slog.Warn("IGDB credentials missing, serving cached games only")
	}

	// File storage
	var files storage.Remover = storage.Noop{}
	if cfg.StorageEnabled() {
		deleter, err := storage.NewS3Deleter(ctx, storage.Options{
			Endpoint:  cfg.StorageEndpoint,
			Region:    cfg.StorageRegion,
			Bucket:    cfg.StorageBucket,
			AccessKey: cfg.StorageAccessKey,
			SecretKey: cfg.StorageSecretKey,
		})
		if err != nil {
			slog.Error("storage init failed", "error", err)
			os.Exit(1)
		}
		files = deleter
	}

	// Services
	socialService := services.NewSocialService(database.DB)
	contentService := services.NewContentService(database.DB, files)
	userService := services.NewUserService(database.DB, socialService, files)
	questLogService := services.NewQuestLogService(database.DB)
	collectionService := services.NewCollectionService(database.DB)
	gameService := services.NewGameService(database.DB, provider, cfg.GameCacheTTL)
	moderationService := services.NewModerationService(database.DB)
	composer := feed.NewComposer(database.DB)

	// Background jobs
	scheduler, err := jobs.Start(ctx, jobs.NewRunner(database.DB, gameService, jobs.Options{
		LogRetention: cfg.LogRetention,
		SweepEvery:   cfg.GameSweepEvery,
		SweepBatch:   cfg.GameSweepBatch,
	}))
	if err != nil {
		slog.Error("scheduler init failed", "error", err)
		os.Exit(1)
	}

	// Sentry error tracking
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              dsn,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      os.Getenv("APP_ENV"),
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    4 * 1024 * 1024,
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
	routes.Setup(app, cfg, userService, routes.Handlers{
		Health:     handlers.NewHealthHandler(database.Ping, cfg.IGDBEnabled()),
		Feed:       handlers.NewFeedHandler(composer),
		Content:    handlers.NewContentHandler(contentService),
		Social:     handlers.NewSocialHandler(socialService),
		Users:      handlers.NewUserHandler(userService),
		Library:    handlers.NewLibraryHandler(questLogService, collectionService),
		Games:      handlers.NewGameHandler(gameService),
		Moderation: handlers.NewModerationHandler(moderationService),
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
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

	cancel()
	if err := scheduler.Shutdown(); err != nil {
		slog.Error("scheduler shutdown error", "error", err)
	}
	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	// Close database connections
	if err := database.Close(); err != nil {
		slog.Error("database close error", "error", err)
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
