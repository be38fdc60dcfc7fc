package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/yclin/homelist-backend/internal/config"
	"github.com/yclin/homelist-backend/internal/database"
	"github.com/yclin/homelist-backend/internal/domain"
	"github.com/yclin/homelist-backend/internal/handler"
	"github.com/yclin/homelist-backend/internal/middleware"
	"github.com/yclin/homelist-backend/internal/repository/postgres"
	"github.com/yclin/homelist-backend/internal/repository/storage"
	"github.com/yclin/homelist-backend/internal/service"
	"github.com/yclin/homelist-backend/internal/websocket"
	"golang.org/x/text/language"
)

func main() {
	// Initialize zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	vocab, err := domain.NewVocabulary(cfg.Rooms, cfg.Statuses, cfg.InitialStatus, cfg.PurchasedStatus, cfg.CountedStatus, cfg.DefaultCurrency)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid item vocabulary")
	}

	locale, err := language.Parse(cfg.CollationLocale)
	if err != nil {
		log.Fatal().Err(err).Str("locale", cfg.CollationLocale).Msg("Invalid collation locale")
	}

	// Apply migrations, then connect
	if err := database.Migrate(cfg.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate database")
	}
	pool, err := database.Connect(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	// Object storage is optional: without credentials the app runs with
	// image uploads disabled.
	var assetRepo storage.AssetRepository
	if cfg.S3.AccessKeyID != "" && cfg.S3.SecretAccessKey != "" {
		s3Repo, err := storage.NewS3AssetRepository(context.Background(), cfg.S3)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize S3 storage")
		}
		assetRepo = s3Repo
		log.Info().Str("bucket", cfg.S3.Bucket).Msg("S3 storage initialized")
	} else {
		log.Warn().Msg("S3 credentials not configured, image uploads disabled")
	}

	// Initialize repositories and services
	itemRepo := postgres.NewItemRepository(pool)
	assetService := service.NewAssetService(assetRepo)
	viewService := service.NewViewService(vocab, locale)

	// WebSocket hub for the change feed
	hub := websocket.NewHub()

	itemService := service.NewItemService(itemRepo, assetService, viewService, vocab, cfg.AdminSubject, hub)

	// Initialize auth middleware
	authMiddleware, err := middleware.NewAuthMiddleware(cfg.Auth0Domain, cfg.Auth0Audience, cfg.AdminSubject)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create auth middleware")
	}

	rateLimiter := middleware.NewRateLimiter()
	defer rateLimiter.Stop()

	// Initialize handlers
	itemHandler := handler.NewItemHandler(itemService, assetService)
	authHandler := handler.NewAuthHandler(itemService)
	wsHandler := handler.NewWebSocketHandler(hub, cfg.CORSOrigins)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Request ID middleware
	e.Use(echomiddleware.RequestID())

	// CORS middleware
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Security headers middleware (helmet-like)
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}))

	// Request logging middleware with zerolog
	e.Use(zerologMiddleware())

	// Recovery middleware
	e.Use(echomiddleware.Recover())

	// Prometheus metrics
	e.Use(middleware.Metrics())
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		if err := pool.Ping(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Item change feed
	e.GET("/ws", wsHandler.HandleWS)

	// Register API routes
	handler.RegisterRoutes(e, authMiddleware, rateLimiter, itemHandler, authHandler)

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// zerologMiddleware returns a middleware that logs requests using zerolog
func zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			log.Info().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Msg("request")

			return nil
		}
	}
}
