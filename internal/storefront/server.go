package storefront

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"

	"github.com/tair/storefront/internal/auth"
	"github.com/tair/storefront/internal/media"
	"github.com/tair/storefront/internal/storefront/config"
	"github.com/tair/storefront/internal/storefront/handler"
	"github.com/tair/storefront/internal/storefront/health"
	"github.com/tair/storefront/internal/storefront/middleware"
	"github.com/tair/storefront/internal/storefront/routes"
	"github.com/tair/storefront/pkg/logger"
)

// Server is the storefront HTTP server
type Server struct {
	app   *fiber.App
	cfg   *config.Config
	redis *redis.Client
}

// NewServer assembles the fiber app with its middleware and routes
func NewServer(
	cfg *config.Config,
	h *handler.Handler,
	checker *health.Checker,
	sessions auth.Sessions,
	redisClient *redis.Client,
	images media.Store,
) *Server {
	app := fiber.New(fiber.Config{
		AppName:      "Storefront",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  30 * time.Second,
		BodyLimit:    media.MaxImageSize + 1<<20,
		ErrorHandler: handler.ErrorHandler,
	})

	setupMiddleware(app, cfg)

	routes.SetupRoutes(app, routes.Deps{
		Config:   cfg,
		Handler:  h,
		Health:   checker,
		Sessions: sessions,
		Redis:    redisClient,
		Images:   images,
	})

	return &Server{app: app, cfg: cfg, redis: redisClient}
}

// setupMiddleware configures global middleware
func setupMiddleware(app *fiber.App, cfg *config.Config) {
	app.Use(recover.New(recover.Config{
		EnableStackTrace: cfg.IsDevelopment(),
	}))

	app.Use(requestid.New())

	// Tracing before logging so log lines carry the trace id
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.StructuredLoggingMiddleware())
	app.Use(middleware.MetricsMiddleware())

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSAllowedOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, X-Request-Id, traceparent, tracestate",
		AllowCredentials: cfg.CORSAllowedOrigins != "*",
		ExposeHeaders:    "X-Request-Id, X-Trace-Id, X-Cache, X-RateLimit-Limit, X-RateLimit-Remaining, X-RateLimit-Reset",
		MaxAge:           86400,
	}))

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	app.Use(middleware.SessionMiddleware(middleware.SessionConfig{
		CookieName: cfg.SessionCookie,
		TTL:        cfg.SessionTTL,
		Secure:     !cfg.IsDevelopment(),
	}))
}

// App exposes the fiber app, mainly for tests
func (s *Server) App() *fiber.App {
	return s.app
}

// InvalidateCatalogCache drops cached catalog responses after a product change
func (s *Server) InvalidateCatalogCache(ctx context.Context) error {
	return middleware.InvalidateCache(ctx, s.redis)
}

// Listen blocks serving on the configured port
func (s *Server) Listen() error {
	addr := fmt.Sprintf(":%s", s.cfg.Port)
	logger.Logger.Info().
		Str("addr", addr).
		Strs("catalog_api", s.cfg.Catalog.BaseURLs).
		Msg("Storefront starting")
	return s.app.Listen(addr)
}

// Shutdown stops accepting connections and waits for in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
