package routes

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/tair/storefront/internal/auth"
	"github.com/tair/storefront/internal/media"
	"github.com/tair/storefront/internal/storefront/config"
	"github.com/tair/storefront/internal/storefront/handler"
	"github.com/tair/storefront/internal/storefront/health"
	"github.com/tair/storefront/internal/storefront/middleware"
)

// RouteDefinition documents a route group
type RouteDefinition struct {
	Prefix       string `json:"prefix"`
	Description  string `json:"description"`
	Cached       bool   `json:"cached"`
	RequireAdmin bool   `json:"requireAdmin"`
}

// Routes lists the storefront route groups
var Routes = []RouteDefinition{
	{Prefix: "/api/catalog", Description: "Public catalog browsing", Cached: true},
	{Prefix: "/auth", Description: "Admin login and logout"},
	{Prefix: "/admin/products", Description: "Product create, update and delete", RequireAdmin: true},
	{Prefix: "/health", Description: "Health check endpoints"},
}

// Deps holds what the routes need
type Deps struct {
	Config   *config.Config
	Handler  *handler.Handler
	Health   *health.Checker
	Sessions auth.Sessions
	Redis    *redis.Client
	Images   media.Store
}

// SetupRoutes configures all storefront routes
func SetupRoutes(app *fiber.App, deps Deps) {
	cfg := deps.Config
	h := deps.Handler

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(deps.Health.QuickCheck())
	})

	app.Get("/health/live", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "alive"})
	})

	app.Get("/health/ready", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
		defer cancel()

		report := deps.Health.CheckAll(ctx)

		statusCode := fiber.StatusOK
		if report.Status == "unhealthy" {
			statusCode = fiber.StatusServiceUnavailable
		}
		return c.Status(statusCode).JSON(report)
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Storefront",
			"routes":  Routes,
		})
	})

	cacheConfig := middleware.DefaultCacheConfig()
	cacheConfig.TTL = cfg.CacheTTL
	catalog := app.Group("/api/catalog", middleware.CacheMiddleware(deps.Redis, cacheConfig))
	catalog.Get("/", h.ListCatalog)
	catalog.Get("/:id", h.GetProduct)

	loginLimiter := middleware.NewRateLimiter(deps.Redis, "login", cfg.LoginRateLimit, cfg.LoginRateWindow)
	authGroup := app.Group("/auth")
	authGroup.Post("/login", loginLimiter.Middleware(), h.Login)
	authGroup.Post("/logout", h.Logout)
	authGroup.Get("/session", h.Session)

	admin := app.Group("/admin/products", middleware.AdminMiddleware(deps.Sessions))
	admin.Post("/", h.CreateProduct)
	admin.Put("/:id", h.UpdateProduct)
	admin.Delete("/:id", h.DeleteProduct)

	if store, ok := deps.Images.(*media.MemoryStore); ok {
		app.Get("/media/*", handler.ServeMedia(store))
	}
}
