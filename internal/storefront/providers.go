package storefront

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/tair/storefront/internal/auth"
	"github.com/tair/storefront/internal/catalog/fallback"
	"github.com/tair/storefront/internal/catalog/form"
	"github.com/tair/storefront/internal/catalog/gateway"
	"github.com/tair/storefront/internal/storefront/config"
	"github.com/tair/storefront/internal/storefront/handler"
	"github.com/tair/storefront/internal/storefront/health"
	"github.com/tair/storefront/internal/storefront/middleware"
)

// ProvideCatalogClient provides the anonymous catalog API client. Sessions
// derive authenticated copies from it.
func ProvideCatalogClient(cfg *config.Config) *gateway.Client {
	return gateway.NewClient(cfg.Catalog.Gateway(), nil)
}

// ProvideFallback provides the bundled demo catalog
func ProvideFallback() (handler.Fallback, error) {
	products, err := fallback.Products()
	if err != nil {
		return nil, err
	}
	return handler.Fallback(products), nil
}

// ProvideSessions keeps session tokens in Redis, or in memory without it
func ProvideSessions(cfg *config.Config, redisClient *redis.Client) auth.Sessions {
	if redisClient == nil {
		return auth.NewMemorySessions()
	}
	return auth.NewRedisSessions(redisClient, cfg.SessionTTL)
}

// ProvideCatalogRefresher drops the cached catalog after admin changes
func ProvideCatalogRefresher(redisClient *redis.Client) form.Refresher {
	return middleware.NewCacheInvalidator(redisClient)
}

// ProvideHandlerOptions provides the handler tuning from config
func ProvideHandlerOptions(cfg *config.Config) handler.Options {
	return handler.Options{
		FetchLimit:  cfg.Catalog.FetchLimit,
		ImageFolder: cfg.MediaFolder,
	}
}

// ProvideHealthChecker checks the catalog API and, when configured, Redis
func ProvideHealthChecker(cfg *config.Config, client *gateway.Client, redisClient *redis.Client) *health.Checker {
	deps := map[string]health.Pinger{
		"catalog_api": client,
	}
	if redisClient != nil {
		deps["redis"] = health.PingFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}
	return health.NewChecker(cfg.ServiceName, "catalog_api", deps, client.Breaker().Stats)
}
