//go:build wireinject
// +build wireinject

package storefront

import (
	"github.com/google/wire"
	"github.com/redis/go-redis/v9"

	"github.com/tair/storefront/internal/catalog/form"
	"github.com/tair/storefront/internal/media"
	"github.com/tair/storefront/internal/storefront/config"
	"github.com/tair/storefront/internal/storefront/handler"
)

// Wire sets
var CatalogSet = wire.NewSet(
	ProvideCatalogClient,
	ProvideFallback,
)

var SessionSet = wire.NewSet(
	ProvideSessions,
)

var HTTPSet = wire.NewSet(
	ProvideCatalogRefresher,
	ProvideHandlerOptions,
	handler.NewHandler,
	ProvideHealthChecker,
	NewServer,
)

// InitializeServer initializes the storefront server with all dependencies
func InitializeServer(cfg *config.Config, redisClient *redis.Client, images media.Store, notifier form.ChangeNotifier) (*Server, error) {
	wire.Build(
		CatalogSet,
		SessionSet,
		HTTPSet,
	)
	return nil, nil
}
