package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/tair/storefront/pkg/logger"
)

// CachePrefix namespaces every cached catalog response
const CachePrefix = "catalog:cache:"

// CacheConfig holds cache configuration
type CacheConfig struct {
	TTL              time.Duration // How long a catalog response stays cached
	CacheableMethods []string      // HTTP methods to cache
	CacheableStatus  []int         // HTTP status codes to cache
}

// DefaultCacheConfig returns default cache configuration
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		TTL:              5 * time.Minute,
		CacheableMethods: []string{fiber.MethodGet, fiber.MethodHead},
		CacheableStatus:  []int{fiber.StatusOK},
	}
}

// CacheMiddleware caches catalog responses in Redis. Responses are public
// catalog data, so the key ignores the session.
func CacheMiddleware(redisClient *redis.Client, config CacheConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if redisClient == nil {
			return c.Next()
		}
		if !contains(config.CacheableMethods, c.Method()) {
			return c.Next()
		}

		ctx := c.UserContext()
		cacheKey := generateCacheKey(c)

		cached, err := redisClient.Get(ctx, cacheKey).Bytes()
		if err == nil && len(cached) > 0 {
			cacheLookups.WithLabelValues("hit").Inc()
			logger.Debug(ctx).
				Str("path", c.Path()).
				Str("cache_key", cacheKey).
				Msg("Cache hit")

			c.Set("X-Cache", "HIT")
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			return c.Send(cached)
		}
		cacheLookups.WithLabelValues("miss").Inc()

		err = c.Next()

		if err != nil || !contains(config.CacheableStatus, c.Response().StatusCode()) {
			return err
		}
		if string(c.Response().Header.Peek(fiber.HeaderCacheControl)) == "no-store" {
			c.Set("X-Cache", "BYPASS")
			return nil
		}

		body := c.Response().Body()
		if setErr := redisClient.Set(ctx, cacheKey, body, config.TTL).Err(); setErr != nil {
			logger.Warn(ctx).
				Err(setErr).
				Str("cache_key", cacheKey).
				Msg("Failed to cache response")
		} else {
			logger.Debug(ctx).
				Str("path", c.Path()).
				Str("cache_key", cacheKey).
				Dur("ttl", config.TTL).
				Int("size", len(body)).
				Msg("Response cached")
		}
		c.Set("X-Cache", "MISS")

		return err
	}
}

// generateCacheKey hashes method, path and query string
func generateCacheKey(c *fiber.Ctx) string {
	keyComponents := fmt.Sprintf("%s:%s:%s",
		c.Method(),
		c.Path(),
		string(c.Request().URI().QueryString()),
	)

	hash := sha256.Sum256([]byte(keyComponents))
	return CachePrefix + hex.EncodeToString(hash[:])
}

func contains[T comparable](items []T, item T) bool {
	for _, it := range items {
		if it == item {
			return true
		}
	}
	return false
}

// InvalidateCache drops every cached catalog response
func InvalidateCache(ctx context.Context, redisClient *redis.Client) error {
	if redisClient == nil {
		return nil
	}

	iter := redisClient.Scan(ctx, 0, CachePrefix+"*", 0).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cached responses: %w", err)
	}

	if len(keys) > 0 {
		if err := redisClient.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("failed to delete cached responses: %w", err)
		}

		logger.Info(ctx).
			Int("count", len(keys)).
			Msg("Catalog cache invalidated")
	}

	return nil
}

// CacheInvalidator drops cached catalog responses once a product change is
// saved, so the next catalog read goes upstream.
type CacheInvalidator struct {
	redis *redis.Client
}

// NewCacheInvalidator creates an invalidator. A nil client makes Reload a no-op.
func NewCacheInvalidator(redisClient *redis.Client) *CacheInvalidator {
	return &CacheInvalidator{redis: redisClient}
}

// Reload invalidates the catalog cache
func (i *CacheInvalidator) Reload(ctx context.Context) error {
	return InvalidateCache(ctx, i.redis)
}
