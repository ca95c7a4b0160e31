package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/storage"
	"github.com/redis/go-redis/v9"

	"github.com/tair/storefront/internal/catalog/form"
	"github.com/tair/storefront/internal/media"
	"github.com/tair/storefront/internal/storefront"
	"github.com/tair/storefront/internal/storefront/config"
	"github.com/tair/storefront/kafka"
	"github.com/tair/storefront/pkg/logger"
	"github.com/tair/storefront/pkg/tracing"
)

const version = "1.0.0"

func main() {
	cfg := config.LoadConfig()

	// Initialize logger
	logger.Init(cfg.ServiceName, cfg.IsDevelopment())
	logger.SetLevel(cfg.LogLevel)

	logger.Logger.Info().
		Str("service", cfg.ServiceName).
		Str("environment", cfg.Environment).
		Msg("Starting storefront")

	// Initialize tracer
	tp, err := tracing.InitTracer(cfg.ServiceName, version, cfg.JaegerEndpoint)
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to initialize tracer")
	} else {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracing.Shutdown(ctx, tp); err != nil {
				logger.Logger.Error().Err(err).Msg("Failed to shutdown tracer")
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisClient := connectRedis(ctx, cfg)
	if redisClient != nil {
		defer redisClient.Close()
	}

	images, closeImages := openMediaStore(ctx, cfg)
	defer closeImages()

	var notifier form.ChangeNotifier
	if len(cfg.KafkaBrokers) > 0 {
		publisher, err := kafka.NewPublisher(cfg.KafkaBrokers)
		if err != nil {
			logger.Logger.Warn().Err(err).Msg("Kafka publisher unavailable - product changes will not be broadcast")
		} else {
			defer publisher.Close()
			notifier = publisher
		}
	} else {
		logger.Logger.Warn().Msg("KAFKA_BROKERS not set - product changes will not be broadcast")
	}

	server, err := storefront.InitializeServer(cfg, redisClient, images, notifier)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize storefront")
	}

	if len(cfg.KafkaBrokers) > 0 && redisClient != nil {
		consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaGroupID, []string{kafka.TopicProductChanged})
		if err != nil {
			logger.Logger.Warn().Err(err).Msg("Kafka consumer unavailable - catalog cache expires by TTL only")
		} else {
			defer consumer.Close()
			consumer.RegisterHandler(kafka.EventTypeProductChanged, func(ctx context.Context, event kafka.ProductChangedEvent) error {
				return server.InvalidateCatalogCache(ctx)
			})
			if err := consumer.Start(ctx); err != nil {
				logger.Logger.Error().Err(err).Msg("Failed to start Kafka consumer")
			}
		}
	}

	go func() {
		if err := server.Listen(); err != nil {
			logger.Logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Graceful shutdown
	<-ctx.Done()
	logger.Logger.Info().Msg("Shutting down storefront...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Logger.Info().Msg("Storefront stopped")
}

// connectRedis returns nil when Redis is unreachable; caching, rate limiting
// and shared sessions are then disabled.
func connectRedis(ctx context.Context, cfg *config.Config) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Logger.Warn().
			Err(err).
			Str("redis_addr", cfg.RedisAddr).
			Msg("Failed to connect to Redis - cache, rate limiting and shared sessions disabled")
		_ = client.Close()
		return nil
	}

	logger.Logger.Info().
		Str("redis_addr", cfg.RedisAddr).
		Msg("Connected to Redis")
	return client
}

// openMediaStore uses the bucket when configured, process memory otherwise
func openMediaStore(ctx context.Context, cfg *config.Config) (media.Store, func()) {
	if cfg.MediaBucket == "" {
		logger.Logger.Warn().
			Str("base_url", cfg.MediaBaseURL).
			Msg("MEDIA_BUCKET not set - product images are kept in memory")
		return media.NewMemoryStore(cfg.MediaBaseURL), func() {}
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to create storage client - product images are kept in memory")
		return media.NewMemoryStore(cfg.MediaBaseURL), func() {}
	}

	logger.Logger.Info().Str("bucket", cfg.MediaBucket).Msg("Product images stored in bucket")
	return media.NewGCSStore(client, cfg.MediaBucket), func() {
		if err := client.Close(); err != nil {
			logger.Logger.Warn().Err(err).Msg("Failed to close storage client")
		}
	}
}
