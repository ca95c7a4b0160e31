package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tair/storefront/internal/catalog/gateway"
	"github.com/tair/storefront/internal/catalog/form"
	"github.com/tair/storefront/pkg/tracing"
)

// CatalogConfig holds configuration for the remote catalog API
type CatalogConfig struct {
	BaseURLs           []string
	Timeout            time.Duration
	BreakerMaxFailures int
	BreakerCooldown    time.Duration
	FetchLimit         int
}

// Gateway converts the catalog settings into a client configuration
func (c CatalogConfig) Gateway() gateway.Config {
	return gateway.Config{
		BaseURLs:           c.BaseURLs,
		Timeout:            c.Timeout,
		BreakerMaxFailures: c.BreakerMaxFailures,
		BreakerCooldown:    c.BreakerCooldown,
	}
}

// Config holds the storefront configuration
type Config struct {
	Port           string
	Environment    string
	LogLevel       string
	ServiceName    string
	JaegerEndpoint string

	Catalog CatalogConfig

	RedisAddr     string
	RedisPassword string
	CacheTTL      time.Duration
	SessionTTL    time.Duration
	SessionCookie string

	LoginRateLimit  int
	LoginRateWindow time.Duration

	KafkaBrokers []string
	KafkaGroupID string

	MediaBucket  string
	MediaFolder  string
	MediaBaseURL string

	CORSAllowedOrigins string
}

// IsDevelopment reports whether console logging should be used
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// LoadConfig loads the storefront configuration from the environment
func LoadConfig() *Config {
	return &Config{
		Port:           getEnv("STOREFRONT_PORT", "8000"),
		Environment:    getEnv("ENVIRONMENT", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		ServiceName:    getEnv("OTEL_SERVICE_NAME", "storefront"),
		JaegerEndpoint: getEnv("JAEGER_ENDPOINT", tracing.DefaultEndpoint),
		Catalog: CatalogConfig{
			BaseURLs:           getList("CATALOG_API_URLS", gateway.DefaultBaseURL),
			Timeout:            getDuration("CATALOG_API_TIMEOUT", 10*time.Second),
			BreakerMaxFailures: getInt("CATALOG_BREAKER_MAX_FAILURES", 5),
			BreakerCooldown:    getDuration("CATALOG_BREAKER_COOLDOWN", 30*time.Second),
			FetchLimit:         getInt("CATALOG_FETCH_LIMIT", 200),
		},
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		CacheTTL:           getDuration("CATALOG_CACHE_TTL", 5*time.Minute),
		SessionTTL:         getDuration("SESSION_TTL", 24*time.Hour),
		SessionCookie:      getEnv("SESSION_COOKIE", "storefront_session"),
		LoginRateLimit:     getInt("LOGIN_RATE_LIMIT", 10),
		LoginRateWindow:    getDuration("LOGIN_RATE_WINDOW", time.Minute),
		KafkaBrokers:       getList("KAFKA_BROKERS", ""),
		KafkaGroupID:       getEnv("KAFKA_GROUP_ID", "storefront"),
		MediaBucket:        getEnv("MEDIA_BUCKET", ""),
		MediaFolder:        getEnv("MEDIA_FOLDER", form.DefaultImageFolder),
		MediaBaseURL:       getEnv("MEDIA_BASE_URL", "http://localhost:8000/media"),
		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getList(key, defaultValue string) []string {
	var out []string
	for _, item := range strings.Split(getEnv(key, defaultValue), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil && n > 0 {
		return n
	}
	return defaultValue
}

// getDuration accepts Go durations ("90s") or plain seconds ("90")
func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil && d > 0 {
		return d
	}
	if n, err := strconv.Atoi(value); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	return defaultValue
}
