package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tair/storefront/internal/catalog/gateway"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{"STOREFRONT_PORT", "CATALOG_API_URLS", "CATALOG_API_TIMEOUT", "KAFKA_BROKERS", "CATALOG_CACHE_TTL"} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig()

	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, []string{gateway.DefaultBaseURL}, cfg.Catalog.BaseURLs)
	assert.Equal(t, 10*time.Second, cfg.Catalog.Timeout)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadConfig_FromEnvironment(t *testing.T) {
	t.Setenv("CATALOG_API_URLS", "http://a:1, ,http://b:2")
	t.Setenv("CATALOG_API_TIMEOUT", "3")
	t.Setenv("CATALOG_CACHE_TTL", "90s")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("LOGIN_RATE_LIMIT", "nope")
	t.Setenv("ENVIRONMENT", "production")

	cfg := LoadConfig()

	assert.Equal(t, []string{"http://a:1", "http://b:2"}, cfg.Catalog.BaseURLs)
	assert.Equal(t, 3*time.Second, cfg.Catalog.Timeout)
	assert.Equal(t, 90*time.Second, cfg.CacheTTL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 10, cfg.LoginRateLimit)
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, cfg.Catalog.BaseURLs, cfg.Catalog.Gateway().BaseURLs)
}
