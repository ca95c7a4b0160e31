package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tair/storefront/pkg/logger"
)

// RedisSessions stores session tokens in Redis under session:<id>:token
type RedisSessions struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSessions creates a Redis-backed session token registry
func NewRedisSessions(client *redis.Client, ttl time.Duration) *RedisSessions {
	return &RedisSessions{client: client, ttl: ttl}
}

func (r *RedisSessions) ForSession(sessionID string) TokenStore {
	return &RedisTokenStore{
		client: r.client,
		key:    fmt.Sprintf("session:%s:token", sessionID),
		ttl:    r.ttl,
	}
}

// RedisTokenStore is the token of a single browser session
type RedisTokenStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

func (s *RedisTokenStore) Get(ctx context.Context) (string, bool) {
	token, err := s.client.Get(ctx, s.key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warn(ctx).Err(err).Str("key", s.key).Msg("Failed to read session token")
		}
		return "", false
	}
	if !Usable(token) {
		return "", false
	}
	return token, true
}

func (s *RedisTokenStore) Set(ctx context.Context, token string) error {
	if err := s.client.Set(ctx, s.key, strings.TrimSpace(token), s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session token: %w", err)
	}
	return nil
}

func (s *RedisTokenStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("failed to clear session token: %w", err)
	}
	return nil
}
