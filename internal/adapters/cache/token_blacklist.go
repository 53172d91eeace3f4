package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/AchilleasB/sangria/donor-service/internal/config"
	"github.com/AchilleasB/sangria/donor-service/internal/core/ports"
)

const blacklistPrefix = "blacklist:"

// Cmdable is the subset of the go-redis client the blacklist uses.
type Cmdable interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisTokenBlacklist stores revoked token ids as expiring Redis keys.
type RedisTokenBlacklist struct {
	client Cmdable
	cb     *gobreaker.CircuitBreaker
}

var _ ports.TokenBlacklist = (*RedisTokenBlacklist)(nil)

func NewRedisTokenBlacklist(client Cmdable, logger *zap.Logger) *RedisTokenBlacklist {
	return &RedisTokenBlacklist{
		client: client,
		cb:     config.NewCircuitBreaker("Redis-Blacklist", logger),
	}
}

func (b *RedisTokenBlacklist) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.client.Set(ctx, blacklistPrefix+tokenID, "revoked", ttl).Err()
	})
	return err
}

// IsRevoked fails closed: callers treat an error as a revoked token.
func (b *RedisTokenBlacklist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := b.cb.Execute(func() (interface{}, error) {
		return b.client.Exists(ctx, blacklistPrefix+tokenID).Result()
	})
	if err != nil {
		return false, err
	}
	return n.(int64) > 0, nil
}
