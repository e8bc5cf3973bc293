package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	red "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"download-service/internal/config"
	"download-service/internal/rbac"
)

const (
	defaultRoleKeyPrefix = "download:role"
	redisPingTimeout     = 5 * time.Second
)

// NewRedisClient connects to Redis and verifies the connection with a ping.
func NewRedisClient(cfg config.RedisConfig, logger *zap.Logger) (*red.Client, error) {
	client := red.NewClient(&red.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,

		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   1,

		DialTimeout:  5 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	logger.Info("Redis connection established",
		zap.String("addr", cfg.Addr),
		zap.Int("db", cfg.DB),
	)

	return client, nil
}

// RedisRoleCache keeps identity roles in Redis so every instance shares them.
type RedisRoleCache struct {
	client *red.Client
	prefix string
	ttl    time.Duration
}

func NewRedisRoleCache(client *red.Client, keyPrefix string, ttl time.Duration) *RedisRoleCache {
	prefix := strings.TrimSpace(keyPrefix)
	if prefix == "" {
		prefix = defaultRoleKeyPrefix
	}

	return &RedisRoleCache{client: client, prefix: prefix, ttl: ttlOrDefault(ttl)}
}

func (c *RedisRoleCache) Get(ctx context.Context, identityID string) (rbac.Role, bool, error) {
	value, err := c.client.Get(ctx, c.key(identityID)).Result()
	if err != nil {
		if errors.Is(err, red.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("redis get role: %w", err)
	}

	return rbac.Role(value), true, nil
}

func (c *RedisRoleCache) Set(ctx context.Context, identityID string, role rbac.Role) error {
	if err := c.client.Set(ctx, c.key(identityID), string(role), c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set role: %w", err)
	}
	return nil
}

func (c *RedisRoleCache) key(identityID string) string {
	return c.prefix + ":" + identityID
}
