// Package redis wraps go-redis for the advisory caches that keep NodePort
// claims and metadata-registration state consistent across process restarts
// and horizontally-scaled replicas (see internal/deployment and
// internal/reporter for the consumers).
package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/intend-project/inserv-orch/internal/config"
	"github.com/redis/go-redis/v9"
)

// Client wraps the Redis client.
type Client struct {
	client *redis.Client
	logger *slog.Logger
}

// NewClient creates a new Redis client and verifies connectivity.
func NewClient(cfg *config.RedisConfig, logger *slog.Logger) (*Client, error) {
	opt := &redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	logger.Info("connected to redis", "host", cfg.Host, "port", cfg.Port, "db", cfg.DB)
	return &Client{client: client, logger: logger}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

// SetNX claims a key exactly once; returns false if another process already
// holds it. The NodePort and metadata caches use SAdd/SMembers, not SetNX.
func (c *Client) SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, key, value, ttl).Result()
}

func (c *Client) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.client.Exists(ctx, key).Result()
	return n > 0, err
}

func (c *Client) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// SMembers returns every member of a set key (used to scan claimed NodePorts
// for a cluster across the reporter/deployment-engine's replicas).
func (c *Client) SMembers(ctx context.Context, key string) ([]string, error) {
	return c.client.SMembers(ctx, key).Result()
}

func (c *Client) SAdd(ctx context.Context, key string, members ...interface{}) error {
	return c.client.SAdd(ctx, key, members...).Err()
}
