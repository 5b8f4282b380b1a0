package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/medvend/backend/pkg/config"
)

// Client wraps the shared Redis connection behind the response cache and the
// stock event bus. Both adapters hold the same Client so a single pool serves
// cached catalog reads and the pub/sub channel that invalidates them.
type Client struct {
	client *redis.Client
}

// NewClient connects to Redis and verifies the connection with a ping.
// Fulfillment depends on stock events reaching cache invalidation, so a
// machine that cannot reach Redis fails startup rather than serving stale
// catalog responses.
func NewClient(cfg *config.RedisConfig) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{client: client}, nil
}

// Client returns the underlying go-redis client for adapters that need
// pipeline or pub/sub access.
func (c *Client) Client() *redis.Client {
	return c.client
}

// Close closes the connection pool
func (c *Client) Close() error {
	return c.client.Close()
}

// Ping reports whether Redis is reachable, used by the health endpoint
func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
