package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Counter keeps fixed-window request counters.
type Counter struct {
	client *redis.Client
}

func NewCounter(client *redis.Client) *Counter {
	return &Counter{client: client}
}

// Incr bumps key and returns the new count. The key expires with the window
// it was created in.
func (c *Counter) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	fullKey := "rl:" + key

	pipe := c.client.Pipeline()
	incr := pipe.Incr(ctx, fullKey)
	pipe.ExpireNX(ctx, fullKey, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}
