package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Counter hands out sequence values with INCR, which is atomic on the server.
// Key format: counter:<key>
type Counter struct {
	client *redis.Client
}

func NewCounter(client *redis.Client) *Counter {
	return &Counter{client: client}
}

func (c *Counter) Increment(ctx context.Context, key string) (int64, error) {
	n, err := c.client.Incr(ctx, "counter:"+key).Result()
	if err != nil {
		return 0, fmt.Errorf("increment counter %s: %w", key, err)
	}
	return n, nil
}
