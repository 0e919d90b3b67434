// Package cache holds the cart badge-count cache. Badge reads happen on every
// screen while writes are rare, so totals are cached per partition and
// invalidated on any cart mutation. A miss or an unreachable Redis falls
// through to the store.
package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Counters caches small integer totals by key.
type Counters interface {
	Get(ctx context.Context, key string) (int, bool)
	Set(ctx context.Context, key string, value int)
	Invalidate(ctx context.Context, key string)
}

// BadgeKey names one (customer, branch) partition's badge entry.
func BadgeKey(customerID, branchID string) string {
	return fmt.Sprintf("badge:%s:%s", customerID, branchID)
}

type redisCounters struct {
	client *redis.Client
	ttl    time.Duration
	logger *log.Logger
}

// NewRedis connects a counter cache to Redis. Entries expire on their own as
// a backstop against missed invalidations.
func NewRedis(addr string, logger *log.Logger) Counters {
	client := redis.NewClient(&redis.Options{Addr: addr})
	return &redisCounters{client: client, ttl: 10 * time.Minute, logger: logger}
}

func (c *redisCounters) Get(ctx context.Context, key string) (int, bool) {
	n, err := c.client.Get(ctx, key).Int()
	if err != nil {
		if err != redis.Nil {
			c.logger.Printf("redis get %s: %v", key, err)
		}
		return 0, false
	}
	return n, true
}

func (c *redisCounters) Set(ctx context.Context, key string, value int) {
	if err := c.client.Set(ctx, key, value, c.ttl).Err(); err != nil {
		c.logger.Printf("redis set %s: %v", key, err)
	}
}

func (c *redisCounters) Invalidate(ctx context.Context, key string) {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.logger.Printf("redis del %s: %v", key, err)
	}
}

type noopCounters struct{}

// Noop disables caching; every read goes to the store.
func Noop() Counters {
	return noopCounters{}
}

func (noopCounters) Get(context.Context, string) (int, bool) { return 0, false }
func (noopCounters) Set(context.Context, string, int)        {}
func (noopCounters) Invalidate(context.Context, string)      {}
