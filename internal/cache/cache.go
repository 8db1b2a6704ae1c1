// Package cache stores rendered view JSON keyed by dataset version and
// request.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/RossFW/atlas-conquest/internal/analytics/view"
)

// DefaultTTL bounds how long a rendered view is kept.
const DefaultTTL = 10 * time.Minute

const keyPrefix = "view:"

// ViewCache caches rendered views. A miss is (nil, false, nil).
type ViewCache interface {
	Get(ctx context.Context, version uint64, req view.Request) ([]byte, bool, error)
	Set(ctx context.Context, version uint64, req view.Request, data []byte) error
	// Purge drops entries rendered from any version other than keep.
	Purge(ctx context.Context, keep uint64) (int, error)
	Close() error
}

// Key is the cache key of a rendered view.
func Key(version uint64, req view.Request) string {
	return keyPrefix + strconv.FormatUint(version, 10) + ":" + req.Key()
}

// RedisCache is a ViewCache backed by Redis.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache wraps an existing client.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisCache{client: client, ttl: ttl}
}

// Open connects to the Redis server at url and verifies it responds.
func Open(ctx context.Context, url string, ttl time.Duration) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return NewRedisCache(client, ttl), nil
}

func (c *RedisCache) Get(ctx context.Context, version uint64, req view.Request) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, Key(version, req)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get cached view: %w", err)
	}
	return data, true, nil
}

func (c *RedisCache) Set(ctx context.Context, version uint64, req view.Request, data []byte) error {
	if err := c.client.Set(ctx, Key(version, req), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache view: %w", err)
	}
	return nil
}

func (c *RedisCache) Purge(ctx context.Context, keep uint64) (int, error) {
	current := keyPrefix + strconv.FormatUint(keep, 10) + ":"

	var (
		cursor  uint64
		deleted int
	)
	for {
		keys, next, err := c.client.Scan(ctx, cursor, keyPrefix+"*", 100).Result()
		if err != nil {
			return deleted, fmt.Errorf("scan cached views: %w", err)
		}

		var stale []string
		for _, k := range keys {
			if !strings.HasPrefix(k, current) {
				stale = append(stale, k)
			}
		}
		if len(stale) > 0 {
			n, err := c.client.Del(ctx, stale...).Result()
			if err != nil {
				return deleted, fmt.Errorf("delete cached views: %w", err)
			}
			deleted += int(n)
		}

		cursor = next
		if cursor == 0 {
			return deleted, nil
		}
	}
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Noop is a ViewCache that never stores anything.
type Noop struct{}

func (Noop) Get(context.Context, uint64, view.Request) ([]byte, bool, error) { return nil, false, nil }
func (Noop) Set(context.Context, uint64, view.Request, []byte) error { return nil }
func (Noop) Purge(context.Context, uint64) (int, error) { return 0, nil }
func (Noop) Close() error { return nil }
