package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// DefaultResponseTTL stays under the shortest auto-refresh interval so a
	// scheduled scan never replays the previous one.
	DefaultResponseTTL    = 20 * time.Second
	DefaultResponsePrefix = "relay_response"
)

// ResponseCache stores successful relay response bodies by prompt key so a
// burst of identical scans reaches the model once.
type ResponseCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, body []byte) error
	Close() error
}

type redisResponseCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

func NewRedisResponseCache(addr, password string, db int, ttl time.Duration, prefix string) (ResponseCache, error) {
	if addr == "" {
		return nil, fmt.Errorf("redis addr is required")
	}
	if ttl <= 0 {
		ttl = DefaultResponseTTL
	}
	if prefix == "" {
		prefix = DefaultResponsePrefix
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &redisResponseCache{client: client, ttl: ttl, prefix: prefix}, nil
}

func (c *redisResponseCache) key(k string) string {
	return fmt.Sprintf("%s:%s", c.prefix, k)
}

func (c *redisResponseCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if c == nil || c.client == nil {
		return nil, false, nil
	}
	val, err := c.client.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (c *redisResponseCache) Set(ctx context.Context, key string, body []byte) error {
	if c == nil || c.client == nil || len(body) == 0 {
		return nil
	}
	return c.client.Set(ctx, c.key(key), body, c.ttl).Err()
}

// Ping checks connectivity so binaries can fall back to running uncached.
func Ping(ctx context.Context, c ResponseCache) error {
	rc, ok := c.(*redisResponseCache)
	if !ok || rc == nil || rc.client == nil {
		return nil
	}
	return rc.client.Ping(ctx).Err()
}

func (c *redisResponseCache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
