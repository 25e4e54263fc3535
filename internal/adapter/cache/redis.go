package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"caselaw/internal/domain"
	"caselaw/internal/logger"
)

// RedisCache shares search pages between processes through Redis.
// Failures to read or write the cache are logged and treated as misses.
type RedisCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	group  singleflight.Group
	logger *slog.Logger
}

// NewRedisCache connects to addr and verifies the connection with a PING.
func NewRedisCache(ctx context.Context, addr string, ttl time.Duration) (*RedisCache, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &RedisCache{
		rdb:    rdb,
		ttl:    ttl,
		logger: logger.WithComponent("query-cache"),
	}, nil
}

func (c *RedisCache) get(ctx context.Context, key string) (*domain.SearchPage, bool) {
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		return nil, false
	}
	var page domain.SearchPage
	if err := json.Unmarshal(data, &page); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		return nil, false
	}
	return &page, true
}

func (c *RedisCache) set(ctx context.Context, key string, page *domain.SearchPage) {
	data, err := json.Marshal(page)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

func (c *RedisCache) GetOrCompute(ctx context.Context, key string, fn func(context.Context) (*domain.SearchPage, error)) (*domain.SearchPage, bool, error) {
	if page, ok := c.get(ctx, key); ok {
		return page, true, nil
	}
	ch := c.group.DoChan(key, func() (interface{}, error) {
		shared := context.WithoutCancel(ctx)
		if page, ok := c.get(shared, key); ok {
			return page, nil
		}
		page, err := fn(shared)
		if err != nil {
			return nil, err
		}
		c.set(shared, key, page)
		return page, nil
	})
	return wait(ctx, ch)
}

// Invalidate deletes every search page key.
func (c *RedisCache) Invalidate(ctx context.Context) error {
	var deleted int64
	iter := c.rdb.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to delete key %s: %w", iter.Val(), err)
		}
		deleted++
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cache keys: %w", err)
	}
	c.logger.Info("cache invalidated", "keys_deleted", deleted)
	return nil
}

func (c *RedisCache) Close() error {
	return c.rdb.Close()
}
