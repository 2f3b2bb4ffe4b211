// Package redis provides a Redis-backed implementation of storage.SuggestionCache.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/mmynk/mealsplit/internal/storage"
)

// keyPrefix namespaces cache keys in a shared Redis.
const keyPrefix = "mealsplit:suggest:"

// Ensure Cache implements storage.SuggestionCache
var _ storage.SuggestionCache = (*Cache)(nil)

// Cache stores suggestion responses in Redis with per-key expiry.
type Cache struct {
	client *goredis.Client
}

// New connects to the Redis server at redisURL (redis://host:port/db).
func New(ctx context.Context, redisURL string) (*Cache, error) {
	opt, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := goredis.NewClient(opt)

	// Test connection
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	slog.Info("Redis connection established", "addr", opt.Addr)
	return &Cache{client: client}, nil
}

// Get retrieves entries for key.
func (c *Cache) Get(ctx context.Context, key string) ([]string, bool, error) {
	data, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get suggestion: %w", err)
	}

	var entries []string
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, false, fmt.Errorf("failed to decode suggestion: %w", err)
	}
	return entries, true, nil
}

// Put stores entries with expiration.
func (c *Cache) Put(ctx context.Context, key string, entries []string, ttl time.Duration) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode suggestion: %w", err)
	}
	if err := c.client.Set(ctx, keyPrefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store suggestion: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (c *Cache) Close() error {
	return c.client.Close()
}
