// Package cache stores resolved paper metadata in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/helixir/paper-library-service/internal/config"
	"github.com/helixir/paper-library-service/internal/domain"
	"github.com/helixir/paper-library-service/internal/papersources"
)

const keyPrefix = "paperlib:meta:"

// DefaultTTL applies when the configured TTL is not positive.
const DefaultTTL = 7 * 24 * time.Hour

// MetadataKey is the Redis key for an identifier.
func MetadataKey(id domain.Identifier) string {
	return keyPrefix + string(id.Kind) + ":" + strings.ToLower(id.Value)
}

// MetadataCache is a read-through helper for the metadata resolver. Redis
// failures are logged and reported as misses so lookups keep working.
type MetadataCache struct {
	client redis.Cmdable
	ttl    time.Duration
	logger zerolog.Logger
}

// NewMetadataCache connects to the Redis instance in cfg.
func NewMetadataCache(cfg config.RedisConfig, logger zerolog.Logger) *MetadataCache {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return newMetadataCache(client, cfg.TTL, logger)
}

func newMetadataCache(client redis.Cmdable, ttl time.Duration, logger zerolog.Logger) *MetadataCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MetadataCache{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("component", "metadata_cache").Logger(),
	}
}

// Get returns the cached record for id, if any.
func (c *MetadataCache) Get(ctx context.Context, id domain.Identifier) (*papersources.Metadata, bool) {
	key := MetadataKey(id)
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn().Err(err).Str("key", key).Msg("metadata cache read failed")
		}
		return nil, false
	}

	var m papersources.Metadata
	if err := json.Unmarshal(raw, &m); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("discarding corrupt metadata cache entry")
		_ = c.client.Del(ctx, key).Err()
		return nil, false
	}
	return &m, true
}

// Set stores m under id for the configured TTL.
func (c *MetadataCache) Set(ctx context.Context, id domain.Identifier, m *papersources.Metadata) {
	key := MetadataKey(id)
	raw, err := json.Marshal(m)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("failed to encode metadata for cache")
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("metadata cache write failed")
	}
}

// Ping checks connectivity.
func (c *MetadataCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (c *MetadataCache) Close() error {
	if closer, ok := c.client.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
