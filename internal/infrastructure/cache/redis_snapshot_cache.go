package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/agentbill/backend/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// defaultSnapshotTTL bounds how stale a cached configuration may be.
// Calculations within the window keep using the snapshot they started with.
const defaultSnapshotTTL = 5 * time.Minute

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// SnapshotProvider is the upstream a cache falls back to on a miss
type SnapshotProvider interface {
	Snapshot(ctx context.Context, orgID, modelID uuid.UUID) (billing.ModelSnapshot, error)
}

// RedisSnapshotCache caches model snapshots in Redis in front of an
// upstream provider. Suitable for distributed deployments where multiple
// instances price against the same configurations.
type RedisSnapshotCache struct {
	client    *redis.Client
	upstream  SnapshotProvider
	keyPrefix string
	ttl       time.Duration
	logger    *zap.Logger
}

// RedisSnapshotCacheOption is a functional option for configuring the cache
type RedisSnapshotCacheOption func(*RedisSnapshotCache)

// WithSnapshotTTL sets the cache entry TTL
func WithSnapshotTTL(ttl time.Duration) RedisSnapshotCacheOption {
	return func(c *RedisSnapshotCache) {
		c.ttl = ttl
	}
}

// WithSnapshotLogger sets the logger for the cache
func WithSnapshotLogger(logger *zap.Logger) RedisSnapshotCacheOption {
	return func(c *RedisSnapshotCache) {
		c.logger = logger
	}
}

// NewRedisSnapshotCache creates a Redis-backed snapshot cache
func NewRedisSnapshotCache(cfg RedisConfig, upstream SnapshotProvider, opts ...RedisSnapshotCacheOption) (*RedisSnapshotCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return newRedisSnapshotCache(client, upstream, opts...), nil
}

// NewRedisSnapshotCacheWithClient creates a cache with an existing Redis client
func NewRedisSnapshotCacheWithClient(client *redis.Client, upstream SnapshotProvider, opts ...RedisSnapshotCacheOption) *RedisSnapshotCache {
	return newRedisSnapshotCache(client, upstream, opts...)
}

func newRedisSnapshotCache(client *redis.Client, upstream SnapshotProvider, opts ...RedisSnapshotCacheOption) *RedisSnapshotCache {
	cache := &RedisSnapshotCache{
		client:    client,
		upstream:  upstream,
		keyPrefix: "billing:snapshot:",
		ttl:       defaultSnapshotTTL,
		logger:    zap.NewNop(),
	}

	for _, opt := range opts {
		opt(cache)
	}

	return cache
}

func (c *RedisSnapshotCache) cacheKey(orgID, modelID uuid.UUID) string {
	return c.keyPrefix + orgID.String() + ":" + modelID.String()
}

// Snapshot returns the cached snapshot or loads it from the upstream.
// Cache failures degrade to the upstream instead of failing the calculation.
func (c *RedisSnapshotCache) Snapshot(ctx context.Context, orgID, modelID uuid.UUID) (billing.ModelSnapshot, error) {
	key := c.cacheKey(orgID, modelID)

	data, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var snapshot billing.ModelSnapshot
		if err := json.Unmarshal(data, &snapshot); err == nil {
			c.logger.Debug("snapshot cache hit", zap.String("key", key))
			return snapshot, nil
		}
		c.logger.Warn("corrupt snapshot cache entry, reloading",
			zap.String("key", key))
	} else if err != redis.Nil {
		c.logger.Warn("snapshot cache read failed, falling back to repository",
			zap.String("key", key),
			zap.Error(err))
	}

	snapshot, err := c.upstream.Snapshot(ctx, orgID, modelID)
	if err != nil {
		return billing.ModelSnapshot{}, err
	}

	if data, err := json.Marshal(snapshot); err == nil {
		if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.logger.Warn("snapshot cache write failed",
				zap.String("key", key),
				zap.Error(err))
		}
	}

	return snapshot, nil
}

// Invalidate removes the cached snapshot for a model, forcing the next
// calculation to observe the current configuration
func (c *RedisSnapshotCache) Invalidate(ctx context.Context, orgID, modelID uuid.UUID) error {
	return c.client.Del(ctx, c.cacheKey(orgID, modelID)).Err()
}

// Close releases the Redis connection
func (c *RedisSnapshotCache) Close() error {
	return c.client.Close()
}
