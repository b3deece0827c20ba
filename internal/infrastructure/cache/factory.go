package cache

import (
	"fmt"
	"time"

	"github.com/agentbill/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// SnapshotCacheFactory creates snapshot providers based on configuration
type SnapshotCacheFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	ttl                   time.Duration
	allowInMemoryFallback bool
}

// SnapshotCacheFactoryOption is a functional option for configuring the factory
type SnapshotCacheFactoryOption func(*SnapshotCacheFactory)

// WithFactoryLogger sets the logger for the factory
func WithFactoryLogger(logger *zap.Logger) SnapshotCacheFactoryOption {
	return func(f *SnapshotCacheFactory) {
		f.logger = logger
	}
}

// WithFactoryTTL sets the cache entry TTL for whichever cache is created.
// Zero keeps each cache's default.
func WithFactoryTTL(ttl time.Duration) SnapshotCacheFactoryOption {
	return func(f *SnapshotCacheFactory) {
		f.ttl = ttl
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory cache
// when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) SnapshotCacheFactoryOption {
	return func(f *SnapshotCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewSnapshotCacheFactory creates a new factory
func NewSnapshotCacheFactory(cfg config.RedisConfig, opts ...SnapshotCacheFactoryOption) *SnapshotCacheFactory {
	f := &SnapshotCacheFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateProvider creates a snapshot provider in front of the given upstream.
// It tries Redis first and falls back to the in-memory cache when Redis is
// unavailable and fallback is allowed.
func (f *SnapshotCacheFactory) CreateProvider(upstream SnapshotProvider) (SnapshotProvider, error) {
	redisOpts := []RedisSnapshotCacheOption{WithSnapshotLogger(f.logger)}
	if f.ttl > 0 {
		redisOpts = append(redisOpts, WithSnapshotTTL(f.ttl))
	}
	redisCache, err := NewRedisSnapshotCache(RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	}, upstream, redisOpts...)
	if err == nil {
		f.logger.Info("using Redis snapshot cache",
			zap.String("host", f.redisConfig.Host),
			zap.Int("port", f.redisConfig.Port))
		return redisCache, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("failed to create Redis snapshot cache: %w", err)
	}

	f.logger.Warn("Redis unavailable, using in-memory snapshot cache",
		zap.Error(err))
	memOpts := []InMemorySnapshotCacheOption{WithInMemoryLogger(f.logger)}
	if f.ttl > 0 {
		memOpts = append(memOpts, WithInMemoryTTL(f.ttl))
	}
	return NewInMemorySnapshotCache(upstream, memOpts...), nil
}
