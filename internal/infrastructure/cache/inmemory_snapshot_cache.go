package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/agentbill/backend/internal/domain/billing"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultCleanupInterval = 30 * time.Second

// InMemorySnapshotCache caches model snapshots in process memory in front
// of an upstream provider. Suitable for single-instance deployments and
// testing; instances do not share invalidations.
type InMemorySnapshotCache struct {
	snapshots sync.Map // map[string]*snapshotEntry
	upstream  SnapshotProvider
	ttl       time.Duration
	logger    *zap.Logger
	stopCh    chan struct{}
	stopped   int32

	hits   int64
	misses int64
}

type snapshotEntry struct {
	snapshot  billing.ModelSnapshot
	expiresAt time.Time
}

func (e *snapshotEntry) isExpired() bool {
	return time.Now().After(e.expiresAt)
}

// InMemorySnapshotCacheOption is a functional option for configuring the cache
type InMemorySnapshotCacheOption func(*InMemorySnapshotCache)

// WithInMemoryTTL sets the cache entry TTL
func WithInMemoryTTL(ttl time.Duration) InMemorySnapshotCacheOption {
	return func(c *InMemorySnapshotCache) {
		c.ttl = ttl
	}
}

// WithInMemoryLogger sets the logger for the cache
func WithInMemoryLogger(logger *zap.Logger) InMemorySnapshotCacheOption {
	return func(c *InMemorySnapshotCache) {
		c.logger = logger
	}
}

// NewInMemorySnapshotCache creates a new in-memory snapshot cache
func NewInMemorySnapshotCache(upstream SnapshotProvider, opts ...InMemorySnapshotCacheOption) *InMemorySnapshotCache {
	cache := &InMemorySnapshotCache{
		upstream: upstream,
		ttl:      defaultSnapshotTTL,
		logger:   zap.NewNop(),
		stopCh:   make(chan struct{}),
	}

	for _, opt := range opts {
		opt(cache)
	}

	go cache.cleanupExpired()

	return cache
}

func (c *InMemorySnapshotCache) cacheKey(orgID, modelID uuid.UUID) string {
	return orgID.String() + ":" + modelID.String()
}

// Snapshot returns the cached snapshot or loads it from the upstream
func (c *InMemorySnapshotCache) Snapshot(ctx context.Context, orgID, modelID uuid.UUID) (billing.ModelSnapshot, error) {
	key := c.cacheKey(orgID, modelID)

	if value, ok := c.snapshots.Load(key); ok {
		entry := value.(*snapshotEntry)
		if !entry.isExpired() {
			atomic.AddInt64(&c.hits, 1)
			return entry.snapshot, nil
		}
		c.snapshots.Delete(key)
	}
	atomic.AddInt64(&c.misses, 1)

	snapshot, err := c.upstream.Snapshot(ctx, orgID, modelID)
	if err != nil {
		return billing.ModelSnapshot{}, err
	}

	c.snapshots.Store(key, &snapshotEntry{
		snapshot:  snapshot,
		expiresAt: time.Now().Add(c.ttl),
	})

	return snapshot, nil
}

// Invalidate removes the cached snapshot for a model
func (c *InMemorySnapshotCache) Invalidate(ctx context.Context, orgID, modelID uuid.UUID) error {
	c.snapshots.Delete(c.cacheKey(orgID, modelID))
	return nil
}

// Stats returns cache hit/miss counters
func (c *InMemorySnapshotCache) Stats() (hits, misses int64) {
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses)
}

// Stop terminates the background cleanup goroutine
func (c *InMemorySnapshotCache) Stop() {
	if atomic.CompareAndSwapInt32(&c.stopped, 0, 1) {
		close(c.stopCh)
	}
}

// cleanupExpired periodically evicts expired entries
func (c *InMemorySnapshotCache) cleanupExpired() {
	ticker := time.NewTicker(defaultCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.snapshots.Range(func(key, value any) bool {
				if value.(*snapshotEntry).isExpired() {
					c.snapshots.Delete(key)
				}
				return true
			})
		}
	}
}
