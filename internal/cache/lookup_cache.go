package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/records-service/internal/domain"
	"github.com/spec-kit/records-service/internal/events"
)

const keyPrefix = "lookup:"

// LookupCache stores serialized full-listing payloads per entity kind so the
// export and lookup-assist endpoints do not rescan the store on every hit.
// Cache failures degrade to direct reads; they are logged, never surfaced.
type LookupCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewLookupCache builds the cache. A nil client disables caching.
func NewLookupCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *LookupCache {
	return &LookupCache{client: client, ttl: ttl, logger: logger}
}

// Get returns the cached payload for the entity kind, if present.
func (c *LookupCache) Get(ctx context.Context, kind domain.EntityKind) ([]byte, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	payload, err := c.client.Get(ctx, keyPrefix+string(kind)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("lookup cache read failed", zap.String("entity", string(kind)), zap.Error(err))
		}
		return nil, false
	}
	return payload, true
}

// Set stores the payload for the entity kind with the configured TTL.
func (c *LookupCache) Set(ctx context.Context, kind domain.EntityKind, payload []byte) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Set(ctx, keyPrefix+string(kind), payload, c.ttl).Err(); err != nil {
		c.logger.Warn("lookup cache write failed", zap.String("entity", string(kind)), zap.Error(err))
	}
}

// Invalidate drops the cached payload for the entity kind.
func (c *LookupCache) Invalidate(ctx context.Context, kind domain.EntityKind) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, keyPrefix+string(kind)).Err(); err != nil {
		c.logger.Warn("lookup cache invalidation failed", zap.String("entity", string(kind)), zap.Error(err))
	}
}

// RegisterInvalidation subscribes the cache to every lifecycle event so any
// mutation drops the stale listing for the mutated entity kind.
func (c *LookupCache) RegisterInvalidation(dispatcher events.Dispatcher) {
	if c == nil || dispatcher == nil {
		return
	}
	handler := func(ctx context.Context, event events.Event) error {
		c.Invalidate(ctx, event.Entity)
		return nil
	}
	dispatcher.Subscribe(events.EventRecordCreated, handler)
	dispatcher.Subscribe(events.EventRecordUpdated, handler)
	dispatcher.Subscribe(events.EventRecordArchived, handler)
	dispatcher.Subscribe(events.EventRecordRestored, handler)
	dispatcher.Subscribe(events.EventRecordPurged, handler)
}
