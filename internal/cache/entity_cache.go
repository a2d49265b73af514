package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var errStaleVersion = errors.New("cache version changed")

// Entity names used in cache keys.
const (
	EntityDepartment = "department"
	EntityEmployee   = "employee"
	EntityProject    = "project"
)

// EntityCache is a best-effort read-through cache for single records.
// Failures are logged and reported as misses.
type EntityCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger *zap.Logger
}

// NewEntityCache builds a cache on top of an existing client. A nil client
// yields a nil cache, which every method treats as disabled.
func NewEntityCache(client *redis.Client, prefix string, ttl time.Duration, logger *zap.Logger) *EntityCache {
	if client == nil {
		return nil
	}
	return &EntityCache{client: client, prefix: prefix, ttl: ttl, logger: logger}
}

func (c *EntityCache) key(entity string, id int64) string {
	return fmt.Sprintf("%s:%s:%d", c.prefix, entity, id)
}

// versionKey lives outside the <prefix>:<entity>:* namespace so
// InvalidateEntity never deletes it.
func (c *EntityCache) versionKey(entity string) string {
	return fmt.Sprintf("%s:version:%s", c.prefix, entity)
}

// Get decodes the cached record into dst and reports whether it was found.
func (c *EntityCache) Get(ctx context.Context, entity string, id int64, dst any) bool {
	if c == nil {
		return false
	}
	raw, err := c.client.Get(ctx, c.key(entity, id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("cache get failed", zap.String("entity", entity), zap.Int64("id", id), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		c.logger.Warn("cache decode failed", zap.String("entity", entity), zap.Int64("id", id), zap.Error(err))
		return false
	}
	return true
}

// Version returns the entity type's invalidation generation. Read it before
// loading a record from the store and hand it to SetIfVersion. ok is false
// when the cache is disabled or unreachable.
func (c *EntityCache) Version(ctx context.Context, entity string) (version int64, ok bool) {
	if c == nil {
		return 0, false
	}
	version, err := c.client.Get(ctx, c.versionKey(entity)).Int64()
	switch {
	case errors.Is(err, redis.Nil):
		return 0, true
	case err != nil:
		c.logger.Warn("cache version read failed", zap.String("entity", entity), zap.Error(err))
		return 0, false
	}
	return version, true
}

// SetIfVersion stores value unless the entity type was invalidated after
// version was read. A record loaded before a concurrent update therefore
// never outlives that update's invalidation.
func (c *EntityCache) SetIfVersion(ctx context.Context, entity string, id int64, version int64, value any) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("cache encode failed", zap.String("entity", entity), zap.Int64("id", id), zap.Error(err))
		return
	}

	versionKey := c.versionKey(entity)
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, versionKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != version {
			return errStaleVersion
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, c.key(entity, id), raw, c.ttl)
			return nil
		})
		return err
	}, versionKey)

	switch {
	case err == nil:
	case errors.Is(err, errStaleVersion), errors.Is(err, redis.TxFailedErr):
		c.logger.Debug("cache fill skipped after invalidation", zap.String("entity", entity), zap.Int64("id", id))
	default:
		c.logger.Warn("cache set failed", zap.String("entity", entity), zap.Int64("id", id), zap.Error(err))
	}
}

// Invalidate drops the given records.
func (c *EntityCache) Invalidate(ctx context.Context, entity string, ids ...int64) {
	if c == nil || len(ids) == 0 {
		return
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, c.key(entity, id))
	}
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, c.versionKey(entity))
		pipe.Del(ctx, keys...)
		return nil
	})
	if err != nil {
		c.logger.Warn("cache invalidate failed", zap.String("entity", entity), zap.Error(err))
	}
}

// InvalidateEntity drops every record of one entity type.
func (c *EntityCache) InvalidateEntity(ctx context.Context, entity string) {
	if c == nil {
		return
	}
	if err := c.client.Incr(ctx, c.versionKey(entity)).Err(); err != nil {
		c.logger.Warn("cache invalidate failed", zap.String("entity", entity), zap.Error(err))
		return
	}
	pattern := fmt.Sprintf("%s:%s:*", c.prefix, entity)
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.logger.Warn("cache scan failed", zap.String("entity", entity), zap.Error(err))
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("cache invalidate failed", zap.String("entity", entity), zap.Error(err))
	}
}
