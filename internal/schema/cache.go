package schema

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/BunnySweety/kollab-sub001/internal/platform/database"
	"github.com/redis/go-redis/v9"
)

// cacheKeyPrefix 是 schema 缓存在 Redis 中的键前缀，完整键为 table:schema:<id>
const cacheKeyPrefix = "table:schema:"

// RedisCache 是 schema 的旁路缓存：读时填充，写后删除。
// Redis 被健康检查标记为不可用时，所有操作直接跳过。
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisCache 创建缓存；rdb 为 nil 时等同于关闭缓存。
func NewRedisCache(rdb *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{rdb: rdb, ttl: ttl}
}

func (c *RedisCache) usable() bool {
	return c != nil && c.rdb != nil && database.IsRedisHealthy()
}

func (c *RedisCache) Get(ctx context.Context, id string) (*Schema, bool) {
	if !c.usable() {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, cacheKeyPrefix+id).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("schema cache read failed", "schema", id, "error", err)
		}
		return nil, false
	}
	var s Schema
	if err := json.Unmarshal(raw, &s); err != nil {
		slog.Warn("schema cache entry unreadable", "schema", id, "error", err)
		return nil, false
	}
	return &s, true
}

func (c *RedisCache) Set(ctx context.Context, s *Schema) {
	if !c.usable() {
		return
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, cacheKeyPrefix+s.ID, raw, c.ttl).Err(); err != nil {
		slog.Warn("schema cache write failed", "schema", s.ID, "error", err)
	}
}

func (c *RedisCache) Invalidate(ctx context.Context, id string) {
	if !c.usable() {
		return
	}
	if err := c.rdb.Del(ctx, cacheKeyPrefix+id).Err(); err != nil {
		slog.Warn("schema cache invalidation failed", "schema", id, "error", err)
	}
}

// Purge 删除所有 schema 缓存条目。它不检查健康标志，
// 供健康检查器在 Redis 从不可用恢复时调用。
func (c *RedisCache) Purge(ctx context.Context) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	var keys []string
	iter := c.rdb.Scan(ctx, 0, cacheKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}
