package startup

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/BunnySweety/kollab-sub001/internal/entry"
	"github.com/BunnySweety/kollab-sub001/internal/platform/config"
	"github.com/BunnySweety/kollab-sub001/internal/schema"
	"github.com/BunnySweety/kollab-sub001/internal/table"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Services 是各功能模块装配好的服务实例
type Services struct {
	Schemas *schema.Service
	Entries *entry.Service
	Tables  *table.Service
	// Cache 在 Redis 未启用时为 nil
	Cache *schema.RedisCache
}

// InitializeApplication 是应用启动时执行的总入口：迁移所有表结构
func InitializeApplication(db *gorm.DB) error {
	slog.Info("开始应用初始化...")

	if err := schema.Migrate(db); err != nil {
		return err
	}
	if err := entry.Migrate(db); err != nil {
		return err
	}

	slog.Info("应用初始化完成")
	return nil
}

// BuildServices 按配置装配服务。rdb 为 nil 时 schema 读取不经过缓存。
func BuildServices(db *gorm.DB, rdb *redis.Client, cfg *config.Config) (*Services, error) {
	loc, err := cfg.Table.Location()
	if err != nil {
		return nil, err
	}

	out := &Services{}
	var cache schema.Cache
	if rdb != nil {
		out.Cache = schema.NewRedisCache(rdb, cfg.Redis.SchemaCacheTTL)
		cache = out.Cache
	}
	out.Schemas = schema.NewService(schema.NewRepository(db), cache)
	out.Entries = entry.NewService(entry.NewRepository(db), out.Schemas, entry.Options{
		Location:        loc,
		BulkConcurrency: cfg.Table.BulkConcurrency,
		MaxBulkSize:     cfg.Table.MaxBulkSize,
	})
	out.Tables = table.NewService(out.Schemas, out.Entries, loc)
	return out, nil
}

// HandleRedisRecovery 在Redis从不健康状态恢复时清空 schema 缓存。
// 不可用期间的写操作无法删除缓存条目，残留的旧 schema 必须在重新启用缓存前清掉。
func (s *Services) HandleRedisRecovery(ctx context.Context) error {
	if s.Cache == nil {
		return nil
	}
	slog.Info("检测到Redis已恢复，正在清空schema缓存...")
	if err := s.Cache.Purge(ctx); err != nil {
		return fmt.Errorf("清空schema缓存失败: %w", err)
	}
	return nil
}
