package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/BunnySweety/kollab-sub001/internal/platform/config"
	"github.com/redis/go-redis/v9"
)

// RDB 是全局的Redis客户端；Redis 未启用时为 nil
var RDB *redis.Client

const pingTimeout = 2 * time.Second

// InitRedis 初始化与Redis的连接。
// Redis 只用作 schema 缓存，连接失败不会阻止启动，只是把状态标记为不可用，
// 之后由健康检查器负责恢复。
func InitRedis(ctx context.Context, cfg config.RedisConfig) error {
	if !cfg.Enabled {
		SetRedisHealthy(false)
		slog.Info("Redis 未启用，schema 缓存关闭")
		return nil
	}

	RDB = redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := PingRedis(ctx); err != nil {
		SetRedisHealthy(false)
		return fmt.Errorf("无法连接到Redis: %w", err)
	}
	SetRedisHealthy(true)
	slog.Info("Redis 连接成功", "address", cfg.Address)
	return nil
}

// PingRedis 检查 Redis 是否可达
func PingRedis(ctx context.Context) error {
	if RDB == nil {
		return fmt.Errorf("redis client not initialized")
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return RDB.Ping(ctx).Err()
}

// CloseRedis 关闭客户端
func CloseRedis() error {
	if RDB == nil {
		return nil
	}
	return RDB.Close()
}
