package health

import (
	"context"
	"log/slog"
	"time"

	"github.com/BunnySweety/kollab-sub001/internal/platform/database"
	"github.com/BunnySweety/kollab-sub001/pkg/lifecycle"
)

// Checker 定期检查 Redis 的可达性并维护 database 包中的健康标志。
//
// Redis 不可用期间，schema 的写操作无法删除缓存条目，所以缓存中可能残留旧数据。
// 因此从不可用恢复为可用之前，必须先执行 OnRecover（清空 schema 缓存），
// 只有 OnRecover 成功后才重新启用缓存。
type Checker struct {
	Interval  time.Duration
	Ping      func(ctx context.Context) error
	OnRecover func(ctx context.Context) error
}

// NewChecker 创建一个使用全局 Redis 客户端的检查器
func NewChecker(interval time.Duration, onRecover func(ctx context.Context) error) *Checker {
	return &Checker{
		Interval:  interval,
		Ping:      database.PingRedis,
		OnRecover: onRecover,
	}
}

// PerformCheck 执行一次完整的健康检查和可能的修复操作。
func (c *Checker) PerformCheck(ctx context.Context) {
	if err := c.Ping(ctx); err != nil {
		if database.SetRedisHealthy(false) {
			slog.Warn("健康检查: 无法连接到Redis", "error", err)
		}
		return
	}
	if database.IsRedisHealthy() {
		return
	}

	if c.OnRecover != nil {
		if err := c.OnRecover(ctx); err != nil {
			slog.Error("健康检查: Redis已恢复但清理缓存失败，保持不可用状态", "error", err)
			return
		}
	}
	database.SetRedisHealthy(true)
}

// Run 阻塞式地循环执行检查，直到生命周期句柄被取消。
func (c *Checker) Run(handle *lifecycle.Handle) {
	defer handle.Close()
	slog.Info("Redis健康检查器已启动", "interval", c.Interval)

	for {
		if err := handle.Sleep(c.Interval); err != nil {
			slog.Info("Redis健康检查器正在关闭")
			return
		}
		c.PerformCheck(handle.Ctx())
	}
}
