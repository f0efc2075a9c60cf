package database

import (
	"log/slog"
	"sync"
)

// statusManager 负责线程安全地管理 Redis 的可用状态。
type statusManager struct {
	mu             sync.RWMutex
	isRedisHealthy bool
}

// 全局的状态管理器实例；启动前默认不可用，InitRedis 成功后置为可用
var globalStatus = &statusManager{}

// IsRedisHealthy 返回当前Redis的健康状态。
func IsRedisHealthy() bool {
	globalStatus.mu.RLock()
	defer globalStatus.mu.RUnlock()
	return globalStatus.isRedisHealthy
}

// SetRedisHealthy 更新健康状态，只在状态变化时打印日志。
// 返回值表示状态是否发生了变化。
func SetRedisHealthy(healthy bool) bool {
	globalStatus.mu.Lock()
	defer globalStatus.mu.Unlock()

	if globalStatus.isRedisHealthy == healthy {
		return false
	}
	globalStatus.isRedisHealthy = healthy
	if healthy {
		slog.Info("健康检查: Redis服务状态已更新为 [可用]")
	} else {
		slog.Warn("健康检查: Redis服务状态已更新为 [不可用]")
	}
	return true
}
