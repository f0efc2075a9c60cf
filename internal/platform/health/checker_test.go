package health_test

import (
	"context"
	"errors"
	"testing"

	"github.com/BunnySweety/kollab-sub001/internal/platform/database"
	"github.com/BunnySweety/kollab-sub001/internal/platform/health"
	"github.com/stretchr/testify/assert"
)

func TestPerformCheck_RecoverPurgesBeforeEnabling(t *testing.T) {
	database.SetRedisHealthy(false)
	t.Cleanup(func() { database.SetRedisHealthy(false) })

	var pingErr error
	purges := 0
	purgeErr := errors.New("scan failed")
	c := &health.Checker{
		Ping: func(context.Context) error { return pingErr },
		OnRecover: func(context.Context) error {
			purges++
			return purgeErr
		},
	}

	// 清理失败时保持不可用
	c.PerformCheck(context.Background())
	assert.Equal(t, 1, purges)
	assert.False(t, database.IsRedisHealthy())

	// 清理成功后恢复
	purgeErr = nil
	c.PerformCheck(context.Background())
	assert.Equal(t, 2, purges)
	assert.True(t, database.IsRedisHealthy())

	// 已健康时不再清理
	c.PerformCheck(context.Background())
	assert.Equal(t, 2, purges)

	// 连接丢失
	pingErr = errors.New("connection refused")
	c.PerformCheck(context.Background())
	assert.False(t, database.IsRedisHealthy())
}
