package lifecycle

import (
	"context"
	"time"
)

// Handle 是 Manager 分发给单个服务的句柄
type Handle struct {
	ctx context.Context
	// Close 通知管理器服务已经停止，可以重复调用
	Close func()
}

// Ctx 在管理器停机时被取消
func (h *Handle) Ctx() context.Context {
	return h.ctx
}

// Done 在管理器停机时关闭
func (h *Handle) Done() <-chan struct{} {
	return h.ctx.Done()
}

// Err 报告 Done 被关闭的原因
func (h *Handle) Err() error {
	return h.ctx.Err()
}

// Sleep 等待 d；停机时提前返回 context 的错误
func (h *Handle) Sleep(d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-h.Done():
		return h.Err()
	case <-timer.C:
		return nil
	}
}
