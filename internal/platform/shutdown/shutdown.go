package shutdown

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BunnySweety/kollab-sub001/pkg/lifecycle"
)

// Closer 是停机最后一步要释放的资源（数据库连接、Redis 客户端）
type Closer struct {
	Name  string
	Close func() error
}

// Coordinator 负责编排应用程序的优雅停机流程：
// 先关闭 HTTP 服务器，再停止后台服务，最后按顺序释放资源。
type Coordinator struct {
	Manager *lifecycle.Manager
	// HTTPTimeout 是等待进行中请求完成的上限
	HTTPTimeout time.Duration
	// ServiceTimeout 是等待后台服务退出的上限
	ServiceTimeout time.Duration
	Closers        []Closer
}

// NewCoordinator 创建一个新的停机协调器。
func NewCoordinator(mgr *lifecycle.Manager, httpTimeout time.Duration, closers ...Closer) *Coordinator {
	return &Coordinator{
		Manager:        mgr,
		HTTPTimeout:    httpTimeout,
		ServiceTimeout: 5 * time.Second,
		Closers:        closers,
	}
}

// ListenForSignalsAndShutdown 阻塞直到收到 SIGINT/SIGTERM 或服务器自行退出，然后执行停机。
func (c *Coordinator) ListenForSignalsAndShutdown(server *http.Server, serverErr <-chan error) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		slog.Info("收到关闭信号，开始优雅停机", "signal", sig.String())
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP服务器异常退出", "error", err)
		}
	}
	c.Shutdown(server)
}

// Shutdown 执行停机流程；每一步失败只记录日志，不会阻止后续步骤。
func (c *Coordinator) Shutdown(server *http.Server) {
	if server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), c.HTTPTimeout)
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("HTTP服务器关闭错误", "error", err)
		} else {
			slog.Info("HTTP服务器已关闭")
		}
		cancel()
	}

	if c.Manager != nil {
		c.Manager.Shutdown()
		if remaining := c.Manager.WaitWithTimeout(c.ServiceTimeout); len(remaining) > 0 {
			slog.Warn("部分后台服务未在超时前退出", "services", remaining)
		}
	}

	for _, cl := range c.Closers {
		if err := cl.Close(); err != nil {
			slog.Error("资源释放失败", "resource", cl.Name, "error", err)
		}
	}
	slog.Info("优雅停机完成")
}
