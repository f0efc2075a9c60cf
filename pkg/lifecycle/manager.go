// Package lifecycle 协调后台 goroutine 与进程停机。
package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Manager 向后台服务分发 Handle，并在 Shutdown 之后等待它们结束
type Manager struct {
	wg       sync.WaitGroup
	mu       sync.Mutex
	services map[string]bool

	ctx    context.Context
	cancel context.CancelFunc
}

// NewManager 返回一个管理器，其句柄在 Shutdown 之前一直有效
func NewManager() *Manager {
	m := &Manager{services: make(map[string]bool)}
	m.ctx, m.cancel = context.WithCancel(context.Background())
	return m
}

// NewServiceHandle 按名称注册一个服务。服务的 goroutine 退出时必须调用 Handle.Close。
func (m *Manager) NewServiceHandle(name string) (*Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.services[name] {
		return nil, fmt.Errorf("lifecycle: service %q already registered", name)
	}
	m.services[name] = true
	m.wg.Add(1)

	var once sync.Once
	return &Handle{
		ctx: m.ctx,
		Close: func() {
			once.Do(func() {
				m.mu.Lock()
				delete(m.services, name)
				m.mu.Unlock()
				m.wg.Done()
			})
		},
	}, nil
}

// Go 注册 name 并在新的 goroutine 中运行 fn。fn 持有句柄，应当 defer Handle.Close。
func (m *Manager) Go(name string, fn func(h *Handle)) error {
	h, err := m.NewServiceHandle(name)
	if err != nil {
		return err
	}
	go fn(h)
	return nil
}

// Shutdown 取消所有句柄的 context
func (m *Manager) Shutdown() {
	slog.Info("lifecycle: broadcasting shutdown")
	m.cancel()
}

// WaitWithTimeout 阻塞直到所有已注册的服务都已关闭或超时，返回仍在运行的服务名（已排序）。
func (m *Manager) WaitWithTimeout(timeout time.Duration) []string {
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		return nil
	case <-timer.C:
		m.mu.Lock()
		defer m.mu.Unlock()
		remaining := make([]string, 0, len(m.services))
		for name := range m.services {
			remaining = append(remaining, name)
		}
		sort.Strings(remaining)
		return remaining
	}
}
