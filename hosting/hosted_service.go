// Package hosting 管理后台服务（Web 主机、Cron 调度）的启动与优雅停止。
package hosting

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gocrud/ioc/logging"
)

// HostedService 托管服务接口
type HostedService interface {
	// Start 启动服务，可以阻塞直到服务退出，也可以立即返回。
	// 管理器会在独立的 goroutine 中调用它。
	Start(ctx context.Context) error
	// Stop 执行优雅关闭逻辑
	Stop(ctx context.Context) error
}

// HostedServiceManager 托管服务管理器
type HostedServiceManager struct {
	services []named
	logger   logging.Logger
	mu       sync.RWMutex
	wg       sync.WaitGroup
}

type named struct {
	name string
	svc  HostedService
}

// NewHostedServiceManager 创建托管服务管理器
func NewHostedServiceManager(logger logging.Logger) *HostedServiceManager {
	if logger == nil {
		logger = logging.Discard
	}
	return &HostedServiceManager{logger: logger}
}

// Add 添加托管服务，name 仅用于日志
func (m *HostedServiceManager) Add(name string, service HostedService) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.services = append(m.services, named{name: name, svc: service})
}

// Len 返回服务数量
func (m *HostedServiceManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.services)
}

// StartAll 并发启动所有托管服务，启动失败的错误写入返回的通道
func (m *HostedServiceManager) StartAll(ctx context.Context) <-chan error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	errCh := make(chan error, len(m.services))
	m.logger.Info("Starting hosted services", logging.F("count", len(m.services)))

	for _, s := range m.services {
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()

			m.logger.Debug("Starting hosted service", logging.F("service", s.name))
			err := s.svc.Start(ctx)
			switch {
			case err == nil:
				m.logger.Debug("Hosted service returned", logging.F("service", s.name))
			case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
				m.logger.Debug("Hosted service stopped (context done)", logging.F("service", s.name))
			default:
				m.logger.Error("Hosted service error", logging.F("service", s.name), logging.Err(err))
				errCh <- fmt.Errorf("hosting: %s: %w", s.name, err)
			}
		}()
	}

	return errCh
}

// StopAll 按添加顺序的逆序并发停止所有服务，返回合并后的错误
func (m *HostedServiceManager) StopAll(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	m.logger.Info("Stopping hosted services", logging.F("count", len(m.services)))

	errs := make([]error, len(m.services))
	var wg sync.WaitGroup
	for i := len(m.services) - 1; i >= 0; i-- {
		s := m.services[i]
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.svc.Stop(ctx); err != nil {
				m.logger.Error("Failed to stop hosted service", logging.F("service", s.name), logging.Err(err))
				errs[i] = fmt.Errorf("hosting: %s: %w", s.name, err)
				return
			}
			m.logger.Debug("Hosted service stopped", logging.F("service", s.name))
		}()
	}
	wg.Wait()

	m.logger.Info("All hosted services stopped")
	return errors.Join(errs...)
}

// Wait 等待所有 Start 调用返回
func (m *HostedServiceManager) Wait() {
	m.wg.Wait()
}
