package ioc

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gocrud/ioc/hosting"
	"github.com/gocrud/ioc/logging"
)

// ShutdownTimeout 优雅关闭的超时时间
const ShutdownTimeout = 5 * time.Second

// Run 启动托管服务，阻塞到收到 SIGINT/SIGTERM、ctx 结束或某个服务启动失败，
// 然后在 ShutdownTimeout 内停止全部服务。
func Run(ctx context.Context, logger logging.Logger, services *hosting.HostedServiceManager) error {
	if logger == nil {
		logger = logging.Discard
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := services.StartAll(ctx)

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutting down")
	case runErr = <-errCh:
		logger.Error("Hosted service failed, shutting down", logging.Err(runErr))
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ShutdownTimeout)
	defer cancel()

	if err := services.StopAll(shutdownCtx); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}
