package web

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gocrud/ioc/di"
	"github.com/gocrud/ioc/logging"
)

// Builder Web 主机构建器（基于 Gin）
type Builder struct {
	logger      logging.Logger
	port        int
	engine      *gin.Engine
	controllers []Controller
}

// NewBuilder 创建 Web 构建器
func NewBuilder() *Builder {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(gin.Recovery())

	return &Builder{
		logger: logging.Discard,
		port:   8080,
		engine: engine,
	}
}

// UseLogger 设置日志记录器
func (b *Builder) UseLogger(logger logging.Logger) *Builder {
	if logger != nil {
		b.logger = logger
	}
	return b
}

// UsePort 设置端口，0 表示随机端口
func (b *Builder) UsePort(port int) *Builder {
	b.port = port
	return b
}

// Use 使用全局中间件
func (b *Builder) Use(middleware ...gin.HandlerFunc) *Builder {
	b.engine.Use(middleware...)
	return b
}

// Controller 控制器接口
type Controller interface {
	// MountRoutes 注册路由
	MountRoutes(router gin.IRouter)
}

// AddControllers 注册控制器，Build 时挂载路由
func (b *Builder) AddControllers(controllers ...Controller) *Builder {
	b.controllers = append(b.controllers, controllers...)
	return b
}

// Engine 获取 Gin 引擎（用于高级定制）
func (b *Builder) Engine() *gin.Engine {
	return b.engine
}

// Build 挂载容器检查接口与其余控制器，构建 Web 主机
func (b *Builder) Build(container *di.Container) *Host {
	controllers := append([]Controller{NewBeansController(container)}, b.controllers...)
	for _, ctrl := range controllers {
		ctrl.MountRoutes(b.engine)
		b.logger.Debug("Mapped controller routes", logging.F("controller", fmt.Sprintf("%T", ctrl)))
	}

	return &Host{
		port:   b.port,
		engine: b.engine,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", b.port),
			Handler: b.engine,
		},
		logger: b.logger,
		ready:  make(chan struct{}),
	}
}

// Host Web 主机
type Host struct {
	port   int
	engine *gin.Engine
	server *http.Server
	logger logging.Logger
	ready  chan struct{}
}

// Handler 返回 HTTP 处理器，便于 httptest 直接调用
func (h *Host) Handler() http.Handler {
	return h.engine
}

// Ready 在端口监听成功后关闭
func (h *Host) Ready() <-chan struct{} {
	return h.ready
}

// Address 获取监听地址 (e.g., "[::]:50234")，Ready 之后有效
func (h *Host) Address() string {
	return h.server.Addr
}

// Start 启动 Web 主机，阻塞直到服务退出。
// 先同步监听端口，端口不可用时立即返回错误。
func (h *Host) Start(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", h.port)
	ln, err := (&net.ListenConfig{}).Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("web: failed to listen on %s: %w", addr, err)
	}

	h.server.Addr = ln.Addr().String()
	close(h.ready)
	h.logger.Info("Web host started", logging.F("address", h.server.Addr))

	if err := h.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		h.logger.Error("Web host error", logging.Err(err))
		return err
	}
	return nil
}

// Stop 优雅停止 Web 主机
func (h *Host) Stop(ctx context.Context) error {
	h.logger.Info("Stopping web host")

	if err := h.server.Shutdown(ctx); err != nil {
		h.logger.Error("Failed to shutdown web host gracefully", logging.Err(err))
		return err
	}

	h.logger.Info("Web host stopped")
	return nil
}
