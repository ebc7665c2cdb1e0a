package web

import (
	"github.com/gin-gonic/gin"
	"github.com/gocrud/ioc/di"
	"github.com/gocrud/ioc/logging"
)

// BuilderOption 用于配置 Web Builder
type BuilderOption func(*Builder)

// WithPort 设置端口
func WithPort(port int) BuilderOption {
	return func(b *Builder) {
		b.UsePort(port)
	}
}

// WithLogger 设置日志
func WithLogger(logger logging.Logger) BuilderOption {
	return func(b *Builder) {
		b.UseLogger(logger)
	}
}

// WithMiddleware 添加全局中间件
func WithMiddleware(middleware ...gin.HandlerFunc) BuilderOption {
	return func(b *Builder) {
		b.Use(middleware...)
	}
}

// WithControllers 添加控制器
func WithControllers(controllers ...Controller) BuilderOption {
	return func(b *Builder) {
		b.AddControllers(controllers...)
	}
}

// New 创建暴露容器信息的 Web 主机
func New(container *di.Container, opts ...BuilderOption) *Host {
	builder := NewBuilder()
	for _, opt := range opts {
		opt(builder)
	}
	return builder.Build(container)
}
