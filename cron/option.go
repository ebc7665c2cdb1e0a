package cron

import (
	"github.com/gocrud/ioc/di"
	"github.com/gocrud/ioc/logging"
)

// BuilderOption 用于配置 Cron Builder
type BuilderOption func(*Builder)

// WithSeconds 启用秒级精度
func WithSeconds() BuilderOption {
	return func(b *Builder) {
		b.WithSeconds()
	}
}

// WithLocation 设置时区
func WithLocation(location string) BuilderOption {
	return func(b *Builder) {
		b.WithLocation(location)
	}
}

// EnableCronLogger 启用 cron 库的内部调度日志
func EnableCronLogger() BuilderOption {
	return func(b *Builder) {
		b.EnableCronLogger()
	}
}

// AddJob 添加任务
func AddJob(spec, name string, job Job) BuilderOption {
	return func(b *Builder) {
		b.AddJob(spec, name, job)
	}
}

// New 创建调度容器中 bean 的 Cron 服务
func New(container *di.Container, logger logging.Logger, opts ...BuilderOption) (*Service, error) {
	builder := NewBuilder()
	for _, opt := range opts {
		opt(builder)
	}
	return builder.Build(container, logger)
}
