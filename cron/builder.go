package cron

import (
	"errors"
	"fmt"
	"time"

	"github.com/gocrud/ioc/di"
	"github.com/gocrud/ioc/logging"
)

// Job 定时任务，每次执行时从容器获取所需的 bean
type Job func(c *di.Container) error

// BeanJob 每次执行时按名称获取 bean 再调用 fn。
// 原型 bean 每次执行拿到的都是新实例。
//
// 示例：
//
//	builder.AddJob("@every 10s", "ping", cron.BeanJob("testServiceA", func(a *service.TestServiceA) error {
//		fmt.Println(a.TestC())
//		return nil
//	}))
func BeanJob[T any](beanName string, fn func(T) error) Job {
	return func(c *di.Container) error {
		bean, err := di.Resolve[T](c, beanName)
		if err != nil {
			return err
		}
		return fn(bean)
	}
}

// Builder Cron 配置构建器
type Builder struct {
	enableSeconds    bool
	enableCronLogger bool
	location         string
	jobs             []jobDefinition
}

// jobDefinition 任务定义
type jobDefinition struct {
	spec string
	name string
	job  Job
}

// NewBuilder 创建 Cron 构建器
func NewBuilder() *Builder {
	return &Builder{location: "UTC"}
}

// WithSeconds 启用秒级精度
func (b *Builder) WithSeconds() *Builder {
	b.enableSeconds = true
	return b
}

// WithLocation 设置时区，例如 "Asia/Shanghai"
func (b *Builder) WithLocation(location string) *Builder {
	b.location = location
	return b
}

// EnableCronLogger 启用 cron 库的内部调度日志
func (b *Builder) EnableCronLogger() *Builder {
	b.enableCronLogger = true
	return b
}

// AddJob 添加任务，同名任务后者覆盖前者
func (b *Builder) AddJob(spec, name string, job Job) *Builder {
	b.jobs = append(b.jobs, jobDefinition{spec: spec, name: name, job: job})
	return b
}

// Build 构建 Cron 服务，任务在 Start 时注册
func (b *Builder) Build(container *di.Container, logger logging.Logger) (*Service, error) {
	if container == nil {
		return nil, errors.New("cron: container is required")
	}
	loc, err := time.LoadLocation(b.location)
	if err != nil {
		return nil, fmt.Errorf("cron: invalid location %q: %w", b.location, err)
	}

	svc := newService(container, options{
		Location:         loc,
		EnableSeconds:    b.enableSeconds,
		EnableCronLogger: b.enableCronLogger,
		Logger:           logger,
	})
	svc.jobDefs = append(svc.jobDefs, b.jobs...)
	return svc, nil
}
