package cron

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gocrud/ioc/di"
	"github.com/gocrud/ioc/logging"
	"github.com/robfig/cron/v3"
)

// Service Cron 定时任务服务
type Service struct {
	cron      *cron.Cron
	container *di.Container
	logger    logging.Logger
	mu        sync.RWMutex
	jobs      map[string]cron.EntryID // 任务名称到任务ID的映射
	funcs     map[string]func()       // 任务名称到包装后的函数
	jobDefs   []jobDefinition         // Start 之前暂存的任务定义
}

// options Cron 服务配置选项
type options struct {
	Location         *time.Location
	EnableSeconds    bool // 是否启用秒级精度（默认分钟级）
	EnableCronLogger bool // 是否启用 cron 库的内部调度日志
	Logger           logging.Logger
}

func newService(container *di.Container, opt options) *Service {
	if opt.Logger == nil {
		opt.Logger = logging.Discard
	}

	cronOpts := []cron.Option{cron.WithLocation(opt.Location)}
	if opt.EnableCronLogger {
		cronOpts = append(cronOpts, cron.WithLogger(newCronLogger(opt.Logger)))
	}
	cronOpts = append(cronOpts, cron.WithChain(
		cron.Recover(newCronLogger(opt.Logger)),
	))
	if opt.EnableSeconds {
		cronOpts = append(cronOpts, cron.WithSeconds())
	}

	return &Service{
		cron:      cron.New(cronOpts...),
		container: container,
		logger:    opt.Logger,
		jobs:      make(map[string]cron.EntryID),
		funcs:     make(map[string]func()),
	}
}

// wrap 包装任务：记录开始与结束，失败只记录日志
func (s *Service) wrap(name string, job Job) func() {
	return func() {
		start := time.Now()
		s.logger.Debug("Cron job started", logging.F("job", name))
		if err := job(s.container); err != nil {
			s.logger.Error("Cron job failed", logging.F("job", name), logging.Err(err))
			return
		}
		s.logger.Debug("Cron job completed", logging.F("job", name), logging.F("elapsed", time.Since(start)))
	}
}

// addJob 添加定时任务
// spec: cron 表达式，如 "*/5 * * * *"、"@every 10s"
func (s *Service) addJob(spec, name string, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn := s.wrap(name, job)
	entryID, err := s.cron.AddFunc(spec, fn)
	if err != nil {
		return fmt.Errorf("cron: failed to add job '%s': %w", name, err)
	}

	if prev, exists := s.jobs[name]; exists {
		s.cron.Remove(prev)
	}
	s.jobs[name] = entryID
	s.funcs[name] = fn
	s.logger.Info("Cron job registered", logging.F("job", name), logging.F("spec", spec))
	return nil
}

// Remove 移除定时任务
func (s *Service) Remove(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entryID, exists := s.jobs[name]; exists {
		s.cron.Remove(entryID)
		delete(s.jobs, name)
		delete(s.funcs, name)
		s.logger.Info("Cron job removed", logging.F("job", name))
	}
}

// Trigger 立即同步执行一次任务，不影响调度
func (s *Service) Trigger(name string) error {
	s.mu.RLock()
	fn, ok := s.funcs[name]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("cron: job '%s' not found", name)
	}
	fn()
	return nil
}

// Jobs 返回已注册的任务名称与下次执行时间
func (s *Service) Jobs() map[string]time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]time.Time, len(s.jobs))
	for name, id := range s.jobs {
		out[name] = s.cron.Entry(id).Next
	}
	return out
}

// Start 注册暂存的任务并启动调度，不阻塞
func (s *Service) Start(ctx context.Context) error {
	s.logger.Info("CronService starting", logging.F("jobs", len(s.jobDefs)))

	for _, def := range s.jobDefs {
		if err := s.addJob(def.spec, def.name, def.job); err != nil {
			return err
		}
	}
	s.jobDefs = nil

	s.cron.Start()
	return nil
}

// Stop 停止调度并等待正在执行的任务结束，或 ctx 超时
func (s *Service) Stop(ctx context.Context) error {
	s.logger.Info("CronService stopping")

	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger 适配器：将框架日志接口适配到 cron 的日志接口
type cronLogger struct {
	logger logging.Logger
}

func newCronLogger(logger logging.Logger) cron.Logger {
	return &cronLogger{logger: logger.WithCategory("cron")}
}

func (l *cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, convertToFields(keysAndValues)...)
}

func (l *cronLogger) Error(err error, msg string, keysAndValues ...any) {
	fields := append(convertToFields(keysAndValues), logging.Err(err))
	l.logger.Error(msg, fields...)
}

func convertToFields(keysAndValues []any) []logging.Field {
	fields := make([]logging.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields = append(fields, logging.F(fmt.Sprintf("%v", keysAndValues[i]), keysAndValues[i+1]))
	}
	return fields
}
