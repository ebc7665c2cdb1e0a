package di

import "github.com/gocrud/ioc/logging"

// Option 配置容器。
type Option func(*Container)

// WithLogger 设置容器日志，默认不输出。
func WithLogger(logger logging.Logger) Option {
	return func(c *Container) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithDiscoverer 设置组件发现方式。
// 未设置时 ScanAndLoad 只记录警告，不注册任何组件。
func WithDiscoverer(d Discoverer) Option {
	return func(c *Container) {
		c.discoverer = d
	}
}

// WithTypes 使用固定类型列表作为 Discoverer，忽略扫描路径。
// 主要用于测试。
func WithTypes(values ...any) Option {
	return func(c *Container) {
		c.discoverer = DiscovererFunc(func(string) ([]Candidate, error) {
			out := make([]Candidate, 0, len(values))
			for _, v := range values {
				out = append(out, TypeCandidate(typeOfValue(v)))
			}
			return out, nil
		})
	}
}
