package di

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gocrud/ioc/logging"
)

// Container 是 IoC 容器，持有注册表、单例池以及创建中的 bean。
// 不存在全局实例，所有状态随容器生命周期存在。
//
// GetBean、ScanAndLoad、Refresh 与 Inject 互斥执行；
// 嵌套的依赖解析不再加锁，由 creating set 与提前引用保证可重入。
type Container struct {
	mu         sync.Mutex
	registry   *Registry
	resolver   *resolver
	discoverer Discoverer
	logger     logging.Logger
}

// New 创建容器：扫描 root 的路径并注册组件，然后急切创建全部单例。
// 启动阶段的失败只影响对应的组件，不会中断启动。
func New(root ConfigRoot, opts ...Option) *Container {
	c := &Container{logger: logging.Discard}
	for _, opt := range opts {
		opt(c)
	}
	c.registry = NewRegistry(c.logger)
	c.resolver = newResolver(c.registry, c.logger)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.scanAndLoad(root)
	c.refresh()
	return c
}

// ScanAndLoad 扫描 root 中的路径并注册组件，不创建 bean。
// 之后可调用 Refresh 创建新注册的单例。
func (c *Container) ScanAndLoad(root ConfigRoot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scanAndLoad(root)
}

func (c *Container) scanAndLoad(root ConfigRoot) {
	if root == nil {
		return
	}
	paths := root.ComponentScan()
	if len(paths) == 0 {
		c.logger.Debug("no scan path configured")
		return
	}
	if c.discoverer == nil {
		c.logger.Warn("no discoverer configured, scan paths ignored", logging.F("paths", paths))
		return
	}

	for _, path := range paths {
		candidates, err := c.discoverer.Discover(path)
		if err != nil {
			var de *DiscoveryError
			if !errors.As(err, &de) {
				err = &DiscoveryError{ScanPath: path, Cause: err}
			}
			c.logger.Error("component scan failed", logging.F("path", path), logging.Err(err))
			continue
		}
		if len(candidates) == 0 {
			c.logger.Warn("no component found under scan path", logging.F("path", path))
			continue
		}

		for _, candidate := range candidates {
			typ, err := candidate.load(path)
			if err != nil {
				var de *DiscoveryError
				if !errors.As(err, &de) {
					err = &DiscoveryError{ScanPath: path, Candidate: candidate.Name, Cause: err}
				}
				c.logger.Error("failed to load scanned type", logging.F("candidate", candidate.Name), logging.Err(err))
				continue
			}
			if def, ok := c.registry.Register(typ); ok {
				c.resolver.forget(def.Name)
				c.logger.Debug("bean definition registered",
					logging.F("bean", def.Name),
					logging.F("type", def.Type.String()),
					logging.F("scope", def.Scope))
			}
		}
	}
}

// Refresh 急切创建所有尚未创建的单例。
func (c *Container) Refresh() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refresh()
}

func (c *Container) refresh() {
	names := c.registry.Names()
	if len(names) == 0 {
		c.logger.Warn("no bean definition found")
		return
	}

	for _, cycle := range newGraphBuilder(c.registry).cycles() {
		if cycle.Breakable {
			c.logger.Info("circular dependency, resolved with early reference", logging.F("cycle", cycle.String()))
		} else {
			c.logger.Warn("circular dependency between prototype beans", logging.F("cycle", cycle.String()))
		}
	}

	ready := 0
	for _, name := range names {
		def, ok := c.registry.Get(name)
		if !ok || def.Scope != ScopeSingleton {
			continue
		}
		// 失败已在 createBean 中记录
		if _, err := c.resolver.getSingleton(name); err == nil {
			ready++
		}
	}
	c.logger.Info("container refreshed", logging.F("definitions", len(names)), logging.F("singletons", ready))
}

// GetBean 按名称获取 bean。名称首字母会被转为大写后再查找。
// 单例返回同一实例，原型每次返回新实例。
func (c *Container) GetBean(name string) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	name = NormalizeName(name)
	if _, ok := c.registry.Get(name); !ok {
		return nil, fmt.Errorf("%w: %q: %w", ErrBeanNotFound, name, ErrDefinitionNotFound)
	}

	instance, err := c.resolver.getSingleton(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrBeanNotFound, name, err)
	}
	return instance, nil
}

// BeanDefinitionMap 返回定义映射的只读副本。
func (c *Container) BeanDefinitionMap() map[string]BeanDefinition {
	return c.registry.Snapshot()
}

// BeanNames 返回注册顺序的 bean 名称。
func (c *Container) BeanNames() []string {
	return c.registry.Names()
}

// Definition 按名称（会规范化）查找定义。
func (c *Container) Definition(name string) (BeanDefinition, bool) {
	return c.registry.Get(NormalizeName(name))
}

// Dependencies 返回 bean 声明的依赖名称。
func (c *Container) Dependencies(name string) ([]string, error) {
	def, ok := c.Definition(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDefinitionNotFound, NormalizeName(name))
	}
	return def.Dependencies(), nil
}

// State 返回 bean 当前的生命周期状态。
// 原型 bean 不进入单例池，已注册时始终为 StateRegistered 或 StateConstructing。
func (c *Container) State(name string) BeanState {
	name = NormalizeName(name)
	if _, ok := c.registry.Get(name); !ok {
		return StateUnregistered
	}
	if _, ok := c.resolver.singletons.get(name); ok {
		return StateReady
	}
	if c.resolver.creating.contains(name) {
		return StateConstructing
	}
	return StateRegistered
}

// Cycles 返回静态依赖图中的环。
func (c *Container) Cycles() []Cycle {
	return newGraphBuilder(c.registry).cycles()
}
