package di

import (
	"reflect"
	"sync"

	"github.com/gocrud/ioc/logging"
)

// Registry 保存 bean 名称到 BeanDefinition 的映射。
// 同名定义后写覆盖前写，迭代顺序为名称首次出现的顺序。
type Registry struct {
	mu          sync.RWMutex
	definitions map[string]BeanDefinition
	order       []string
	logger      logging.Logger
}

// NewRegistry 创建一个空注册表。
func NewRegistry(logger logging.Logger) *Registry {
	if logger == nil {
		logger = logging.Discard
	}
	return &Registry{
		definitions: make(map[string]BeanDefinition),
		logger:      logger,
	}
}

// Register 注册一个组件类型。非组件类型直接忽略并返回 false。
func (r *Registry) Register(typ reflect.Type) (BeanDefinition, bool) {
	def, ok := analyzeComponent(typ, r.logger)
	if !ok {
		r.logger.Trace("type is not a component", logging.F("type", typeString(typ)))
		return BeanDefinition{}, false
	}
	r.Add(def)
	return def, true
}

// Add 直接写入一个定义，同名时覆盖。
func (r *Registry) Add(def BeanDefinition) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, exists := r.definitions[def.Name]; exists {
		r.logger.Debug("bean definition overwritten",
			logging.F("bean", def.Name),
			logging.F("previous", typeString(prev.Type)),
			logging.F("type", typeString(def.Type)))
	} else {
		r.order = append(r.order, def.Name)
	}
	r.definitions[def.Name] = def
}

// Get 按（已规范化的）名称查找定义。
func (r *Registry) Get(name string) (BeanDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.definitions[name]
	return def, ok
}

// Names 返回注册顺序的名称副本。
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Len 返回定义数量。
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.definitions)
}

// Snapshot 返回定义映射的副本，修改副本不影响注册表。
func (r *Registry) Snapshot() map[string]BeanDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]BeanDefinition, len(r.definitions))
	for name, def := range r.definitions {
		out[name] = def
	}
	return out
}

func typeString(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
