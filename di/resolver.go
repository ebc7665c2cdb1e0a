package di

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/gocrud/ioc/logging"
)

// frame 一个正在创建中的 bean。
type frame struct {
	name     string
	scope    ScopeType
	instance any // 已分配、尚未完成注入的实例，即提前引用
}

// creationStack 同时充当 creating set 和提前引用缓存：
// 名称在栈中当且仅当它正在创建，提前引用随出栈一起消失。
type creationStack struct {
	mu     sync.Mutex
	frames []frame
}

func (s *creationStack) push(f frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = append(s.frames, f)
}

// pop 移除最上层同名的帧。
func (s *creationStack) pop(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.frames) - 1; i >= 0; i-- {
		if s.frames[i].name == name {
			s.frames = append(s.frames[:i], s.frames[i+1:]...)
			return
		}
	}
}

func (s *creationStack) contains(name string) bool {
	_, ok := s.early(name)
	return ok
}

// early 返回最上层同名帧的实例。
func (s *creationStack) early(name string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.frames) - 1; i >= 0; i-- {
		if s.frames[i].name == name {
			return s.frames[i].instance, true
		}
	}
	return nil, false
}

// prototypeLoop 判断再次进入原型 bean name 是否会无限递归：
// 从最上层同名帧到栈顶全部是原型时，没有单例的提前引用可以截断递归。
func (s *creationStack) prototypeLoop(name string) ([]string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := -1
	for i := len(s.frames) - 1; i >= 0; i-- {
		if s.frames[i].name == name {
			start = i
			break
		}
	}
	if start < 0 {
		return nil, false
	}

	path := make([]string, 0, len(s.frames)-start+1)
	for _, f := range s.frames[start:] {
		if f.scope != ScopePrototype {
			return nil, false
		}
		path = append(path, f.name)
	}
	return append(path, name), true
}

// singletonPool 已完成的单例，条目一旦写入永不替换。
type singletonPool struct {
	m sync.Map
}

func (p *singletonPool) get(name string) (any, bool) {
	return p.m.Load(name)
}

// publish 写入单例并返回池中的实例（已存在时返回旧值）。
func (p *singletonPool) publish(name string, instance any) any {
	actual, _ := p.m.LoadOrStore(name, instance)
	return actual
}

// resolver 负责 bean 的创建与依赖注入。
type resolver struct {
	registry   *Registry
	singletons singletonPool
	creating   creationStack
	failed     sync.Map // name -> *InstantiationError，创建失败的单例不再重试
	logger     logging.Logger
}

func newResolver(registry *Registry, logger logging.Logger) *resolver {
	return &resolver{
		registry: registry,
		logger:   logger,
	}
}

// getSingleton 感知循环依赖的解析入口。
func (r *resolver) getSingleton(name string) (any, error) {
	def, ok := r.registry.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDefinitionNotFound, name)
	}

	if def.Scope == ScopePrototype {
		if path, loop := r.creating.prototypeLoop(name); loop {
			return nil, &CircularDependencyError{Path: path}
		}
		return r.createBean(def)
	}

	if instance, ok := r.singletons.get(name); ok {
		return instance, nil
	}
	if early, ok := r.creating.early(name); ok {
		r.logger.Debug("circular reference, using early reference", logging.F("bean", name))
		return early, nil
	}
	if err, ok := r.failed.Load(name); ok {
		return nil, err.(*InstantiationError)
	}
	return r.createBean(def)
}

// fail 记录单例创建失败。已经拿到提前引用的依赖方保留该引用。
func (r *resolver) fail(def BeanDefinition, err *InstantiationError) {
	if def.Scope == ScopeSingleton {
		r.failed.Store(def.Name, err)
	}
	r.logger.Error("failed to create bean", logging.F("bean", def.Name), logging.Err(err))
}

// forget 清除失败记录，定义被重新注册时调用。
func (r *resolver) forget(name string) {
	r.failed.Delete(name)
}

// createBean 实例化 def 并注入依赖。
// 失败会被记录并以 *InstantiationError 返回，不会向上 panic。
func (r *resolver) createBean(def BeanDefinition) (instance any, err error) {
	name := def.Name

	if def.Scope == ScopeSingleton {
		if existing, ok := r.singletons.get(name); ok {
			return existing, nil
		}
	}

	value, instErr := instantiate(def)
	if instErr != nil {
		r.fail(def, instErr)
		return nil, instErr
	}

	// 注入之前发布提前引用，循环依赖的另一方会拿到这个实例
	r.creating.push(frame{name: name, scope: def.Scope, instance: value.Interface()})
	defer r.creating.pop(name)

	defer func() {
		if p := recover(); p != nil {
			failure := &InstantiationError{Bean: name, Type: def.Type, Cause: fmt.Errorf("panic: %v", p)}
			r.fail(def, failure)
			instance, err = nil, failure
		}
	}()

	r.injectFields(def, value.Elem())
	r.invokeHook(def, value)

	instance = value.Interface()
	if def.Scope == ScopeSingleton {
		instance = r.singletons.publish(name, instance)
	}

	r.logger.Debug("bean created", logging.F("bean", name), logging.F("scope", def.Scope))
	return instance, nil
}

// instantiate 用零值分配 *T，相当于无参构造。
func instantiate(def BeanDefinition) (reflect.Value, *InstantiationError) {
	t := def.Type
	if t == nil || t.Kind() != reflect.Pointer || t.Elem().Kind() != reflect.Struct {
		return reflect.Value{}, &InstantiationError{
			Bean:  def.Name,
			Type:  t,
			Cause: errors.New("类型必须是指向结构体的指针"),
		}
	}
	return reflect.New(t.Elem()), nil
}

// injectFields 逐个注入依赖字段；单个字段失败只记录日志，字段保持零值。
func (r *resolver) injectFields(def BeanDefinition, structVal reflect.Value) {
	if def.Schema == nil {
		return
	}

	for _, field := range def.Schema.Fields {
		if !field.Exported {
			r.fieldFailed(def.Name, field, errors.New("未导出字段无法通过反射赋值，请实现 di.Injectable"))
			continue
		}

		dep, err := r.getSingleton(field.BeanName)
		if err != nil {
			if field.Optional && errors.Is(err, ErrDefinitionNotFound) {
				continue
			}
			r.fieldFailed(def.Name, field, err)
			continue
		}

		depVal := reflect.ValueOf(dep)
		if !depVal.Type().AssignableTo(field.Type) {
			r.fieldFailed(def.Name, field, fmt.Errorf("%v 无法赋值给 %v", depVal.Type(), field.Type))
			continue
		}

		structVal.Field(field.Index).Set(depVal)
	}
}

// invokeHook 调用 Injectable 钩子。
func (r *resolver) invokeHook(def BeanDefinition, value reflect.Value) {
	hook, ok := value.Interface().(Injectable)
	if !ok {
		return
	}
	if err := hook.InjectDependencies(beanResolver{r: r}); err != nil {
		err = &FieldInjectionError{Bean: def.Name, Field: "InjectDependencies", Cause: err}
		r.logger.Error("field injection failed", logging.F("bean", def.Name), logging.Err(err))
	}
}

func (r *resolver) fieldFailed(bean string, field FieldInjection, cause error) {
	err := &FieldInjectionError{
		Bean:       bean,
		Field:      field.Name,
		Dependency: field.BeanName,
		Cause:      cause,
	}
	r.logger.Error("field injection failed",
		logging.F("bean", bean),
		logging.F("field", field.Name),
		logging.Err(err))
}

// beanResolver 传给 Injectable 钩子的解析器。
type beanResolver struct {
	r *resolver
}

func (b beanResolver) Resolve(name string) (any, error) {
	return b.r.getSingleton(NormalizeName(name))
}
