package di

import (
	"fmt"
	"reflect"
	"strings"
)

// ScopeType 定义了 bean 的生命周期。
type ScopeType int

const (
	// ScopeSingleton 每个容器一个实例（默认）。
	ScopeSingleton ScopeType = iota
	// ScopePrototype 每次获取都创建新实例，不缓存。
	ScopePrototype
)

// String 返回作用域在 scope 标签中的写法。
func (s ScopeType) String() string {
	switch s {
	case ScopeSingleton:
		return "singleton"
	case ScopePrototype:
		return "prototype"
	default:
		return fmt.Sprintf("ScopeType(%d)", int(s))
	}
}

// MarshalText 让作用域在 JSON 中以字符串输出。
func (s ScopeType) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *ScopeType) UnmarshalText(text []byte) error {
	scope, err := ParseScope(string(text))
	if err != nil {
		return err
	}
	*s = scope
	return nil
}

// ParseScope 解析 scope 标签的值，空字符串视为 singleton。
func ParseScope(s string) (ScopeType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "singleton":
		return ScopeSingleton, nil
	case "prototype":
		return ScopePrototype, nil
	}
	return ScopeSingleton, fmt.Errorf("di: 未知作用域 %q", s)
}

// FieldInjection 包含需要注入的结构体字段的元数据。
type FieldInjection struct {
	Index    int
	Name     string // 字段名
	Type     reflect.Type
	BeanName string // 依赖的 bean 名称（已规范化）
	Optional bool
	Exported bool
}

// InjectionSchema 包含预计算的注入元数据。
type InjectionSchema struct {
	Fields []FieldInjection
}

// BeanDefinition 描述如何创建一个 bean。
// 注册后不可变，由 Registry 独占。
type BeanDefinition struct {
	Name  string
	Type  reflect.Type // 指向结构体的指针类型
	Scope ScopeType

	Schema *InjectionSchema
}

// Dependencies 返回依赖的 bean 名称，顺序与字段声明一致。
func (d BeanDefinition) Dependencies() []string {
	if d.Schema == nil {
		return nil
	}
	names := make([]string, 0, len(d.Schema.Fields))
	for _, f := range d.Schema.Fields {
		names = append(names, f.BeanName)
	}
	return names
}

// BeanState 单例 bean 的生命周期状态。
type BeanState int

const (
	StateUnregistered BeanState = iota
	StateRegistered
	// StateConstructing 已分配、正在注入，提前引用可见
	StateConstructing
	// StateReady 已进入单例池
	StateReady
)

func (s BeanState) String() string {
	switch s {
	case StateUnregistered:
		return "UNREGISTERED"
	case StateRegistered:
		return "REGISTERED"
	case StateConstructing:
		return "CONSTRUCTING"
	case StateReady:
		return "READY"
	default:
		return fmt.Sprintf("BeanState(%d)", int(s))
	}
}

// MarshalText 让状态在 JSON 中以字符串输出。
func (s BeanState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *BeanState) UnmarshalText(text []byte) error {
	for state := StateUnregistered; state <= StateReady; state++ {
		if state.String() == string(text) {
			*s = state
			return nil
		}
	}
	return fmt.Errorf("di: 未知状态 %q", text)
}
