package di

import (
	"fmt"
	"reflect"
)

// Candidate 扫描得到的候选组件。Load 可能失败，失败只影响该候选。
type Candidate struct {
	Name string
	Load func() (reflect.Type, error)
}

// Discoverer 枚举扫描路径下的候选组件。
type Discoverer interface {
	Discover(scanPath string) ([]Candidate, error)
}

// DiscovererFunc 函数适配器。
type DiscovererFunc func(scanPath string) ([]Candidate, error)

func (f DiscovererFunc) Discover(scanPath string) ([]Candidate, error) { return f(scanPath) }

// TypeCandidate 用已知类型构造候选项。
func TypeCandidate(t reflect.Type) Candidate {
	return Candidate{
		Name: typeString(t),
		Load: func() (reflect.Type, error) { return t, nil },
	}
}

// load 调用 Load，panic 转换为错误，不影响其余候选项。
func (c Candidate) load(scanPath string) (typ reflect.Type, err error) {
	if c.Load == nil {
		return nil, fmt.Errorf("%w: %s", ErrTypeNotLoaded, c.Name)
	}
	defer func() {
		if p := recover(); p != nil {
			typ, err = nil, &DiscoveryError{ScanPath: scanPath, Candidate: c.Name, Cause: fmt.Errorf("panic: %v", p)}
		}
	}()

	typ, err = c.Load()
	if err != nil {
		return nil, err
	}
	if typ == nil {
		return nil, fmt.Errorf("%w: %s", ErrTypeNotLoaded, c.Name)
	}
	return typ, nil
}
