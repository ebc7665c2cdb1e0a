package di

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

var (
	// ErrDefinitionNotFound 请求的名称没有注册定义。
	ErrDefinitionNotFound = errors.New("di: 未找到 bean 定义")
	// ErrBeanNotFound GetBean 无法返回实例。
	ErrBeanNotFound = errors.New("di: 未找到 bean")
	// ErrTypeNotLoaded 扫描到的类型无法加载为 reflect.Type。
	ErrTypeNotLoaded = errors.New("di: 类型未加载")
)

// InstantiationError bean 无法实例化或创建过程中发生 panic。
type InstantiationError struct {
	Bean  string
	Type  reflect.Type
	Cause error
}

func (e *InstantiationError) Error() string {
	return fmt.Sprintf("di: 创建 bean %s (%s) 失败: %v", e.Bean, typeString(e.Type), e.Cause)
}

func (e *InstantiationError) Unwrap() error { return e.Cause }

// FieldInjectionError 单个依赖字段注入失败，字段保持零值。
type FieldInjectionError struct {
	Bean       string
	Field      string
	Dependency string
	Cause      error
}

func (e *FieldInjectionError) Error() string {
	return fmt.Sprintf("di: 注入 %s.%s (依赖 %s) 失败: %v", e.Bean, e.Field, e.Dependency, e.Cause)
}

func (e *FieldInjectionError) Unwrap() error { return e.Cause }

// DiscoveryError 扫描路径不可读或候选类型无法加载。
type DiscoveryError struct {
	ScanPath  string
	Candidate string
	Cause     error
}

func (e *DiscoveryError) Error() string {
	if e.Candidate == "" {
		return fmt.Sprintf("di: 扫描路径 %s 失败: %v", e.ScanPath, e.Cause)
	}
	return fmt.Sprintf("di: 加载候选类型 %s (扫描路径 %s) 失败: %v", e.Candidate, e.ScanPath, e.Cause)
}

func (e *DiscoveryError) Unwrap() error { return e.Cause }

// CircularDependencyError 只由原型 bean 组成的循环依赖，无法通过提前引用打破。
type CircularDependencyError struct {
	Path []string
}

func (e *CircularDependencyError) Error() string {
	return "di: 检测到无法打破的循环依赖: " + strings.Join(e.Path, " -> ")
}
