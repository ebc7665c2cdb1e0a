package di

import (
	"fmt"
	"reflect"
)

// Resolve 获取 bean 并断言为 T。
// name 为空时使用 T 的类型名，例如 Resolve[*TestServiceA](c, "") 查找 "TestServiceA"。
func Resolve[T any](c *Container, name string) (T, error) {
	var zero T
	if name == "" {
		name = typeBareName(TypeOf[T]())
	}

	val, err := c.GetBean(name)
	if err != nil {
		return zero, err
	}

	if v, ok := val.(T); ok {
		return v, nil
	}
	return zero, fmt.Errorf("di: bean %s 的类型是 %T，期望 %v", NormalizeName(name), val, TypeOf[T]())
}

// MustResolve 同 Resolve，失败时 panic。
func MustResolve[T any](c *Container, name string) T {
	v, err := Resolve[T](c, name)
	if err != nil {
		panic(err)
	}
	return v
}

// TypeOf 获取类型 T 的 reflect.Type（泛型辅助函数）
//
// 示例：
//
//	catalog.Add(di.TypeOf[service.TestServiceA]())
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// typeOfValue 接受 reflect.Type 或任意值。
func typeOfValue(v any) reflect.Type {
	if t, ok := v.(reflect.Type); ok {
		return t
	}
	return reflect.TypeOf(v)
}
