// Package service 示例组件：TestServiceA 与 TestServiceC 互相依赖，
// TestServiceB 为原型作用域。
package service

import "github.com/gocrud/ioc/discovery"

func init() {
	discovery.Register(TestServiceA{}, TestServiceB{}, TestServiceC{})
}
