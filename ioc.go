// Package ioc 是容器的便捷入口：默认使用 discovery.Default 发现组件，
// 并提供按配置文件启动容器与托管服务的辅助函数。
//
//	c := ioc.New(example.Config{})
//	a, err := di.Resolve[*service.TestServiceA](c, "testServiceA")
package ioc

import (
	"context"
	"fmt"
	"io"

	"github.com/gocrud/ioc/config"
	"github.com/gocrud/ioc/di"
	"github.com/gocrud/ioc/discovery"
	"github.com/gocrud/ioc/logging"
)

// EnvPrefix 环境变量前缀，例如 GOCRUD_IOC_LOG_LEVEL=debug
const EnvPrefix = "GOCRUD_"

// New 使用进程级 Catalog 创建容器，opts 可以覆盖 Discoverer 与日志
func New(root di.ConfigRoot, opts ...di.Option) *di.Container {
	opts = append([]di.Option{di.WithDiscoverer(discovery.Default)}, opts...)
	return di.New(root, opts...)
}

// Register 向进程级 Catalog 登记组件类型，通常在组件包的 init 中调用
func Register(values ...any) {
	discovery.Register(values...)
}

// LoadConfig 依次加载 YAML 文件与环境变量。path 为空时只读环境变量。
func LoadConfig(ctx context.Context, path string) (config.Configuration, error) {
	builder := config.NewConfigurationBuilder()
	if path != "" {
		builder.AddYamlFile(path)
	}
	builder.AddEnvironmentVariables(EnvPrefix)
	return builder.Build(ctx)
}

// NewLogger 按配置创建容器日志，分类为 ioc
func NewLogger(s config.LogSettings, out io.Writer) (logging.Logger, error) {
	return logging.New("ioc", s.Level, s.Format, out)
}

// NewDiscoverer 按配置选择组件发现方式
func NewDiscoverer(s config.Settings) (di.Discoverer, error) {
	switch s.Discovery {
	case "", config.DiscoveryCatalog:
		return discovery.Default, nil
	case config.DiscoverySource:
		return discovery.NewSourceScanner(s.SourceDir, discovery.Default), nil
	}
	return nil, fmt.Errorf("ioc: unknown discovery %q", s.Discovery)
}

// Bootstrap 按配置创建日志与容器
func Bootstrap(s config.Settings, logOut io.Writer) (*di.Container, logging.Logger, error) {
	logger, err := NewLogger(s.Log, logOut)
	if err != nil {
		return nil, nil, err
	}
	d, err := NewDiscoverer(s)
	if err != nil {
		return nil, nil, err
	}
	return di.New(s, di.WithDiscoverer(d), di.WithLogger(logger)), logger, nil
}
