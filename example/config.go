// Package example 示例应用的根配置。
package example

import (
	"github.com/gocrud/ioc/di"

	// 登记示例组件
	_ "github.com/gocrud/ioc/example/service"
)

// ServicePackage 示例组件所在的包。
const ServicePackage = "github.com/gocrud/ioc/example/service"

// Config 示例应用的根配置，只扫描 service 包。
type Config struct{}

func (Config) ComponentScan() []string {
	return []string{ServicePackage}
}

var _ di.ConfigRoot = Config{}
