package config

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gocrud/ioc/di"
	"github.com/gocrud/ioc/logging"
)

const (
	// DiscoveryCatalog 从进程内登记的类型中发现组件
	DiscoveryCatalog = "catalog"
	// DiscoverySource 解析源码发现组件，类型仍需登记
	DiscoverySource = "source"
)

// StringList 既可以绑定数组，也可以绑定逗号分隔的字符串（来自环境变量时）
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*l = list
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("config: 期望字符串或字符串数组: %s", data)
	}
	*l = nil
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			*l = append(*l, part)
		}
	}
	return nil
}

// LogSettings 容器日志配置
type LogSettings struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// WebSettings 检查接口的监听配置
type WebSettings struct {
	Port int `json:"port"`
}

// Settings 容器配置，对应配置文件中的 ioc 节（web 节单独绑定）
//
//	ioc:
//	  scan: ["github.com/gocrud/ioc/example/service"]
//	  discovery: catalog
//	  log:
//	    level: info
//	    format: text
//	web:
//	  port: 8080
type Settings struct {
	Scan      StringList  `json:"scan"`
	Discovery string      `json:"discovery"`
	SourceDir string      `json:"sourceDir"` // source 模式下定位 go.mod 的目录
	Log       LogSettings `json:"log"`
	Web       WebSettings `json:"-"`
}

// ComponentScan 实现 di.ConfigRoot
func (s Settings) ComponentScan() []string {
	return s.Scan
}

var _ di.ConfigRoot = Settings{}

// DefaultSettings 返回默认配置
func DefaultSettings() Settings {
	return Settings{
		Discovery: DiscoveryCatalog,
		Log:       LogSettings{Level: "info", Format: "text"},
		Web:       WebSettings{Port: 8080},
	}
}

// LoadSettings 从配置中读取 ioc 与 web 节，缺失的节使用默认值
func LoadSettings(cfg Configuration) (Settings, error) {
	s := DefaultSettings()
	all := cfg.GetAll()

	if _, ok := all["ioc"]; ok {
		if err := cfg.Bind("ioc", &s); err != nil {
			return s, err
		}
	}
	if _, ok := all["web"]; ok {
		if err := cfg.Bind("web", &s.Web); err != nil {
			return s, err
		}
	}

	return s, s.Validate()
}

// Validate 检查取值范围
func (s Settings) Validate() error {
	switch s.Discovery {
	case DiscoveryCatalog, DiscoverySource:
	default:
		return fmt.Errorf("config: 未知的 discovery %q，可选 catalog、source", s.Discovery)
	}
	if _, err := logging.ParseLevel(s.Log.Level); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	switch s.Log.Format {
	case "", "text", "json", "zap":
	default:
		return fmt.Errorf("config: 未知的日志格式 %q", s.Log.Format)
	}
	if s.Web.Port < 0 || s.Web.Port > 65535 {
		return fmt.Errorf("config: 端口 %d 超出范围", s.Web.Port)
	}
	return nil
}
