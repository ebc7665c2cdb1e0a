package main

import (
	"github.com/gocrud/ioc"
	"github.com/gocrud/ioc/config"
	"github.com/gocrud/ioc/di"
	"github.com/gocrud/ioc/example"
	"github.com/gocrud/ioc/logging"
	"github.com/spf13/cobra"
)

const appName = "ioc"

type rootOptions struct {
	configFile string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Minimal IoC container example",
		Long:          "Minimal IoC container example\n\nSettings come from --config (YAML) and GOCRUD_* environment variables.",
		SilenceUsage:  true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "YAML config file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override ioc.log.level (trace|debug|info|warn|error)")

	cmd.AddCommand(newRunCmd(opts), newBeansCmd(opts), newServeCmd(opts))
	return cmd
}

// loadSettings 读取配置；没有配置扫描路径时使用示例组件包
func (o *rootOptions) loadSettings(cmd *cobra.Command) (config.Settings, error) {
	cfg, err := ioc.LoadConfig(cmd.Context(), o.configFile)
	if err != nil {
		return config.Settings{}, err
	}
	s, err := config.LoadSettings(cfg)
	if err != nil {
		return s, err
	}
	if len(s.Scan) == 0 {
		s.Scan = example.Config{}.ComponentScan()
	}
	if o.logLevel != "" {
		s.Log.Level = o.logLevel
	}
	return s, s.Validate()
}

// bootstrap 创建容器，日志写到 stderr
func (o *rootOptions) bootstrap(cmd *cobra.Command) (config.Settings, *di.Container, logging.Logger, error) {
	s, err := o.loadSettings(cmd)
	if err != nil {
		return s, nil, nil, err
	}
	c, logger, err := ioc.Bootstrap(s, cmd.ErrOrStderr())
	return s, c, logger, err
}
