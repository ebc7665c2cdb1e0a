package logging

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// LoggingBuilder 日志构建器
type LoggingBuilder struct {
	providers    []LoggerProvider
	minimumLevel LogLevel
	mu           sync.RWMutex
}

// NewLoggingBuilder 创建日志构建器
func NewLoggingBuilder() *LoggingBuilder {
	return &LoggingBuilder{
		providers:    make([]LoggerProvider, 0),
		minimumLevel: LogLevelInfo,
	}
}

// SetMinimumLevel 设置最小日志级别
func (b *LoggingBuilder) SetMinimumLevel(level LogLevel) *LoggingBuilder {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.minimumLevel = level
	return b
}

// AddProvider 添加日志提供者
func (b *LoggingBuilder) AddProvider(provider LoggerProvider) *LoggingBuilder {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.providers = append(b.providers, provider)
	return b
}

// AddConsole 添加控制台日志
func (b *LoggingBuilder) AddConsole(options ...ConsoleLoggerOptions) *LoggingBuilder {
	opts := ConsoleLoggerOptions{
		Formatter: &TextFormatter{
			IncludeTimestamp: true,
			TimestampFormat:  "2006-01-02 15:04:05",
			ColorOutput:      true,
		},
		Output: os.Stdout,
	}
	if len(options) > 0 {
		opts = options[0]
	}
	return b.AddProvider(NewConsoleLoggerProvider(opts))
}

// AddJsonConsole 添加 JSON 格式的控制台日志
func (b *LoggingBuilder) AddJsonConsole(output io.Writer) *LoggingBuilder {
	return b.AddProvider(NewConsoleLoggerProvider(ConsoleLoggerOptions{
		Formatter: NewJsonFormatter(),
		Output:    output,
	}))
}

// AddZap 添加 zap 日志
func (b *LoggingBuilder) AddZap(output io.Writer) *LoggingBuilder {
	return b.AddProvider(NewZapLoggerProvider(output))
}

// Build 构建日志工厂
func (b *LoggingBuilder) Build() LoggerFactory {
	b.mu.RLock()
	defer b.mu.RUnlock()

	factory := &loggerFactory{
		providers:    make([]LoggerProvider, 0, len(b.providers)),
		minimumLevel: b.minimumLevel,
	}

	for _, provider := range b.providers {
		factory.AddProvider(provider)
	}

	return factory
}

// New 按级别和输出格式创建单个分类的 Logger
// format 取值 text、json、zap，空字符串等同 text
func New(category, level, format string, output io.Writer) (Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	if output == nil {
		output = os.Stdout
	}

	builder := NewLoggingBuilder().SetMinimumLevel(lvl)
	switch format {
	case "", "text":
		builder.AddConsole(ConsoleLoggerOptions{
			Formatter: NewTextFormatter(),
			Output:    output,
		})
	case "json":
		builder.AddJsonConsole(output)
	case "zap":
		builder.AddZap(output)
	default:
		return nil, fmt.Errorf("logging: unknown format %q", format)
	}

	return builder.Build().CreateLogger(category), nil
}
