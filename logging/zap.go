package logging

import (
	"io"
	"os"
	"slices"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLoggerProvider 基于 zap 的日志提供者，输出 JSON 行
type ZapLoggerProvider struct {
	base  *zap.Logger
	level zap.AtomicLevel
}

// NewZapLoggerProvider 创建 zap 日志提供者
func NewZapLoggerProvider(output io.Writer) *ZapLoggerProvider {
	if output == nil {
		output = os.Stdout
	}

	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.AddSync(output),
		level,
	)

	return &ZapLoggerProvider{
		base:  zap.New(core),
		level: level,
	}
}

func (p *ZapLoggerProvider) CreateLogger(category string) Logger {
	logger := p.base
	if category != "" {
		logger = logger.Named(category)
	}
	return &zapLogger{logger: logger, base: p.base}
}

func (p *ZapLoggerProvider) SetMinimumLevel(level LogLevel) {
	p.level.SetLevel(toZapLevel(level))
}

// Sync 刷新缓冲
func (p *ZapLoggerProvider) Sync() error {
	return p.base.Sync()
}

// zapLogger 将 Logger 接口适配到 zap
type zapLogger struct {
	logger *zap.Logger
	base   *zap.Logger
	fields []Field
}

func (l *zapLogger) Trace(msg string, fields ...Field) { l.Log(LogLevelTrace, msg, fields...) }
func (l *zapLogger) Debug(msg string, fields ...Field) { l.Log(LogLevelDebug, msg, fields...) }
func (l *zapLogger) Info(msg string, fields ...Field) { l.Log(LogLevelInfo, msg, fields...) }
func (l *zapLogger) Warn(msg string, fields ...Field) { l.Log(LogLevelWarn, msg, fields...) }
func (l *zapLogger) Error(msg string, fields ...Field) { l.Log(LogLevelError, msg, fields...) }

func (l *zapLogger) Log(level LogLevel, msg string, fields ...Field) {
	if level >= LogLevelNone {
		return
	}
	ce := l.logger.Check(toZapLevel(level), msg)
	if ce == nil {
		return
	}

	all := slices.Concat(l.fields, fields)
	zf := make([]zap.Field, 0, len(all))
	for _, f := range all {
		if err, ok := f.Value.(error); ok {
			zf = append(zf, zap.NamedError(f.Key, err))
			continue
		}
		zf = append(zf, zap.Any(f.Key, f.Value))
	}
	ce.Write(zf...)
}

func (l *zapLogger) WithFields(fields ...Field) Logger {
	return &zapLogger{
		logger: l.logger,
		base:   l.base,
		fields: slices.Concat(l.fields, fields),
	}
}

func (l *zapLogger) WithCategory(category string) Logger {
	return &zapLogger{
		logger: l.base.Named(category),
		base:   l.base,
		fields: l.fields,
	}
}

func toZapLevel(level LogLevel) zapcore.Level {
	switch level {
	case LogLevelTrace, LogLevelDebug:
		return zapcore.DebugLevel
	case LogLevelInfo:
		return zapcore.InfoLevel
	case LogLevelWarn:
		return zapcore.WarnLevel
	case LogLevelError:
		return zapcore.ErrorLevel
	default:
		// 高于 Fatal 即不输出
		return zapcore.FatalLevel + 1
	}
}
