// internal/pkg/logger/logger.go
package logger

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// Logger 在 zerolog.Logger 之上保留了 log.Printf 风格的便捷方法,
// 方便旧代码平滑迁移到结构化日志。
type Logger struct {
	zerolog.Logger
}

var base = zerolog.New(os.Stdout).With().Timestamp().Logger()

// Init 设置全局日志的服务名字段, 应在进程启动时调用一次。
func Init(serviceName string) {
	base = base.With().Str("service", serviceName).Logger()
}

// Ctx 返回一个绑定了当前链路追踪上下文的 Logger。
// 如果 ctx 中存在有效的 TraceID, 它会作为 trace_id 字段输出,
// 这样日志平台就能和 Jaeger 中的调用链互相跳转。
func Ctx(ctx context.Context) *Logger {
	l := base
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		l = l.With().Str("trace_id", sc.TraceID().String()).Logger()
	}
	return &Logger{l}
}

// Printf 以 Info 级别输出格式化日志, 保持与标准库 log 一致的调用习惯。
func (l *Logger) Printf(format string, v ...interface{}) {
	l.Logger.Info().Msgf(format, v...)
}
