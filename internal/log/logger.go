// Package log 对 zerolog 做最小封装：每次命令执行构造一个 logger 放进 context，
// 按组件派生子 logger；没有 context 时退回进程级默认 logger。
//
// 约束：日志只写 stderr（或调用方指定的 writer）；stdout 留给 JSON 输出。
package log

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config 是 New 的配置。
type Config struct {
	Level   string    // "debug" / "info" / ...；为空时读 LOG_LEVEL，最终默认 info
	Output  io.Writer // 默认 os.Stderr
	Service string    // 默认 "vroom"
	Console bool      // 交互终端下使用 zerolog.ConsoleWriter
}

func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}

var (
	once sync.Once
	base zerolog.Logger
)

// New 按 cfg 构造一个独立的 logger。
func New(cfg Config) zerolog.Logger {
	level := zerolog.InfoLevel
	if cfg.Level != "" {
		if parsed, err := zerolog.ParseLevel(cfg.Level); err == nil {
			level = parsed
		}
	} else if env := os.Getenv("LOG_LEVEL"); env != "" {
		if parsed, err := zerolog.ParseLevel(env); err == nil {
			level = parsed
		}
	}
	w := cfg.Output
	if w == nil {
		w = os.Stderr
	}
	if cfg.Console {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}

	service := cfg.Service
	if service == "" {
		service = "vroom"
	}

	return zerolog.New(w).Level(level).With().
		Timestamp().
		Str("service", service).
		Logger()
}

// Base 返回进程级默认 logger（默认配置，首次调用时构造）。
func Base() zerolog.Logger {
	once.Do(func() {
		base = New(Config{})
	})
	return base
}

// IntoContext 把 l 挂到 ctx 上，供 FromContext 取回。
func IntoContext(ctx context.Context, l zerolog.Logger) context.Context {
	return l.WithContext(ctx)
}

// FromContext 返回 ctx 上的 logger 并带上 component 字段；ctx 上没有时使用 Base()。
func FromContext(ctx context.Context, component string) zerolog.Logger {
	l := Base()
	if ctx != nil {
		if cl := zerolog.Ctx(ctx); cl != nil && cl.GetLevel() != zerolog.Disabled {
			l = *cl
		}
	}
	return l.With().Str(FieldComponent, component).Logger()
}
