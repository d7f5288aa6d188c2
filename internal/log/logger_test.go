package log

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestNew_LevelAndFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "warn", Output: &buf, Service: "test"})

	l.Info().Msg("dropped")
	l.Warn().Str(FieldFile, "a.mp4").Msg("kept")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if len(lines) != 1 {
		t.Fatalf("期望只输出 1 行（warn），实际 %d 行：%s", len(lines), buf.String())
	}

	var m map[string]any
	if err := json.Unmarshal(lines[0], &m); err != nil {
		t.Fatalf("日志不是 JSON：%v", err)
	}
	if m["service"] != "test" || m["file"] != "a.mp4" || m["level"] != "warn" {
		t.Fatalf("字段不符：%v", m)
	}
}

func TestNew_InvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "nope", Output: &buf})
	l.Debug().Msg("dropped")
	l.Info().Msg("kept")
	if bytes.Count(buf.Bytes(), []byte("\n")) != 1 {
		t.Fatalf("非法 level 应回退到 info：%s", buf.String())
	}
}

func TestFromContext_PerContextLogger(t *testing.T) {
	var a, b bytes.Buffer
	ctxA := IntoContext(context.Background(), New(Config{Level: "info", Output: &a}))
	ctxB := IntoContext(context.Background(), New(Config{Level: "debug", Output: &b}))

	la := FromContext(ctxA, "x")
	la.Debug().Msg("dropped")
	lb := FromContext(ctxB, "y")
	lb.Debug().Msg("kept")

	if a.Len() != 0 {
		t.Fatalf("info 级别的 logger 不应输出 debug：%s", a.String())
	}
	var m map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(b.Bytes()), &m); err != nil {
		t.Fatalf("日志不是 JSON：%v（%s）", err, b.String())
	}
	if m[FieldComponent] != "y" || m["message"] != "kept" {
		t.Fatalf("字段不符：%v", m)
	}
}

func TestFromContext_FallsBackToBase(t *testing.T) {
	l := FromContext(context.Background(), "x")
	if l.GetLevel() == zerolog.Disabled {
		t.Fatalf("ctx 上没有 logger 时不应返回禁用的 logger")
	}
}
