package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/John-Robertt/vroom/internal/app/run"
	"github.com/John-Robertt/vroom/internal/config"
	"github.com/John-Robertt/vroom/internal/domain"
	"github.com/John-Robertt/vroom/internal/log"
)

var (
	_ run.Observer = (*progressUI)(nil)
	_ run.Observer = (*logObserver)(nil)
)

// progressUI 是交互终端下的逐行输出。
//
// 所有过程信息写到 stderr，不污染 stdout 的 JSON 输出契约。
type progressUI struct {
	w io.Writer

	mu        sync.Mutex
	startedAt time.Time

	jav       int
	slr       int
	unmatched int
	failed    int
}

func newProgressUI(w io.Writer) *progressUI {
	return &progressUI{w: w}
}

func (p *progressUI) OnStart(eff config.EffectiveConfig) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := time.Now()
	p.startedAt = now

	fmt.Fprintf(p.w, "[%s] vroom scan\n", now.Format("15:04:05"))
	fmt.Fprintln(p.w, "配置（生效）:")
	fmt.Fprintf(p.w, "  path: %s\n", eff.Path)
	fmt.Fprintf(p.w, "  concurrency: %d\n", eff.Concurrency)
	fmt.Fprintf(p.w, "  extensions: %s\n", formatStringListJSON(eff.Extensions))
	fmt.Fprintf(p.w, "  fold_unicode: %s\n", onOff(eff.FoldUnicode))
	fmt.Fprintf(p.w, "  proxy: %s\n", formatProxy(eff.ProxyURL))
	fmt.Fprintf(p.w, "  exclude_dirs: %s + 固定排除 cache/\n", formatStringListJSON(eff.ExcludeDirs))
	fmt.Fprintf(p.w, "  cache: %s\n", eff.CacheRoot())
	fmt.Fprintln(p.w)
}

func (p *progressUI) OnPhaseDone(name string, fields map[string]any, dur time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch name {
	case "scan":
		fmt.Fprintf(p.w, "扫描: files=%d (%s)\n", intField(fields, "files"), formatShortDuration(dur))
	case "classify":
		fmt.Fprintf(p.w, "分类: workers=%d jav=%d slr=%d unmatched=%d (%s)\n\n",
			intField(fields, "workers"),
			intField(fields, "jav"),
			intField(fields, "slr"),
			intField(fields, "unmatched"),
			formatShortDuration(dur),
		)
	default:
		// 兜底：未知阶段也不要静默（便于调试/演进）。
		fmt.Fprintf(p.w, "%s (%s)\n", name, formatShortDuration(dur))
	}
}

func (p *progressUI) OnItemDone(idx, total int, res domain.ItemResult) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch res.Kind {
	case domain.KindJAV:
		p.jav++
		fmt.Fprintf(p.w, "[%d/%d] %s JAV files=%d%s\n", idx, total, res.Code, len(res.Files), formatParts(res.Files))
	case domain.KindSLR:
		p.slr++
		site, proj := "", ""
		if res.SLR != nil {
			site, proj = res.SLR.Site, res.SLR.Projection
		}
		fmt.Fprintf(p.w, "[%d/%d] %s SLR site=%s projection=%s\n", idx, total, res.Code, site, proj)
	case domain.KindUnmatched:
		p.unmatched++
		fmt.Fprintf(p.w, "[%d/%d] %s UNMATCHED %s\n", idx, total, firstSrc(res), res.ErrorCode)
	default:
		p.failed++
		fmt.Fprintf(p.w, "[%d/%d] FAIL %s: %s\n", idx, total, res.ErrorCode, truncate(res.ErrorMsg, 160))
	}

	if idx == total {
		fmt.Fprintf(p.w, "\n用时 %s：jav=%d slr=%d unmatched=%d failed=%d\n",
			formatShortDuration(time.Since(p.startedAt)), p.jav, p.slr, p.unmatched, p.failed,
		)
	}
}

// logObserver 在非交互环境下把事件写成结构化日志。
type logObserver struct {
	logger zerolog.Logger
}

func newLogObserver(logger zerolog.Logger) *logObserver {
	return &logObserver{logger: logger}
}

func (o *logObserver) OnStart(eff config.EffectiveConfig) {
	o.logger.Info().
		Str(log.FieldPath, eff.Path).
		Int("concurrency", eff.Concurrency).
		Strs("extensions", eff.Extensions).
		Bool("fold_unicode", eff.FoldUnicode).
		Msg("scan started")
}

func (o *logObserver) OnPhaseDone(name string, fields map[string]any, dur time.Duration) {
	o.logger.Info().
		Str(log.FieldPhase, name).
		Fields(fields).
		Dur("duration", dur).
		Msg("phase done")
}

func (o *logObserver) OnItemDone(idx, total int, res domain.ItemResult) {
	ev := o.logger.Debug()
	if res.Kind == domain.KindFailed {
		ev = o.logger.Warn().Str("error_code", res.ErrorCode).Str("error_msg", res.ErrorMsg)
	}
	ev.Int("idx", idx).
		Int("total", total).
		Str(log.FieldKind, res.Kind).
		Str(log.FieldCode, res.Code).
		Str(log.FieldFile, firstSrc(res)).
		Msg("item")
}

func firstSrc(res domain.ItemResult) string {
	if len(res.Files) == 0 {
		return ""
	}
	return res.Files[0].Src
}

// formatParts 只在多文件时展示 part 列表，例如 " parts=1,2"。
func formatParts(files []domain.FileResult) string {
	if len(files) < 2 {
		return ""
	}
	parts := make([]string, 0, len(files))
	for _, f := range files {
		p := f.Part
		if p == "" {
			p = "-"
		}
		parts = append(parts, p)
	}
	return " parts=" + strings.Join(parts, ",")
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func formatProxy(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "off"
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "on (" + truncate(raw, 120) + ")"
	}
	auth := "off"
	if u.User != nil {
		auth = "on"
	}
	return fmt.Sprintf("on (%s://%s, auth=%s)", u.Scheme, u.Host, auth)
}

func formatStringListJSON(xs []string) string {
	// json.Marshal(nil slice) => "null"；对用户更友好的是 "[]"
	if xs == nil {
		xs = []string{}
	}
	b, err := json.Marshal(xs)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if max <= 0 || len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

func formatShortDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

func intField(fields map[string]any, key string) int {
	if fields == nil {
		return 0
	}
	v, ok := fields[key]
	if !ok {
		return 0
	}
	switch x := v.(type) {
	case int:
		return x
	case int32:
		return int(x)
	case int64:
		return int(x)
	default:
		return 0
	}
}
