package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"

	"github.com/John-Robertt/vroom/internal/media"
)

const (
	// ErrCodeNotFound 表示无参运行但 cwd 下没有 vroom.toml。
	ErrCodeNotFound = "config_not_found"
	// ErrCodeInvalid 表示配置文件无法读取/解析，或字段不合法。
	ErrCodeInvalid = "config_invalid"
	// ErrCodeMissingPath 表示无参运行但配置文件缺少 path 字段。
	ErrCodeMissingPath = "config_missing_path"
)

const (
	// FileName 是配置文件名（位于扫描根目录或 cwd）。
	FileName = "vroom.toml"
	// DefaultConcurrency 是并发的内置默认值（当配置未指定时）。
	DefaultConcurrency = 4
)

// CLIArgs 是 CLI 暴露的入口参数，保留“是否显式指定”的信息，
// 保证 --fold-unicode=false 这类参数能覆盖配置文件。
type CLIArgs struct {
	Path string

	LogLevel string

	FoldUnicode    bool
	FoldUnicodeSet bool
}

// FileConfig 对应 vroom.toml 的解析结构。
type FileConfig struct {
	Path        string       `toml:"path"`
	Concurrency int          `toml:"concurrency"`
	Extensions  []string     `toml:"extensions"`
	ExcludeDirs []string     `toml:"exclude_dirs"`
	FoldUnicode *bool        `toml:"fold_unicode"`
	LogLevel    string       `toml:"log_level"`
	CacheDir    string       `toml:"cache_dir"`
	Proxy       *ProxyConfig `toml:"proxy"`
}

type ProxyConfig struct {
	URL string `toml:"url"`
}

// EffectiveConfig 是合并并做最小规范化后的最终配置（实现层直接消费，不再做二次默认/优先级判断）。
type EffectiveConfig struct {
	Path string

	Concurrency int
	Extensions  []string
	ExcludeDirs []string
	FoldUnicode bool
	LogLevel    string

	// CacheDir 为空时使用 <path>/cache。
	CacheDir string
	ProxyURL string
}

// CacheRoot 返回缓存目录：cache_dir 未配置时为 <path>/cache。
func (e EffectiveConfig) CacheRoot() string {
	if e.CacheDir != "" {
		return e.CacheDir
	}
	return filepath.Join(e.Path, "cache")
}

// Error 是配置阶段的结构化错误（带 error_code）。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeNotFound:
		return fmt.Sprintf("%s：未找到配置文件 %q", e.Code, e.Path)
	case ErrCodeMissingPath:
		return fmt.Sprintf("%s：配置文件 %q 缺少必填字段 path", e.Code, e.Path)
	case ErrCodeInvalid:
		if e.Err != nil {
			return fmt.Sprintf("%s：配置文件 %q 无效：%v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s：配置文件 %q 无效", e.Code, e.Path)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		return e.Code
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// LoadEffective 发现并读取配置文件，然后与 CLI 参数合并为最终配置。
//
// 发现规则（固定）：
// 1) CLI 提供 path：尝试读取 <path>/vroom.toml（可选）
// 2) CLI 未提供 path：必须读取 <cwd>/vroom.toml（必选），且其中必须包含 path
//
// 覆盖优先级（固定）：
// - path：CLI path > config path
// - fold_unicode：CLI --fold-unicode[=bool] > config > 默认 false
// - log_level：CLI > config > 空（由 log 包决定默认值）
// - 其他字段：仅由 config 控制
func LoadEffective(cwd string, cli CLIArgs) (EffectiveConfig, error) {
	cwdAbs, err := filepath.Abs(cwd)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cwd, Err: err}
	}

	if strings.TrimSpace(cli.Path) != "" {
		absPath := absCleanFrom(cwdAbs, cli.Path)
		cfgPath := filepath.Join(absPath, FileName)

		fc, _, err := readFileConfig(cfgPath)
		if err != nil {
			return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
		}
		return merge(absPath, cli, fc, cfgPath)
	}

	cfgPath := filepath.Join(cwdAbs, FileName)
	fc, exists, err := readFileConfig(cfgPath)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}
	if !exists {
		return EffectiveConfig{}, &Error{Code: ErrCodeNotFound, Path: cfgPath, Err: os.ErrNotExist}
	}
	if strings.TrimSpace(fc.Path) == "" {
		return EffectiveConfig{}, &Error{Code: ErrCodeMissingPath, Path: cfgPath}
	}

	absPath := absCleanFrom(cwdAbs, fc.Path)
	return merge(absPath, cli, fc, cfgPath)
}

func merge(absPath string, cli CLIArgs, fc FileConfig, cfgPath string) (EffectiveConfig, error) {
	fold := false
	if cli.FoldUnicodeSet {
		fold = cli.FoldUnicode
	} else if fc.FoldUnicode != nil {
		fold = *fc.FoldUnicode
	}

	concurrency := fc.Concurrency
	if concurrency == 0 {
		concurrency = DefaultConcurrency
	}
	if concurrency < 1 {
		concurrency = 1
	}
	if concurrency > 32 {
		concurrency = 32
	}

	exts, err := normalizeExtensions(fc.Extensions)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}

	logLevel := strings.TrimSpace(cli.LogLevel)
	if logLevel == "" {
		logLevel = strings.TrimSpace(fc.LogLevel)
	}
	if logLevel != "" {
		if _, err := zerolog.ParseLevel(logLevel); err != nil {
			return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: fmt.Errorf("log_level 无效：%q", logLevel)}
		}
	}

	proxyURL := ""
	if fc.Proxy != nil {
		proxyURL = strings.TrimSpace(fc.Proxy.URL)
	}
	if proxyURL != "" {
		u, err := url.Parse(proxyURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: fmt.Errorf("proxy.url 无效：%q", proxyURL)}
		}
	}

	cacheDir := ""
	if strings.TrimSpace(fc.CacheDir) != "" {
		cacheDir = absCleanFrom(absPath, fc.CacheDir)
	}

	return EffectiveConfig{
		Path:        absPath,
		Concurrency: concurrency,
		Extensions:  exts,
		ExcludeDirs: append([]string(nil), fc.ExcludeDirs...),
		FoldUnicode: fold,
		LogLevel:    logLevel,
		CacheDir:    cacheDir,
		ProxyURL:    proxyURL,
	}, nil
}

// normalizeExtensions 去掉前导 '.' 与空白并转小写；为空时使用默认扩展名。
func normalizeExtensions(exts []string) ([]string, error) {
	out := make([]string, 0, len(exts))
	for _, x := range exts {
		x = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(x), "."))
		if x == "" {
			continue
		}
		if strings.ContainsAny(x, `/\`) {
			return nil, fmt.Errorf("extensions 不能包含路径分隔符：%q", x)
		}
		out = append(out, x)
	}
	if len(out) == 0 {
		return media.DefaultExtensions(), nil
	}
	return out, nil
}

// absCleanFrom 以 base 为基准，把 p 变为 clean + absolute。
func absCleanFrom(base, p string) string {
	p = filepath.Clean(strings.TrimSpace(p))
	if p == "" {
		return ""
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(base, p))
}

// readFileConfig 读取并解析 TOML 配置文件。
// 返回值 exists 表示该文件是否存在（不存在不算错误）。未知字段视为错误，避免拼写错误被静默忽略。
func readFileConfig(path string) (fc FileConfig, exists bool, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, false, nil
		}
		return FileConfig{}, false, err
	}
	md, err := toml.Decode(string(b), &fc)
	if err != nil {
		return FileConfig{}, true, err
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		keys := make([]string, 0, len(undec))
		for _, k := range undec {
			keys = append(keys, k.String())
		}
		return FileConfig{}, true, fmt.Errorf("未知字段：%s", strings.Join(keys, ", "))
	}
	return fc, true, nil
}
