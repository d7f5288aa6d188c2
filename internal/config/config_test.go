package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/John-Robertt/vroom/internal/media"
)

func TestLoadEffective_ConfigNotFound(t *testing.T) {
	cwd := t.TempDir()

	_, err := LoadEffective(cwd, CLIArgs{})
	if Code(err) != ErrCodeNotFound {
		t.Fatalf("期望 %q，实际 err=%v (code=%q)", ErrCodeNotFound, err, Code(err))
	}
}

func TestLoadEffective_ConfigMissingPath(t *testing.T) {
	cwd := t.TempDir()
	writeFile(t, filepath.Join(cwd, FileName), []byte("concurrency = 2\n"))

	_, err := LoadEffective(cwd, CLIArgs{})
	if Code(err) != ErrCodeMissingPath {
		t.Fatalf("期望 %q，实际 err=%v (code=%q)", ErrCodeMissingPath, err, Code(err))
	}
}

func TestLoadEffective_FullFile(t *testing.T) {
	cwd := t.TempDir()
	writeFile(t, filepath.Join(cwd, FileName), []byte(`
path = "videos"
concurrency = 64
extensions = [".MP4", "mkv", " "]
exclude_dirs = ["tmp"]
fold_unicode = true
log_level = "debug"
cache_dir = ".vroom"

[proxy]
url = "http://127.0.0.1:7890"
`))

	eff, err := LoadEffective(cwd, CLIArgs{})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}

	root := filepath.Join(cwd, "videos")
	want := EffectiveConfig{
		Path:        root,
		Concurrency: 32,
		Extensions:  []string{"mp4", "mkv"},
		ExcludeDirs: []string{"tmp"},
		FoldUnicode: true,
		LogLevel:    "debug",
		CacheDir:    filepath.Join(root, ".vroom"),
		ProxyURL:    "http://127.0.0.1:7890",
	}
	if diff := cmp.Diff(want, eff); diff != "" {
		t.Fatalf("EffectiveConfig 不符 (-want +got):\n%s", diff)
	}
}

func TestLoadEffective_FoldCLIOverride(t *testing.T) {
	cwd := t.TempDir()
	writeFile(t, filepath.Join(cwd, FileName), []byte("path = \"videos\"\nfold_unicode = true\n"))

	eff, err := LoadEffective(cwd, CLIArgs{
		FoldUnicode:    false,
		FoldUnicodeSet: true, // --fold-unicode=false
	})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if eff.FoldUnicode {
		t.Fatalf("期望 fold_unicode=false，实际=true")
	}
}

func TestLoadEffective_CLIPath_ConfigOptional(t *testing.T) {
	cwd := t.TempDir()
	root := filepath.Join(cwd, "root")
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}

	eff, err := LoadEffective(cwd, CLIArgs{Path: "root"})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if eff.Path != root {
		t.Fatalf("期望 path=%q，实际=%q", root, eff.Path)
	}
	if eff.Concurrency != DefaultConcurrency {
		t.Fatalf("期望 concurrency=%d，实际=%d", DefaultConcurrency, eff.Concurrency)
	}
	if diff := cmp.Diff(media.DefaultExtensions(), eff.Extensions); diff != "" {
		t.Fatalf("默认扩展名不符 (-want +got):\n%s", diff)
	}
}

func TestLoadEffective_CLIPath_InvalidConfig(t *testing.T) {
	cwd := t.TempDir()
	root := filepath.Join(cwd, "root")
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}
	writeFile(t, filepath.Join(root, FileName), []byte("path = "))

	_, err := LoadEffective(cwd, CLIArgs{Path: root})
	if Code(err) != ErrCodeInvalid {
		t.Fatalf("期望 %q，实际 err=%v (code=%q)", ErrCodeInvalid, err, Code(err))
	}
}

func TestLoadEffective_Invalid(t *testing.T) {
	cases := map[string]string{
		"unknown key":   "path = \"p\"\nprovider = \"javbus\"\n",
		"log level":     "path = \"p\"\nlog_level = \"loud\"\n",
		"proxy url":     "path = \"p\"\n[proxy]\nurl = \"http://[::1\"\n",
		"proxy no host": "path = \"p\"\n[proxy]\nurl = \"127.0.0.1\"\n",
		"ext separator": "path = \"p\"\nextensions = [\"a/b\"]\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			cwd := t.TempDir()
			writeFile(t, filepath.Join(cwd, FileName), []byte(body))

			_, err := LoadEffective(cwd, CLIArgs{})
			if Code(err) != ErrCodeInvalid {
				t.Fatalf("期望 %q，实际 err=%v (code=%q)", ErrCodeInvalid, err, Code(err))
			}
		})
	}
}

func TestLoadEffective_CLILogLevelWins(t *testing.T) {
	cwd := t.TempDir()
	writeFile(t, filepath.Join(cwd, FileName), []byte("path = \"p\"\nlog_level = \"debug\"\n"))

	eff, err := LoadEffective(cwd, CLIArgs{LogLevel: "warn"})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if eff.LogLevel != "warn" {
		t.Fatalf("期望 log_level=warn，实际=%q", eff.LogLevel)
	}
}

func writeFile(t *testing.T, path string, b []byte) {
	t.Helper()
	if err := os.WriteFile(path, b, 0o644); err != nil {
		t.Fatalf("写入文件失败 %q：%v", path, err)
	}
}

func TestEffectiveConfig_CacheRoot(t *testing.T) {
	root := filepath.Join(string(filepath.Separator), "lib")
	if got := (EffectiveConfig{Path: root}).CacheRoot(); got != filepath.Join(root, "cache") {
		t.Fatalf("期望默认 <path>/cache，实际 %q", got)
	}
	custom := filepath.Join(string(filepath.Separator), "var", "vroom")
	if got := (EffectiveConfig{Path: root, CacheDir: custom}).CacheRoot(); got != custom {
		t.Fatalf("期望 %q，实际 %q", custom, got)
	}
}
