package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/John-Robertt/vroom/internal/domain"
)

func startWatch(t *testing.T, root string, opts Options) (<-chan Event, func()) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	events := make(chan Event, 16)
	ready := make(chan struct{})
	done := make(chan error, 1)

	opts.Logger = zerolog.Nop()
	opts.Ready = func() { close(ready) }
	go func() {
		done <- Run(ctx, root, opts, func(ev Event) { events <- ev })
	}()

	select {
	case <-ready:
	case err := <-done:
		t.Fatalf("watch 提前退出：%v", err)
	case <-time.After(5 * time.Second):
		t.Fatalf("watch 未就绪")
	}
	return events, func() {
		cancel()
		if err := <-done; err != nil {
			t.Fatalf("不期望错误：%v", err)
		}
	}
}

func waitEvent(t *testing.T, events <-chan Event) Event {
	t.Helper()
	select {
	case ev := <-events:
		return ev
	case <-time.After(5 * time.Second):
		t.Fatalf("等待事件超时")
	}
	return Event{}
}

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("写入文件失败：%v", err)
	}
}

func TestRun_ClassifiesNewFiles(t *testing.T) {
	root := t.TempDir()
	events, stop := startWatch(t, root, Options{})
	defer stop()

	writeFile(t, filepath.Join(root, "notes.txt"))
	writeFile(t, filepath.Join(root, "WVR1-1001-2.mp4"))

	ev := waitEvent(t, events)
	if ev.RelPath != "WVR1-1001-2.mp4" {
		t.Fatalf("期望 WVR1-1001-2.mp4，实际 %q", ev.RelPath)
	}
	if ev.Class.Kind != domain.KindJAV || string(ev.Class.Jav.Code()) != "WVR1-1001" {
		t.Fatalf("分类不符：%+v", ev.Class)
	}
}

func TestRun_NewSubdirectory(t *testing.T) {
	root := t.TempDir()
	events, stop := startWatch(t, root, Options{})
	defer stop()

	writeFile(t, filepath.Join(root, "slr", "SLR_SLR Originals_Vegas Night_1920p_12345_FISHEYE190.mp4"))

	ev := waitEvent(t, events)
	if ev.RelPath != filepath.Join("slr", "SLR_SLR Originals_Vegas Night_1920p_12345_FISHEYE190.mp4") {
		t.Fatalf("路径不符：%q", ev.RelPath)
	}
	if ev.Class.Kind != domain.KindSLR || ev.Class.Slr.SlrID != 12345 {
		t.Fatalf("分类不符：%+v", ev.Class)
	}
}

func TestRun_SkipsExcludedDirs(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "tmp"), 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}
	events, stop := startWatch(t, root, Options{ExcludeDirs: []string{"tmp"}})
	defer stop()

	writeFile(t, filepath.Join(root, "tmp", "WVR1-1001.mp4"))
	writeFile(t, filepath.Join(root, "cache", "WVR1-1002.mp4"))
	writeFile(t, filepath.Join(root, "hello.mp4"))

	ev := waitEvent(t, events)
	if ev.RelPath != "hello.mp4" {
		t.Fatalf("排除目录中的文件不应上报，实际 %q", ev.RelPath)
	}
	if ev.Class.Kind != domain.KindUnmatched || ev.Class.Reason != domain.UnmatchedNoMatch {
		t.Fatalf("分类不符：%+v", ev.Class)
	}
}
