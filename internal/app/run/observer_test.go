package run

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/John-Robertt/vroom/internal/config"
	"github.com/John-Robertt/vroom/internal/domain"
)

type recordObserver struct {
	mu sync.Mutex

	startCalls int
	phases     []string
	items      []string
}

func (o *recordObserver) OnStart(eff config.EffectiveConfig) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.startCalls++
}

func (o *recordObserver) OnPhaseDone(name string, fields map[string]any, dur time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.phases = append(o.phases, name)
}

func (o *recordObserver) OnItemDone(idx, total int, res domain.ItemResult) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.items = append(o.items, res.Code)
}

func TestExecuteWithObserver_EmitsPhaseAndItemEvents(t *testing.T) {
	root := t.TempDir()
	writeVideo(t, filepath.Join(root, "in", "WVR1-1001.mp4"))

	obs := &recordObserver{}
	_ = ExecuteWithObserver(context.Background(), config.EffectiveConfig{
		Path:        root,
		Concurrency: 1,
	}, obs)

	if obs.startCalls != 1 {
		t.Fatalf("期望 OnStart 调用 1 次，实际 %d", obs.startCalls)
	}

	wantPhases := []string{"scan", "classify"}
	if diff := cmp.Diff(wantPhases, obs.phases); diff != "" {
		t.Fatalf("阶段事件不符合预期 (-want +got):\n%s", diff)
	}
	if len(obs.items) != 1 || obs.items[0] != "WVR1-1001" {
		t.Fatalf("条目事件不符合预期：items=%v", obs.items)
	}
}

func TestExecuteWithObserver_NilObserver_SameResultAsExecute(t *testing.T) {
	root := t.TempDir()
	writeVideo(t, filepath.Join(root, "in", "WVR1-1001.mp4"))
	writeVideo(t, filepath.Join(root, "in", "hello.mp4"))

	cfg := config.EffectiveConfig{
		Path:        root,
		Concurrency: 2,
	}

	a := Execute(context.Background(), cfg)
	b := ExecuteWithObserver(context.Background(), cfg, nil)

	// 时间与 run_id 本身允许不同；对比时归零。
	a.StartedAt, a.FinishedAt, a.RunID = time.Time{}, time.Time{}, ""
	b.StartedAt, b.FinishedAt, b.RunID = time.Time{}, time.Time{}, ""

	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("nil observer 不应改变结果 (-Execute +WithObs):\n%s", diff)
	}
}

func writeVideo(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("写入视频失败：%v", err)
	}
}
