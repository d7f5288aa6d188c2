package run

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/John-Robertt/vroom/internal/app"
	"github.com/John-Robertt/vroom/internal/config"
	"github.com/John-Robertt/vroom/internal/domain"
	"github.com/John-Robertt/vroom/internal/scan"
)

// Execute 扫描 eff.Path 并分类所有视频文件，返回对外稳定的 ScanReport。
// 错误尽量降级为 item 级失败（单个文件无法识别不影响其他）。
func Execute(ctx context.Context, eff config.EffectiveConfig) domain.ScanReport {
	return ExecuteWithObserver(ctx, eff, nil)
}

// ExecuteWithObserver 与 Execute 相同，但允许传入 Observer 以输出进度/阶段信息。
func ExecuteWithObserver(ctx context.Context, eff config.EffectiveConfig, obs Observer) domain.ScanReport {
	if obs != nil {
		obs.OnStart(eff)
	}

	rr := domain.ScanReport{
		RunID:     uuid.NewString(),
		Path:      eff.Path,
		StartedAt: time.Now().UTC(),
		Items:     make([]domain.ItemResult, 0, 128),
	}

	scanStarted := time.Now()
	files, err := scan.ScanVideos(eff.Path, excludeDirs(eff), eff.Extensions)
	if err != nil {
		return finish(rr, syntheticFailed(domain.ErrCodeIOFailed, fmt.Sprintf("扫描失败：%v", err)))
	}
	if obs != nil {
		obs.OnPhaseDone("scan", map[string]any{"files": len(files)}, time.Since(scanStarted))
	}

	classifyStarted := time.Now()
	classes, err := classifyAll(ctx, files, eff)
	if err != nil {
		return finish(rr, syntheticFailed(domain.ErrCodeCanceled, fmt.Sprintf("分类被中断：%v", err)))
	}
	g := app.Group(files, classes)
	if obs != nil {
		obs.OnPhaseDone("classify", map[string]any{
			"workers":   workers(eff),
			"jav":       len(g.Items),
			"slr":       len(g.Slr),
			"unmatched": len(g.Unmatched),
		}, time.Since(classifyStarted))
	}

	for _, it := range g.Items {
		rr.Items = append(rr.Items, javItem(it, files))
	}
	for _, it := range g.Slr {
		rr.Items = append(rr.Items, slrItem(it, files))
	}
	// unmatched：每个输入文件单独形成一条 item（更可解释，便于用户逐个修复）。
	for _, u := range g.Unmatched {
		rr.Items = append(rr.Items, unmatchedItem(u))
	}

	rr.FinishedAt = time.Now().UTC()
	rr.Finalize()

	if obs != nil {
		for i := range rr.Items {
			obs.OnItemDone(i+1, len(rr.Items), rr.Items[i])
		}
	}
	return rr
}

// classifyAll 按文件并发分类（errgroup 限流），结果按下标写回，顺序与 files 一致。
func classifyAll(ctx context.Context, files []domain.VideoFile, eff config.EffectiveConfig) ([]app.FileClass, error) {
	opts := app.Options{Fold: eff.FoldUnicode}
	classes := make([]app.FileClass, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers(eff))
	for i := range files {
		if gctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			classes[i] = app.ClassifyName(files[i].Name, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	// 所有任务都已提交前 ctx 就被取消时，g.Wait 不会返回错误。
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return classes, nil
}

func workers(eff config.EffectiveConfig) int {
	if eff.Concurrency < 1 {
		return 1
	}
	return eff.Concurrency
}

// excludeDirs 在配置的排除目录之外追加 cache_dir（若它落在库目录内）。
func excludeDirs(eff config.EffectiveConfig) []string {
	out := append([]string(nil), eff.ExcludeDirs...)
	if eff.CacheDir != "" && filepath.IsAbs(eff.CacheDir) {
		out = append(out, eff.CacheDir)
	}
	return out
}

func finish(rr domain.ScanReport, failed domain.ItemResult) domain.ScanReport {
	rr.Items = append(rr.Items, failed)
	rr.FinishedAt = time.Now().UTC()
	rr.Finalize()
	return rr
}

func javItem(it domain.WorkItem, files []domain.VideoFile) domain.ItemResult {
	out := domain.ItemResult{
		Kind:  domain.KindJAV,
		Code:  string(it.Code),
		Files: make([]domain.FileResult, 0, len(it.FileIdx)),
	}
	if len(it.Infos) > 0 {
		out.Studio = it.Infos[0].Studio
		out.ID = it.Infos[0].ID
	}
	for k, idx := range it.FileIdx {
		info := it.Infos[k]
		out.Files = append(out.Files, domain.FileResult{
			Src:  files[idx].RelPath,
			Mid:  info.Mid,
			Part: info.Part,
		})
	}
	return out
}

func slrItem(it domain.SlrItem, files []domain.VideoFile) domain.ItemResult {
	info := it.Info
	return domain.ItemResult{
		Kind:  domain.KindSLR,
		Code:  string(info.Code()),
		SLR:   &info,
		Files: []domain.FileResult{{Src: files[it.FileIdx].RelPath}},
	}
}

func unmatchedItem(u domain.Unmatched) domain.ItemResult {
	item := domain.ItemResult{
		Kind:  domain.KindUnmatched,
		Files: []domain.FileResult{{Src: u.File.RelPath}},
	}
	switch u.Kind {
	case domain.UnmatchedInvalid:
		item.ErrorCode = domain.ErrCodeInvalidName
		item.ErrorMsg = fmt.Sprintf("文件名无法识别（%s）：请检查编码是否为 UTF-8", u.Err)
	default:
		item.ErrorCode = domain.ErrCodeUnmatched
		item.ErrorMsg = "既不是 JAV 风格也不是 SLR 风格文件名；请确保文件名包含类似 WVR1-001 的片段"
	}
	return item
}

func syntheticFailed(code, msg string) domain.ItemResult {
	return domain.ItemResult{
		Kind:      domain.KindFailed,
		ErrorCode: code,
		ErrorMsg:  msg,
		Files:     []domain.FileResult{},
	}
}
