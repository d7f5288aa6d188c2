package run

import (
	"time"

	"github.com/John-Robertt/vroom/internal/config"
	"github.com/John-Robertt/vroom/internal/domain"
)

// Observer 用于把“运行进度/阶段/条目结果”从核心执行流程中解耦出来。
//
// 约束：
// - run 包只负责发事件，不做任何输出（避免污染 stdout 的 JSON 契约）。
// - Observer 的实现必须并发安全。
type Observer interface {
	// OnStart 在 ExecuteWithObserver 开始时调用。
	OnStart(eff config.EffectiveConfig)
	// OnPhaseDone 在阶段结束时调用（scan / classify）。
	OnPhaseDone(name string, fields map[string]any, dur time.Duration)
	// OnItemDone 对报告中的每一条调用一次（idx 从 1 开始）。
	OnItemDone(idx, total int, res domain.ItemResult)
}
