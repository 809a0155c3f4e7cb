package run

import (
	"time"

	"github.com/John-Robertt/psdplot/internal/config"
	"github.com/John-Robertt/psdplot/internal/domain"
)

// Observer 用于把“运行进度/阶段/条目结果”从核心执行流程中解耦出来。
//
// 约束：run 包只负责发事件，不做任何输出（避免污染 stdout 的 JSON 契约）。
type Observer interface {
	// OnStart 在 Execute 开始时调用。
	OnStart(eff config.EffectiveConfig)
	// OnSeriesLoaded 在每个输入文件处理完（加载成功或 NotFound）时调用。
	OnSeriesLoaded(idx, total int, item domain.ItemResult, dur time.Duration)
	// OnPhaseDone 在阶段结束时调用（load / render）。
	OnPhaseDone(name string, fields map[string]any, dur time.Duration)
}
