package domain

import (
	"encoding/json"
	"time"
)

const (
	StatusLoaded   = "loaded"
	StatusNotFound = "not_found"
)

const (
	ErrCodeConfigNotFound      = "config_not_found"
	ErrCodeConfigInvalid       = "config_invalid"
	ErrCodeConfigMissingSeries = "config_missing_series"
	ErrCodeParseFailed         = "parse_failed"
	ErrCodeIOFailed            = "io_failed"
	ErrCodeRenderFailed        = "render_failed"
)

// RunReport 是对外稳定输出（stdout JSON / --report 文件）的结构。
type RunReport struct {
	Mode   Mode   `json:"mode"`
	Output string `json:"output"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Summary ReportSummary `json:"summary"`
	Items   []ItemResult  `json:"items"`
}

type ReportSummary struct {
	Loaded   int `json:"loaded"`
	NotFound int `json:"not_found"`
	Points   int `json:"points"`
}

// ItemResult 对应一条配置的输入 series；顺序与配置顺序一致（面板位置即下标）。
type ItemResult struct {
	Label       string  `json:"label"`
	Path        string  `json:"path"`
	Status      string  `json:"status"`
	Points      int     `json:"points"`
	SkippedRows int     `json:"skipped_rows"`
	OffsetHz    float64 `json:"offset_hz"`

	Stats *SeriesStats `json:"stats,omitempty"`
}

// SeriesStats 是单条 series 的摘要数值。
type SeriesStats struct {
	FreqMinHz float64 `json:"freq_min_hz"`
	FreqMaxHz float64 `json:"freq_max_hz"`
	PeakHz    float64 `json:"peak_hz"`
	PeakDB    float64 `json:"peak_db"`
	MinDB     float64 `json:"min_db"`
	MeanDB    float64 `json:"mean_db"`
}

// Finalize 做两件事：
// 1) 时间统一为 UTC（确保 JSON 为 RFC3339 且后缀 Z）
// 2) summary 由 items 计算得出
//
// items 不排序：面板位置与配置顺序绑定。
func (r *RunReport) Finalize() {
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()

	var s ReportSummary
	for _, it := range r.Items {
		switch it.Status {
		case StatusLoaded:
			s.Loaded++
			s.Points += it.Points
		case StatusNotFound:
			s.NotFound++
		}
	}
	r.Summary = s
}

// MarshalJSON 仅用于集中约束输出的稳定性（避免未来不小心引入非确定字段）。
// 当前只是透传 encoding/json 的默认行为。
func (r RunReport) MarshalJSON() ([]byte, error) {
	type Alias RunReport
	return json.Marshal(Alias(r))
}
