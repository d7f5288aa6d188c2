package domain

import (
	"encoding/json"
	"sort"
	"time"
)

const (
	KindJAV       = "jav"
	KindSLR       = "slr"
	KindUnmatched = "unmatched"
	KindFailed    = "failed"
)

const (
	ErrCodeUnmatched         = "unmatched"
	ErrCodeInvalidName       = "invalid_name"
	ErrCodeIOFailed          = "io_failed"
	ErrCodeCanceled          = "canceled"
	ErrCodeConfigNotFound    = "config_not_found"
	ErrCodeConfigInvalid     = "config_invalid"
	ErrCodeConfigMissingPath = "config_missing_path"
)

// ScanReport 是对外稳定输出（report.json / stdout JSON）的结构。
type ScanReport struct {
	RunID string `json:"run_id"`
	Path  string `json:"path"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Summary ReportSummary `json:"summary"`
	Items   []ItemResult  `json:"items"`
}

type ReportSummary struct {
	Files     int `json:"files"`
	JAV       int `json:"jav"`
	SLR       int `json:"slr"`
	Unmatched int `json:"unmatched"`
	Failed    int `json:"failed"`
}

// ItemResult 是报告中的一条：一个 JAV 作品、一个 SLR 文件、一个未识别文件或一个合成失败项。
type ItemResult struct {
	Kind string `json:"kind"`
	Code string `json:"code"`

	// 仅 kind=jav
	Studio string `json:"studio,omitempty"`
	ID     string `json:"id,omitempty"`

	// 仅 kind=slr
	SLR *SlrInfo `json:"slr,omitempty"`

	ErrorCode string `json:"error_code"`
	ErrorMsg  string `json:"error_msg"`

	Files []FileResult `json:"files"`
}

type FileResult struct {
	Src  string `json:"src"`
	Mid  string `json:"mid,omitempty"`
	Part string `json:"part,omitempty"`
}

// Finalize 做三件事：
// 1) 时间统一为 UTC（确保 JSON 为 RFC3339 且后缀 Z）
// 2) items 稳定排序：按 code 字典序；code=="" 的条目排在最后
// 3) summary 由 items 计算得出（files 统计所有条目里的文件数）
func (r *ScanReport) Finalize() {
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()

	sort.SliceStable(r.Items, func(i, j int) bool {
		a := r.Items[i].Code
		b := r.Items[j].Code
		if a == "" && b == "" {
			return false
		}
		if a == "" {
			return false
		}
		if b == "" {
			return true
		}
		return a < b
	})

	var s ReportSummary
	for _, it := range r.Items {
		s.Files += len(it.Files)
		switch it.Kind {
		case KindJAV:
			s.JAV++
		case KindSLR:
			s.SLR++
		case KindUnmatched:
			s.Unmatched++
		case KindFailed:
			s.Failed++
		}
	}
	r.Summary = s
}

// MarshalJSON 仅用于集中约束输出的稳定性（避免未来不小心引入非确定字段）。
// 当前只是透传 encoding/json 的默认行为。
func (r ScanReport) MarshalJSON() ([]byte, error) {
	type Alias ScanReport
	return json.Marshal(Alias(r))
}
