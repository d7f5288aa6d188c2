package domain

import (
	"strconv"
	"strings"
)

// SlrInfo 是 SLR 风格下载文件名（SITE_STUDIO_TITLE_RES_ID_PROJECTION.mp4）的解析结果。
//
// Studio/Title 保留原始大小写；Resolution 为 "original" 或 "<N>p"；
// Projection 中已废弃的 FISHEYE190_alpha 会被归一为 FISHEYE190。
type SlrInfo struct {
	Site       string `json:"site"`
	Studio     string `json:"studio"`
	Title      string `json:"title"`
	Resolution string `json:"resolution"`
	SlrID      int64  `json:"slr_id"`
	// RawID 仅在 id 超出 int64 时非空（此时 SlrID 为 math.MaxInt64）。
	RawID      string `json:"raw_id,omitempty"`
	Projection string `json:"projection"`
}

// Code 返回 SITE-ID 形式的分组主键（site 大写）。
func (s SlrInfo) Code() Code {
	if s.RawID != "" {
		return Code(strings.ToUpper(s.Site) + "-" + s.RawID)
	}
	return Code(strings.ToUpper(s.Site) + "-" + strconv.FormatInt(s.SlrID, 10))
}
