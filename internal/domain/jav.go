package domain

// JavInfo 是 JAV 风格文件名的解析结果（不可变值对象）。
//
// 不变量：
// - Studio 非空、全大写
// - ID 为纯数字：不足 3 位左补零；4 位及以上时去掉多余的前导零（不再回补到 3 位以下）
// - Mid 原样保留（"-" "_" " " "." 或空串），只用于展示，不参与分组
// - Part 为空串、单个字母或数字，全大写
// - Filename 为解析时使用的 basename（原样）
type JavInfo struct {
	Studio   string `json:"studio"`
	ID       string `json:"id"`
	Mid      string `json:"mid"`
	Part     string `json:"part"`
	Filename string `json:"filename"`
}

// Code 返回 STUDIO-ID 形式的分组主键（不含 part）。
func (j JavInfo) Code() Code {
	return Code(j.Studio + "-" + j.ID)
}
