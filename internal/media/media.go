// Package media 提供与视频文件名相关的最底层工具：扩展名正则与跨平台 basename。
//
// 本包没有任何依赖（除了 x/text 的可选折叠），供 slr/code 两个分类器共用。
package media

import (
	"regexp"
	"strings"
)

var defaultExtensions = []string{"mp4", "m4v", "mkv", "avi", "webm", "wmv", "mov"}

// DefaultExtensions 返回默认视频扩展名列表（副本，调用方可随意修改）。
func DefaultExtensions() []string {
	return append([]string(nil), defaultExtensions...)
}

// ExtPattern 返回匹配视频扩展名（位于字符串末尾）的正则文本，例如 `\.(mp4|mkv)$`。
//
// - 不传参数时使用 DefaultExtensions
// - 去掉空串；按首次出现的顺序去重
// - 每个扩展名都会转义正则元字符，因此结果可以安全地拼接进更大的正则
//
// 返回的是正则文本而不是编译后的对象，调用方自行决定大小写等 flag。
func ExtPattern(exts ...string) string {
	if len(exts) == 0 {
		exts = defaultExtensions
	}

	seen := make(map[string]struct{}, len(exts))
	parts := make([]string, 0, len(exts))
	for _, x := range exts {
		if x == "" {
			continue
		}
		if _, ok := seen[x]; ok {
			continue
		}
		seen[x] = struct{}{}
		parts = append(parts, regexp.QuoteMeta(x))
	}
	return `\.(` + strings.Join(parts, "|") + `)$`
}

// Basename 返回最后一个 '/' 或 '\'（取更靠后者）之后的部分。
// 两种分隔符都不存在时原样返回。
//
// 与 filepath.Base 不同：不依赖运行平台，混合分隔符的 Windows 路径也能正确处理；
// 以分隔符结尾的输入会得到空串。
func Basename(path string) string {
	i := strings.LastIndexAny(path, `/\`)
	if i < 0 {
		return path
	}
	return path[i+1:]
}
