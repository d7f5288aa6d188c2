// Package code 从 JAV 风格的文件名中识别并规范化番号（studio + 数字 id + 可选 part）。
//
// 流程固定为：输入校验 → 排除 SLR 形态 → 排除已知后缀/前缀 → 顺序改写（rules.go）
// → 一次通用匹配 → 年份误判过滤 → 规范化。
package code

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/John-Robertt/vroom/internal/domain"
	"github.com/John-Robertt/vroom/internal/media"
	"github.com/John-Robertt/vroom/internal/slr"
)

// ErrInvalidArgument 表示输入不是一个可分类的文件名（空串或非法 UTF-8）。
// 它与“没匹配上”不同：后者返回 ok=false 且 err=nil。
var ErrInvalidArgument = errors.New("code: invalid filename")

// Match 返回的捕获组下标。
const (
	GroupStudio = iota + 1
	GroupMid
	GroupID
	GroupPartSep
	GroupPart
)

// 3D 格式标记后缀（大小写敏感）。
const excludedSuffix = "-180_180x180_3dh_LR.mp4"

// 已知的非 JAV 站点/工具前缀，按小写比较。
var excludedPrefixes = lowerAll([]string{
	"SLR-",
	"SLR_",
	"JillVR_",
	"realhotvr-",
	"wankzvr-",
	"reality-lovers-",
	"sexbabesvr-",
	"only2xvr-",
})

// 标题里常见的发行年份，被误识别为 id 时丢弃。
var excludedYears = func() map[string]struct{} {
	m := make(map[string]struct{}, 20)
	for y := 2010; y < 2030; y++ {
		m[fmt.Sprint(y)] = struct{}{}
	}
	return m
}()

// jsSpace 是 ECMAScript \s 的完整集合；RE2 的 \s 只覆盖 ASCII。
const jsSpace = `\s\v\x{00A0}\x{1680}\x{2000}-\x{200A}\x{2028}\x{2029}\x{202F}\x{205F}\x{3000}\x{FEFF}`

const connector = `[-_` + jsSpace + `\.0]*?`

// asciiLetter 在 (?i) 下也只匹配 ASCII 字母（RE2 的大小写折叠会让 [a-z] 命中 ſ 与 K）。
const asciiLetter = `(?-i:[a-zA-Z])`

var javRE = regexp.MustCompile(`(?i)` +
	`\b` +
	`(WVR0|WVR1|WVR4|WVR8|WVR9|WVR6|` + asciiLetter + `{3,9})` +
	`(` + connector + `)` +
	`(\d{2,6})` +
	`(?:` +
	`(` + connector + `|vrv18khia)` +
	`(\d\d?(?:\b|_)|` + asciiLetter + `\b|part\d+)` +
	`)?`)

var (
	partWordRE      = regexp.MustCompile(`(?i)^part`)
	partTrailJunkRE = regexp.MustCompile(`^(\d+)\D+$`)
)

// Classifier 是 JAV 分类器。SLR 排除通过一个普通函数注入（默认 slr.Matches），
// 两个分类器之间只有单向组合关系。
type Classifier struct {
	IsSLR func(name string) bool
}

var std = Classifier{IsSLR: slr.Matches}

// Match 对 basename 执行完整的排除与改写管线，然后做一次通用匹配。
// 返回原始捕获组（未规范化、未做年份过滤）；没匹配上时返回 nil, nil。
func (c Classifier) Match(filename string) ([]string, error) {
	if filename == "" || !utf8.ValidString(filename) {
		return nil, fmt.Errorf("%w：%q", ErrInvalidArgument, filename)
	}

	isSLR := c.IsSLR
	if isSLR == nil {
		isSLR = slr.Matches
	}
	if isSLR(filename) {
		return nil, nil
	}

	if strings.HasSuffix(filename, excludedSuffix) {
		return nil, nil
	}

	lower := strings.ToLower(filename)
	for _, p := range excludedPrefixes {
		if strings.HasPrefix(lower, p) {
			return nil, nil
		}
	}

	return javRE.FindStringSubmatch(Rewrite(filename)), nil
}

// Parse 从文件名或路径中解析 JAV 信息。
//
// - 输入非法：返回 ErrInvalidArgument
// - 不是 JAV（形态不符、被排除、年份误判）：ok=false, err=nil
func (c Classifier) Parse(path string) (domain.JavInfo, bool, error) {
	filename := media.Basename(path)
	m, err := c.Match(filename)
	if err != nil {
		return domain.JavInfo{}, false, err
	}
	if m == nil {
		return domain.JavInfo{}, false, nil
	}

	if _, ok := excludedYears[m[GroupID]]; ok {
		return domain.JavInfo{}, false, nil
	}

	return domain.JavInfo{
		Studio:   strings.ToUpper(m[GroupStudio]),
		ID:       normalizeID(m[GroupID]),
		Mid:      m[GroupMid],
		Part:     normalizePart(m[GroupPart]),
		Filename: filename,
	}, true, nil
}

// IsJAV 判断给定文件是否为 JAV。非法输入视为 false。
func (c Classifier) IsJAV(path string) bool {
	_, ok, err := c.Parse(path)
	return ok && err == nil
}

// Match 使用默认分类器，见 Classifier.Match。
func Match(filename string) ([]string, error) { return std.Match(filename) }

// Parse 使用默认分类器，见 Classifier.Parse。
func Parse(path string) (domain.JavInfo, bool, error) { return std.Parse(path) }

// IsJAV 使用默认分类器，见 Classifier.IsJAV。
func IsJAV(path string) bool { return std.IsJAV(path) }

// normalizeID：不足 3 位左补零；4 位及以上时去掉前导零，直到剩 3 位或首位非零。
func normalizeID(id string) string {
	for len(id) < 3 {
		id = "0" + id
	}
	for len(id) >= 4 && id[0] == '0' {
		id = id[1:]
	}
	return id
}

// normalizePart 去掉 "part" 前缀；"1_" 这类数字后跟分隔符的捕获只保留数字；最后转大写。
func normalizePart(part string) string {
	part = partWordRE.ReplaceAllString(part, "")
	part = partTrailJunkRE.ReplaceAllString(part, "${1}")
	return strings.ToUpper(part)
}

func lowerAll(xs []string) []string {
	out := make([]string, len(xs))
	for i, x := range xs {
		out[i] = strings.ToLower(x)
	}
	return out
}
