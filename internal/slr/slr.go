// Package slr 识别并解析 SLR 及其网络站点的下载文件名：
//
//	SITE_STUDIO_TITLE_RESOLUTION_ID_PROJECTION.mp4
//
// 例如 SLR_StudioName_Title_1080p_12345_LR_180.mp4。
package slr

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"

	"github.com/John-Robertt/vroom/internal/domain"
	"github.com/John-Robertt/vroom/internal/media"
)

const (
	DefaultSite   = "SLR|DeoVR|JillVR"
	DefaultStudio = ".+?"
)

// ErrInvalidArgument 表示 PatternOptions 不合法（目前只有 Prefix）。
var ErrInvalidArgument = errors.New("slr: invalid argument")

// 捕获组下标（仅对非 Short 的 pattern 有效）。
const (
	GroupSite = iota + 1
	GroupStudio
	GroupTitle
	GroupResolution
	GroupID
	GroupProjection
)

// PatternOptions 控制 Pattern 的生成。零值即默认 pattern。
type PatternOptions struct {
	// Prefix："" 或 "^" 匹配裸文件名；"/" 匹配以 /任意目录/ 开头的路径。
	Prefix string
	// Site 覆盖默认的站点分支（会被放进一个捕获组里）。
	Site string
	// Studio 覆盖默认的宽松 studio 捕获。
	Studio string
	// Short 为 true 时省略 resolution/id/projection 三段，只识别 site+studio+title。
	Short bool
}

// Pattern 生成匹配 SLR 风格文件名的正则文本。
//
// 捕获顺序：site、studio、title，[resolution、id、projection]，然后是可选的 .fix 标记，
// 最后必须以 .mp4 结尾。返回的文本不含大小写 flag，调用方应以 (?i) 编译。
func Pattern(opts PatternOptions) (string, error) {
	var prefix string
	switch opts.Prefix {
	case "", "^":
		prefix = "^"
	case "/":
		prefix = "^/.+/"
	default:
		return "", fmt.Errorf("%w：prefix 只能是 \"^\" 或 \"/\"，实际是 %q", ErrInvalidArgument, opts.Prefix)
	}

	site := opts.Site
	if site == "" {
		site = DefaultSite
	}
	studio := opts.Studio
	if studio == "" {
		studio = DefaultStudio
	}

	p := prefix + "(" + site + ")_(" + studio + ")_(.+)"
	if !opts.Short {
		p += `_(original|\d+p)_(\d+)_(LR_180|TB_360|FISHEYE190_alpha|FISHEYE190|FISHEYE|MKX200)`
	}
	p += `(\.fix|\.mp4)?\.mp4$`
	return p, nil
}

// Compile 以大小写不敏感的方式编译 Pattern(opts)。
func Compile(opts PatternOptions) (*regexp.Regexp, error) {
	p, err := Pattern(opts)
	if err != nil {
		return nil, err
	}
	return regexp.Compile("(?i)" + p)
}

var defaultRE = mustCompileDefault()

func mustCompileDefault() *regexp.Regexp {
	re, err := Compile(PatternOptions{})
	if err != nil {
		panic(err)
	}
	return re
}

// Parse 从文件名或路径中解析 SLR 元数据。不是 SLR 形态时返回 ok=false。
//
// 是否为 SLR 只由形态决定：超出 int64 的 id 仍算匹配，此时 SlrID 饱和为
// math.MaxInt64，原始数字保存在 RawID。
func Parse(path string) (domain.SlrInfo, bool) {
	name := media.Basename(path)

	m := defaultRE.FindStringSubmatch(name)
	if m == nil {
		return domain.SlrInfo{}, false
	}

	var rawID string
	id, err := strconv.ParseInt(m[GroupID], 10, 64)
	if err != nil {
		// 正则保证全是数字，失败只可能是溢出。
		id = math.MaxInt64
		rawID = m[GroupID]
	}

	projection := m[GroupProjection]
	if projection == "FISHEYE190_alpha" {
		projection = "FISHEYE190"
	}

	return domain.SlrInfo{
		Site:       m[GroupSite],
		Studio:     m[GroupStudio],
		Title:      m[GroupTitle],
		Resolution: m[GroupResolution],
		SlrID:      id,
		RawID:      rawID,
		Projection: projection,
	}, true
}

// Matches 只判断 basename 是否符合默认 SLR 形态，不解析字段。
func Matches(path string) bool {
	return defaultRE.MatchString(media.Basename(path))
}

// Is 判断给定文件是否为 SLR（或其网络站点）的下载文件。
func Is(path string) bool {
	return Matches(path)
}
