// Package listing 从 HTML 目录索引页（web server autoindex、下载站文件列表）中提取视频文件名。
//
// 只读取文件名，不下载任何视频内容。
package listing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/John-Robertt/vroom/internal/infra/cache"
	"github.com/John-Robertt/vroom/internal/media"
)

// HTTPStatusError 表示站点返回了非 2xx 的 HTTP 状态码。
type HTTPStatusError struct {
	URL        string
	StatusCode int
	Location   string
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "HTTP status error"
	}
	loc := strings.TrimSpace(e.Location)
	if loc == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d location=%s", e.StatusCode, loc)
}

// Fetch 抓取一个 listing 页面并返回原始 HTML。
func Fetch(ctx context.Context, c *http.Client, pageURL string) ([]byte, error) {
	if c == nil {
		return nil, errors.New("http client 不能为空")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPStatusError{
			URL:        pageURL,
			StatusCode: resp.StatusCode,
			Location:   resp.Header.Get("Location"),
		}
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if len(b) == 0 {
		return nil, errors.New("empty response body")
	}
	return b, nil
}

// Parse 从 HTML 中提取视频文件名（纯函数：只依赖输入）。
//
// 规则：
// - 只看 a[href]；href 解析后取路径最后一段并做 URL 反转义
// - href 不是视频时回退到链接文本（部分列表页把真实文件名放在文本里）
// - extPattern 为 media.ExtPattern 的输出，大小写不敏感；为空时使用默认扩展名
// - 去重，保持首次出现的顺序
func Parse(html []byte, pageURL string, extPattern string) ([]string, error) {
	if len(html) == 0 {
		return nil, errors.New("html 为空")
	}
	if strings.TrimSpace(extPattern) == "" {
		extPattern = media.ExtPattern()
	}
	videoRE, err := regexp.Compile("(?i)" + extPattern)
	if err != nil {
		return nil, fmt.Errorf("扩展名规则非法：%w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, 32)
	seen := make(map[string]struct{}, 32)
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		name := nameFromHref(pageURL, href)
		if !videoRE.MatchString(name) {
			name = normSpace(s.Text())
			if !videoRE.MatchString(name) {
				return
			}
		}
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		names = append(names, name)
	})
	return names, nil
}

// Options 控制 Load 的来源与缓存行为。
type Options struct {
	Client     *http.Client
	Cache      *cache.Store // nil 表示不使用缓存
	Refresh    bool         // true 时忽略已有缓存（仍会写回）
	ExtPattern string
}

// Load 读取 src（http(s) URL 或本地 HTML 文件）并返回其中的视频文件名。
// URL 来源优先读缓存；抓取成功后写回缓存（写缓存失败不影响结果）。
func Load(ctx context.Context, src string, opts Options) ([]string, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, errors.New("listing 来源不能为空")
	}
	if !isRemote(src) {
		b, err := os.ReadFile(src)
		if err != nil {
			return nil, err
		}
		return Parse(b, "", opts.ExtPattern)
	}

	if opts.Cache != nil && !opts.Refresh {
		if b, ok, err := opts.Cache.ReadListingHTML(src); err == nil && ok {
			return Parse(b, src, opts.ExtPattern)
		}
	}

	b, err := Fetch(ctx, opts.Client, src)
	if err != nil {
		return nil, err
	}
	if opts.Cache != nil && !opts.Cache.ReadOnly {
		_ = opts.Cache.WriteListingHTML(src, b)
	}
	return Parse(b, src, opts.ExtPattern)
}

func isRemote(src string) bool {
	low := strings.ToLower(src)
	return strings.HasPrefix(low, "http://") || strings.HasPrefix(low, "https://")
}

func nameFromHref(pageURL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return ""
	}
	u, err := url.Parse(resolveURL(pageURL, href))
	if err != nil {
		return ""
	}
	// u.Path 已做过反转义（%20 -> 空格）。
	p := strings.TrimSuffix(u.Path, "/")
	if p == "" {
		return ""
	}
	return media.Basename(p)
}

func resolveURL(base, href string) string {
	if base == "" {
		return href
	}
	bu, err := url.Parse(base)
	if err != nil {
		return href
	}
	ru, err := url.Parse(href)
	if err != nil {
		return href
	}
	return bu.ResolveReference(ru).String()
}

func normSpace(s string) string { return strings.Join(strings.Fields(s), " ") }
