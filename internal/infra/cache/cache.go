package cache

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/John-Robertt/vroom/internal/infra/fsx"
)

// ReportName 是扫描报告在缓存目录下的文件名。
const ReportName = "report.json"

// Store 提供缓存目录（默认 <path>/cache/）下的文件读写。
//
// 约束：
// - ReadOnly=true 时只允许读（例如 --no-cache-write）
// - listing 页面按 URL 的 sha1 存放，URL 本身不落进文件名
type Store struct {
	Dir      string
	ReadOnly bool
}

var ErrReadOnly = errors.New("cache: read-only")

func New(dir string, readOnly bool) Store {
	return Store{
		Dir:      filepath.Clean(strings.TrimSpace(dir)),
		ReadOnly: readOnly,
	}
}

// ListingHTMLPath 返回某个 listing URL 对应的 HTML 缓存绝对路径。
func (s Store) ListingHTMLPath(rawURL string) (string, error) {
	key, err := listingKey(rawURL)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.Dir, "listings", key+".html"), nil
}

func (s Store) ReadListingHTML(rawURL string) ([]byte, bool, error) {
	path, err := s.ListingHTMLPath(rawURL)
	if err != nil {
		return nil, false, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return b, true, nil
}

func (s Store) WriteListingHTML(rawURL string, html []byte) error {
	if s.ReadOnly {
		return ErrReadOnly
	}
	key, err := listingKey(rawURL)
	if err != nil {
		return err
	}
	return fsx.WriteFileAtomic(filepath.Join(s.Dir, "listings"), key+".html", html)
}

// WriteReport 写入 <dir>/report.json（覆盖）。
func (s Store) WriteReport(b []byte) error {
	if s.ReadOnly {
		return ErrReadOnly
	}
	return fsx.WriteFileAtomic(s.Dir, ReportName, b)
}

func listingKey(rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", fmt.Errorf("url 不能为空")
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("非法 url：%q", rawURL)
	}
	// fragment 不影响页面内容。
	u.Fragment = ""
	sum := sha1.Sum([]byte(u.String()))
	return hex.EncodeToString(sum[:]), nil
}
