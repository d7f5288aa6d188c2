// Package httpx 构造抓取目录索引页用的 HTTP client：可选代理、固定 UA、
// 对 GET/HEAD 的网络错误与 429/5xx 做有界重试。
package httpx

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultUserAgent = "vroom"
	DefaultRetries   = 2
	DefaultBackoff   = 500 * time.Millisecond
	DefaultTimeout   = 30 * time.Second
)

// Options 控制 NewClient。零值即默认策略。
type Options struct {
	// Proxy 为空表示直连；否则必须带 scheme 与 host。
	Proxy string
	// UserAgent 为空时使用 DefaultUserAgent。
	UserAgent string
	// Retries 是首次之外的最大重试次数：0 取 DefaultRetries，负数表示不重试。
	Retries int
	// Backoff 是第 n 次重试前等待 n*Backoff：0 取 DefaultBackoff。
	Backoff time.Duration
	// Timeout 是整个请求（含重试）的上限：0 取 DefaultTimeout。
	Timeout time.Duration
}

// Transport 在 Base 之上补 UA 并做有界重试。
type Transport struct {
	Base      http.RoundTripper
	UserAgent string
	Retries   int
	Backoff   time.Duration
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, errors.New("nil request")
	}
	if t.Base == nil {
		return nil, errors.New("nil base transport")
	}

	// 只重放没有 body 的 GET/HEAD。
	replayable := (req.Method == http.MethodGet || req.Method == http.MethodHead) &&
		(req.Body == nil || req.Body == http.NoBody)

	for attempt := 0; ; attempt++ {
		r := req.Clone(req.Context())
		if r.Header.Get("User-Agent") == "" && t.UserAgent != "" {
			r.Header.Set("User-Agent", t.UserAgent)
		}

		resp, err := t.Base.RoundTrip(r)
		if !replayable || attempt >= t.Retries || !shouldRetry(resp, err) {
			return resp, err
		}
		if resp != nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}

		select {
		case <-req.Context().Done():
			if err == nil {
				err = req.Context().Err()
			}
			return nil, err
		case <-time.After(t.Backoff * time.Duration(attempt+1)):
		}
	}
}

func shouldRetry(resp *http.Response, err error) bool {
	if err != nil {
		return true
	}
	return resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
}

// NewClient 按 opts 构造 listing 抓取用的 client。代理模式下禁用 keep-alive。
func NewClient(opts Options) (*http.Client, error) {
	base := &http.Transport{
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 15 * time.Second,
	}

	if p := strings.TrimSpace(opts.Proxy); p != "" {
		u, err := url.Parse(p)
		if err != nil {
			return nil, err
		}
		if u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("proxy url 缺少 scheme 或 host：%q", p)
		}
		base.Proxy = http.ProxyURL(u)
		base.DisableKeepAlives = true
	}

	tr := &Transport{
		Base:      base,
		UserAgent: opts.UserAgent,
		Retries:   opts.Retries,
		Backoff:   opts.Backoff,
	}
	if tr.UserAgent == "" {
		tr.UserAgent = DefaultUserAgent
	}
	switch {
	case tr.Retries == 0:
		tr.Retries = DefaultRetries
	case tr.Retries < 0:
		tr.Retries = 0
	}
	if tr.Backoff <= 0 {
		tr.Backoff = DefaultBackoff
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Transport: tr, Timeout: timeout}, nil
}
