// Package scraper 中国政府采购网（ccgp.gov.cn）结果公告的搜索与抓取。
package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/temoto/robotstxt"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
	"golang.org/x/time/rate"
)

const (
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	maxBodyBytes     = 8 << 20
	maxRedirects     = 3
)

// ErrBlocked 站点返回了访问频率限制页面。
var ErrBlocked = errors.New("site rate limit triggered")

// ErrRobotsDisallowed robots.txt 禁止抓取该路径。
var ErrRobotsDisallowed = errors.New("path disallowed by robots.txt")

// FetcherConfig 抓取器配置。延迟区间用于请求间随机停顿。
type FetcherConfig struct {
	UserAgent    string
	Timeout      time.Duration
	DelayMin     time.Duration
	DelayMax     time.Duration
	CacheTTL     time.Duration
	IgnoreRobots bool
}

// Fetcher 带限速、robots.txt 检查与页面缓存的 HTTP 抓取器。
type Fetcher struct {
	client    *http.Client
	config    FetcherConfig
	limiter   *rate.Limiter
	pageCache *cache.Cache
	logger    *slog.Logger

	robotsMu sync.Mutex
	robots   map[string]*robotstxt.RobotsData
}

// NewFetcher 创建抓取器。零值配置得到合理默认值。
func NewFetcher(config FetcherConfig, logger *slog.Logger) *Fetcher {
	if config.UserAgent == "" {
		config.UserAgent = defaultUserAgent
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if config.DelayMin <= 0 {
		config.DelayMin = time.Second
	}
	if config.DelayMax < config.DelayMin {
		config.DelayMax = config.DelayMin + 2*time.Second
	}
	if config.CacheTTL <= 0 {
		config.CacheTTL = 10 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}

	// 平均延迟换算为令牌速率，突发为 1 保证串行节奏
	avgDelay := (config.DelayMin + config.DelayMax) / 2
	limiter := rate.NewLimiter(rate.Every(avgDelay), 1)

	return &Fetcher{
		client: &http.Client{
			Timeout: config.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		},
		config:    config,
		limiter:   limiter,
		pageCache: cache.New(config.CacheTTL, config.CacheTTL*2),
		logger:    logger,
		robots:    make(map[string]*robotstxt.RobotsData),
	}
}

// Fetch 抓取页面并解码为 UTF-8。命中缓存时不发请求。
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	if cached, ok := f.pageCache.Get(pageURL); ok {
		f.logger.Debug("页面缓存命中", "url", pageURL)
		return cached.(string), nil
	}

	if !f.config.IgnoreRobots {
		allowed, err := f.robotsAllowed(ctx, pageURL)
		if err != nil {
			f.logger.Debug("robots.txt 获取失败，放行", "url", pageURL, "error", err)
		} else if !allowed {
			return "", fmt.Errorf("%w: %s", ErrRobotsDisallowed, pageURL)
		}
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return "", err
	}
	f.jitter(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", f.config.UserAgent)
	req.Header.Set("Accept-Language", "zh-CN,zh;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: unexpected status %d", pageURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	html := decodeChinese(body, resp.Header.Get("Content-Type"))
	if isBlockedPage(html) {
		return "", fmt.Errorf("%w: %s", ErrBlocked, pageURL)
	}

	f.pageCache.Set(pageURL, html, cache.DefaultExpiration)
	return html, nil
}

// jitter 在配置区间内随机附加停顿，弱化抓取节奏特征。
func (f *Fetcher) jitter(ctx context.Context) {
	span := f.config.DelayMax - f.config.DelayMin
	if span <= 0 {
		return
	}
	d := time.Duration(rand.Int63n(int64(span)))
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}

func (f *Fetcher) robotsAllowed(ctx context.Context, pageURL string) (bool, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return true, nil
	}
	host := u.Scheme + "://" + u.Host

	f.robotsMu.Lock()
	data, ok := f.robots[host]
	f.robotsMu.Unlock()

	if !ok {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, host+"/robots.txt", nil)
		if err != nil {
			return true, err
		}
		req.Header.Set("User-Agent", f.config.UserAgent)
		resp, err := f.client.Do(req)
		if err != nil {
			return true, err
		}
		defer resp.Body.Close()

		data, err = robotstxt.FromResponse(resp)
		if err != nil {
			return true, err
		}
		f.robotsMu.Lock()
		f.robots[host] = data
		f.robotsMu.Unlock()
	}

	return data.TestAgent(u.Path, f.config.UserAgent), nil
}

// decodeChinese 按 Content-Type 或内容特征把 GBK/GB2312 页面转为 UTF-8。
func decodeChinese(body []byte, contentType string) string {
	ct := strings.ToLower(contentType)
	if strings.Contains(ct, "gbk") || strings.Contains(ct, "gb2312") || strings.Contains(ct, "gb18030") {
		decoded, _, err := transform.Bytes(simplifiedchinese.GB18030.NewDecoder(), body)
		if err == nil {
			return string(decoded)
		}
	}

	head := strings.ToLower(string(body[:min(len(body), 1024)]))
	if strings.Contains(head, "charset=gbk") || strings.Contains(head, "charset=gb2312") {
		decoded, _, err := transform.Bytes(simplifiedchinese.GB18030.NewDecoder(), body)
		if err == nil {
			return string(decoded)
		}
	}
	return string(body)
}

func isBlockedPage(html string) bool {
	return strings.Contains(html, "访问过于频繁") || strings.Contains(html, "稍后再试")
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
