package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// BaseSearchURL 中国政府采购网标讯搜索入口。
const BaseSearchURL = "https://search.ccgp.gov.cn/bxsearch"

// 搜索参数的取值映射，与站点表单一致。
var (
	pinMuMap = map[string]int{
		"all": 0, "goods": 1, "engineering": 2, "services": 3,
	}
	bidSortMap = map[string]int{
		"all": 0, "central": 1, "local": 2,
	}
	searchTypeMap = map[string]int{
		"title": 1, "fulltext": 2,
	}
	timeTypeMap = map[string]int{
		"today": 0, "3days": 1, "1week": 2, "1month": 3,
		"3months": 4, "halfyear": 5, "custom": 6,
	}
)

// SearchParams 一次标讯搜索的参数。
type SearchParams struct {
	Keyword    string
	SearchType string // title | fulltext
	TimeType   string // today | 3days | 1week | 1month | 3months | halfyear | custom
	StartDate  string // custom 时必填，YYYY:MM:DD
	EndDate    string
	BidSort    string // all | central | local
	PinMu      string // all | goods | engineering | services
	BidType    int    // 0-12，站点公告类型编号
	Page       int
}

// Validate 检查参数取值。
func (p *SearchParams) Validate() error {
	if strings.TrimSpace(p.Keyword) == "" {
		return fmt.Errorf("search keyword is required")
	}
	if _, ok := searchTypeMap[p.searchType()]; !ok {
		return fmt.Errorf("invalid search type %q", p.SearchType)
	}
	if _, ok := timeTypeMap[p.timeType()]; !ok {
		return fmt.Errorf("invalid time type %q", p.TimeType)
	}
	if p.timeType() == "custom" && (p.StartDate == "" || p.EndDate == "") {
		return fmt.Errorf("custom time range requires start and end dates")
	}
	if _, ok := bidSortMap[p.bidSort()]; !ok {
		return fmt.Errorf("invalid bid sort %q", p.BidSort)
	}
	if _, ok := pinMuMap[p.pinMu()]; !ok {
		return fmt.Errorf("invalid pin mu %q", p.PinMu)
	}
	if p.BidType < 0 || p.BidType > 12 {
		return fmt.Errorf("bid type must be in 0..12, got %d", p.BidType)
	}
	return nil
}

func (p *SearchParams) searchType() string { return orDefault(p.SearchType, "title") }
func (p *SearchParams) timeType() string   { return orDefault(p.TimeType, "1month") }
func (p *SearchParams) bidSort() string    { return orDefault(p.BidSort, "all") }
func (p *SearchParams) pinMu() string      { return orDefault(p.PinMu, "all") }

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// URL 构造搜索请求地址。日期按站点要求以冒号分隔。
func (p *SearchParams) URL() string {
	page := p.Page
	if page < 1 {
		page = 1
	}
	q := url.Values{}
	q.Set("searchtype", strconv.Itoa(searchTypeMap[p.searchType()]))
	q.Set("page_index", strconv.Itoa(page))
	q.Set("bidSort", strconv.Itoa(bidSortMap[p.bidSort()]))
	q.Set("pinMu", strconv.Itoa(pinMuMap[p.pinMu()]))
	q.Set("bidType", strconv.Itoa(p.BidType))
	q.Set("timeType", strconv.Itoa(timeTypeMap[p.timeType()]))
	q.Set("kw", p.Keyword)
	if p.timeType() == "custom" {
		q.Set("start_time", strings.ReplaceAll(p.StartDate, "-", ":"))
		q.Set("end_time", strings.ReplaceAll(p.EndDate, "-", ":"))
	}
	return BaseSearchURL + "?" + q.Encode()
}

// SearchHit 搜索结果列表里的一条公告。
type SearchHit struct {
	Title       string
	URL         string
	PublishDate string
	Buyer       string
	Agent       string
}

// Searcher 标讯搜索客户端。
type Searcher struct {
	fetcher *Fetcher
	logger  *slog.Logger

	requiredKeywords []string
	excludeKeywords  []string
}

// NewSearcher 创建搜索客户端。required/exclude 用于标题过滤：
// 标题须含任一 required 词且不含任何 exclude 词。
func NewSearcher(fetcher *Fetcher, required, exclude []string, logger *slog.Logger) *Searcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Searcher{
		fetcher:          fetcher,
		logger:           logger,
		requiredKeywords: required,
		excludeKeywords:  exclude,
	}
}

// SearchPage 抓取并解析一页搜索结果。
func (s *Searcher) SearchPage(ctx context.Context, params SearchParams) ([]SearchHit, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	html, err := s.fetcher.Fetch(ctx, params.URL())
	if err != nil {
		return nil, err
	}

	hits, err := parseSearchList(html)
	if err != nil {
		return nil, err
	}

	kept := hits[:0]
	for _, hit := range hits {
		if s.titleAccepted(hit.Title) {
			kept = append(kept, hit)
		} else {
			s.logger.Debug("标题被关键词过滤", "title", hit.Title)
		}
	}
	return kept, nil
}

// SearchAll 逐页搜索直到 maxPages 或结果耗尽。
func (s *Searcher) SearchAll(ctx context.Context, params SearchParams, maxPages int) ([]SearchHit, error) {
	if maxPages <= 0 {
		maxPages = 5
	}

	var all []SearchHit
	for page := 1; page <= maxPages; page++ {
		params.Page = page
		hits, err := s.SearchPage(ctx, params)
		if err != nil {
			if len(all) > 0 {
				s.logger.Warn("翻页中断，返回已有结果", "page", page, "error", err)
				return all, nil
			}
			return nil, err
		}
		if len(hits) == 0 {
			break
		}
		all = append(all, hits...)
		s.logger.Info("搜索页完成", "page", page, "hits", len(hits), "total", len(all))
	}
	return all, nil
}

func (s *Searcher) titleAccepted(title string) bool {
	for _, word := range s.excludeKeywords {
		if word != "" && strings.Contains(title, word) {
			return false
		}
	}
	if len(s.requiredKeywords) == 0 {
		return true
	}
	for _, word := range s.requiredKeywords {
		if word != "" && strings.Contains(title, word) {
			return true
		}
	}
	return false
}

// parseSearchList 解析搜索结果列表页。
// 每条结果的 span 文本以 | 分隔：日期、采购人、代理机构等。
func parseSearchList(html string) ([]SearchHit, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse search results: %w", err)
	}

	var hits []SearchHit
	doc.Find("ul.vT-srch-result-list-bid > li").Each(func(_ int, sel *goquery.Selection) {
		link := sel.Find("a").First()
		href, ok := link.Attr("href")
		if !ok {
			return
		}
		hit := SearchHit{
			Title: strings.Join(strings.Fields(link.Text()), ""),
			URL:   strings.TrimSpace(href),
		}
		if strings.HasPrefix(hit.URL, "//") {
			hit.URL = "http:" + hit.URL
		}

		info := sel.Find("span").First().Text()
		for i, part := range strings.Split(info, "|") {
			part = strings.TrimSpace(part)
			switch {
			case i == 0:
				if fields := strings.Fields(part); len(fields) > 0 {
					hit.PublishDate = fields[0]
				}
			case strings.HasPrefix(part, "采购人："):
				hit.Buyer = strings.TrimPrefix(part, "采购人：")
			case strings.HasPrefix(part, "代理机构："):
				hit.Agent = strings.TrimPrefix(part, "代理机构：")
			}
		}
		hits = append(hits, hit)
	})
	return hits, nil
}
