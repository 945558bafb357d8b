package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"gpcards/keywords"
	"gpcards/pipeline"
	"gpcards/scraper"
)

func newSearchCommand(a *app) *cobra.Command {
	var (
		keywordFlags []string
		keywordFile  string
		timeType     string
		startDate    string
		endDate      string
		bidSort      string
		pinMu        string
		bidType      int
		searchType   string
		maxPages     int
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "搜索结果公告并提取联系人入库",
		RunE: func(cmd *cobra.Command, args []string) error {
			kws, err := keywords.Load(keywordFlags, keywordFile)
			if err != nil {
				return err
			}
			if len(kws) == 0 {
				return fmt.Errorf("至少需要一个搜索关键词（--keyword 或 --keyword-file）")
			}
			if maxPages <= 0 {
				maxPages = a.cfg.MaxPages
			}

			fetcher := scraper.NewFetcher(scraper.FetcherConfig{
				Timeout:      a.cfg.FetchTimeout,
				DelayMin:     a.cfg.DelayMin,
				DelayMax:     a.cfg.DelayMax,
				IgnoreRobots: a.cfg.IgnoreRobots,
			}, a.logger)
			searcher := scraper.NewSearcher(fetcher,
				a.cfg.RequiredKeywords, a.cfg.ExcludeKeywords, a.logger)
			processor := pipeline.NewProcessor(a.db, a.logger, a.cfg.Workers)

			ctx := cmd.Context()
			totalCards, totalDocs := 0, 0

			for _, kw := range kws {
				a.logger.Info("开始搜索", "keyword", kw)
				hits, err := searcher.SearchAll(ctx, scraper.SearchParams{
					Keyword:    kw,
					SearchType: searchType,
					TimeType:   timeType,
					StartDate:  startDate,
					EndDate:    endDate,
					BidSort:    bidSort,
					PinMu:      pinMu,
					BidType:    bidType,
				}, maxPages)
				if err != nil {
					return err
				}

				docs := make([]pipeline.Document, 0, len(hits))
				for _, hit := range hits {
					exists, err := a.db.AnnouncementIDByURL(ctx, hit.URL)
					if err != nil {
						return err
					}
					if exists > 0 {
						a.logger.Debug("公告已入库，跳过抓取", "url", hit.URL)
						continue
					}
					html, err := fetcher.Fetch(ctx, hit.URL)
					if err != nil {
						a.logger.Warn("公告抓取失败", "url", hit.URL, "error", err)
						continue
					}
					docs = append(docs, pipeline.Document{URL: hit.URL, Title: hit.Title, HTML: html})
				}

				for _, res := range processor.ProcessAll(ctx, docs) {
					if res.Err != nil {
						a.logger.Warn("公告处理失败", "url", res.URL, "error", res.Err)
						continue
					}
					if !res.Skipped {
						totalDocs++
						totalCards += res.Cards
					}
				}
			}

			fmt.Printf("完成：新入库公告 %d 份，名片条目 %d 条\n", totalDocs, totalCards)
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&keywordFlags, "keyword", "k", nil, "搜索关键词，可多次指定")
	cmd.Flags().StringVar(&keywordFile, "keyword-file", "", "关键词文件，每行一个或逗号分隔")
	cmd.Flags().StringVar(&timeType, "time", "1month", "时间范围: today|3days|1week|1month|3months|halfyear|custom")
	cmd.Flags().StringVar(&startDate, "start", "", "custom 起始日期 YYYY-MM-DD")
	cmd.Flags().StringVar(&endDate, "end", "", "custom 结束日期 YYYY-MM-DD")
	cmd.Flags().StringVar(&bidSort, "bid-sort", "all", "采购来源: all|central|local")
	cmd.Flags().StringVar(&pinMu, "pinmu", "all", "品目: all|goods|engineering|services")
	cmd.Flags().IntVar(&bidType, "bid-type", 0, "公告类型编号 0-12")
	cmd.Flags().StringVar(&searchType, "search-type", "title", "匹配方式: title|fulltext")
	cmd.Flags().IntVar(&maxPages, "max-pages", 0, "每个关键词最多翻页数，0 取配置默认")
	return cmd
}
