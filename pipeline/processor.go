// Package pipeline 把抓取、解析、归属与入库串成完整流程。
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"gpcards/attribution"
	"gpcards/database"
	"gpcards/parser"
)

// Document 待处理的一份公告原文。
type Document struct {
	URL   string
	Title string
	HTML  string
}

// Result 单份公告的处理结果。
type Result struct {
	URL            string
	AnnouncementID int64
	Cards          int
	Skipped        bool
	Err            error
}

// Processor 公告处理器。各组件无内部可变状态，可并发调用。
type Processor struct {
	db       *database.DB
	parser   *parser.AnnouncementParser
	resolver *attribution.Resolver
	cleaner  *parser.Cleaner
	logger   *slog.Logger
	workers  int
}

// NewProcessor 创建处理器。workers ≤ 0 时默认 4 并发。
func NewProcessor(db *database.DB, logger *slog.Logger, workers int) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if workers <= 0 {
		workers = 4
	}
	return &Processor{
		db:       db,
		parser:   parser.NewAnnouncementParser(),
		resolver: attribution.NewResolver(logger),
		cleaner:  parser.NewCleaner(),
		logger:   logger,
		workers:  workers,
	}
}

// ProcessAll 并发处理一批公告，单份失败不影响其它文档。
func (p *Processor) ProcessAll(ctx context.Context, docs []Document) []Result {
	results := make([]Result, len(docs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, doc := range docs {
		g.Go(func() error {
			results[i] = p.Process(ctx, doc)
			return nil
		})
	}
	g.Wait()

	return results
}

// Process 处理单份公告：URL 已入库时跳过，否则解析、归属并写入。
func (p *Processor) Process(ctx context.Context, doc Document) Result {
	res := Result{URL: doc.URL}

	existing, err := p.db.AnnouncementIDByURL(ctx, doc.URL)
	if err != nil {
		res.Err = fmt.Errorf("check existing announcement: %w", err)
		return res
	}
	if existing > 0 {
		p.logger.Debug("公告已入库，跳过", "url", doc.URL)
		res.AnnouncementID = existing
		res.Skipped = true
		return res
	}

	ann := p.parser.Parse(doc.HTML, doc.URL)
	if ann.Title == "" {
		ann.Title = doc.Title
	}
	p.clean(ann)

	id, cards, err := p.store(ctx, ann)
	if err != nil {
		// SQLite 写忙时重试一次
		p.logger.Warn("入库失败，重试", "url", doc.URL, "error", err)
		time.Sleep(200 * time.Millisecond)
		id, cards, err = p.store(ctx, ann)
	}
	if err != nil {
		res.Err = err
		return res
	}

	res.AnnouncementID = id
	res.Cards = cards
	p.logger.Info("公告处理完成", "url", doc.URL, "cards", cards)
	return res
}

func (p *Processor) clean(ann *parser.Announcement) {
	ann.Title = p.cleaner.CleanTitle(ann.Title)
	ann.URL = p.cleaner.CleanURL(ann.URL)
	ann.PublishDate = p.cleaner.CleanDate(ann.PublishDate)
	ann.Content = p.cleaner.CleanContent(ann.Content)
	ann.BuyerName = p.cleaner.CleanCompany(ann.BuyerName)
	ann.AgentName = p.cleaner.CleanCompany(ann.AgentName)
	ann.Supplier = p.cleaner.CleanCompany(ann.Supplier)
	ann.BuyerContact = p.cleaner.CleanContactName(ann.BuyerContact)
	ann.BuyerPhones = p.cleaner.CleanPhones(ann.BuyerPhones)
	for i := range ann.AgentContacts {
		ann.AgentContacts[i].Name = p.cleaner.CleanContactName(ann.AgentContacts[i].Name)
		ann.AgentContacts[i].Phones = p.cleaner.CleanPhones(ann.AgentContacts[i].Phones)
	}
	for i := range ann.ProjectContacts {
		ann.ProjectContacts[i].Name = p.cleaner.CleanContactName(ann.ProjectContacts[i].Name)
		ann.ProjectContacts[i].Phones = p.cleaner.CleanPhones(ann.ProjectContacts[i].Phones)
	}
}

func (p *Processor) store(ctx context.Context, ann *parser.Announcement) (int64, int, error) {
	id, err := p.db.InsertAnnouncement(ctx, database.AnnouncementRecord{
		Title:       ann.Title,
		URL:         ann.URL,
		PublishDate: ann.PublishDate,
		Source:      ann.Source,
		ProjectNo:   ann.ProjectNo,
		ProjectName: ann.ProjectName,
		Category:    ann.Category,
		Region:      ann.Region,
		Supplier:    ann.Supplier,
		BidAmount:   ann.BidAmount,
		BuyerName:   ann.BuyerName,
		AgentName:   ann.AgentName,
		Content:     ann.Content,
	})
	if err != nil {
		return 0, 0, err
	}

	stored := 0
	for _, entry := range p.cardsFor(ann) {
		cardID, err := p.db.UpsertBusinessCard(ctx, entry.card)
		if errors.Is(err, database.ErrInvalidKey) {
			continue
		}
		if err != nil {
			return id, stored, fmt.Errorf("upsert card %q/%q: %w",
				entry.card.Company, entry.card.ContactName, err)
		}
		if err := p.db.AddBusinessCardMention(ctx, cardID, id, entry.role); err != nil {
			return id, stored, err
		}
		stored++
	}
	return id, stored, nil
}

type cardEntry struct {
	card database.BusinessCard
	role string
}

// cardsFor 把一份公告展开成名片条目：采购人联系人、代理联系人、
// 经归属判定的项目联系人。
func (p *Processor) cardsFor(ann *parser.Announcement) []cardEntry {
	var entries []cardEntry

	if ann.BuyerName != "" && ann.BuyerContact != "" {
		card := database.BusinessCard{
			Company:     ann.BuyerName,
			ContactName: ann.BuyerContact,
			Phones:      ann.BuyerPhones,
			Address:     ann.BuyerAddress,
		}
		if ann.BuyerEmail != "" {
			card.Emails = []string{ann.BuyerEmail}
		}
		entries = append(entries, cardEntry{card, string(attribution.RoleBuyer)})
	}

	if ann.AgentName != "" {
		for _, atom := range ann.AgentContacts {
			if atom.Name == "" {
				continue
			}
			card := database.BusinessCard{
				Company:     ann.AgentName,
				ContactName: atom.Name,
				Phones:      atom.Phones,
				Address:     ann.AgentAddress,
			}
			if atom.Email != "" {
				card.Emails = []string{atom.Email}
			}
			entries = append(entries, cardEntry{card, string(attribution.RoleAgent)})
		}
	}

	buyer := attribution.Organization{Name: ann.BuyerName, Phones: ann.BuyerPhones}
	agent := attribution.Organization{Name: ann.AgentName, Phones: ann.AgentPhones()}
	for _, atom := range ann.ProjectContacts {
		if atom.Name == "" {
			continue
		}
		decision, ok := p.resolver.Resolve(attribution.Candidate{
			Name:   atom.Name,
			Phones: atom.Phones,
			Email:  atom.Email,
		}, buyer, agent, ann.ProjectPhone)
		if !ok {
			continue
		}
		phones := atom.Phones
		// 联系人自身无号码时落上段落级电话，名片不留空号码集
		if len(phones) == 0 && ann.ProjectPhone != "" {
			phones = []string{ann.ProjectPhone}
		}
		card := database.BusinessCard{
			Company:     decision.Company,
			ContactName: atom.Name,
			Phones:      phones,
		}
		if atom.Email != "" {
			card.Emails = []string{atom.Email}
		}
		entries = append(entries, cardEntry{card, "project"})
	}

	return entries
}
