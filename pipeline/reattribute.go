package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"gpcards/attribution"
	"gpcards/database"
	"gpcards/parser"
)

// FixReport 归属修复的统计结果。
type FixReport struct {
	Checked int
	Moved   int
	Orphans int64
}

// Reattributor 检查已入库的 project 提及，重新判定归属并迁移名片。
// 用于修正旧数据中采购人优先导致的错误归属。
type Reattributor struct {
	db       *database.DB
	resolver *attribution.Resolver
	logger   *slog.Logger
}

// NewReattributor 创建归属修复器。
func NewReattributor(db *database.DB, logger *slog.Logger) *Reattributor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reattributor{db: db, resolver: attribution.NewResolver(logger), logger: logger}
}

// Run 遍历所有 project 提及并修复归属，最后清理孤儿名片。
func (r *Reattributor) Run(ctx context.Context) (FixReport, error) {
	mentions, err := r.db.ListProjectMentions(ctx)
	if err != nil {
		return FixReport{}, err
	}

	report := FixReport{Checked: len(mentions)}
	for _, m := range mentions {
		moved, err := r.fixMention(ctx, m)
		if err != nil {
			return report, err
		}
		if moved {
			report.Moved++
		}
	}

	orphans, err := r.db.DeleteOrphanCards(ctx)
	if err != nil {
		return report, err
	}
	report.Orphans = orphans
	r.logger.Info("归属修复完成",
		"checked", report.Checked, "moved", report.Moved, "orphans", report.Orphans)
	return report, nil
}

func (r *Reattributor) fixMention(ctx context.Context, m database.MentionDetail) (bool, error) {
	buyer := attribution.Organization{Name: m.BuyerName}
	agent := attribution.Organization{Name: m.AgentName}
	buyer.Phones, agent.Phones = phonesFromContent(m.Content)

	decision, ok := r.resolver.Resolve(attribution.Candidate{
		Name:   m.ContactName,
		Phones: m.Phones,
	}, buyer, agent, "")
	if !ok || decision.Company == "" || decision.Company == m.Company {
		return false, nil
	}

	newCardID, err := r.db.UpsertBusinessCard(ctx, database.BusinessCard{
		Company:     decision.Company,
		ContactName: m.ContactName,
		Phones:      m.Phones,
	})
	if err != nil {
		return false, fmt.Errorf("upsert reattributed card: %w", err)
	}
	if err := r.db.MoveMentionToCard(ctx, m.MentionID, newCardID); err != nil {
		return false, err
	}

	r.logger.Info("提及已重新归属",
		"contact", m.ContactName,
		"from", m.Company,
		"to", decision.Company,
		"confident", decision.Confident)
	return true, nil
}

// phonesFromContent 从公告正文按段落角色提取采购人与代理机构的号码。
func phonesFromContent(content string) (buyerPhones, agentPhones []string) {
	if content == "" {
		return nil, nil
	}
	lines := strings.Split(content, "\n")
	for _, line := range parser.SegmentBlocks(lines) {
		if parser.ClassifyDataLine(line.Text) != parser.FieldPhone &&
			parser.ClassifyDataLine(line.Text) != parser.FieldContact {
			continue
		}
		phones := parser.ExtractPhones(line.Text)
		switch line.Role {
		case parser.RoleBuyer:
			buyerPhones = append(buyerPhones, phones...)
		case parser.RoleAgent:
			agentPhones = append(agentPhones, phones...)
		}
	}
	return buyerPhones, agentPhones
}
