package services

import (
	"context"
	"fmt"
	"log/slog"

	"gpcards/database"
	"gpcards/pipeline"
)

// AnnouncementService 公告查询、统计与归属修复服务。
type AnnouncementService struct {
	db     *database.DB
	logger *slog.Logger
}

// NewAnnouncementService 创建公告服务。
func NewAnnouncementService(db *database.DB, logger *slog.Logger) (*AnnouncementService, error) {
	if db == nil {
		return nil, fmt.Errorf("announcement service requires a database")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AnnouncementService{db: db, logger: logger}, nil
}

// List 按关键词查询公告。
func (s *AnnouncementService) List(ctx context.Context, keyword string, limit int) ([]database.AnnouncementRecord, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.db.GetAnnouncements(ctx, keyword, limit)
}

// Stats 数据库汇总统计。
func (s *AnnouncementService) Stats(ctx context.Context) (database.Stats, error) {
	return s.db.GetStats(ctx)
}

// Reprocess 对存量数据重新执行联系人归属判定。
func (s *AnnouncementService) Reprocess(ctx context.Context) (pipeline.FixReport, error) {
	return pipeline.NewReattributor(s.db, s.logger).Run(ctx)
}
