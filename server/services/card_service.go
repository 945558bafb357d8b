// Package services HTTP 处理器之下的业务服务层。
package services

import (
	"context"
	"fmt"
	"log/slog"

	"gpcards/database"
	"gpcards/export"
)

// CardService 名片查询与导出服务。
type CardService struct {
	db       *database.DB
	exporter *export.Exporter
	logger   *slog.Logger
}

// NewCardService 创建名片服务。
func NewCardService(db *database.DB, exporter *export.Exporter, logger *slog.Logger) (*CardService, error) {
	if db == nil {
		return nil, fmt.Errorf("card service requires a database")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CardService{db: db, exporter: exporter, logger: logger}, nil
}

// Search 按公司或联系人查询名片。
func (s *CardService) Search(ctx context.Context, company, contact string, exact bool, limit int) ([]database.BusinessCard, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.db.GetBusinessCards(ctx, database.CardQuery{
		Company: company,
		Contact: contact,
		Exact:   exact,
		Limit:   limit,
	})
}

// Export 导出全部名片，format 为 xlsx 或 csv，返回文件路径。
func (s *CardService) Export(ctx context.Context, format string) (string, error) {
	if s.exporter == nil {
		return "", fmt.Errorf("exporter is not configured")
	}
	cards, err := s.db.GetBusinessCards(ctx, database.CardQuery{})
	if err != nil {
		return "", err
	}

	var path string
	switch format {
	case "csv":
		path, err = s.exporter.CardsToCSV(cards)
	case "", "xlsx":
		path, err = s.exporter.CardsToExcel(cards)
	default:
		return "", fmt.Errorf("unsupported export format %q", format)
	}
	if err != nil {
		return "", err
	}
	s.logger.Info("名片导出完成", "format", format, "count", len(cards), "path", path)
	return path, nil
}
