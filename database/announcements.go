package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// AnnouncementRecord 已入库的公告。
type AnnouncementRecord struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	PublishDate string `json:"publish_date"`
	Source      string `json:"source"`
	ProjectNo   string `json:"project_no"`
	ProjectName string `json:"project_name"`
	Category    string `json:"category"`
	Region      string `json:"region"`
	Supplier    string `json:"supplier"`
	BidAmount   string `json:"bid_amount"`
	BuyerName   string `json:"buyer_name"`
	AgentName   string `json:"agent_name"`
	Content     string `json:"content,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// InsertAnnouncement 写入公告，URL 已存在时忽略并返回已有记录 ID。
func (db *DB) InsertAnnouncement(ctx context.Context, rec AnnouncementRecord) (int64, error) {
	result, err := db.conn.ExecContext(ctx,
		`INSERT OR IGNORE INTO announcements
			(title, url, publish_date, source, project_no, project_name,
			 category, region, supplier, bid_amount, buyer_name, agent_name, content)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Title, rec.URL, rec.PublishDate, rec.Source, rec.ProjectNo, rec.ProjectName,
		rec.Category, rec.Region, rec.Supplier, rec.BidAmount, rec.BuyerName, rec.AgentName, rec.Content)
	if err != nil {
		return 0, fmt.Errorf("insert announcement: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("read insert result: %w", err)
	}
	if affected > 0 {
		id, err := result.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("read inserted announcement id: %w", err)
		}
		return id, nil
	}
	return db.AnnouncementIDByURL(ctx, rec.URL)
}

// AnnouncementIDByURL 按 URL 查公告 ID，不存在时返回 0。
func (db *DB) AnnouncementIDByURL(ctx context.Context, url string) (int64, error) {
	var id int64
	err := db.conn.QueryRowContext(ctx,
		"SELECT id FROM announcements WHERE url = ?", url).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("lookup announcement by url: %w", err)
	}
	return id, nil
}

// GetAnnouncements 按入库时间倒序列出公告，不含正文。
func (db *DB) GetAnnouncements(ctx context.Context, keyword string, limit int) ([]AnnouncementRecord, error) {
	query := `SELECT id, title, url, publish_date, source, project_no, project_name,
			category, region, supplier, bid_amount, buyer_name, agent_name, created_at
		FROM announcements`
	var args []interface{}
	if keyword != "" {
		query += " WHERE title LIKE ? OR buyer_name LIKE ? OR agent_name LIKE ?"
		pattern := "%" + keyword + "%"
		args = append(args, pattern, pattern, pattern)
	}
	query += " ORDER BY created_at DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query announcements: %w", err)
	}
	defer rows.Close()

	var records []AnnouncementRecord
	for rows.Next() {
		var (
			rec                                                           AnnouncementRecord
			publishDate, source, projectNo, projectName, category, region sql.NullString
			supplier, bidAmount, buyerName, agentName                     sql.NullString
		)
		if err := rows.Scan(&rec.ID, &rec.Title, &rec.URL, &publishDate, &source,
			&projectNo, &projectName, &category, &region,
			&supplier, &bidAmount, &buyerName, &agentName, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan announcement: %w", err)
		}
		rec.PublishDate = nullString(publishDate)
		rec.Source = nullString(source)
		rec.ProjectNo = nullString(projectNo)
		rec.ProjectName = nullString(projectName)
		rec.Category = nullString(category)
		rec.Region = nullString(region)
		rec.Supplier = nullString(supplier)
		rec.BidAmount = nullString(bidAmount)
		rec.BuyerName = nullString(buyerName)
		rec.AgentName = nullString(agentName)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// AnnouncementContent 取单篇公告的正文。
func (db *DB) AnnouncementContent(ctx context.Context, id int64) (string, error) {
	var content sql.NullString
	err := db.conn.QueryRowContext(ctx,
		"SELECT content FROM announcements WHERE id = ?", id).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("announcement %d not found", id)
	}
	if err != nil {
		return "", fmt.Errorf("read announcement content: %w", err)
	}
	return nullString(content), nil
}

// Stats 数据库汇总统计。
type Stats struct {
	Announcements int64 `json:"announcements"`
	Cards         int64 `json:"cards"`
	Mentions      int64 `json:"mentions"`
}

// GetStats 汇总公告、名片与提及的数量。
func (db *DB) GetStats(ctx context.Context) (Stats, error) {
	var stats Stats
	queries := []struct {
		sql  string
		dest *int64
	}{
		{"SELECT COUNT(*) FROM announcements", &stats.Announcements},
		{"SELECT COUNT(*) FROM business_cards", &stats.Cards},
		{"SELECT COUNT(*) FROM business_card_mentions", &stats.Mentions},
	}
	for _, q := range queries {
		if err := db.conn.QueryRowContext(ctx, q.sql).Scan(q.dest); err != nil {
			return Stats{}, fmt.Errorf("collect stats: %w", err)
		}
	}
	return stats, nil
}
