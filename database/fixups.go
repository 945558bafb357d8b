package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// MentionDetail 提及记录及关联名片与公告，用于归属修复。
type MentionDetail struct {
	MentionID      int64
	CardID         int64
	Company        string
	ContactName    string
	Phones         []string
	Role           string
	AnnouncementID int64
	BuyerName      string
	AgentName      string
	Content        string
}

// ListProjectMentions 列出所有 project 角色的提及及其上下文。
func (db *DB) ListProjectMentions(ctx context.Context) ([]MentionDetail, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT m.id, c.id, c.company, c.contact_name, c.phones_json, m.role,
			a.id, a.buyer_name, a.agent_name, a.content
		 FROM business_card_mentions m
		 JOIN business_cards c ON c.id = m.card_id
		 JOIN announcements a ON a.id = m.announcement_id
		 WHERE m.role = 'project'`)
	if err != nil {
		return nil, fmt.Errorf("list project mentions: %w", err)
	}
	defer rows.Close()

	var details []MentionDetail
	for rows.Next() {
		var (
			d                             MentionDetail
			phonesJSON                    string
			buyerName, agentName, content sql.NullString
		)
		if err := rows.Scan(&d.MentionID, &d.CardID, &d.Company, &d.ContactName,
			&phonesJSON, &d.Role, &d.AnnouncementID, &buyerName, &agentName, &content); err != nil {
			return nil, fmt.Errorf("scan mention detail: %w", err)
		}
		d.Phones = unmarshalList(phonesJSON)
		d.BuyerName = nullString(buyerName)
		d.AgentName = nullString(agentName)
		d.Content = nullString(content)
		details = append(details, d)
	}
	return details, rows.Err()
}

// MoveMentionToCard 把提及改挂到另一张名片上。目标位置已有同样的
// 提及时删除原记录，避免违反唯一约束。
func (db *DB) MoveMentionToCard(ctx context.Context, mentionID, newCardID int64) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin mention move: %w", err)
	}
	defer tx.Rollback()

	var announcementID int64
	var role string
	err = tx.QueryRowContext(ctx,
		"SELECT announcement_id, role FROM business_card_mentions WHERE id = ?",
		mentionID).Scan(&announcementID, &role)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("mention %d not found", mentionID)
	}
	if err != nil {
		return fmt.Errorf("lookup mention: %w", err)
	}

	var existing int64
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM business_card_mentions
		 WHERE card_id = ? AND announcement_id = ? AND role = ?`,
		newCardID, announcementID, role).Scan(&existing)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := tx.ExecContext(ctx,
			"UPDATE business_card_mentions SET card_id = ? WHERE id = ?",
			newCardID, mentionID); err != nil {
			return fmt.Errorf("move mention: %w", err)
		}
	case err != nil:
		return fmt.Errorf("check duplicate mention: %w", err)
	default:
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM business_card_mentions WHERE id = ?", mentionID); err != nil {
			return fmt.Errorf("drop duplicate mention: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit mention move: %w", err)
	}
	return nil
}

// DeleteOrphanCards 删除没有任何提及记录的名片，返回删除数量。
func (db *DB) DeleteOrphanCards(ctx context.Context) (int64, error) {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM business_cards WHERE id NOT IN
			(SELECT DISTINCT card_id FROM business_card_mentions)`)
	if err != nil {
		return 0, fmt.Errorf("delete orphan cards: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("read delete result: %w", err)
	}
	return affected, nil
}
