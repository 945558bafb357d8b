package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrInvalidKey 名片缺少公司名或联系人名。
var ErrInvalidKey = errors.New("business card requires company and contact name")

// BusinessCard 去重后的联系人名片。同一 (公司, 姓名) 只有一张，
// 电话与邮箱是所有来源的并集。
type BusinessCard struct {
	ID          int64    `json:"id"`
	Company     string   `json:"company"`
	ContactName string   `json:"contact_name"`
	Phones      []string `json:"phones"`
	Emails      []string `json:"emails"`
	Address     string   `json:"address"`
	Mentions    int      `json:"mentions"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}

// CardQuery 名片查询条件。Company/Contact 支持模糊匹配。
type CardQuery struct {
	Company string
	Contact string
	Exact   bool
	Limit   int
}

// UpsertBusinessCard 写入或合并名片，返回名片 ID。
// 已存在同键名片时，电话和邮箱做并集合并，地址缺失时补全；
// 合并后无变化则不更新 updated_at。
func (db *DB) UpsertBusinessCard(ctx context.Context, card BusinessCard) (int64, error) {
	company := strings.TrimSpace(card.Company)
	contact := strings.TrimSpace(card.ContactName)
	if company == "" || contact == "" {
		return 0, ErrInvalidKey
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin upsert transaction: %w", err)
	}
	defer tx.Rollback()

	var (
		id         int64
		phonesJSON string
		emailsJSON string
		address    sql.NullString
	)
	err = tx.QueryRowContext(ctx,
		`SELECT id, phones_json, emails_json, address FROM business_cards
		 WHERE company = ? AND contact_name = ?`,
		company, contact,
	).Scan(&id, &phonesJSON, &emailsJSON, &address)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		result, err := tx.ExecContext(ctx,
			`INSERT INTO business_cards (company, contact_name, phones_json, emails_json, address)
			 VALUES (?, ?, ?, ?, ?)`,
			company, contact, marshalList(card.Phones), marshalList(card.Emails), card.Address)
		if err != nil {
			return 0, fmt.Errorf("insert business card: %w", err)
		}
		id, err = result.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("read inserted card id: %w", err)
		}
	case err != nil:
		return 0, fmt.Errorf("lookup business card: %w", err)
	default:
		mergedPhones, phonesChanged := mergeList(phonesJSON, card.Phones)
		mergedEmails, emailsChanged := mergeList(emailsJSON, card.Emails)
		newAddress := nullString(address)
		addressChanged := newAddress == "" && card.Address != ""
		if addressChanged {
			newAddress = card.Address
		}

		if phonesChanged || emailsChanged || addressChanged {
			_, err = tx.ExecContext(ctx,
				`UPDATE business_cards
				 SET phones_json = ?, emails_json = ?, address = ?,
				     updated_at = datetime('now', 'localtime')
				 WHERE id = ?`,
				mergedPhones, mergedEmails, newAddress, id)
			if err != nil {
				return 0, fmt.Errorf("merge business card: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit upsert: %w", err)
	}
	return id, nil
}

// AddBusinessCardMention 记录名片在某公告中以某角色出现。
// 重复记录静默忽略。
func (db *DB) AddBusinessCardMention(ctx context.Context, cardID, announcementID int64, role string) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT OR IGNORE INTO business_card_mentions (card_id, announcement_id, role)
		 VALUES (?, ?, ?)`,
		cardID, announcementID, role)
	if err != nil {
		return fmt.Errorf("add card mention: %w", err)
	}
	return nil
}

// GetBusinessCards 查询名片，按提及公告数降序、更新时间降序排列。
func (db *DB) GetBusinessCards(ctx context.Context, q CardQuery) ([]BusinessCard, error) {
	var (
		where []string
		args  []interface{}
	)
	if q.Company != "" {
		if q.Exact {
			where = append(where, "c.company = ?")
			args = append(args, q.Company)
		} else {
			where = append(where, "c.company LIKE ?")
			args = append(args, "%"+q.Company+"%")
		}
	}
	if q.Contact != "" {
		if q.Exact {
			where = append(where, "c.contact_name = ?")
			args = append(args, q.Contact)
		} else {
			where = append(where, "c.contact_name LIKE ?")
			args = append(args, "%"+q.Contact+"%")
		}
	}

	query := `SELECT c.id, c.company, c.contact_name, c.phones_json, c.emails_json,
			c.address, c.created_at, c.updated_at,
			COUNT(DISTINCT m.announcement_id) AS mentions
		FROM business_cards c
		LEFT JOIN business_card_mentions m ON m.card_id = c.id`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " GROUP BY c.id ORDER BY mentions DESC, c.updated_at DESC"
	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query business cards: %w", err)
	}
	defer rows.Close()

	var cards []BusinessCard
	for rows.Next() {
		var (
			card       BusinessCard
			phonesJSON string
			emailsJSON string
			address    sql.NullString
		)
		if err := rows.Scan(&card.ID, &card.Company, &card.ContactName,
			&phonesJSON, &emailsJSON, &address,
			&card.CreatedAt, &card.UpdatedAt, &card.Mentions); err != nil {
			return nil, fmt.Errorf("scan business card: %w", err)
		}
		card.Phones = unmarshalList(phonesJSON)
		card.Emails = unmarshalList(emailsJSON)
		card.Address = nullString(address)
		cards = append(cards, card)
	}
	return cards, rows.Err()
}

// CountBusinessCards 名片总数。
func (db *DB) CountBusinessCards(ctx context.Context) (int64, error) {
	var count int64
	err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM business_cards").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count business cards: %w", err)
	}
	return count, nil
}

func marshalList(values []string) string {
	cleaned := make([]string, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" && !seen[v] {
			seen[v] = true
			cleaned = append(cleaned, v)
		}
	}
	sort.Strings(cleaned)
	data, _ := json.Marshal(cleaned)
	return string(data)
}

func unmarshalList(raw string) []string {
	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil
	}
	return values
}

// mergeList 把新值并入已存储的 JSON 列表，返回合并结果与是否有变化。
func mergeList(storedJSON string, incoming []string) (string, bool) {
	merged := marshalList(append(unmarshalList(storedJSON), incoming...))
	return merged, merged != storedJSON
}
