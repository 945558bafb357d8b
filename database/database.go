// Package database SQLite 存储层：公告、名片与名片提及记录。
package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DBConfig 连接池配置。
type DBConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DB 业务数据库封装。
type DB struct {
	conn *sql.DB
}

// New 打开（必要时创建）数据库并执行迁移。
func New(dbPath string) (*DB, error) {
	return NewWithConfig(dbPath, DBConfig{})
}

// NewWithConfig 按给定连接池配置打开数据库。
func NewWithConfig(dbPath string, config DBConfig) (*DB, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if config.MaxOpenConns > 0 {
		conn.SetMaxOpenConns(config.MaxOpenConns)
	} else {
		conn.SetMaxOpenConns(10)
	}
	if config.MaxIdleConns > 0 {
		conn.SetMaxIdleConns(config.MaxIdleConns)
	} else {
		conn.SetMaxIdleConns(5)
	}
	if config.ConnMaxLifetime > 0 {
		conn.SetConnMaxLifetime(config.ConnMaxLifetime)
	} else {
		conn.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("apply %s: %w", pragma, err)
		}
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// Close 关闭底层连接。
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS announcements (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			url TEXT NOT NULL UNIQUE,
			publish_date TEXT,
			source TEXT,
			project_no TEXT,
			project_name TEXT,
			category TEXT,
			region TEXT,
			supplier TEXT,
			bid_amount TEXT,
			buyer_name TEXT,
			agent_name TEXT,
			content TEXT,
			created_at TEXT NOT NULL DEFAULT (datetime('now', 'localtime'))
		)`,
		// 旧版联系人表，保留兼容既有数据文件
		`CREATE TABLE IF NOT EXISTS contacts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			announcement_id INTEGER REFERENCES announcements(id) ON DELETE CASCADE,
			company TEXT,
			contact_name TEXT,
			phone TEXT,
			email TEXT,
			role TEXT,
			created_at TEXT NOT NULL DEFAULT (datetime('now', 'localtime'))
		)`,
		`CREATE TABLE IF NOT EXISTS business_cards (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			company TEXT NOT NULL,
			contact_name TEXT NOT NULL,
			phones_json TEXT NOT NULL DEFAULT '[]',
			emails_json TEXT NOT NULL DEFAULT '[]',
			address TEXT,
			created_at TEXT NOT NULL DEFAULT (datetime('now', 'localtime')),
			updated_at TEXT NOT NULL DEFAULT (datetime('now', 'localtime')),
			UNIQUE(company, contact_name)
		)`,
		`CREATE TABLE IF NOT EXISTS business_card_mentions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			card_id INTEGER NOT NULL REFERENCES business_cards(id) ON DELETE CASCADE,
			announcement_id INTEGER NOT NULL REFERENCES announcements(id) ON DELETE CASCADE,
			role TEXT NOT NULL,
			created_at TEXT NOT NULL DEFAULT (datetime('now', 'localtime')),
			UNIQUE(card_id, announcement_id, role)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_announcements_url ON announcements(url)`,
		`CREATE INDEX IF NOT EXISTS idx_cards_company ON business_cards(company)`,
		`CREATE INDEX IF NOT EXISTS idx_cards_contact ON business_cards(contact_name)`,
		`CREATE INDEX IF NOT EXISTS idx_mentions_card ON business_card_mentions(card_id)`,
		`CREATE INDEX IF NOT EXISTS idx_mentions_announcement ON business_card_mentions(announcement_id)`,
	}

	for _, stmt := range statements {
		if _, err := db.conn.Exec(stmt); err != nil {
			return fmt.Errorf("run migration: %w", err)
		}
	}
	return nil
}

func nullString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}
