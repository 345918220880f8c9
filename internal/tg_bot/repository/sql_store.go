package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/DenisKhanov/SolarBot/internal/tg_bot/models"
	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

// Supported database drivers.
const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

var schemas = map[string][]string{
	DriverSQLite: {
		`CREATE TABLE IF NOT EXISTS leads (
			id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			chat_id INTEGER NOT NULL,
			username TEXT NOT NULL DEFAULT '',
			lang TEXT NOT NULL DEFAULT '',
			name TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			city TEXT NOT NULL DEFAULT '',
			note TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS calculations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			created_at TEXT NOT NULL,
			username TEXT NOT NULL DEFAULT '',
			chat_id INTEGER NOT NULL,
			lang TEXT NOT NULL DEFAULT '',
			calc_type TEXT NOT NULL,
			input_data TEXT NOT NULL,
			result_data TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS dialogs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			created_at TEXT NOT NULL,
			chat_id INTEGER NOT NULL,
			lang TEXT NOT NULL DEFAULT '',
			role TEXT NOT NULL,
			content TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_dialogs_chat ON dialogs(chat_id, id)`,
		`CREATE TABLE IF NOT EXISTS users (
			chat_id INTEGER PRIMARY KEY,
			username TEXT NOT NULL DEFAULT '',
			lang TEXT NOT NULL DEFAULT '',
			last_seen TEXT NOT NULL
		)`,
	},
	DriverMySQL: {
		`CREATE TABLE IF NOT EXISTS leads (
			id VARCHAR(36) PRIMARY KEY,
			created_at VARCHAR(40) NOT NULL,
			chat_id BIGINT NOT NULL,
			username VARCHAR(64) NOT NULL DEFAULT '',
			lang VARCHAR(8) NOT NULL DEFAULT '',
			name TEXT NOT NULL,
			phone VARCHAR(32) NOT NULL DEFAULT '',
			city TEXT NOT NULL,
			note TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS calculations (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			created_at VARCHAR(40) NOT NULL,
			username VARCHAR(64) NOT NULL DEFAULT '',
			chat_id BIGINT NOT NULL,
			lang VARCHAR(8) NOT NULL DEFAULT '',
			calc_type VARCHAR(16) NOT NULL,
			input_data TEXT NOT NULL,
			result_data TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS dialogs (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			created_at VARCHAR(40) NOT NULL,
			chat_id BIGINT NOT NULL,
			lang VARCHAR(8) NOT NULL DEFAULT '',
			role VARCHAR(16) NOT NULL,
			content TEXT NOT NULL,
			INDEX idx_dialogs_chat (chat_id, id)
		)`,
		`CREATE TABLE IF NOT EXISTS users (
			chat_id BIGINT PRIMARY KEY,
			username VARCHAR(64) NOT NULL DEFAULT '',
			lang VARCHAR(8) NOT NULL DEFAULT '',
			last_seen VARCHAR(40) NOT NULL
		)`,
	},
}

var upsertUserQuery = map[string]string{
	DriverSQLite: `INSERT INTO users (chat_id, username, lang, last_seen) VALUES (?, ?, ?, ?)
		ON CONFLICT(chat_id) DO UPDATE SET username = excluded.username, lang = excluded.lang, last_seen = excluded.last_seen`,
	DriverMySQL: `INSERT INTO users (chat_id, username, lang, last_seen) VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE username = VALUES(username), lang = VALUES(lang), last_seen = VALUES(last_seen)`,
}

// SQLStore persists leads, calculations, dialogue turns and users in SQLite or MySQL.
type SQLStore struct {
	db     *sql.DB
	driver string
}

// OpenSQLStore opens the database and creates missing tables.
func OpenSQLStore(driver, dsn string) (*SQLStore, error) {
	if _, ok := schemas[driver]; !ok {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1) // single writer
	}
	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	s := &SQLStore{db: db, driver: driver}
	if err = s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLStore) migrate() error {
	for _, stmt := range schemas[s.driver] {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to migrate schema: %w", err)
		}
	}
	return nil
}

// Close closes the database.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// SaveLead inserts a completed lead.
func (s *SQLStore) SaveLead(ctx context.Context, lead models.Lead) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO leads (id, created_at, chat_id, username, lang, name, phone, city, note) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		lead.ID.String(), formatTime(lead.CreatedAt), lead.ChatID, lead.Username, lead.Language,
		lead.Name, lead.Phone, lead.City, lead.Note,
	)
	if err != nil {
		return fmt.Errorf("failed to insert lead %s: %w", lead.ID, err)
	}
	return nil
}

// CountLeads returns the number of stored leads.
func (s *SQLStore) CountLeads(ctx context.Context) (int, error) {
	return s.count(ctx, "leads")
}

// SaveCalculation inserts a calculator run.
func (s *SQLStore) SaveCalculation(ctx context.Context, c models.Calculation) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO calculations (created_at, username, chat_id, lang, calc_type, input_data, result_data) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		formatTime(c.CreatedAt), c.Username, c.ChatID, c.Language, string(c.Type), c.Input, c.Result,
	)
	if err != nil {
		return fmt.Errorf("failed to insert calculation: %w", err)
	}
	return nil
}

// SaveDialogMessage appends one dialogue turn.
func (s *SQLStore) SaveDialogMessage(ctx context.Context, chatID int64, lang string, msg models.Message) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO dialogs (created_at, chat_id, lang, role, content) VALUES (?, ?, ?, ?, ?)`,
		formatTime(time.Now()), chatID, lang, msg.Role, msg.Content,
	)
	if err != nil {
		return fmt.Errorf("failed to insert dialog message: %w", err)
	}
	return nil
}

// RecentDialog returns the last limit turns of chatID, oldest first.
func (s *SQLStore) RecentDialog(ctx context.Context, chatID int64, limit int) ([]models.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT role, content FROM dialogs WHERE chat_id = ? ORDER BY id DESC LIMIT ?`, chatID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query dialog: %w", err)
	}
	defer rows.Close()

	var msgs []models.Message
	for rows.Next() {
		var m models.Message
		if err = rows.Scan(&m.Role, &m.Content); err != nil {
			return nil, fmt.Errorf("failed to scan dialog row: %w", err)
		}
		msgs = append(msgs, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read dialog rows: %w", err)
	}
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// UpsertUser records the latest profile of a chat.
func (s *SQLStore) UpsertUser(ctx context.Context, u models.User) error {
	_, err := s.db.ExecContext(ctx, upsertUserQuery[s.driver], u.ChatID, u.Username, u.Language, formatTime(u.LastSeen))
	if err != nil {
		return fmt.Errorf("failed to upsert user %d: %w", u.ChatID, err)
	}
	return nil
}

// CountUsers returns the number of known chats.
func (s *SQLStore) CountUsers(ctx context.Context) (int, error) {
	return s.count(ctx, "users")
}

func (s *SQLStore) count(ctx context.Context, table string) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return n, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
