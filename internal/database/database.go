package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"tadbirbot/internal/models"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

type DB struct {
	db     *sql.DB
	logger *zerolog.Logger
}

func NewDB(path string, logger *zerolog.Logger) (*DB, error) {
	// Создаем директорию для БД, если её нет
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %v", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}

	// Создаем таблицы
	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %v", err)
	}

	logger.Info().Str("path", path).Msg("База данных инициализирована")
	return &DB{db: db, logger: logger}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		// Таблица участников
		`CREATE TABLE IF NOT EXISTS users (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            telegram_id INTEGER UNIQUE NOT NULL,
            username TEXT NOT NULL DEFAULT '',
            full_name TEXT NOT NULL DEFAULT '',
            phone TEXT NOT NULL DEFAULT '',
            event_id INTEGER,
            payment_status TEXT NOT NULL DEFAULT 'pending',
            approved BOOLEAN NOT NULL DEFAULT 0,
            ticket_id TEXT NOT NULL DEFAULT '',
            language TEXT NOT NULL DEFAULT 'uz',
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,
		// Обязательные каналы для подписки
		`CREATE TABLE IF NOT EXISTS channels (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            chat_id TEXT UNIQUE NOT NULL,
            name TEXT NOT NULL DEFAULT '',
            username TEXT NOT NULL DEFAULT '',
            type TEXT NOT NULL DEFAULT 'channel',
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,
		// Мероприятия, тексты по языкам
		`CREATE TABLE IF NOT EXISTS events (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            name_uz TEXT NOT NULL,
            name_ru TEXT NOT NULL DEFAULT '',
            name_en TEXT NOT NULL DEFAULT '',
            address_uz TEXT NOT NULL DEFAULT '',
            address_ru TEXT NOT NULL DEFAULT '',
            address_en TEXT NOT NULL DEFAULT '',
            date TEXT NOT NULL DEFAULT '',
            time TEXT NOT NULL DEFAULT '',
            payment_amount REAL NOT NULL DEFAULT 0,
            active BOOLEAN NOT NULL DEFAULT 1,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,

		`CREATE INDEX IF NOT EXISTS idx_users_telegram_id ON users(telegram_id)`,
		`CREATE INDEX IF NOT EXISTS idx_users_payment_status ON users(payment_status)`,
		`CREATE INDEX IF NOT EXISTS idx_users_event_id ON users(event_id)`,
		`CREATE INDEX IF NOT EXISTS idx_events_active ON events(active)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %v", query, err)
		}
	}
	return nil
}

// langSuffix сводит произвольный код языка к суффиксу колонки.
// Неизвестные коды падают на узбекский, он же язык по умолчанию.
func langSuffix(lang string) string {
	switch lang {
	case models.LangRu:
		return "ru"
	case models.LangEn:
		return "en"
	default:
		return "uz"
	}
}

func (db *DB) PingContext(ctx context.Context) error {
	return db.db.PingContext(ctx)
}

func (db *DB) Close() error {
	return db.db.Close()
}
