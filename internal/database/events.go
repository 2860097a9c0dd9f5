package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"tadbirbot/internal/models"
)

// eventSelect собирает SELECT с локализованными колонками.
// Пустой перевод падает на узбекский текст.
func eventSelect(lang string) string {
	s := langSuffix(lang)
	return fmt.Sprintf(`
        SELECT id,
               COALESCE(NULLIF(name_%s, ''), name_uz),
               COALESCE(NULLIF(address_%s, ''), address_uz),
               date, time, payment_amount, active, created_at
        FROM events
    `, s, s)
}

func scanEvent(row interface{ Scan(...interface{}) error }) (*models.Event, error) {
	var event models.Event
	err := row.Scan(
		&event.ID,
		&event.Name,
		&event.Address,
		&event.Date,
		&event.Time,
		&event.PaymentAmount,
		&event.Active,
		&event.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (db *DB) ListActiveEvents(ctx context.Context, lang string) ([]models.Event, error) {
	query := eventSelect(lang) + ` WHERE active = 1 ORDER BY created_at DESC`

	rows, err := db.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *event)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}

// LatestActiveEvent возвращает последнее созданное активное мероприятие,
// nil если активных нет.
func (db *DB) LatestActiveEvent(ctx context.Context, lang string) (*models.Event, error) {
	query := eventSelect(lang) + ` WHERE active = 1 ORDER BY created_at DESC, id DESC LIMIT 1`

	event, err := scanEvent(db.db.QueryRowContext(ctx, query))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return event, nil
}

func (db *DB) GetEvent(ctx context.Context, id int64, lang string) (*models.Event, error) {
	query := eventSelect(lang) + ` WHERE id = ?`

	event, err := scanEvent(db.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return event, nil
}

// CreateEvent создает мероприятие. names и addresses задаются по кодам языков,
// узбекский текст обязателен.
func (db *DB) CreateEvent(ctx context.Context, event *models.Event, names, addresses map[string]string) error {
	if names[models.LangUz] == "" {
		return errors.New("event name for default language is required")
	}

	query := `
        INSERT INTO events (name_uz, name_ru, name_en, address_uz, address_ru, address_en, date, time, payment_amount, active, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `

	now := time.Now()
	result, err := db.db.ExecContext(ctx, query,
		names[models.LangUz],
		names[models.LangRu],
		names[models.LangEn],
		addresses[models.LangUz],
		addresses[models.LangRu],
		addresses[models.LangEn],
		event.Date,
		event.Time,
		event.PaymentAmount,
		event.Active,
		now,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}

	event.ID = id
	event.CreatedAt = now
	return nil
}

func (db *DB) SetEventActive(ctx context.Context, id int64, active bool) error {
	query := `UPDATE events SET active = ? WHERE id = ?`

	_, err := db.db.ExecContext(ctx, query, active, id)
	return err
}

// EventStats считает участников мероприятия по статусам.
func (db *DB) EventStats(ctx context.Context, eventID int64) (*models.EventStats, error) {
	query := `
        SELECT
            COUNT(*),
            SUM(CASE WHEN payment_status = ? THEN 1 ELSE 0 END),
            SUM(CASE WHEN payment_status = ? THEN 1 ELSE 0 END),
            SUM(CASE WHEN payment_status = ? THEN 1 ELSE 0 END)
        FROM users WHERE event_id = ?
    `

	var stats models.EventStats
	var approved, pending, rejected sql.NullInt64
	err := db.db.QueryRowContext(ctx, query,
		models.StatusApproved,
		models.StatusPendingApproval,
		models.StatusRejected,
		eventID,
	).Scan(&stats.Total, &approved, &pending, &rejected)
	if err != nil {
		return nil, err
	}

	stats.Approved = int(approved.Int64)
	stats.PendingApproval = int(pending.Int64)
	stats.Rejected = int(rejected.Int64)
	return &stats, nil
}
