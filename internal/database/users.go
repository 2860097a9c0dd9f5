package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"tadbirbot/internal/models"
)

const userColumns = `id, telegram_id, username, full_name, phone, event_id, payment_status, approved, ticket_id, language, created_at, updated_at`

func scanUser(row interface{ Scan(...interface{}) error }) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.TelegramID,
		&user.Username,
		&user.FullName,
		&user.Phone,
		&user.EventID,
		&user.PaymentStatus,
		&user.Approved,
		&user.TicketID,
		&user.Language,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUser возвращает участника по Telegram ID, nil если записи нет.
func (db *DB) GetUser(ctx context.Context, telegramID int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE telegram_id = ?`

	user, err := scanUser(db.db.QueryRowContext(ctx, query, telegramID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// CreateUserIfAbsent создает запись при первом /start.
// Повторный вызов только освежает username.
func (db *DB) CreateUserIfAbsent(ctx context.Context, telegramID int64, username string) (*models.User, error) {
	query := `
        INSERT INTO users (telegram_id, username, updated_at)
        VALUES (?, ?, ?)
        ON CONFLICT(telegram_id) DO UPDATE SET
            username = excluded.username,
            updated_at = excluded.updated_at
    `

	if _, err := db.db.ExecContext(ctx, query, telegramID, username, time.Now()); err != nil {
		return nil, err
	}

	return db.GetUser(ctx, telegramID)
}

func (db *DB) SetLanguage(ctx context.Context, telegramID int64, lang string) error {
	query := `UPDATE users SET language = ?, updated_at = ? WHERE telegram_id = ?`

	_, err := db.db.ExecContext(ctx, query, lang, time.Now(), telegramID)
	return err
}

// CompleteRegistration записывает имя и телефон одним UPDATE,
// частично заполненной регистрации в базе не бывает.
func (db *DB) CompleteRegistration(ctx context.Context, telegramID int64, fullName, phone string) error {
	query := `UPDATE users SET full_name = ?, phone = ?, updated_at = ? WHERE telegram_id = ?`

	result, err := db.db.ExecContext(ctx, query, fullName, phone, time.Now(), telegramID)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (db *DB) SetUserEvent(ctx context.Context, telegramID int64, eventID int64) error {
	query := `UPDATE users SET event_id = ?, updated_at = ? WHERE telegram_id = ?`

	_, err := db.db.ExecContext(ctx, query, eventID, time.Now(), telegramID)
	return err
}

// ClearUserEvent снимает привязку к мероприятию, статус оплаты не трогает.
func (db *DB) ClearUserEvent(ctx context.Context, telegramID int64) error {
	query := `UPDATE users SET event_id = NULL, updated_at = ? WHERE telegram_id = ?`

	_, err := db.db.ExecContext(ctx, query, time.Now(), telegramID)
	return err
}

func (db *DB) SetPaymentStatus(ctx context.Context, telegramID int64, status string) error {
	query := `UPDATE users SET payment_status = ?, updated_at = ? WHERE telegram_id = ?`

	_, err := db.db.ExecContext(ctx, query, status, time.Now(), telegramID)
	return err
}

// ResetForNewEvent переводит одобренного участника обратно в pending
// перед оплатой другого мероприятия. Старый QR становится недействительным,
// поэтому билет заменяется свежим идентификатором.
func (db *DB) ResetForNewEvent(ctx context.Context, telegramID int64, ticketID string) error {
	query := `
        UPDATE users
        SET payment_status = ?, approved = 0, ticket_id = ?, event_id = NULL, updated_at = ?
        WHERE telegram_id = ?
    `

	_, err := db.db.ExecContext(ctx, query, models.StatusPending, ticketID, time.Now(), telegramID)
	return err
}

// ApproveUser подтверждает оплату. Существующий билет сохраняется,
// чтобы повторный approve не выдал второй QR.
func (db *DB) ApproveUser(ctx context.Context, telegramID int64, ticketID string) error {
	query := `
        UPDATE users
        SET payment_status = ?, approved = 1,
            ticket_id = CASE WHEN ticket_id = '' THEN ? ELSE ticket_id END,
            updated_at = ?
        WHERE telegram_id = ?
    `

	_, err := db.db.ExecContext(ctx, query, models.StatusApproved, ticketID, time.Now(), telegramID)
	return err
}

// ListPendingApproval возвращает участников, ожидающих решения админа.
func (db *DB) ListPendingApproval(ctx context.Context) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE payment_status = ? ORDER BY updated_at`

	return db.queryUsers(ctx, query, models.StatusPendingApproval)
}

// ListApprovedByEvent возвращает одобренных участников мероприятия для выгрузки.
func (db *DB) ListApprovedByEvent(ctx context.Context, eventID int64) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE event_id = ? AND payment_status = ? ORDER BY full_name`

	return db.queryUsers(ctx, query, eventID, models.StatusApproved)
}

// UserStats возвращает количество участников по статусам плюс total.
func (db *DB) UserStats(ctx context.Context) (map[string]int, error) {
	query := `SELECT payment_status, COUNT(*) FROM users GROUP BY payment_status`

	rows, err := db.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := make(map[string]int)
	total := 0
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
		total += count
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	stats["total"] = total
	return stats, nil
}

func (db *DB) queryUsers(ctx context.Context, query string, args ...interface{}) ([]models.User, error) {
	rows, err := db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}
