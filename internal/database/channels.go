package database

import (
	"context"

	"tadbirbot/internal/models"
)

// ListChannels возвращает обязательные каналы в порядке добавления.
func (db *DB) ListChannels(ctx context.Context) ([]models.Channel, error) {
	query := `SELECT id, chat_id, name, username, type, created_at FROM channels ORDER BY id`

	rows, err := db.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var channels []models.Channel
	for rows.Next() {
		var ch models.Channel
		err := rows.Scan(&ch.ID, &ch.ChatID, &ch.Name, &ch.Username, &ch.Type, &ch.CreatedAt)
		if err != nil {
			return nil, err
		}
		channels = append(channels, ch)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return channels, nil
}

// AddChannel добавляет или обновляет канал по chat_id.
func (db *DB) AddChannel(ctx context.Context, channel *models.Channel) error {
	query := `
        INSERT INTO channels (chat_id, name, username, type)
        VALUES (?, ?, ?, ?)
        ON CONFLICT(chat_id) DO UPDATE SET
            name = excluded.name,
            username = excluded.username,
            type = excluded.type
    `

	result, err := db.db.ExecContext(ctx, query, channel.ChatID, channel.Name, channel.Username, channel.Type)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}

	channel.ID = id
	return nil
}

func (db *DB) DeleteChannel(ctx context.Context, chatID string) error {
	query := `DELETE FROM channels WHERE chat_id = ?`

	_, err := db.db.ExecContext(ctx, query, chatID)
	return err
}
