package models

import "time"

// Channel — обязательный канал для подписки.
// ChatID хранится в том виде, в котором его ввёл администратор:
// @username, -100… для приватных каналов либо просто числовой id.
type Channel struct {
	ID        int64     `yaml:"-"`
	ChatID    string    `yaml:"chat_id"`
	Name      string    `yaml:"name"`
	Username  string    `yaml:"username"`
	Type      string    `yaml:"type"`
	CreatedAt time.Time `yaml:"-"`
}
