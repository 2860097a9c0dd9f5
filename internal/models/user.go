package models

import (
	"database/sql"
	"time"
)

// User — участник, зарегистрированный через бота.
type User struct {
	ID            int64
	TelegramID    int64
	Username      string
	FullName      string
	Phone         string
	EventID       sql.NullInt64
	PaymentStatus string
	Approved      bool
	TicketID      string
	Language      string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsRegistered сообщает, завершена ли регистрация: имя и телефон заполнены.
func (u *User) IsRegistered() bool {
	return u != nil && u.FullName != "" && u.Phone != ""
}

// RegistrationStatus возвращает статус для отображения пользователю.
// Для незавершённой регистрации статус платежа не имеет смысла.
func (u *User) RegistrationStatus() string {
	if !u.IsRegistered() {
		return StatusNotRegistered
	}
	if u.PaymentStatus == "" {
		return StatusPending
	}
	return u.PaymentStatus
}

// Lang возвращает язык пользователя с запасным вариантом по умолчанию.
func (u *User) Lang() string {
	if u == nil || u.Language == "" {
		return DefaultLanguage
	}
	return u.Language
}
