package models

import "time"

// Event — мероприятие. Название и адрес хранятся по языкам,
// наружу отдаётся уже локализованная пара Name/Address.
type Event struct {
	ID            int64
	Name          string
	Address       string
	Date          string
	Time          string
	PaymentAmount float64
	Active        bool
	CreatedAt     time.Time
}

// EventStats — агрегаты по мероприятию для админ-панели.
type EventStats struct {
	Total           int
	Approved        int
	PendingApproval int
	Rejected        int
}
