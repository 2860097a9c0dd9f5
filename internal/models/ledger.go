package models

// LedgerRow — строка реестра участников во внешней таблице.
// Ключом строки служит стабильный идентификатор билета.
type LedgerRow struct {
	TicketID string `json:"ticket_id"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Paid     bool   `json:"paid"`
	Arrived  bool   `json:"arrived"`
}
