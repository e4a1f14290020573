package models

import "time"

// Receivable statuses. PAID is terminal.
const (
	ReceivablePending = "PENDING"
	ReceivablePaid    = "PAID"
)

// ReceivableRecord tracks money lent out until it is repaid
type ReceivableRecord struct {
	ID        string     `json:"id,omitempty"`
	Title     string     `json:"title"`
	Amount    float64    `json:"amount"`
	Month     string     `json:"month"` // Format: YYYY-MM
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"createdAt"`
	PaidDate  *time.Time `json:"paidDate,omitempty"`
}
