package models

import "time"

// UpcomingPayment represents a scheduled payment not yet converted to an expense
type UpcomingPayment struct {
	ID          string    `json:"id,omitempty"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	Category    string    `json:"category"`
	DueDate     time.Time `json:"dueDate"`
	Month       string    `json:"month"` // Format: YYYY-MM
}
