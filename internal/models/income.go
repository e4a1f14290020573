package models

import "time"

// IncomeRecord represents a single income posting for a month
type IncomeRecord struct {
	ID                string    `json:"id,omitempty"`
	Source            string    `json:"source"`
	Description       string    `json:"description,omitempty"`
	Amount            float64   `json:"amount"`
	Month             string    `json:"month"` // Format: YYYY-MM
	Date              time.Time `json:"date"`
	IsSystemGenerated bool      `json:"isSystemGenerated,omitempty"`
	IsCarryForward    bool      `json:"isCarryForward,omitempty"`
	CreatedAt         time.Time `json:"createdAt,omitzero"`
}
