package models

import "time"

// Expense statuses. A record with an empty status is treated as active.
const (
	ExpenseActive = "ACTIVE"
	ExpensePaid   = "PAID"
)

// CategoryLent marks shadow expenses created for money lent out.
const CategoryLent = "Lent"

// ExpenseRecord represents a single expense for a month
type ExpenseRecord struct {
	ID                 string     `json:"id,omitempty"`
	Description        string     `json:"description"`
	Amount             float64    `json:"amount"`
	Category           string     `json:"category"`
	Month              string     `json:"month"` // Format: YYYY-MM
	Date               time.Time  `json:"date"`
	Status             string     `json:"status,omitempty"`
	LinkedReceivableID string     `json:"linkedReceivableId,omitempty"`
	PaidDate           *time.Time `json:"paidDate,omitempty"`
}

// Active reports whether the expense still counts toward current spend totals.
func (e ExpenseRecord) Active() bool { return e.Status != ExpensePaid }
