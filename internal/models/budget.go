package models

import "time"

// BudgetType identifies one of the six fixed budget categories
type BudgetType string

const (
	BudgetHouse    BudgetType = "House"
	BudgetPersonal BudgetType = "Personal"
	BudgetLoan     BudgetType = "Loan"
	BudgetTrip     BudgetType = "Trip"
	BudgetOthers   BudgetType = "Others"
	BudgetSavings  BudgetType = "Savings"
)

// BudgetCategories holds the allocated amount per category
type BudgetCategories struct {
	House    float64 `json:"house"`
	Personal float64 `json:"personal"`
	Loan     float64 `json:"loan"`
	Trip     float64 `json:"trip"`
	Others   float64 `json:"others"`
	Savings  float64 `json:"savings"`
}

// Get returns the amount allocated to the given category.
func (c BudgetCategories) Get(t BudgetType) float64 {
	switch t {
	case BudgetHouse:
		return c.House
	case BudgetPersonal:
		return c.Personal
	case BudgetLoan:
		return c.Loan
	case BudgetTrip:
		return c.Trip
	case BudgetOthers:
		return c.Others
	case BudgetSavings:
		return c.Savings
	}
	return 0
}

// Set replaces the amount allocated to the given category.
func (c *BudgetCategories) Set(t BudgetType, v float64) {
	switch t {
	case BudgetHouse:
		c.House = v
	case BudgetPersonal:
		c.Personal = v
	case BudgetLoan:
		c.Loan = v
	case BudgetTrip:
		c.Trip = v
	case BudgetOthers:
		c.Others = v
	case BudgetSavings:
		c.Savings = v
	}
}

// Total sums all six categories.
func (c BudgetCategories) Total() float64 {
	return c.House + c.Personal + c.Loan + c.Trip + c.Others + c.Savings
}

// BudgetPlan is a monthly allocation of income across the six categories
type BudgetPlan struct {
	ID         string                 `json:"id"`    // same as Month
	Month      string                 `json:"month"` // Format: YYYY-MM
	Income     float64                `json:"income"`
	Categories BudgetCategories       `json:"categories"`
	Priorities []BudgetType           `json:"priorities"`
	Fixed      map[BudgetType]float64 `json:"fixed,omitempty"`
	Generated  bool                   `json:"generated"`
	CreatedAt  time.Time              `json:"createdAt"`
}
