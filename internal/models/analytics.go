package models

// CategorySummary represents spending in one expense category, with its
// share relative to the largest category
type CategorySummary struct {
	Name       string  `json:"name"`
	Amount     float64 `json:"amount"`
	Percentage float64 `json:"percentage"` // vs the largest category, 0-100
}

// ComparisonSeries holds day-aligned cumulative spend for the selected and
// the previous month
type ComparisonSeries struct {
	ThisMonth []float64 `json:"this_month"`
	LastMonth []float64 `json:"last_month"`
}

// UpcomingDue is an upcoming payment annotated with days until due
type UpcomingDue struct {
	UpcomingPayment
	DueIn int `json:"dueIn"`
}

// DashboardSummary represents derived monthly totals and series
type DashboardSummary struct {
	Month            string            `json:"month"`
	TotalIncome      float64           `json:"total_income"`
	TotalExpenses    float64           `json:"total_expenses"`
	AvailableBalance float64           `json:"available_balance"`
	ReceivablesTotal float64           `json:"receivables_total"`
	Categories       []CategorySummary `json:"categories"`
	DailyTotals      []float64         `json:"daily_totals"`
	CumulativeTotals []float64         `json:"cumulative_totals"`
	Comparison       ComparisonSeries  `json:"comparison"`
	RecentIncome     []IncomeRecord    `json:"recent_income"`
	RecentExpenses   []ExpenseRecord   `json:"recent_expenses"`
	Upcoming         []UpcomingDue     `json:"upcoming"`
}
