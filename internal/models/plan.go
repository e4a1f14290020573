package models

import "time"

// Principle names a savings strategy for a goal plan
type Principle string

const (
	PrincipleBalanced  Principle = "Balanced"
	PrincipleFastTrack Principle = "FastTrack"
	PrincipleStepping  Principle = "Stepping"
	PrincipleCustom    Principle = "Custom"
)

// Goal plan kinds.
const (
	PlanTarget  = "target"
	PlanLoan    = "loan"
	PlanTrip    = "trip"
	PlanSavings = "savings"
)

// ExpenseItem is a fixed monthly obligation declared during goal planning
type ExpenseItem struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// ScheduleRow is one month of a payment schedule. Done is a user-toggled
// checkbox and is never set by the engine.
type ScheduleRow struct {
	MonthISO string  `json:"monthISO"` // Format: YYYY-MM
	Amount   float64 `json:"amount"`
	Done     bool    `json:"done"`
	Cum      float64 `json:"cum"`
}

// PlanChoice is the strategy chosen at the end of the goal wizard
type PlanChoice struct {
	Principle  Principle `json:"principle"`
	Monthly    float64   `json:"monthly"`
	StartMonth string    `json:"startMonth"` // Format: YYYY-MM
	StepPct    float64   `json:"stepPct,omitempty"`
}

// GoalPlan is a persisted savings, trip, target or loan plan with its
// derived payment schedule
type GoalPlan struct {
	ID                string        `json:"id,omitempty"`
	Type              string        `json:"type"`
	Title             string        `json:"title"`
	Price             float64       `json:"price"` // target cost or loan principal
	AnnualRatePct     float64       `json:"annualRatePct,omitempty"`
	IncomeMin         float64       `json:"incomeMin"`
	IncomeMax         float64       `json:"incomeMax"`
	Expenses          []ExpenseItem `json:"expenses,omitempty"`
	BaselineSavingsOn bool          `json:"baselineSavingsOn"`
	Leftover          float64       `json:"leftover"`
	Chosen            PlanChoice    `json:"chosen"`
	MonthsRequired    int           `json:"monthsRequired"`
	Schedule          []ScheduleRow `json:"schedule"`
	CreatedAt         time.Time     `json:"createdAt"`
}
