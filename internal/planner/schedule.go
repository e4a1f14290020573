package planner

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/karthn/budget-service/internal/models"
	"github.com/karthn/budget-service/internal/utils"
)

// DefaultStepPct is the growth applied per month by stepping schedules.
const DefaultStepPct = 0.05

// ErrNonTerminating rejects schedules whose monthly amount can never reach
// the target.
var ErrNonTerminating = errors.New("non-terminating schedule: monthly amount must be positive")

// round rounds half away from zero to the nearest whole amount.
func round(v float64) float64 {
	return decimal.NewFromFloat(v).Round(0).InexactFloat64()
}

// EMI computes the standard reducing-balance monthly installment, rounded up
// to a whole amount. Negative principal and rate are clamped to zero, a
// non-positive term to one month.
func EMI(principal, annualRatePct float64, months int) float64 {
	if principal < 0 {
		principal = 0
	}
	if annualRatePct < 0 {
		annualRatePct = 0
	}
	if months < 1 {
		months = 1
	}
	p := decimal.NewFromFloat(principal)
	n := decimal.NewFromInt(int64(months))
	if annualRatePct == 0 {
		return p.Div(n).Ceil().InexactFloat64()
	}
	r := decimal.NewFromFloat(annualRatePct).Div(decimal.NewFromInt(1200))
	one := decimal.NewFromInt(1)
	pow := one.Add(r).Pow(n)
	e := p.Mul(r).Mul(pow).Div(pow.Sub(one))
	return e.Ceil().InexactFloat64()
}

// BuildEMISchedule builds the cumulative payoff schedule for a loan: exactly
// one row per month at the constant EMI amount.
func BuildEMISchedule(principal, annualRatePct float64, months int, startMonth string) ([]models.ScheduleRow, error) {
	start, err := utils.ParseMonth(startMonth)
	if err != nil {
		return nil, err
	}
	if months < 1 {
		months = 1
	}
	amount := EMI(principal, annualRatePct, months)
	rows := make([]models.ScheduleRow, 0, months)
	cum := 0.0
	for m := 0; m < months; m++ {
		cum += amount
		rows = append(rows, models.ScheduleRow{
			MonthISO: start.AddDate(0, m, 0).Format(utils.MonthFormat),
			Amount:   amount,
			Cum:      cum,
		})
	}
	return rows, nil
}

// BuildFlat appends rows of a constant monthly amount until the cumulative
// sum reaches the target.
func BuildFlat(target float64, startMonth string, monthly float64) ([]models.ScheduleRow, error) {
	if target < 0 {
		return nil, fmt.Errorf("schedule target must not be negative, got %v", target)
	}
	if monthly <= 0 {
		return nil, ErrNonTerminating
	}
	start, err := utils.ParseMonth(startMonth)
	if err != nil {
		return nil, err
	}
	var rows []models.ScheduleRow
	cum := 0.0
	for m := 0; cum < target; m++ {
		cum += monthly
		rows = append(rows, models.ScheduleRow{
			MonthISO: start.AddDate(0, m, 0).Format(utils.MonthFormat),
			Amount:   monthly,
			Cum:      cum,
		})
	}
	return rows, nil
}

// BuildStepping builds a schedule whose amount grows linearly in the step
// index: row m pays round(base * (1 + stepPct*m)). Growth is linear, not
// compounding.
func BuildStepping(target float64, startMonth string, base, stepPct float64) ([]models.ScheduleRow, error) {
	if target < 0 {
		return nil, fmt.Errorf("schedule target must not be negative, got %v", target)
	}
	if base <= 0 {
		return nil, ErrNonTerminating
	}
	start, err := utils.ParseMonth(startMonth)
	if err != nil {
		return nil, err
	}
	baseDec := decimal.NewFromFloat(base)
	stepDec := decimal.NewFromFloat(stepPct)
	one := decimal.NewFromInt(1)
	var rows []models.ScheduleRow
	cum := 0.0
	for m := 0; cum < target; m++ {
		factor := one.Add(stepDec.Mul(decimal.NewFromInt(int64(m))))
		amt := baseDec.Mul(factor).Round(0).InexactFloat64()
		if amt <= 0 {
			return nil, ErrNonTerminating
		}
		cum += amt
		rows = append(rows, models.ScheduleRow{
			MonthISO: start.AddDate(0, m, 0).Format(utils.MonthFormat),
			Amount:   amt,
			Cum:      cum,
		})
	}
	return rows, nil
}

// Baseline returns the reserved minimum savings, 10% of the income floor.
func Baseline(incomeMin float64, on bool) float64 {
	if !on {
		return 0
	}
	return round(incomeMin * 0.10)
}

// SumExpenses totals the declared fixed obligations.
func SumExpenses(items []models.ExpenseItem) float64 {
	var sum float64
	for _, item := range items {
		sum += item.Amount
	}
	return sum
}

// Leftover is what remains of the income floor after fixed obligations and
// the savings baseline, never negative.
func Leftover(incomeMin float64, items []models.ExpenseItem, baseline float64) float64 {
	left := incomeMin - SumExpenses(items) - baseline
	if left < 0 {
		return 0
	}
	return left
}

// Suggestion holds the suggested monthly amounts per strategy
type Suggestion struct {
	Balanced float64 `json:"balanced"`
	Fast     float64 `json:"fast"`
	StepBase float64 `json:"stepBase"`
}

// SuggestMonthly derives strategy suggestions from the monthly leftover.
func SuggestMonthly(leftover float64) Suggestion {
	return Suggestion{
		Balanced: round(leftover * 0.70),
		Fast:     round(leftover * 0.90),
		StepBase: round(leftover * 0.60),
	}
}

// MonthsFor returns how many months a flat schedule needs at the given
// monthly amount.
func MonthsFor(price, monthly float64) (int, error) {
	if monthly <= 0 {
		return 0, ErrNonTerminating
	}
	return int(decimal.NewFromFloat(price).Div(decimal.NewFromFloat(monthly)).Ceil().IntPart()), nil
}

// MonthsUntil counts the months from now through the target month, at least one.
func MonthsUntil(targetMonth string, now time.Time) (int, error) {
	t, err := utils.ParseMonth(targetMonth)
	if err != nil {
		return 0, err
	}
	diff := (t.Year()-now.Year())*12 + int(t.Month()) - int(now.Month()) + 1
	if diff < 1 {
		return 1, nil
	}
	return diff, nil
}

// GoalInput describes the wizard input for a goal plan
type GoalInput struct {
	Type              string               `json:"type"`
	Title             string               `json:"title"`
	Price             float64              `json:"price"`
	AnnualRatePct     float64              `json:"annualRatePct,omitempty"`
	TermMonths        int                  `json:"termMonths,omitempty"`
	IncomeMin         float64              `json:"incomeMin"`
	IncomeMax         float64              `json:"incomeMax"`
	Expenses          []models.ExpenseItem `json:"expenses,omitempty"`
	BaselineSavingsOn bool                 `json:"baselineSavingsOn"`
}

// BuildPlan assembles a goal plan from wizard input and the chosen strategy.
// Loan plans amortize the principal over the requested term; stepping plans
// grow from the chosen monthly base; everything else saves a flat amount.
func BuildPlan(input GoalInput, choice models.PlanChoice, now time.Time) (models.GoalPlan, error) {
	if input.Price < 0 {
		return models.GoalPlan{}, fmt.Errorf("goal price must not be negative, got %v", input.Price)
	}
	baseline := Baseline(input.IncomeMin, input.BaselineSavingsOn)
	leftover := Leftover(input.IncomeMin, input.Expenses, baseline)

	var (
		schedule []models.ScheduleRow
		err      error
	)
	switch {
	case input.Type == models.PlanLoan:
		schedule, err = BuildEMISchedule(input.Price, input.AnnualRatePct, input.TermMonths, choice.StartMonth)
		if err == nil {
			choice.Monthly = EMI(input.Price, input.AnnualRatePct, input.TermMonths)
		}
	case choice.Principle == models.PrincipleStepping:
		stepPct := choice.StepPct
		if stepPct == 0 {
			stepPct = DefaultStepPct
		}
		choice.StepPct = stepPct
		schedule, err = BuildStepping(input.Price, choice.StartMonth, choice.Monthly, stepPct)
	default:
		schedule, err = BuildFlat(input.Price, choice.StartMonth, choice.Monthly)
	}
	if err != nil {
		return models.GoalPlan{}, err
	}

	return models.GoalPlan{
		Type:              input.Type,
		Title:             input.Title,
		Price:             input.Price,
		AnnualRatePct:     input.AnnualRatePct,
		IncomeMin:         input.IncomeMin,
		IncomeMax:         input.IncomeMax,
		Expenses:          input.Expenses,
		BaselineSavingsOn: input.BaselineSavingsOn,
		Leftover:          leftover,
		Chosen:            choice,
		MonthsRequired:    len(schedule),
		Schedule:          schedule,
		CreatedAt:         now,
	}, nil
}

// GoalTips suggests adjustments based on the wizard input.
func GoalTips(input GoalInput) []string {
	var tips []string
	baseline := Baseline(input.IncomeMin, input.BaselineSavingsOn)
	expenses := SumExpenses(input.Expenses)
	leftover := Leftover(input.IncomeMin, input.Expenses, baseline)
	if baseline > 0 && baseline < input.IncomeMin*0.10 {
		tips = append(tips, "Try to save at least 10% as a baseline.")
	}
	if expenses > input.IncomeMin*0.55 {
		tips = append(tips, "Your fixed payments exceed ~55% of income; consider trimming Others.")
	}
	if leftover <= 0 {
		tips = append(tips, "Leftover is zero/negative. Reduce some expense or increase income range to start saving.")
	}
	if input.IncomeMax > input.IncomeMin {
		tips = append(tips, fmt.Sprintf("If income reaches ₹%v, add some of the difference to finish sooner.", input.IncomeMax))
	}
	return tips
}
