package planner

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/karthn/budget-service/internal/models"
)

// allocationOrder is the canonical category order used when applying ratios.
var allocationOrder = []models.BudgetType{
	models.BudgetHouse,
	models.BudgetPersonal,
	models.BudgetLoan,
	models.BudgetTrip,
	models.BudgetOthers,
	models.BudgetSavings,
}

// AllocatorConfig carries the ratio and constraint tables for budget
// allocation. It is passed in explicitly; there is no package-level state.
type AllocatorConfig struct {
	// Ratios are the base share per category, summing to 1.0.
	Ratios map[models.BudgetType]float64
	// PriorityBoost is added to a category's ratio per occurrence in the
	// priority list. Occurrences accumulate and are not capped.
	PriorityBoost float64
	// MinSavingsRate is the savings floor as a fraction of income.
	MinSavingsRate float64
	// DrainOrder is the order categories are trimmed when the rounded total
	// exceeds income.
	DrainOrder []models.BudgetType
}

// DefaultAllocatorConfig returns the standard ratio tables: House 30%,
// Loan 20%, Personal 15%, Trip 10%, Others 5%, Savings 20%.
func DefaultAllocatorConfig() AllocatorConfig {
	return AllocatorConfig{
		Ratios: map[models.BudgetType]float64{
			models.BudgetHouse:    0.30,
			models.BudgetLoan:     0.20,
			models.BudgetPersonal: 0.15,
			models.BudgetTrip:     0.10,
			models.BudgetOthers:   0.05,
			models.BudgetSavings:  0.20,
		},
		PriorityBoost:  0.05,
		MinSavingsRate: 0.10,
		DrainOrder: []models.BudgetType{
			models.BudgetOthers,
			models.BudgetTrip,
			models.BudgetPersonal,
			models.BudgetHouse,
			models.BudgetLoan,
			models.BudgetSavings,
		},
	}
}

// Allocate distributes a monthly income across the six categories. Fixed
// amounts are locked first, the remainder is split by the boosted and
// renormalized ratios, and the savings floor plus overflow trim are applied
// last. Negative income is clamped to zero.
func Allocate(cfg AllocatorConfig, income float64, priorities []models.BudgetType, fixed map[models.BudgetType]float64) models.BudgetCategories {
	if income < 0 {
		income = 0
	}

	var fixedSum float64
	for _, v := range fixed {
		fixedSum += v
	}
	remaining := income - fixedSum
	if remaining < 0 {
		remaining = 0
	}

	boost := decimal.NewFromFloat(cfg.PriorityBoost)
	boosted := make(map[models.BudgetType]decimal.Decimal, len(allocationOrder))
	sumBoosted := decimal.Zero
	for _, cat := range allocationOrder {
		b := decimal.NewFromFloat(cfg.Ratios[cat])
		boosted[cat] = b
		sumBoosted = sumBoosted.Add(b)
	}
	for _, p := range priorities {
		if _, ok := boosted[p]; !ok {
			continue
		}
		boosted[p] = boosted[p].Add(boost)
		sumBoosted = sumBoosted.Add(boost)
	}

	remainingDec := decimal.NewFromFloat(remaining)
	var out models.BudgetCategories
	for _, cat := range allocationOrder {
		if cat == models.BudgetSavings {
			continue
		}
		share := remainingDec.Mul(boosted[cat]).Div(sumBoosted)
		amt := share.Add(decimal.NewFromFloat(fixed[cat])).Round(0).InexactFloat64()
		out.Set(cat, amt)
	}

	minSavings := decimal.NewFromFloat(income).Mul(decimal.NewFromFloat(cfg.MinSavingsRate)).Round(0).InexactFloat64()
	savingsAuto := remainingDec.Mul(boosted[models.BudgetSavings]).Div(sumBoosted).Round(0).InexactFloat64()
	savings := minSavings
	if savingsAuto > savings {
		savings = savingsAuto
	}
	if f := fixed[models.BudgetSavings]; f > savings {
		savings = f
	}
	out.Savings = savings

	// Rounding and the savings floor can push the total past income; trim the
	// excess in drain order, never below zero.
	if over := out.Total() - income; over > 0 {
		left := over
		for _, cat := range cfg.DrainOrder {
			cut := out.Get(cat)
			if cut > left {
				cut = left
			}
			out.Set(cat, out.Get(cat)-cut)
			left -= cut
			if left <= 0 {
				break
			}
		}
	}

	return out
}

// BuildBudgetPlan allocates and wraps the result as a persisted monthly plan.
func BuildBudgetPlan(cfg AllocatorConfig, month string, income float64, priorities []models.BudgetType, fixed map[models.BudgetType]float64, now time.Time) models.BudgetPlan {
	return models.BudgetPlan{
		ID:         month,
		Month:      month,
		Income:     income,
		Categories: Allocate(cfg, income, priorities, fixed),
		Priorities: priorities,
		Fixed:      fixed,
		Generated:  true,
		CreatedAt:  now,
	}
}

// BudgetTips suggests adjustments based on an allocated plan.
func BudgetTips(plan models.BudgetPlan) []string {
	var tips []string
	income := plan.Income
	c := plan.Categories
	if c.Savings < income*0.10 {
		tips = append(tips, "Try to save at least 10% of your income.")
	}
	if c.Loan > income*0.35 {
		tips = append(tips, "Loan/EMI seems high; consider refinancing or extra payments when possible.")
	}
	if c.Trip > income*0.15 {
		tips = append(tips, "Trip/Travel is high; reduce discretionary travel this month.")
	}
	if c.House+c.Loan > income*0.55 {
		tips = append(tips, "Housing + EMIs exceed 55%; review rent/EMI obligations.")
	}
	for _, p := range plan.Priorities {
		if p == models.BudgetSavings && c.Savings < income*0.15 {
			tips = append(tips, "You marked Savings as a priority; consider raising it to 15%.")
			break
		}
	}
	return tips
}
