package service

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/karthn/budget-service/internal/models"
	"github.com/karthn/budget-service/internal/utils"
)

// ActiveExpenses filters out settled expenses; they stay on record but no
// longer count toward current spend.
func ActiveExpenses(expenses []models.ExpenseRecord) []models.ExpenseRecord {
	active := make([]models.ExpenseRecord, 0, len(expenses))
	for _, exp := range expenses {
		if exp.Active() {
			active = append(active, exp)
		}
	}
	return active
}

// SummarizeCategories groups active expenses by category, sorted descending
// by amount. A blank category falls into the Others bucket; percentage is
// relative to the largest group.
func SummarizeCategories(active []models.ExpenseRecord) []models.CategorySummary {
	groups := map[string]float64{}
	for _, exp := range active {
		cat := exp.Category
		if cat == "" {
			cat = "Others"
		}
		groups[cat] += exp.Amount
	}
	var max float64
	for _, amount := range groups {
		if amount > max {
			max = amount
		}
	}
	summary := make([]models.CategorySummary, 0, len(groups))
	for cat, amount := range groups {
		var pct float64
		if max > 0 {
			pct = math.Round(amount / max * 100)
		}
		summary = append(summary, models.CategorySummary{Name: cat, Amount: amount, Percentage: pct})
	}
	sort.Slice(summary, func(i, j int) bool {
		if summary[i].Amount != summary[j].Amount {
			return summary[i].Amount > summary[j].Amount
		}
		return summary[i].Name < summary[j].Name
	})
	return summary
}

// DailySeries buckets active expense amounts by calendar day and returns the
// per-day totals plus the running cumulative series.
func DailySeries(month string, active []models.ExpenseRecord) (daily, cumulative []float64, err error) {
	days, err := utils.DaysIn(month)
	if err != nil {
		return nil, nil, err
	}
	daily = make([]float64, days)
	for _, exp := range active {
		day := exp.Date.Day()
		if day >= 1 && day <= days {
			daily[day-1] += exp.Amount
		}
	}
	cumulative = make([]float64, days)
	var running float64
	for i, v := range daily {
		running += v
		cumulative[i] = running
	}
	return daily, cumulative, nil
}

func dueInDays(due, now time.Time) int {
	return int(math.Ceil(due.Sub(now).Hours() / 24))
}

// BuildDashboard derives the month's totals, category breakdown and series
// from its record sets. Receivables count toward the total whatever their
// status; only active expenses count toward spend.
func BuildDashboard(
	month string,
	now time.Time,
	incomes []models.IncomeRecord,
	expenses []models.ExpenseRecord,
	receivables []models.ReceivableRecord,
	prevMonth string,
	prevExpenses []models.ExpenseRecord,
	upcoming []models.UpcomingPayment,
) (models.DashboardSummary, error) {
	active := ActiveExpenses(expenses)

	var totalIncome, totalExpenses, receivablesTotal float64
	for _, rec := range incomes {
		totalIncome += rec.Amount
	}
	for _, exp := range active {
		totalExpenses += exp.Amount
	}
	for _, rec := range receivables {
		receivablesTotal += rec.Amount
	}

	daily, cumulative, err := DailySeries(month, active)
	if err != nil {
		return models.DashboardSummary{}, err
	}
	_, prevCumulative, err := DailySeries(prevMonth, ActiveExpenses(prevExpenses))
	if err != nil {
		return models.DashboardSummary{}, err
	}

	recentIncome := append([]models.IncomeRecord(nil), incomes...)
	sort.Slice(recentIncome, func(i, j int) bool { return recentIncome[i].Date.After(recentIncome[j].Date) })
	if len(recentIncome) > 3 {
		recentIncome = recentIncome[:3]
	}

	recentExpenses := append([]models.ExpenseRecord(nil), expenses...)
	sort.Slice(recentExpenses, func(i, j int) bool { return recentExpenses[i].Date.After(recentExpenses[j].Date) })
	if len(recentExpenses) > 5 {
		recentExpenses = recentExpenses[:5]
	}

	due := make([]models.UpcomingDue, 0, len(upcoming))
	for _, payment := range upcoming {
		d := dueInDays(payment.DueDate, now)
		if d >= 0 {
			due = append(due, models.UpcomingDue{UpcomingPayment: payment, DueIn: d})
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].DueIn < due[j].DueIn })

	return models.DashboardSummary{
		Month:            month,
		TotalIncome:      totalIncome,
		TotalExpenses:    totalExpenses,
		AvailableBalance: totalIncome - totalExpenses,
		ReceivablesTotal: receivablesTotal,
		Categories:       SummarizeCategories(active),
		DailyTotals:      daily,
		CumulativeTotals: cumulative,
		Comparison: models.ComparisonSeries{
			ThisMonth: cumulative,
			LastMonth: prevCumulative,
		},
		RecentIncome:     recentIncome,
		RecentExpenses:   recentExpenses,
		Upcoming:         due,
	}, nil
}

// Dashboard fetches a month's record sets and derives its summary. The
// carry-forward check for the month must have completed before this runs.
func (s *Engine) Dashboard(ctx context.Context, month string, now time.Time) (models.DashboardSummary, error) {
	prevMonth, err := utils.PrevMonth(month)
	if err != nil {
		return models.DashboardSummary{}, &ValidationError{Rule: err.Error()}
	}
	incomes, err := s.repo.IncomesByMonth(ctx, month)
	if err != nil {
		return models.DashboardSummary{}, err
	}
	expenses, err := s.repo.ExpensesByMonth(ctx, month)
	if err != nil {
		return models.DashboardSummary{}, err
	}
	receivables, err := s.repo.ReceivablesByMonth(ctx, month)
	if err != nil {
		return models.DashboardSummary{}, err
	}
	prevExpenses, err := s.repo.ExpensesByMonth(ctx, prevMonth)
	if err != nil {
		return models.DashboardSummary{}, err
	}
	upcoming, err := s.repo.UpcomingByMonth(ctx, month)
	if err != nil {
		return models.DashboardSummary{}, err
	}
	return BuildDashboard(month, now, incomes, expenses, receivables, prevMonth, prevExpenses, upcoming)
}
