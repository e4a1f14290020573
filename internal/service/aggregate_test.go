package service

import (
	"context"
	"testing"
	"time"

	"github.com/karthn/budget-service/internal/models"
)

func day(d int) time.Time {
	return time.Date(2025, time.August, d, 12, 0, 0, 0, time.UTC)
}

func TestSummarizeCategories(t *testing.T) {
	active := []models.ExpenseRecord{
		{Category: "Food", Amount: 3000},
		{Category: "Food", Amount: 1000},
		{Category: "Travel", Amount: 2000},
		{Category: "", Amount: 500},
	}
	summary := SummarizeCategories(active)
	if len(summary) != 3 {
		t.Fatalf("got %d categories, want 3", len(summary))
	}
	if summary[0].Name != "Food" || summary[0].Amount != 4000 || summary[0].Percentage != 100 {
		t.Errorf("top category = %+v, want Food 4000 at 100%%", summary[0])
	}
	if summary[1].Name != "Travel" || summary[1].Percentage != 50 {
		t.Errorf("second category = %+v, want Travel at 50%%", summary[1])
	}
	if summary[2].Name != "Others" || summary[2].Amount != 500 {
		t.Errorf("blank category not bucketed into Others: %+v", summary[2])
	}
}

func TestDailySeries(t *testing.T) {
	active := []models.ExpenseRecord{
		{Amount: 100, Date: day(1)},
		{Amount: 50, Date: day(1)},
		{Amount: 200, Date: day(15)},
	}
	daily, cumulative, err := DailySeries("2025-08", active)
	if err != nil {
		t.Fatalf("DailySeries() error = %v", err)
	}
	if len(daily) != 31 || len(cumulative) != 31 {
		t.Fatalf("series lengths = %d/%d, want 31", len(daily), len(cumulative))
	}
	if daily[0] != 150 || daily[14] != 200 {
		t.Errorf("daily buckets = %v/%v, want 150/200", daily[0], daily[14])
	}
	if cumulative[13] != 150 || cumulative[30] != 350 {
		t.Errorf("cumulative = %v/%v, want 150/350", cumulative[13], cumulative[30])
	}
}

func TestBuildDashboardTotals(t *testing.T) {
	now := day(20)
	incomes := []models.IncomeRecord{
		{Amount: 45000, Date: day(1)},
		{Amount: 6000, Date: day(1)},
	}
	expenses := []models.ExpenseRecord{
		{Amount: 12000, Category: "House", Date: day(2), Status: models.ExpenseActive},
		{Amount: 5000, Category: models.CategoryLent, Date: day(3), Status: models.ExpensePaid},
	}
	receivables := []models.ReceivableRecord{
		{Amount: 5000, Status: models.ReceivablePaid},
		{Amount: 800, Status: models.ReceivablePending},
	}

	sum, err := BuildDashboard("2025-08", now, incomes, expenses, receivables, "2025-07", nil, nil)
	if err != nil {
		t.Fatalf("BuildDashboard() error = %v", err)
	}
	if sum.TotalIncome != 51000 {
		t.Errorf("totalIncome = %v, want 51000", sum.TotalIncome)
	}
	// PAID expenses are history, not spend.
	if sum.TotalExpenses != 12000 {
		t.Errorf("totalExpenses = %v, want 12000", sum.TotalExpenses)
	}
	if sum.AvailableBalance != 39000 {
		t.Errorf("availableBalance = %v, want 39000", sum.AvailableBalance)
	}
	// Receivables count regardless of status.
	if sum.ReceivablesTotal != 5800 {
		t.Errorf("receivablesTotal = %v, want 5800", sum.ReceivablesTotal)
	}
	if len(sum.Comparison.LastMonth) != 31 {
		t.Errorf("previous-month series length = %d, want 31", len(sum.Comparison.LastMonth))
	}
}

func TestBuildDashboardRecentLists(t *testing.T) {
	now := day(20)
	var incomes []models.IncomeRecord
	for i := 1; i <= 5; i++ {
		incomes = append(incomes, models.IncomeRecord{Source: "inc", Amount: float64(i), Date: day(i)})
	}
	var expenses []models.ExpenseRecord
	for i := 1; i <= 7; i++ {
		expenses = append(expenses, models.ExpenseRecord{Amount: float64(i), Date: day(i), Status: models.ExpenseActive})
	}

	sum, err := BuildDashboard("2025-08", now, incomes, expenses, nil, "2025-07", nil, nil)
	if err != nil {
		t.Fatalf("BuildDashboard() error = %v", err)
	}
	if len(sum.RecentIncome) != 3 || sum.RecentIncome[0].Amount != 5 {
		t.Errorf("recentIncome = %+v, want 3 newest first", sum.RecentIncome)
	}
	if len(sum.RecentExpenses) != 5 || sum.RecentExpenses[0].Amount != 7 {
		t.Errorf("recentExpenses = %+v, want 5 newest first", sum.RecentExpenses)
	}
}

func TestBuildDashboardUpcomingFilterAndSort(t *testing.T) {
	now := day(20)
	upcoming := []models.UpcomingPayment{
		{Description: "overdue", DueDate: day(10)},
		{Description: "soon", DueDate: day(22)},
		{Description: "later", DueDate: day(29)},
	}
	sum, err := BuildDashboard("2025-08", now, nil, nil, nil, "2025-07", nil, upcoming)
	if err != nil {
		t.Fatalf("BuildDashboard() error = %v", err)
	}
	if len(sum.Upcoming) != 2 {
		t.Fatalf("got %d upcoming entries, want 2 (overdue dropped)", len(sum.Upcoming))
	}
	if sum.Upcoming[0].Description != "soon" || sum.Upcoming[1].Description != "later" {
		t.Errorf("upcoming order = %+v, want soonest first", sum.Upcoming)
	}
	if sum.Upcoming[0].DueIn != 2 {
		t.Errorf("dueIn = %d, want 2", sum.Upcoming[0].DueIn)
	}
}

func TestEngineDashboardJoinsMonthSets(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(t)
	seedMonth(t, engine, "2025-07", 10000, 4000)
	seedMonth(t, engine, "2025-08", 45000, 12000)
	if _, err := engine.AddReceivable(ctx, "Lunch", 800, "2025-08"); err != nil {
		t.Fatalf("AddReceivable() error = %v", err)
	}

	sum, err := engine.Dashboard(ctx, "2025-08", day(20))
	if err != nil {
		t.Fatalf("Dashboard() error = %v", err)
	}
	if sum.TotalIncome != 45000 {
		t.Errorf("totalIncome = %v, want 45000 (other months excluded)", sum.TotalIncome)
	}
	// 12000 rent plus the 800 shadow expense.
	if sum.TotalExpenses != 12800 {
		t.Errorf("totalExpenses = %v, want 12800", sum.TotalExpenses)
	}
	if sum.ReceivablesTotal != 800 {
		t.Errorf("receivablesTotal = %v, want 800", sum.ReceivablesTotal)
	}
}
