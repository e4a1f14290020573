package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/karthn/budget-service/internal/models"
	"github.com/karthn/budget-service/internal/repository"
)

func newTestEngine(t *testing.T) (*Engine, *repository.Repository) {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	repo := repository.NewRepository(repository.NewMemoryStore())
	return NewEngine(repo, logger), repo
}

func TestAddReceivableCreatesShadowExpense(t *testing.T) {
	ctx := context.Background()
	engine, repo := newTestEngine(t)

	rec, err := engine.AddReceivable(ctx, "Rent deposit", 5000, "2025-08")
	if err != nil {
		t.Fatalf("AddReceivable() error = %v", err)
	}
	if rec.Status != models.ReceivablePending {
		t.Errorf("status = %s, want PENDING", rec.Status)
	}

	expenses, err := repo.ExpensesByMonth(ctx, "2025-08")
	if err != nil {
		t.Fatalf("ExpensesByMonth() error = %v", err)
	}
	if len(expenses) != 1 {
		t.Fatalf("got %d expenses, want 1 shadow expense", len(expenses))
	}
	shadow := expenses[0]
	if shadow.Description != "Lent: Rent deposit" {
		t.Errorf("description = %q", shadow.Description)
	}
	if shadow.Category != models.CategoryLent || shadow.Amount != 5000 {
		t.Errorf("shadow expense = %+v", shadow)
	}
	if shadow.LinkedReceivableID != rec.ID {
		t.Errorf("linkedReceivableId = %q, want %q", shadow.LinkedReceivableID, rec.ID)
	}
	if shadow.Status != models.ExpenseActive {
		t.Errorf("shadow status = %s, want ACTIVE", shadow.Status)
	}
}

func TestAddReceivableValidation(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(t)

	if _, err := engine.AddReceivable(ctx, "", 100, "2025-08"); !IsValidation(err) {
		t.Errorf("empty title error = %v, want validation error", err)
	}
	if _, err := engine.AddReceivable(ctx, "Lunch", 0, "2025-08"); !IsValidation(err) {
		t.Errorf("zero amount error = %v, want validation error", err)
	}
	if _, err := engine.AddReceivable(ctx, "Lunch", 100, "garbage"); !IsValidation(err) {
		t.Errorf("bad month error = %v, want validation error", err)
	}
}

func TestSettleReceivable(t *testing.T) {
	ctx := context.Background()
	engine, repo := newTestEngine(t)

	rec, err := engine.AddReceivable(ctx, "Rent deposit", 5000, "2025-08")
	if err != nil {
		t.Fatalf("AddReceivable() error = %v", err)
	}
	if err := engine.SettleReceivable(ctx, rec.ID, "2025-09"); err != nil {
		t.Fatalf("SettleReceivable() error = %v", err)
	}

	got, err := repo.GetReceivable(ctx, rec.ID)
	if err != nil {
		t.Fatalf("GetReceivable() error = %v", err)
	}
	if got.Status != models.ReceivablePaid {
		t.Errorf("receivable status = %s, want PAID", got.Status)
	}

	incomes, err := repo.IncomesByMonth(ctx, "2025-09")
	if err != nil {
		t.Fatalf("IncomesByMonth() error = %v", err)
	}
	if len(incomes) != 1 {
		t.Fatalf("got %d incomes, want 1 settlement posting", len(incomes))
	}
	posted := incomes[0]
	if posted.Source != "Received from Rent deposit" || posted.Amount != 5000 {
		t.Errorf("settlement income = %+v", posted)
	}
	if !posted.IsSystemGenerated {
		t.Error("settlement income not marked system-generated")
	}

	expenses, err := repo.ExpensesByMonth(ctx, "2025-08")
	if err != nil {
		t.Fatalf("ExpensesByMonth() error = %v", err)
	}
	if len(expenses) != 1 {
		t.Fatalf("linked expense deleted, want it kept as history")
	}
	if expenses[0].Status != models.ExpensePaid {
		t.Errorf("linked expense status = %s, want PAID", expenses[0].Status)
	}
}

func TestSettleReceivableTwiceIsGuarded(t *testing.T) {
	ctx := context.Background()
	engine, repo := newTestEngine(t)

	rec, err := engine.AddReceivable(ctx, "Lunch", 300, "2025-08")
	if err != nil {
		t.Fatalf("AddReceivable() error = %v", err)
	}
	if err := engine.SettleReceivable(ctx, rec.ID, "2025-08"); err != nil {
		t.Fatalf("first settle error = %v", err)
	}
	if err := engine.SettleReceivable(ctx, rec.ID, "2025-08"); !IsGuardViolation(err) {
		t.Fatalf("second settle error = %v, want guard violation", err)
	}

	incomes, err := repo.IncomesByMonth(ctx, "2025-08")
	if err != nil {
		t.Fatalf("IncomesByMonth() error = %v", err)
	}
	if len(incomes) != 1 {
		t.Fatalf("got %d incomes after double settle, want 1", len(incomes))
	}
}

func TestRemoveReceivablePendingCascades(t *testing.T) {
	ctx := context.Background()
	engine, repo := newTestEngine(t)

	rec, err := engine.AddReceivable(ctx, "Lunch", 300, "2025-08")
	if err != nil {
		t.Fatalf("AddReceivable() error = %v", err)
	}
	if err := engine.RemoveReceivable(ctx, rec.ID); err != nil {
		t.Fatalf("RemoveReceivable() error = %v", err)
	}

	if _, err := repo.GetReceivable(ctx, rec.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("receivable still present after delete: %v", err)
	}
	expenses, err := repo.ExpensesByMonth(ctx, "2025-08")
	if err != nil {
		t.Fatalf("ExpensesByMonth() error = %v", err)
	}
	if len(expenses) != 0 {
		t.Errorf("linked expense survived delete: %+v", expenses)
	}
}

func TestRemoveReceivableSettledIsGuarded(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(t)

	rec, err := engine.AddReceivable(ctx, "Lunch", 300, "2025-08")
	if err != nil {
		t.Fatalf("AddReceivable() error = %v", err)
	}
	if err := engine.SettleReceivable(ctx, rec.ID, "2025-08"); err != nil {
		t.Fatalf("SettleReceivable() error = %v", err)
	}
	if err := engine.RemoveReceivable(ctx, rec.ID); !IsGuardViolation(err) {
		t.Fatalf("delete settled error = %v, want guard violation", err)
	}
}

func TestSettleReceivableLegacyDescriptionFallback(t *testing.T) {
	ctx := context.Background()
	engine, repo := newTestEngine(t)

	// Records created before the id link existed carry only the naming
	// convention.
	rec, err := repo.AddReceivable(ctx, models.ReceivableRecord{
		Title:  "Old loan",
		Amount: 1200,
		Month:  "2025-08",
		Status: models.ReceivablePending,
	})
	if err != nil {
		t.Fatalf("AddReceivable() error = %v", err)
	}
	legacy, err := repo.AddExpense(ctx, models.ExpenseRecord{
		Description: "Lent: Old loan",
		Amount:      1200,
		Category:    models.CategoryLent,
		Month:       "2025-08",
		Date:        time.Now(),
		Status:      models.ExpenseActive,
	})
	if err != nil {
		t.Fatalf("AddExpense() error = %v", err)
	}

	if err := engine.SettleReceivable(ctx, rec.ID, "2025-08"); err != nil {
		t.Fatalf("SettleReceivable() error = %v", err)
	}
	got, err := repo.GetExpense(ctx, legacy.ID)
	if err != nil {
		t.Fatalf("GetExpense() error = %v", err)
	}
	if got.Status != models.ExpensePaid {
		t.Errorf("legacy expense status = %s, want PAID via description fallback", got.Status)
	}
}

func TestSystemGeneratedIncomeIsProtected(t *testing.T) {
	ctx := context.Background()
	engine, repo := newTestEngine(t)

	rec, err := engine.AddReceivable(ctx, "Lunch", 300, "2025-08")
	if err != nil {
		t.Fatalf("AddReceivable() error = %v", err)
	}
	if err := engine.SettleReceivable(ctx, rec.ID, "2025-08"); err != nil {
		t.Fatalf("SettleReceivable() error = %v", err)
	}
	incomes, err := repo.IncomesByMonth(ctx, "2025-08")
	if err != nil {
		t.Fatalf("IncomesByMonth() error = %v", err)
	}
	posted := incomes[0]

	if err := engine.UpdateIncome(ctx, posted.ID, map[string]any{"amount": 1.0}); !IsGuardViolation(err) {
		t.Errorf("edit system income error = %v, want guard violation", err)
	}
	if err := engine.DeleteIncome(ctx, posted.ID); !IsGuardViolation(err) {
		t.Errorf("delete system income error = %v, want guard violation", err)
	}
}

func TestAddIncomeStripsSystemFlags(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(t)

	rec, err := engine.AddIncome(ctx, models.IncomeRecord{
		Source:            "Salary",
		Amount:            45000,
		Month:             "2025-08",
		IsSystemGenerated: true,
		IsCarryForward:    true,
	})
	if err != nil {
		t.Fatalf("AddIncome() error = %v", err)
	}
	if rec.IsSystemGenerated || rec.IsCarryForward {
		t.Errorf("user entry kept system flags: %+v", rec)
	}
}

func TestAddIncomeValidation(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(t)

	if _, err := engine.AddIncome(ctx, models.IncomeRecord{Source: "x", Amount: -1, Month: "2025-08"}); !IsValidation(err) {
		t.Errorf("negative amount error = %v, want validation error", err)
	}
	if _, err := engine.AddIncome(ctx, models.IncomeRecord{Source: "x", Amount: 1, Month: "bad"}); !IsValidation(err) {
		t.Errorf("bad month error = %v, want validation error", err)
	}
}

func TestMarkUpcomingPaid(t *testing.T) {
	ctx := context.Background()
	engine, repo := newTestEngine(t)

	payment, err := engine.AddUpcoming(ctx, models.UpcomingPayment{
		Description: "Insurance premium",
		Amount:      2000,
		Category:    "Bills",
		Month:       "2025-08",
		DueDate:     time.Now().Add(72 * time.Hour),
	})
	if err != nil {
		t.Fatalf("AddUpcoming() error = %v", err)
	}

	expense, err := engine.MarkUpcomingPaid(ctx, payment.ID, "2025-08")
	if err != nil {
		t.Fatalf("MarkUpcomingPaid() error = %v", err)
	}
	if expense.Description != "Insurance premium" || expense.Amount != 2000 {
		t.Errorf("converted expense = %+v", expense)
	}
	if expense.Status != models.ExpenseActive {
		t.Errorf("converted expense status = %s, want ACTIVE", expense.Status)
	}

	if _, err := repo.GetUpcoming(ctx, payment.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("upcoming entry still present after paid: %v", err)
	}
}
