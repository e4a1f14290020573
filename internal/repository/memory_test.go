package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/karthn/budget-service/internal/models"
)

func TestMemoryStoreInsertQueryByMonth(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	repo := NewRepository(store)

	for _, month := range []string{"2025-07", "2025-08", "2025-08"} {
		if _, err := repo.AddIncome(ctx, models.IncomeRecord{Source: "Salary", Amount: 100, Month: month, Date: time.Now()}); err != nil {
			t.Fatalf("AddIncome() error = %v", err)
		}
	}

	recs, err := repo.IncomesByMonth(ctx, "2025-08")
	if err != nil {
		t.Fatalf("IncomesByMonth() error = %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records for 2025-08, want 2", len(recs))
	}
	for _, rec := range recs {
		if rec.ID == "" {
			t.Fatal("record returned without an id")
		}
	}
}

func TestMemoryStoreUpdateMergesFields(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(NewMemoryStore())

	exp, err := repo.AddExpense(ctx, models.ExpenseRecord{
		Description: "Lent: Rent deposit",
		Amount:      5000,
		Category:    models.CategoryLent,
		Month:       "2025-08",
		Date:        time.Now(),
		Status:      models.ExpenseActive,
	})
	if err != nil {
		t.Fatalf("AddExpense() error = %v", err)
	}

	if err := repo.UpdateExpense(ctx, exp.ID, map[string]any{"status": models.ExpensePaid}); err != nil {
		t.Fatalf("UpdateExpense() error = %v", err)
	}

	got, err := repo.GetExpense(ctx, exp.ID)
	if err != nil {
		t.Fatalf("GetExpense() error = %v", err)
	}
	if got.Status != models.ExpensePaid {
		t.Errorf("status = %s, want PAID", got.Status)
	}
	if got.Amount != 5000 || got.Description != "Lent: Rent deposit" {
		t.Errorf("untouched fields changed: %+v", got)
	}
}

func TestMemoryStoreDeleteAndNotFound(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(NewMemoryStore())

	rec, err := repo.AddReceivable(ctx, models.ReceivableRecord{Title: "Lunch", Amount: 300, Month: "2025-08", Status: models.ReceivablePending})
	if err != nil {
		t.Fatalf("AddReceivable() error = %v", err)
	}
	if err := repo.DeleteReceivable(ctx, rec.ID); err != nil {
		t.Fatalf("DeleteReceivable() error = %v", err)
	}
	if _, err := repo.GetReceivable(ctx, rec.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get after delete error = %v, want ErrNotFound", err)
	}
	if err := repo.DeleteReceivable(ctx, rec.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("double delete error = %v, want ErrNotFound", err)
	}
	if err := repo.UpdateReceivable(ctx, "missing", map[string]any{"status": "PAID"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("update missing error = %v, want ErrNotFound", err)
	}
}

func TestCarryForwardMetadataRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(NewMemoryStore())

	meta, err := repo.CarryForwardMetadata(ctx)
	if err != nil {
		t.Fatalf("CarryForwardMetadata() error = %v", err)
	}
	if len(meta.ProcessedMonths) != 0 {
		t.Fatalf("fresh store has processed months: %v", meta.ProcessedMonths)
	}

	meta.ProcessedMonths["2025-08"] = true
	meta.LastUpdated = time.Now()
	if err := repo.SetCarryForwardMetadata(ctx, meta); err != nil {
		t.Fatalf("SetCarryForwardMetadata() error = %v", err)
	}

	got, err := repo.CarryForwardMetadata(ctx)
	if err != nil {
		t.Fatalf("CarryForwardMetadata() error = %v", err)
	}
	if !got.ProcessedMonths["2025-08"] {
		t.Fatal("processed flag lost on round trip")
	}
}

func TestGoalPlansSortedNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(NewMemoryStore())

	base := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i, title := range []string{"old", "mid", "new"} {
		if _, err := repo.AddGoalPlan(ctx, models.GoalPlan{Title: title, CreatedAt: base.AddDate(0, 0, i)}); err != nil {
			t.Fatalf("AddGoalPlan() error = %v", err)
		}
	}
	plans, err := repo.GoalPlans(ctx)
	if err != nil {
		t.Fatalf("GoalPlans() error = %v", err)
	}
	if len(plans) != 3 || plans[0].Title != "new" || plans[2].Title != "old" {
		t.Fatalf("plans not sorted newest first: %+v", plans)
	}
}
