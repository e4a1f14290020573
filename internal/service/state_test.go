package service

import (
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/karthn/budget-service/internal/models"
	"github.com/karthn/budget-service/internal/repository"
)

func newTestStateManager(t *testing.T) (*StateManager, *Engine) {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	repo := repository.NewRepository(repository.NewMemoryStore())
	return NewStateManager(repo, logger), NewEngine(repo, logger)
}

func waitForSummary(t *testing.T, sub *Subscription) models.DashboardSummary {
	t.Helper()
	select {
	case sum := <-sub.C:
		return sum
	case <-time.After(2 * time.Second):
		t.Fatal("no dashboard emission within timeout")
		return models.DashboardSummary{}
	}
}

func TestStateManagerEmitsAfterSetMonth(t *testing.T) {
	mgr, engine := newTestStateManager(t)
	defer mgr.Close()
	seedMonth(t, engine, "2025-08", 45000, 12000)

	sub := mgr.Subscribe()
	defer sub.Close()

	if err := mgr.SetMonth("2025-08"); err != nil {
		t.Fatalf("SetMonth() error = %v", err)
	}
	sum := waitForSummary(t, sub)
	if sum.Month != "2025-08" {
		t.Fatalf("emitted month = %s, want 2025-08", sum.Month)
	}
	if sum.TotalIncome != 45000 || sum.TotalExpenses != 12000 {
		t.Fatalf("emitted totals = %v/%v, want 45000/12000", sum.TotalIncome, sum.TotalExpenses)
	}
}

func TestStateManagerRefreshEmitsUpdatedTotals(t *testing.T) {
	mgr, engine := newTestStateManager(t)
	defer mgr.Close()
	seedMonth(t, engine, "2025-08", 45000, 0)

	sub := mgr.Subscribe()
	defer sub.Close()

	if err := mgr.SetMonth("2025-08"); err != nil {
		t.Fatalf("SetMonth() error = %v", err)
	}
	waitForSummary(t, sub)

	seedMonth(t, engine, "2025-08", 6000, 0)
	mgr.Refresh()
	sum := waitForSummary(t, sub)
	if sum.TotalIncome != 51000 {
		t.Fatalf("refreshed totalIncome = %v, want 51000", sum.TotalIncome)
	}
}

func TestStateManagerRejectsBadMonth(t *testing.T) {
	mgr, _ := newTestStateManager(t)
	defer mgr.Close()
	if err := mgr.SetMonth("garbage"); !IsValidation(err) {
		t.Fatalf("SetMonth(garbage) error = %v, want validation error", err)
	}
}

func TestStateManagerDiscardsStaleGeneration(t *testing.T) {
	mgr, _ := newTestStateManager(t)
	defer mgr.Close()

	sub := mgr.Subscribe()
	defer sub.Close()

	mgr.mu.Lock()
	mgr.gen = 5
	mgr.mu.Unlock()

	// A commit from a superseded load must not reach subscribers.
	mgr.commit(4, models.DashboardSummary{Month: "2025-07"})
	select {
	case sum := <-sub.C:
		t.Fatalf("stale summary emitted: %+v", sum)
	case <-time.After(50 * time.Millisecond):
	}

	mgr.commit(5, models.DashboardSummary{Month: "2025-08"})
	sum := waitForSummary(t, sub)
	if sum.Month != "2025-08" {
		t.Fatalf("emitted month = %s, want 2025-08", sum.Month)
	}
}

func TestStateManagerLatestWinsOnSlowReader(t *testing.T) {
	mgr, _ := newTestStateManager(t)
	defer mgr.Close()

	sub := mgr.Subscribe()
	defer sub.Close()

	mgr.mu.Lock()
	mgr.gen = 1
	mgr.mu.Unlock()
	mgr.commit(1, models.DashboardSummary{Month: "2025-07"})

	mgr.mu.Lock()
	mgr.gen = 2
	mgr.mu.Unlock()
	mgr.commit(2, models.DashboardSummary{Month: "2025-08"})

	// The buffered slot holds only the newest summary.
	sum := waitForSummary(t, sub)
	if sum.Month != "2025-08" {
		t.Fatalf("slow reader got %s, want latest 2025-08", sum.Month)
	}
}

func TestSubscriptionCloseStopsDelivery(t *testing.T) {
	mgr, _ := newTestStateManager(t)
	defer mgr.Close()

	sub := mgr.Subscribe()
	sub.Close()

	mgr.mu.Lock()
	mgr.gen = 1
	subscribers := len(mgr.subs)
	mgr.mu.Unlock()
	if subscribers != 0 {
		t.Fatalf("subscriber map still holds %d entries after Close", subscribers)
	}

	mgr.commit(1, models.DashboardSummary{Month: "2025-08"})
	select {
	case sum := <-sub.C:
		t.Fatalf("closed subscription received %+v", sum)
	case <-time.After(50 * time.Millisecond):
	}
}
