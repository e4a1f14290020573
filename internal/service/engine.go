package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/karthn/budget-service/internal/models"
	"github.com/karthn/budget-service/internal/repository"
	"github.com/karthn/budget-service/internal/utils"
)

// Engine owns the reconciliation rules between receivables, their shadow
// expenses and resulting income postings, plus month carry-forward.
type Engine struct {
	repo *repository.Repository
	log  *logrus.Logger
}

// NewEngine initializes the reconciliation engine
func NewEngine(repo *repository.Repository, log *logrus.Logger) *Engine {
	return &Engine{repo: repo, log: log}
}

// AddIncome records a user income entry
func (s *Engine) AddIncome(ctx context.Context, rec models.IncomeRecord) (models.IncomeRecord, error) {
	if rec.Amount < 0 {
		return models.IncomeRecord{}, &ValidationError{Rule: "income amount must not be negative"}
	}
	if _, err := utils.ParseMonth(rec.Month); err != nil {
		return models.IncomeRecord{}, &ValidationError{Rule: err.Error()}
	}
	now := time.Now()
	if rec.Date.IsZero() {
		rec.Date = now
	}
	rec.CreatedAt = now
	// User entries are never system generated, whatever the caller sent.
	rec.IsSystemGenerated = false
	rec.IsCarryForward = false

	saved, err := s.repo.AddIncome(ctx, rec)
	if err != nil {
		return models.IncomeRecord{}, err
	}
	s.log.Infof("Income recorded for %s: %s %.2f", saved.Month, saved.Source, saved.Amount)
	return saved, nil
}

// UpdateIncome edits a user income entry. System-generated postings are not
// user-editable.
func (s *Engine) UpdateIncome(ctx context.Context, id string, fields map[string]any) error {
	rec, err := s.repo.GetIncome(ctx, id)
	if err != nil {
		return err
	}
	if rec.IsSystemGenerated {
		return &GuardViolation{Rule: "system-generated transactions cannot be edited"}
	}
	return s.repo.UpdateIncome(ctx, id, fields)
}

// DeleteIncome removes a user income entry. System-generated postings are
// protected.
func (s *Engine) DeleteIncome(ctx context.Context, id string) error {
	rec, err := s.repo.GetIncome(ctx, id)
	if err != nil {
		return err
	}
	if rec.IsSystemGenerated {
		return &GuardViolation{Rule: "system-generated transactions cannot be deleted"}
	}
	return s.repo.DeleteIncome(ctx, id)
}

// AddExpense records a user expense entry
func (s *Engine) AddExpense(ctx context.Context, rec models.ExpenseRecord) (models.ExpenseRecord, error) {
	if rec.Amount < 0 {
		return models.ExpenseRecord{}, &ValidationError{Rule: "expense amount must not be negative"}
	}
	if _, err := utils.ParseMonth(rec.Month); err != nil {
		return models.ExpenseRecord{}, &ValidationError{Rule: err.Error()}
	}
	if rec.Date.IsZero() {
		rec.Date = time.Now()
	}
	if rec.Status == "" {
		rec.Status = models.ExpenseActive
	}
	saved, err := s.repo.AddExpense(ctx, rec)
	if err != nil {
		return models.ExpenseRecord{}, err
	}
	s.log.Infof("Expense recorded for %s: %s %.2f", saved.Month, saved.Description, saved.Amount)
	return saved, nil
}

// UpdateExpense edits an expense entry
func (s *Engine) UpdateExpense(ctx context.Context, id string, fields map[string]any) error {
	return s.repo.UpdateExpense(ctx, id, fields)
}

// DeleteExpense removes an expense entry
func (s *Engine) DeleteExpense(ctx context.Context, id string) error {
	return s.repo.DeleteExpense(ctx, id)
}

// AddUpcoming records a scheduled payment
func (s *Engine) AddUpcoming(ctx context.Context, rec models.UpcomingPayment) (models.UpcomingPayment, error) {
	if rec.Amount < 0 {
		return models.UpcomingPayment{}, &ValidationError{Rule: "payment amount must not be negative"}
	}
	if _, err := utils.ParseMonth(rec.Month); err != nil {
		return models.UpcomingPayment{}, &ValidationError{Rule: err.Error()}
	}
	return s.repo.AddUpcoming(ctx, rec)
}

// DeleteUpcoming removes a scheduled payment
func (s *Engine) DeleteUpcoming(ctx context.Context, id string) error {
	return s.repo.DeleteUpcoming(ctx, id)
}

// MarkUpcomingPaid converts an upcoming payment into an expense for the given
// month and removes it from the upcoming list.
func (s *Engine) MarkUpcomingPaid(ctx context.Context, id, month string) (models.ExpenseRecord, error) {
	if _, err := utils.ParseMonth(month); err != nil {
		return models.ExpenseRecord{}, &ValidationError{Rule: err.Error()}
	}
	payment, err := s.repo.GetUpcoming(ctx, id)
	if err != nil {
		return models.ExpenseRecord{}, err
	}
	expense, err := s.repo.AddExpense(ctx, models.ExpenseRecord{
		Description: payment.Description,
		Amount:      payment.Amount,
		Category:    payment.Category,
		Month:       month,
		Date:        time.Now(),
		Status:      models.ExpenseActive,
	})
	if err != nil {
		return models.ExpenseRecord{}, err
	}
	if err := s.repo.DeleteUpcoming(ctx, id); err != nil {
		return expense, fmt.Errorf("payment %s: expense posted but upcoming entry not removed: %w", id, err)
	}
	s.log.Infof("Upcoming payment %s converted to expense for %s", id, month)
	return expense, nil
}
