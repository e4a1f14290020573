package service

import (
	"context"
	"fmt"
	"time"

	"github.com/karthn/budget-service/internal/models"
	"github.com/karthn/budget-service/internal/utils"
)

// lentDescription is the display convention for a receivable's shadow
// expense. The authoritative link is the linkedReceivableId field; the
// description match remains as a fallback for records created before the
// field existed.
func lentDescription(title string) string {
	return "Lent: " + title
}

// AddReceivable records money lent out: a PENDING receivable plus its shadow
// expense in the Lent category, both in the same month.
func (s *Engine) AddReceivable(ctx context.Context, title string, amount float64, month string) (models.ReceivableRecord, error) {
	if title == "" || amount <= 0 {
		return models.ReceivableRecord{}, &ValidationError{Rule: "receivable needs a title and a positive amount"}
	}
	if _, err := utils.ParseMonth(month); err != nil {
		return models.ReceivableRecord{}, &ValidationError{Rule: err.Error()}
	}
	now := time.Now()
	rec, err := s.repo.AddReceivable(ctx, models.ReceivableRecord{
		Title:     title,
		Amount:    amount,
		Month:     month,
		Status:    models.ReceivablePending,
		CreatedAt: now,
	})
	if err != nil {
		return models.ReceivableRecord{}, err
	}
	_, err = s.repo.AddExpense(ctx, models.ExpenseRecord{
		Description:        lentDescription(title),
		Amount:             amount,
		Category:           models.CategoryLent,
		Month:              month,
		Date:               now,
		Status:             models.ExpenseActive,
		LinkedReceivableID: rec.ID,
	})
	if err != nil {
		return rec, fmt.Errorf("receivable %s created but shadow expense failed: %w", rec.ID, err)
	}
	s.log.Infof("Receivable recorded for %s: %s %.2f", month, title, amount)
	return rec, nil
}

// findLinkedExpense locates the shadow expense for a receivable, by id link
// first and by description convention as a fallback.
func (s *Engine) findLinkedExpense(ctx context.Context, rec models.ReceivableRecord) (models.ExpenseRecord, bool, error) {
	expenses, err := s.repo.ExpensesByMonth(ctx, rec.Month)
	if err != nil {
		return models.ExpenseRecord{}, false, err
	}
	for _, exp := range expenses {
		if exp.LinkedReceivableID == rec.ID {
			return exp, true, nil
		}
	}
	for _, exp := range expenses {
		if exp.LinkedReceivableID == "" && exp.Description == lentDescription(rec.Title) {
			return exp, true, nil
		}
	}
	return models.ExpenseRecord{}, false, nil
}

// SettleReceivable marks a receivable repaid: the receivable becomes PAID,
// a system-generated income is posted for the given month, and the linked
// expense is flipped to PAID but kept for history. Settling twice is a
// guarded no-op.
func (s *Engine) SettleReceivable(ctx context.Context, id, month string) error {
	if _, err := utils.ParseMonth(month); err != nil {
		return &ValidationError{Rule: err.Error()}
	}
	rec, err := s.repo.GetReceivable(ctx, id)
	if err != nil {
		return err
	}
	if rec.Status == models.ReceivablePaid {
		return &GuardViolation{Rule: "receivable already settled"}
	}

	now := time.Now()
	if err := s.repo.UpdateReceivable(ctx, id, map[string]any{
		"status":   models.ReceivablePaid,
		"paidDate": now,
	}); err != nil {
		return err
	}

	// The steps below are not transactional. A failure leaves the receivable
	// PAID with partial side effects; re-invoking hits the guard above, so the
	// error must say exactly how far settlement got.
	if _, err := s.repo.AddIncome(ctx, models.IncomeRecord{
		Source:            "Received from " + rec.Title,
		Amount:            rec.Amount,
		Month:             month,
		Date:              now,
		IsSystemGenerated: true,
		CreatedAt:         now,
	}); err != nil {
		return fmt.Errorf("settle receivable %s: marked paid but income posting failed: %w", id, err)
	}

	linked, ok, err := s.findLinkedExpense(ctx, rec)
	if err != nil {
		return fmt.Errorf("settle receivable %s: income posted but linked expense lookup failed: %w", id, err)
	}
	if ok {
		if err := s.repo.UpdateExpense(ctx, linked.ID, map[string]any{
			"status":   models.ExpensePaid,
			"paidDate": now,
		}); err != nil {
			return fmt.Errorf("settle receivable %s: income posted but expense update failed: %w", id, err)
		}
	}

	s.log.Infof("Receivable %s settled: %s %.2f", id, rec.Title, rec.Amount)
	return nil
}

// RemoveReceivable deletes a PENDING receivable along with its linked active
// expense. Settled receivables are history and cannot be deleted.
func (s *Engine) RemoveReceivable(ctx context.Context, id string) error {
	rec, err := s.repo.GetReceivable(ctx, id)
	if err != nil {
		return err
	}
	if rec.Status == models.ReceivablePaid {
		return &GuardViolation{Rule: "cannot delete a settled receivable"}
	}

	linked, ok, err := s.findLinkedExpense(ctx, rec)
	if err != nil {
		return err
	}
	if ok && linked.Active() {
		if err := s.repo.DeleteExpense(ctx, linked.ID); err != nil {
			return fmt.Errorf("delete receivable %s: linked expense removal failed: %w", id, err)
		}
	}
	if err := s.repo.DeleteReceivable(ctx, id); err != nil {
		return fmt.Errorf("delete receivable %s: linked expense removed but receivable deletion failed: %w", id, err)
	}
	s.log.Infof("Receivable %s deleted: %s", id, rec.Title)
	return nil
}
