package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/karthn/budget-service/internal/models"
)

// Repository provides typed access to the record store collections
type Repository struct {
	store Store
}

// NewRepository initializes a new repository over a record store
func NewRepository(store Store) *Repository {
	return &Repository{store: store}
}

func decode[T any](doc Document) (T, error) {
	var rec T
	if err := json.Unmarshal(doc.Data, &rec); err != nil {
		return rec, fmt.Errorf("failed to decode record %s: %w", doc.ID, err)
	}
	return rec, nil
}

// IncomesByMonth returns all income records for a month
func (r *Repository) IncomesByMonth(ctx context.Context, month string) ([]models.IncomeRecord, error) {
	docs, err := r.store.Query(ctx, CollectionIncome, month)
	if err != nil {
		return nil, err
	}
	recs := make([]models.IncomeRecord, 0, len(docs))
	for _, doc := range docs {
		rec, err := decode[models.IncomeRecord](doc)
		if err != nil {
			return nil, err
		}
		rec.ID = doc.ID
		recs = append(recs, rec)
	}
	return recs, nil
}

// GetIncome returns a single income record by id
func (r *Repository) GetIncome(ctx context.Context, id string) (models.IncomeRecord, error) {
	doc, err := r.store.Get(ctx, CollectionIncome, id)
	if err != nil {
		return models.IncomeRecord{}, err
	}
	rec, err := decode[models.IncomeRecord](doc)
	if err != nil {
		return models.IncomeRecord{}, err
	}
	rec.ID = doc.ID
	return rec, nil
}

// AddIncome inserts an income record and returns it with its assigned id
func (r *Repository) AddIncome(ctx context.Context, rec models.IncomeRecord) (models.IncomeRecord, error) {
	id, err := r.store.Insert(ctx, CollectionIncome, rec)
	if err != nil {
		return models.IncomeRecord{}, err
	}
	rec.ID = id
	return rec, nil
}

// UpdateIncome merges partial fields into an income record
func (r *Repository) UpdateIncome(ctx context.Context, id string, fields map[string]any) error {
	return r.store.Update(ctx, CollectionIncome, id, fields)
}

// DeleteIncome removes an income record
func (r *Repository) DeleteIncome(ctx context.Context, id string) error {
	return r.store.Delete(ctx, CollectionIncome, id)
}

// ExpensesByMonth returns all expense records for a month
func (r *Repository) ExpensesByMonth(ctx context.Context, month string) ([]models.ExpenseRecord, error) {
	docs, err := r.store.Query(ctx, CollectionExpenses, month)
	if err != nil {
		return nil, err
	}
	recs := make([]models.ExpenseRecord, 0, len(docs))
	for _, doc := range docs {
		rec, err := decode[models.ExpenseRecord](doc)
		if err != nil {
			return nil, err
		}
		rec.ID = doc.ID
		recs = append(recs, rec)
	}
	return recs, nil
}

// GetExpense returns a single expense record by id
func (r *Repository) GetExpense(ctx context.Context, id string) (models.ExpenseRecord, error) {
	doc, err := r.store.Get(ctx, CollectionExpenses, id)
	if err != nil {
		return models.ExpenseRecord{}, err
	}
	rec, err := decode[models.ExpenseRecord](doc)
	if err != nil {
		return models.ExpenseRecord{}, err
	}
	rec.ID = doc.ID
	return rec, nil
}

// AddExpense inserts an expense record and returns it with its assigned id
func (r *Repository) AddExpense(ctx context.Context, rec models.ExpenseRecord) (models.ExpenseRecord, error) {
	id, err := r.store.Insert(ctx, CollectionExpenses, rec)
	if err != nil {
		return models.ExpenseRecord{}, err
	}
	rec.ID = id
	return rec, nil
}

// UpdateExpense merges partial fields into an expense record
func (r *Repository) UpdateExpense(ctx context.Context, id string, fields map[string]any) error {
	return r.store.Update(ctx, CollectionExpenses, id, fields)
}

// DeleteExpense removes an expense record
func (r *Repository) DeleteExpense(ctx context.Context, id string) error {
	return r.store.Delete(ctx, CollectionExpenses, id)
}

// ReceivablesByMonth returns all receivables for a month, both pending and paid
func (r *Repository) ReceivablesByMonth(ctx context.Context, month string) ([]models.ReceivableRecord, error) {
	docs, err := r.store.Query(ctx, CollectionReceivables, month)
	if err != nil {
		return nil, err
	}
	recs := make([]models.ReceivableRecord, 0, len(docs))
	for _, doc := range docs {
		rec, err := decode[models.ReceivableRecord](doc)
		if err != nil {
			return nil, err
		}
		rec.ID = doc.ID
		recs = append(recs, rec)
	}
	return recs, nil
}

// GetReceivable returns a single receivable by id
func (r *Repository) GetReceivable(ctx context.Context, id string) (models.ReceivableRecord, error) {
	doc, err := r.store.Get(ctx, CollectionReceivables, id)
	if err != nil {
		return models.ReceivableRecord{}, err
	}
	rec, err := decode[models.ReceivableRecord](doc)
	if err != nil {
		return models.ReceivableRecord{}, err
	}
	rec.ID = doc.ID
	return rec, nil
}

// AddReceivable inserts a receivable and returns it with its assigned id
func (r *Repository) AddReceivable(ctx context.Context, rec models.ReceivableRecord) (models.ReceivableRecord, error) {
	id, err := r.store.Insert(ctx, CollectionReceivables, rec)
	if err != nil {
		return models.ReceivableRecord{}, err
	}
	rec.ID = id
	return rec, nil
}

// UpdateReceivable merges partial fields into a receivable
func (r *Repository) UpdateReceivable(ctx context.Context, id string, fields map[string]any) error {
	return r.store.Update(ctx, CollectionReceivables, id, fields)
}

// DeleteReceivable removes a receivable
func (r *Repository) DeleteReceivable(ctx context.Context, id string) error {
	return r.store.Delete(ctx, CollectionReceivables, id)
}

// UpcomingByMonth returns the upcoming payments for a month
func (r *Repository) UpcomingByMonth(ctx context.Context, month string) ([]models.UpcomingPayment, error) {
	docs, err := r.store.Query(ctx, CollectionUpcoming, month)
	if err != nil {
		return nil, err
	}
	recs := make([]models.UpcomingPayment, 0, len(docs))
	for _, doc := range docs {
		rec, err := decode[models.UpcomingPayment](doc)
		if err != nil {
			return nil, err
		}
		rec.ID = doc.ID
		recs = append(recs, rec)
	}
	return recs, nil
}

// GetUpcoming returns a single upcoming payment by id
func (r *Repository) GetUpcoming(ctx context.Context, id string) (models.UpcomingPayment, error) {
	doc, err := r.store.Get(ctx, CollectionUpcoming, id)
	if err != nil {
		return models.UpcomingPayment{}, err
	}
	rec, err := decode[models.UpcomingPayment](doc)
	if err != nil {
		return models.UpcomingPayment{}, err
	}
	rec.ID = doc.ID
	return rec, nil
}

// AddUpcoming inserts an upcoming payment and returns it with its assigned id
func (r *Repository) AddUpcoming(ctx context.Context, rec models.UpcomingPayment) (models.UpcomingPayment, error) {
	id, err := r.store.Insert(ctx, CollectionUpcoming, rec)
	if err != nil {
		return models.UpcomingPayment{}, err
	}
	rec.ID = id
	return rec, nil
}

// DeleteUpcoming removes an upcoming payment
func (r *Repository) DeleteUpcoming(ctx context.Context, id string) error {
	return r.store.Delete(ctx, CollectionUpcoming, id)
}

// SaveBudgetPlan upserts a monthly budget plan, keyed by its month
func (r *Repository) SaveBudgetPlan(ctx context.Context, plan models.BudgetPlan) error {
	return r.store.Set(ctx, CollectionBudgetPlans, plan.Month, plan)
}

// GetBudgetPlan returns the budget plan for a month
func (r *Repository) GetBudgetPlan(ctx context.Context, month string) (models.BudgetPlan, error) {
	doc, err := r.store.Get(ctx, CollectionBudgetPlans, month)
	if err != nil {
		return models.BudgetPlan{}, err
	}
	return decode[models.BudgetPlan](doc)
}

// AddGoalPlan inserts a goal plan and returns it with its assigned id
func (r *Repository) AddGoalPlan(ctx context.Context, plan models.GoalPlan) (models.GoalPlan, error) {
	id, err := r.store.Insert(ctx, CollectionGoalPlans, plan)
	if err != nil {
		return models.GoalPlan{}, err
	}
	plan.ID = id
	return plan, nil
}

// SaveGoalPlan replaces an existing goal plan (dashboard edits, strategy switch)
func (r *Repository) SaveGoalPlan(ctx context.Context, plan models.GoalPlan) error {
	if plan.ID == "" {
		return fmt.Errorf("goal plan has no id")
	}
	return r.store.Set(ctx, CollectionGoalPlans, plan.ID, plan)
}

// GetGoalPlan returns a goal plan by id
func (r *Repository) GetGoalPlan(ctx context.Context, id string) (models.GoalPlan, error) {
	doc, err := r.store.Get(ctx, CollectionGoalPlans, id)
	if err != nil {
		return models.GoalPlan{}, err
	}
	plan, err := decode[models.GoalPlan](doc)
	if err != nil {
		return models.GoalPlan{}, err
	}
	plan.ID = doc.ID
	return plan, nil
}

// GoalPlans returns all goal plans, newest first
func (r *Repository) GoalPlans(ctx context.Context) ([]models.GoalPlan, error) {
	docs, err := r.store.QueryAll(ctx, CollectionGoalPlans)
	if err != nil {
		return nil, err
	}
	plans := make([]models.GoalPlan, 0, len(docs))
	for _, doc := range docs {
		plan, err := decode[models.GoalPlan](doc)
		if err != nil {
			return nil, err
		}
		plan.ID = doc.ID
		plans = append(plans, plan)
	}
	sort.Slice(plans, func(i, j int) bool { return plans[i].CreatedAt.After(plans[j].CreatedAt) })
	return plans, nil
}

// DeleteGoalPlan removes a goal plan
func (r *Repository) DeleteGoalPlan(ctx context.Context, id string) error {
	return r.store.Delete(ctx, CollectionGoalPlans, id)
}

// CarryForwardMetadata returns the carry-forward bookkeeping document. A
// missing document yields empty metadata, not an error.
func (r *Repository) CarryForwardMetadata(ctx context.Context) (models.CarryForwardMetadata, error) {
	doc, err := r.store.Get(ctx, CollectionMetadata, MetadataCarryForward)
	if errors.Is(err, ErrNotFound) {
		return models.CarryForwardMetadata{ProcessedMonths: map[string]bool{}}, nil
	}
	if err != nil {
		return models.CarryForwardMetadata{}, err
	}
	meta, err := decode[models.CarryForwardMetadata](doc)
	if err != nil {
		return models.CarryForwardMetadata{}, err
	}
	if meta.ProcessedMonths == nil {
		meta.ProcessedMonths = map[string]bool{}
	}
	return meta, nil
}

// SetCarryForwardMetadata writes the carry-forward bookkeeping document
func (r *Repository) SetCarryForwardMetadata(ctx context.Context, meta models.CarryForwardMetadata) error {
	return r.store.Set(ctx, CollectionMetadata, MetadataCarryForward, meta)
}
