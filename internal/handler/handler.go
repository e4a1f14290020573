package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/karthn/budget-service/internal/integrations/cbr"
	"github.com/karthn/budget-service/internal/models"
	"github.com/karthn/budget-service/internal/planner"
	"github.com/karthn/budget-service/internal/repository"
	"github.com/karthn/budget-service/internal/service"
	"github.com/karthn/budget-service/internal/utils"
)

// Handler exposes the engine over HTTP
type Handler struct {
	engine *service.Engine
	repo   *repository.Repository
	state  *service.StateManager
	rates  *cbr.Client
	alloc  planner.AllocatorConfig
}

// NewHandler initializes the HTTP handlers
func NewHandler(engine *service.Engine, repo *repository.Repository, state *service.StateManager, rates *cbr.Client) *Handler {
	return &Handler{
		engine: engine,
		repo:   repo,
		state:  state,
		rates:  rates,
		alloc:  planner.DefaultAllocatorConfig(),
	}
}

// refresh recomputes the dashboard for stream subscribers after a mutation.
func (h *Handler) refresh() {
	h.state.Refresh()
}

// Register wires all routes onto the router.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/income", h.CreateIncome).Methods("POST")
	r.HandleFunc("/income", h.ListIncome).Methods("GET")
	r.HandleFunc("/income/{id}", h.UpdateIncome).Methods("PUT")
	r.HandleFunc("/income/{id}", h.DeleteIncome).Methods("DELETE")

	r.HandleFunc("/expenses", h.CreateExpense).Methods("POST")
	r.HandleFunc("/expenses", h.ListExpenses).Methods("GET")
	r.HandleFunc("/expenses/{id}", h.UpdateExpense).Methods("PUT")
	r.HandleFunc("/expenses/{id}", h.DeleteExpense).Methods("DELETE")

	r.HandleFunc("/receivables", h.CreateReceivable).Methods("POST")
	r.HandleFunc("/receivables", h.ListReceivables).Methods("GET")
	r.HandleFunc("/receivables/{id}/settle", h.SettleReceivable).Methods("POST")
	r.HandleFunc("/receivables/{id}", h.DeleteReceivable).Methods("DELETE")

	r.HandleFunc("/upcoming", h.CreateUpcoming).Methods("POST")
	r.HandleFunc("/upcoming/{id}/paid", h.MarkUpcomingPaid).Methods("POST")
	r.HandleFunc("/upcoming/{id}", h.DeleteUpcoming).Methods("DELETE")

	r.HandleFunc("/dashboard", h.Dashboard).Methods("GET")
	r.HandleFunc("/dashboard/stream", h.DashboardStream).Methods("GET")
	r.HandleFunc("/carry-forward/{month}/reset", h.ResetCarryForward).Methods("POST")

	r.HandleFunc("/budget-plans", h.AllocateBudget).Methods("POST")
	r.HandleFunc("/budget-plans/{month}", h.GetBudgetPlan).Methods("GET")

	r.HandleFunc("/plans", h.CreatePlan).Methods("POST")
	r.HandleFunc("/plans", h.ListPlans).Methods("GET")
	r.HandleFunc("/plans/{id}", h.GetPlan).Methods("GET")
	r.HandleFunc("/plans/{id}", h.UpdatePlan).Methods("PUT")
	r.HandleFunc("/plans/{id}", h.DeletePlan).Methods("DELETE")

	r.HandleFunc("/rates/suggested", h.SuggestedRate).Methods("GET")
}

func respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

func respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case service.IsValidation(err):
		status = http.StatusBadRequest
	case service.IsGuardViolation(err):
		status = http.StatusConflict
	case errors.Is(err, repository.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, planner.ErrNonTerminating):
		status = http.StatusBadRequest
	}
	respond(w, status, map[string]string{"error": err.Error()})
}

func monthParam(r *http.Request) string {
	month := r.URL.Query().Get("month")
	if month == "" {
		return utils.CurrentMonth()
	}
	return month
}

// CreateIncome handles POST /income
func (h *Handler) CreateIncome(w http.ResponseWriter, r *http.Request) {
	var rec models.IncomeRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	saved, err := h.engine.AddIncome(r.Context(), rec)
	if err != nil {
		respondError(w, err)
		return
	}
	h.refresh()
	respond(w, http.StatusCreated, saved)
}

// ListIncome handles GET /income?month=YYYY-MM
func (h *Handler) ListIncome(w http.ResponseWriter, r *http.Request) {
	recs, err := h.repo.IncomesByMonth(r.Context(), monthParam(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, recs)
}

// UpdateIncome handles PUT /income/{id}
func (h *Handler) UpdateIncome(w http.ResponseWriter, r *http.Request) {
	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if err := h.engine.UpdateIncome(r.Context(), mux.Vars(r)["id"], fields); err != nil {
		respondError(w, err)
		return
	}
	h.refresh()
	respond(w, http.StatusOK, nil)
}

// DeleteIncome handles DELETE /income/{id}
func (h *Handler) DeleteIncome(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.DeleteIncome(r.Context(), mux.Vars(r)["id"]); err != nil {
		respondError(w, err)
		return
	}
	h.refresh()
	respond(w, http.StatusNoContent, nil)
}

// CreateExpense handles POST /expenses
func (h *Handler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	var rec models.ExpenseRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	saved, err := h.engine.AddExpense(r.Context(), rec)
	if err != nil {
		respondError(w, err)
		return
	}
	h.refresh()
	respond(w, http.StatusCreated, saved)
}

// ListExpenses handles GET /expenses?month=YYYY-MM
func (h *Handler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	recs, err := h.repo.ExpensesByMonth(r.Context(), monthParam(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, recs)
}

// UpdateExpense handles PUT /expenses/{id}
func (h *Handler) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if err := h.engine.UpdateExpense(r.Context(), mux.Vars(r)["id"], fields); err != nil {
		respondError(w, err)
		return
	}
	h.refresh()
	respond(w, http.StatusOK, nil)
}

// DeleteExpense handles DELETE /expenses/{id}
func (h *Handler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.DeleteExpense(r.Context(), mux.Vars(r)["id"]); err != nil {
		respondError(w, err)
		return
	}
	h.refresh()
	respond(w, http.StatusNoContent, nil)
}

// CreateReceivable handles POST /receivables
func (h *Handler) CreateReceivable(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title  string  `json:"title"`
		Amount float64 `json:"amount"`
		Month  string  `json:"month"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	rec, err := h.engine.AddReceivable(r.Context(), req.Title, req.Amount, req.Month)
	if err != nil {
		respondError(w, err)
		return
	}
	h.refresh()
	respond(w, http.StatusCreated, rec)
}

// ListReceivables handles GET /receivables?month=YYYY-MM
func (h *Handler) ListReceivables(w http.ResponseWriter, r *http.Request) {
	recs, err := h.repo.ReceivablesByMonth(r.Context(), monthParam(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, recs)
}

// SettleReceivable handles POST /receivables/{id}/settle
func (h *Handler) SettleReceivable(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Month string `json:"month"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if err := h.engine.SettleReceivable(r.Context(), mux.Vars(r)["id"], req.Month); err != nil {
		respondError(w, err)
		return
	}
	h.refresh()
	respond(w, http.StatusOK, nil)
}

// DeleteReceivable handles DELETE /receivables/{id}
func (h *Handler) DeleteReceivable(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.RemoveReceivable(r.Context(), mux.Vars(r)["id"]); err != nil {
		respondError(w, err)
		return
	}
	h.refresh()
	respond(w, http.StatusNoContent, nil)
}

// CreateUpcoming handles POST /upcoming
func (h *Handler) CreateUpcoming(w http.ResponseWriter, r *http.Request) {
	var rec models.UpcomingPayment
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	saved, err := h.engine.AddUpcoming(r.Context(), rec)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusCreated, saved)
}

// MarkUpcomingPaid handles POST /upcoming/{id}/paid
func (h *Handler) MarkUpcomingPaid(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Month string `json:"month"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	expense, err := h.engine.MarkUpcomingPaid(r.Context(), mux.Vars(r)["id"], req.Month)
	if err != nil {
		respondError(w, err)
		return
	}
	h.refresh()
	respond(w, http.StatusOK, expense)
}

// DeleteUpcoming handles DELETE /upcoming/{id}
func (h *Handler) DeleteUpcoming(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.DeleteUpcoming(r.Context(), mux.Vars(r)["id"]); err != nil {
		respondError(w, err)
		return
	}
	h.refresh()
	respond(w, http.StatusNoContent, nil)
}

// Dashboard handles GET /dashboard?month=YYYY-MM. The carry-forward check
// runs to completion before the month's totals are read.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	month := monthParam(r)
	if err := h.engine.ProcessCarryForward(r.Context(), month); err != nil {
		respondError(w, err)
		return
	}
	summary, err := h.engine.Dashboard(r.Context(), month, time.Now())
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, summary)
}

// DashboardStream handles GET /dashboard/stream?month=YYYY-MM: server-sent
// events carrying the dashboard summary, re-emitted after each mutation.
func (h *Handler) DashboardStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respond(w, http.StatusInternalServerError, map[string]string{"error": "streaming unsupported"})
		return
	}
	month := monthParam(r)
	if err := h.engine.ProcessCarryForward(r.Context(), month); err != nil {
		respondError(w, err)
		return
	}

	sub := h.state.Subscribe()
	defer sub.Close()
	if err := h.state.SetMonth(month); err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case summary := <-sub.C:
			payload, err := json.Marshal(summary)
			if err != nil {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		}
	}
}

// ResetCarryForward handles POST /carry-forward/{month}/reset
func (h *Handler) ResetCarryForward(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.ResetCarryForward(r.Context(), mux.Vars(r)["month"]); err != nil {
		respondError(w, err)
		return
	}
	h.refresh()
	respond(w, http.StatusOK, nil)
}

// AllocateBudget handles POST /budget-plans
func (h *Handler) AllocateBudget(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Month      string                        `json:"month"`
		Income     float64                       `json:"income"`
		Priorities []models.BudgetType           `json:"priorities"`
		Fixed      map[models.BudgetType]float64 `json:"fixed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if _, err := utils.ParseMonth(req.Month); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	plan := planner.BuildBudgetPlan(h.alloc, req.Month, req.Income, req.Priorities, req.Fixed, time.Now())
	if err := h.repo.SaveBudgetPlan(r.Context(), plan); err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusCreated, map[string]any{
		"plan": plan,
		"tips": planner.BudgetTips(plan),
	})
}

// GetBudgetPlan handles GET /budget-plans/{month}
func (h *Handler) GetBudgetPlan(w http.ResponseWriter, r *http.Request) {
	plan, err := h.repo.GetBudgetPlan(r.Context(), mux.Vars(r)["month"])
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, plan)
}

type planRequest struct {
	Input  planner.GoalInput `json:"input"`
	Choice models.PlanChoice `json:"choice"`
}

// CreatePlan handles POST /plans
func (h *Handler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	plan, err := planner.BuildPlan(req.Input, req.Choice, time.Now())
	if err != nil {
		respondError(w, err)
		return
	}
	saved, err := h.repo.AddGoalPlan(r.Context(), plan)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusCreated, map[string]any{
		"plan": saved,
		"tips": planner.GoalTips(req.Input),
	})
}

// ListPlans handles GET /plans
func (h *Handler) ListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.repo.GoalPlans(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, plans)
}

// GetPlan handles GET /plans/{id}
func (h *Handler) GetPlan(w http.ResponseWriter, r *http.Request) {
	plan, err := h.repo.GetGoalPlan(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, plan)
}

// UpdatePlan handles PUT /plans/{id}: category edits or a strategy switch
// rebuild the schedule, keeping the plan id.
func (h *Handler) UpdatePlan(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	existing, err := h.repo.GetGoalPlan(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	var req planRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	plan, err := planner.BuildPlan(req.Input, req.Choice, time.Now())
	if err != nil {
		respondError(w, err)
		return
	}
	plan.ID = id
	plan.CreatedAt = existing.CreatedAt
	if err := h.repo.SaveGoalPlan(r.Context(), plan); err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, plan)
}

// DeletePlan handles DELETE /plans/{id}
func (h *Handler) DeletePlan(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.DeleteGoalPlan(r.Context(), mux.Vars(r)["id"]); err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusNoContent, nil)
}

// SuggestedRate handles GET /rates/suggested: a default annual rate for loan
// plans, derived from the central bank key rate.
func (h *Handler) SuggestedRate(w http.ResponseWriter, r *http.Request) {
	rate, err := h.rates.SuggestedAnnualRate()
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]float64{"annual_rate_pct": rate})
}
