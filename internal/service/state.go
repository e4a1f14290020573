package service

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/karthn/budget-service/internal/models"
	"github.com/karthn/budget-service/internal/repository"
	"github.com/karthn/budget-service/internal/utils"
)

// Subscription is a scoped handle on dashboard emissions. Close releases it.
type Subscription struct {
	C      <-chan models.DashboardSummary
	cancel func()
}

// Close releases the subscription
func (s *Subscription) Close() {
	s.cancel()
}

// StateManager owns the month-scoped record sets behind the dashboard and
// fans out recomputed summaries to subscribers. A summary is only emitted
// once income, expenses and receivables have all loaded for the selected
// month; switching months cancels in-flight loads and discards their results.
type StateManager struct {
	repo *repository.Repository
	log  *logrus.Logger

	mu     sync.Mutex
	month  string
	gen    uint64
	cancel context.CancelFunc
	subs   map[uint64]chan models.DashboardSummary
	nextID uint64
}

// NewStateManager initializes a state manager over the repository
func NewStateManager(repo *repository.Repository, log *logrus.Logger) *StateManager {
	return &StateManager{
		repo: repo,
		log:  log,
		subs: map[uint64]chan models.DashboardSummary{},
	}
}

// Subscribe registers a dashboard listener. The channel holds the latest
// summary; a slow reader only ever misses intermediate states.
func (m *StateManager) Subscribe() *Subscription {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	ch := make(chan models.DashboardSummary, 1)
	m.subs[id] = ch
	return &Subscription{
		C: ch,
		cancel: func() {
			m.mu.Lock()
			delete(m.subs, id)
			m.mu.Unlock()
		},
	}
}

// SetMonth switches the selected month. Loads still in flight for the
// previous month are cancelled; a late result from them cannot overwrite the
// new month's state.
func (m *StateManager) SetMonth(month string) error {
	if _, err := utils.ParseMonth(month); err != nil {
		return &ValidationError{Rule: err.Error()}
	}
	m.start(month)
	return nil
}

// Refresh recomputes the current month after a mutation.
func (m *StateManager) Refresh() {
	m.mu.Lock()
	month := m.month
	m.mu.Unlock()
	if month == "" {
		return
	}
	m.start(month)
}

// Close cancels any in-flight load.
func (m *StateManager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

func (m *StateManager) start(month string) {
	m.mu.Lock()
	m.gen++
	gen := m.gen
	m.month = month
	if m.cancel != nil {
		m.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.mu.Unlock()
	go m.load(ctx, gen, month)
}

func (m *StateManager) load(ctx context.Context, gen uint64, month string) {
	prevMonth, err := utils.PrevMonth(month)
	if err != nil {
		m.log.Errorf("State load for %s failed: %v", month, err)
		return
	}
	incomes, err := m.repo.IncomesByMonth(ctx, month)
	if err != nil {
		m.log.Errorf("State load for %s failed: %v", month, err)
		return
	}
	expenses, err := m.repo.ExpensesByMonth(ctx, month)
	if err != nil {
		m.log.Errorf("State load for %s failed: %v", month, err)
		return
	}
	receivables, err := m.repo.ReceivablesByMonth(ctx, month)
	if err != nil {
		m.log.Errorf("State load for %s failed: %v", month, err)
		return
	}
	prevExpenses, err := m.repo.ExpensesByMonth(ctx, prevMonth)
	if err != nil {
		m.log.Errorf("State load for %s failed: %v", month, err)
		return
	}
	upcoming, err := m.repo.UpcomingByMonth(ctx, month)
	if err != nil {
		m.log.Errorf("State load for %s failed: %v", month, err)
		return
	}
	summary, err := BuildDashboard(month, time.Now(), incomes, expenses, receivables, prevMonth, prevExpenses, upcoming)
	if err != nil {
		m.log.Errorf("State load for %s failed: %v", month, err)
		return
	}
	m.commit(gen, summary)
}

// commit publishes a summary unless a newer load has superseded it.
func (m *StateManager) commit(gen uint64, summary models.DashboardSummary) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen {
		m.log.Debugf("Discarding stale dashboard for %s", summary.Month)
		return
	}
	for _, ch := range m.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- summary:
		default:
		}
	}
}
