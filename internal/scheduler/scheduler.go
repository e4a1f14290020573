package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/karthn/budget-service/internal/config"
	"github.com/karthn/budget-service/internal/models"
	"github.com/karthn/budget-service/internal/repository"
	"github.com/karthn/budget-service/internal/service"
	"github.com/karthn/budget-service/internal/utils/email"

	"github.com/karthn/budget-service/internal/utils"
)

// Scheduler runs the recurring jobs: the month-start carry-forward check and
// the daily payment reminder scan.
type Scheduler struct {
	cron   *cron.Cron
	engine *service.Engine
	repo   *repository.Repository
	mail   *email.Sender
	cfg    *config.Config
	log    *logrus.Logger
}

// New initializes the scheduler
func New(engine *service.Engine, repo *repository.Repository, mail *email.Sender, cfg *config.Config, log *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		engine: engine,
		repo:   repo,
		mail:   mail,
		cfg:    cfg,
		log:    log,
	}
}

// Start registers and starts the cron jobs.
func (s *Scheduler) Start() error {
	// Shortly after midnight on the first, so the new month opens with its
	// carried-forward balance before anyone looks at it.
	if _, err := s.cron.AddFunc("5 0 1 * *", s.runCarryForward); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("0 8 * * *", s.runReminders); err != nil {
		return err
	}
	s.cron.Start()
	s.log.Info("Scheduler started")
	return nil
}

// Stop halts the cron jobs.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

func (s *Scheduler) runCarryForward() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	month := utils.CurrentMonth()
	if err := s.engine.ProcessCarryForward(ctx, month); err != nil {
		s.log.Errorf("Carry forward job failed for %s: %v", month, err)
	}
}

func (s *Scheduler) runReminders() {
	if !s.mail.Enabled() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	now := time.Now()
	month := utils.CurrentMonth()
	payments, err := s.repo.UpcomingByMonth(ctx, month)
	if err != nil {
		s.log.Errorf("Reminder scan failed for %s: %v", month, err)
		return
	}
	var due []models.UpcomingDue
	for _, p := range payments {
		days := int(p.DueDate.Sub(now).Hours() / 24)
		if days >= 0 && days <= s.cfg.ReminderDays {
			due = append(due, models.UpcomingDue{UpcomingPayment: p, DueIn: days})
		}
	}
	if len(due) == 0 {
		return
	}
	if err := s.mail.SendUpcomingReminder(due); err != nil {
		s.log.Errorf("Reminder send failed: %v", err)
	}
}
