package email

import (
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"

	"github.com/karthn/budget-service/internal/config"
	"github.com/karthn/budget-service/internal/models"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg *config.Config
	log *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, log *logrus.Logger) *Sender {
	return &Sender{cfg: cfg, log: log}
}

// Enabled reports whether SMTP is configured.
func (s *Sender) Enabled() bool {
	return s.cfg.SMTPHost != "" && s.cfg.ReminderEmail != ""
}

// SendUpcomingReminder sends a digest of payments due soon
func (s *Sender) SendUpcomingReminder(payments []models.UpcomingDue) error {
	if len(payments) == 0 {
		return nil
	}
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{s.cfg.ReminderEmail}
	e.Subject = fmt.Sprintf("Upcoming payments: %d due soon", len(payments))

	body := "The following payments are due soon:\n\n"
	for _, p := range payments {
		when := "today"
		if p.DueIn == 1 {
			when = "tomorrow"
		} else if p.DueIn > 1 {
			when = fmt.Sprintf("in %d days", p.DueIn)
		}
		body += fmt.Sprintf("- %s (%s): %.2f due %s (%s)\n",
			p.Description, p.Category, p.Amount, when, p.DueDate.Format("2006-01-02"))
	}
	body += "\nBudget Service"
	e.Text = []byte(body)

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	if err := e.Send(addr, auth); err != nil {
		s.log.Errorf("Failed to send reminder to %s: %v", s.cfg.ReminderEmail, err)
		return fmt.Errorf("failed to send reminder: %w", err)
	}
	s.log.Infof("Reminder sent to %s: %s", s.cfg.ReminderEmail, e.Subject)
	return nil
}
