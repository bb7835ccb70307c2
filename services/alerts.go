package services

import (
	"context"
	"fmt"
	"time"

	"esgportal/models"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

// Mailer sends a plain-text email.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SendGridMailer delivers mail through the SendGrid v3 API.
type SendGridMailer struct {
	client *sendgrid.Client
	from   string
}

// NewSendGridMailer returns nil when apiKey or from is empty; callers skip mail then.
func NewSendGridMailer(apiKey, from string) *SendGridMailer {
	if apiKey == "" || from == "" {
		return nil
	}
	return &SendGridMailer{client: sendgrid.NewSendClient(apiKey), from: from}
}

func (m *SendGridMailer) Send(ctx context.Context, to, subject, body string) error {
	message := mail.NewV3MailInit(mail.NewEmail("ESG Portal", m.from), subject, mail.NewEmail("", to),
		mail.NewContent("text/plain", body))
	resp, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// UpgradeAlerts tells the customer and the team about a completed upgrade.
// Delivery is best effort; failures are logged and never returned.
type UpgradeAlerts struct {
	mailer Mailer
	slack  *SlackNotifier
	log    *zap.Logger
}

func NewUpgradeAlerts(mailer Mailer, slack *SlackNotifier, log *zap.Logger) *UpgradeAlerts {
	return &UpgradeAlerts{mailer: mailer, slack: slack, log: log}
}

// UpgradeCompleted describes a fulfilled checkout.
type UpgradeCompleted struct {
	SessionID  string
	IdentityID string
	Email      string
	PriceType  models.PriceType
	Tier       models.Tier
	At         time.Time
}

func (a *UpgradeAlerts) Notify(ctx context.Context, ev UpgradeCompleted) {
	if a == nil {
		return
	}
	if a.mailer != nil && ev.Email != "" {
		subject, body := receipt(ev)
		if err := a.mailer.Send(ctx, ev.Email, subject, body); err != nil {
			a.log.Warn("receipt email failed", zap.String("session_id", ev.SessionID), zap.Error(err))
		} else {
			a.log.Info("receipt email sent", zap.String("session_id", ev.SessionID))
		}
	} else {
		a.log.Debug("mail not configured, skipping receipt")
	}

	if a.slack != nil {
		text := fmt.Sprintf("New upgrade\n\nAccount: %s\nPlan: %s\nTier: %s\nCheckout: %s",
			ev.Email, planName(ev.PriceType), ev.Tier, ev.SessionID)
		if err := a.slack.Post(ctx, text); err != nil {
			a.log.Warn("slack notification failed", zap.Error(err))
		}
	}
}

func receipt(ev UpgradeCompleted) (string, string) {
	subject := fmt.Sprintf("Your ESG Portal %s is active", planName(ev.PriceType))
	body := fmt.Sprintf(`Thanks for upgrading.

Your account is now on the %s tier and can generate disclosures.

PLAN: %s
DATE: %s

---
Checkout ID: %s`,
		ev.Tier,
		planName(ev.PriceType),
		ev.At.UTC().Format(time.RFC1123),
		ev.SessionID,
	)
	return subject, body
}

func planName(p models.PriceType) string {
	switch p {
	case models.PriceAnnual:
		return "annual plan"
	case models.PricePerReport:
		return "single report"
	default:
		return string(p)
	}
}
