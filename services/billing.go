package services

import (
	"context"
	"fmt"
	"time"

	"esgportal/errs"
	"esgportal/models"
	"esgportal/payment"

	"go.uber.org/zap"
)

// TierWriter upserts an identity's tier.
type TierWriter interface {
	SetTier(ctx context.Context, id, email string, tier models.Tier) error
}

// CheckoutCompleter marks a checkout session completed. It reports false when
// the session was already completed.
type CheckoutCompleter interface {
	Complete(ctx context.Context, sessionID, identityID string, priceType models.PriceType) (bool, error)
}

// Fulfillment applies completed payments to profiles.
type Fulfillment struct {
	profiles  TierWriter
	checkouts CheckoutCompleter
	alerts    *UpgradeAlerts
	log       *zap.Logger
	now       func() time.Time
}

func NewFulfillment(profiles TierWriter, checkouts CheckoutCompleter, alerts *UpgradeAlerts, log *zap.Logger) *Fulfillment {
	return &Fulfillment{profiles: profiles, checkouts: checkouts, alerts: alerts, log: log, now: time.Now}
}

// HandleEvent applies a verified webhook event. Unknown event types are ignored.
// It reports whether the event changed anything.
func (f *Fulfillment) HandleEvent(ctx context.Context, ev *payment.Event) (bool, error) {
	if ev.Type != payment.EventCheckoutCompleted {
		f.log.Debug("ignoring billing event", zap.String("type", ev.Type), zap.String("event_id", ev.ID))
		return false, nil
	}
	return f.CompleteCheckout(ctx, ev.Data)
}

// CompleteCheckout grants the tier bought by a checkout. The tier write is an
// idempotent upsert and runs before the session is marked completed, so a
// retried delivery repairs a half-applied one. Notifications go out once.
func (f *Fulfillment) CompleteCheckout(ctx context.Context, data payment.EventData) (bool, error) {
	if data.SessionID == "" || data.IdentityID == "" {
		return false, fmt.Errorf("%w: session id and identity id are required", errs.ErrInvalidEvent)
	}
	if data.IdentityID == demoUserID {
		return false, errs.ErrDemoReadOnly
	}
	if !IsValidPriceType(data.PriceType) {
		return false, errs.ErrInvalidPriceType
	}

	tier := TierForPrice(data.PriceType)
	if err := f.profiles.SetTier(ctx, data.IdentityID, data.Email, tier); err != nil {
		return false, err
	}
	first, err := f.checkouts.Complete(ctx, data.SessionID, data.IdentityID, data.PriceType)
	if err != nil {
		return false, err
	}
	if !first {
		f.log.Info("checkout already completed, skipping", zap.String("session_id", data.SessionID))
		return false, nil
	}

	f.log.Info("checkout completed",
		zap.String("session_id", data.SessionID),
		zap.String("identity_id", data.IdentityID),
		zap.String("tier", string(tier)))
	f.alerts.Notify(ctx, UpgradeCompleted{
		SessionID:  data.SessionID,
		IdentityID: data.IdentityID,
		Email:      data.Email,
		PriceType:  data.PriceType,
		Tier:       tier,
		At:         f.now(),
	})
	return true, nil
}
