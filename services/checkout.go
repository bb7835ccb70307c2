package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"esgportal/errs"
	"esgportal/models"
	"esgportal/payment"

	"go.uber.org/zap"
)

// DefaultReturnPath is where a cancelled checkout lands when no return path is given.
const DefaultReturnPath = "/dashboard"

// SuccessPath is the page the provider returns to after payment.
const SuccessPath = "/payment/success"

// CheckoutState is a step of one checkout invocation.
type CheckoutState int

const (
	CheckoutIdle CheckoutState = iota
	CheckoutCreatingSession
	CheckoutRedirectingDirect
	CheckoutRedirectingViaProvider
	CheckoutFailed
)

func (s CheckoutState) String() string {
	switch s {
	case CheckoutIdle:
		return "idle"
	case CheckoutCreatingSession:
		return "creating_session"
	case CheckoutRedirectingDirect:
		return "redirecting_direct"
	case CheckoutRedirectingViaProvider:
		return "redirecting_via_provider"
	case CheckoutFailed:
		return "failed"
	default:
		return fmt.Sprintf("CheckoutState(%d)", int(s))
	}
}

// Navigator performs the full-page redirect to the payment page.
type Navigator interface {
	Navigate(url string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(url string)

func (f NavigatorFunc) Navigate(url string) { f(url) }

// CheckoutRecorder stores created checkout sessions for reconciliation.
type CheckoutRecorder interface {
	Insert(ctx context.Context, cs *models.CheckoutSession) error
}

// CheckoutRequest is one upgrade attempt.
type CheckoutRequest struct {
	PriceType  models.PriceType
	ReturnPath string
	// Origin is the scheme and host the provider sends the browser back to.
	Origin string
}

// CheckoutFlow is the record of one invocation.
type CheckoutFlow struct {
	State       CheckoutState
	History     []CheckoutState
	SessionID   string
	RedirectURL string
	Err         error
}

func (f *CheckoutFlow) to(s CheckoutState) {
	f.State = s
	f.History = append(f.History, s)
}

func (f *CheckoutFlow) fail(err error) (*CheckoutFlow, error) {
	f.Err = err
	f.to(CheckoutFailed)
	return f, err
}

// CheckoutOrchestrator creates a hosted checkout session and sends the browser to it.
type CheckoutOrchestrator struct {
	backend  payment.Backend
	provider payment.ProviderLoader
	recorder CheckoutRecorder
	log      *zap.Logger
	now      func() time.Time
}

func NewCheckoutOrchestrator(backend payment.Backend, provider payment.ProviderLoader, recorder CheckoutRecorder, log *zap.Logger) *CheckoutOrchestrator {
	return &CheckoutOrchestrator{
		backend:  backend,
		provider: provider,
		recorder: recorder,
		log:      log,
		now:      time.Now,
	}
}

// Checkout runs one invocation. Each call creates a new backend session; callers
// that need at-most-once must guard it themselves.
func (o *CheckoutOrchestrator) Checkout(ctx context.Context, sess *models.Session, req CheckoutRequest, nav Navigator) (*CheckoutFlow, error) {
	flow := &CheckoutFlow{State: CheckoutIdle, History: []CheckoutState{CheckoutIdle}}

	if sess == nil || sess.Token == "" || sess.IdentityID == "" {
		return flow.fail(errs.ErrNotAuthenticated)
	}
	if sess.IdentityID == demoUserID {
		return flow.fail(errs.ErrDemoReadOnly)
	}
	if !IsValidPriceType(req.PriceType) {
		return flow.fail(errs.ErrInvalidPriceType)
	}
	origin := strings.TrimRight(req.Origin, "/")
	if origin == "" {
		return flow.fail(errors.New("checkout: origin is required"))
	}

	flow.to(CheckoutCreatingSession)
	resp, err := o.backend.CreateCheckoutSession(ctx, payment.CreateSessionRequest{
		PriceType:  req.PriceType,
		SuccessURL: origin + SuccessPath,
		CancelURL:  origin + LocalPath(req.ReturnPath, DefaultReturnPath),
	}, sess.Token)
	if err != nil {
		if !errors.Is(err, errs.ErrPaymentSessionCreationFailed) && !errors.Is(err, errs.ErrNotAuthenticated) {
			err = fmt.Errorf("%w: %w", errs.ErrPaymentSessionCreationFailed, err)
		}
		o.log.Warn("checkout session creation failed", zap.String("identity_id", sess.IdentityID), zap.Error(err))
		return flow.fail(err)
	}
	flow.SessionID = resp.SessionID
	o.record(ctx, sess, req.PriceType, resp)

	if resp.URL != "" {
		flow.RedirectURL = resp.URL
		flow.to(CheckoutRedirectingDirect)
		nav.Navigate(resp.URL)
		return flow, nil
	}

	provider, err := o.provider()
	if err != nil {
		if !errors.Is(err, errs.ErrPaymentProviderUnavailable) {
			err = fmt.Errorf("%w: %w", errs.ErrPaymentProviderUnavailable, err)
		}
		return flow.fail(err)
	}
	target, err := provider.CheckoutURL(resp.SessionID)
	if err != nil {
		return flow.fail(fmt.Errorf("%w: %w", errs.ErrPaymentProviderUnavailable, err))
	}
	flow.RedirectURL = target
	flow.to(CheckoutRedirectingViaProvider)
	nav.Navigate(target)
	return flow, nil
}

// record is best effort: the redirect goes ahead when the store is down.
func (o *CheckoutOrchestrator) record(ctx context.Context, sess *models.Session, price models.PriceType, resp *payment.CreateSessionResponse) {
	if o.recorder == nil || resp.SessionID == "" {
		return
	}
	cs := &models.CheckoutSession{
		SessionID:  resp.SessionID,
		URL:        resp.URL,
		PriceType:  price,
		IdentityID: sess.IdentityID,
		Status:     models.CheckoutPending,
		CreatedAt:  o.now(),
	}
	if err := o.recorder.Insert(ctx, cs); err != nil {
		o.log.Warn("failed to record checkout session", zap.String("session_id", resp.SessionID), zap.Error(err))
	}
}

// LocalPath returns p when it is a path on this site, otherwise fallback.
func LocalPath(p, fallback string) string {
	if p == "" || !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.HasPrefix(p, "/\\") {
		return fallback
	}
	if strings.ContainsAny(p, "\r\n") {
		return fallback
	}
	return p
}
