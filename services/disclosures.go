package services

import (
	"context"
	"strings"
	"time"

	"esgportal/errs"
	"esgportal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxListedDisclosures = 50

// DisclosureStore persists generated disclosures. Get returns nil, nil when absent.
type DisclosureStore interface {
	Insert(ctx context.Context, d *models.Disclosure) error
	Get(ctx context.Context, userID, id string) (*models.Disclosure, error)
	List(ctx context.Context, userID string, limit int) ([]models.Disclosure, error)
}

// GenerateRequest is a questionnaire submission.
type GenerateRequest struct {
	TemplateID string            `json:"template_id" binding:"required"`
	Title      string            `json:"title"`
	Answers    map[string]string `json:"answers"`
}

// Disclosures generates and reads disclosure narratives. Generate is where
// entitlement is enforced.
type Disclosures struct {
	profiles  *ProfileResolver
	templates *TemplateCatalog
	store     DisclosureStore
	log       *zap.Logger
	now       func() time.Time
}

func NewDisclosures(profiles *ProfileResolver, templates *TemplateCatalog, store DisclosureStore, log *zap.Logger) *Disclosures {
	return &Disclosures{profiles: profiles, templates: templates, store: store, log: log, now: time.Now}
}

// Generate checks the caller's current tier, then renders and stores a disclosure.
// A refused check returns errs.ErrNotEntitled together with the verdict.
func (s *Disclosures) Generate(ctx context.Context, identity *models.Identity, req GenerateRequest) (*models.Disclosure, EntitlementVerdict, error) {
	if identity == nil || identity.ID == "" {
		return nil, EntitlementVerdict{}, errs.ErrNotAuthenticated
	}
	if identity.Demo {
		return nil, EntitlementVerdict{}, errs.ErrDemoReadOnly
	}

	profile, err := s.profiles.Resolve(ctx, identity)
	if err != nil {
		return nil, EntitlementVerdict{}, err
	}
	verdict := CheckDisclosureEntitlement(ParseTier(string(profile.Tier)))
	if !verdict.Allowed {
		s.log.Info("disclosure generation refused",
			zap.String("user_id", identity.ID), zap.String("tier", string(profile.Tier)))
		return nil, verdict, errs.ErrNotEntitled
	}

	tpl, err := s.templates.GetByID(ctx, req.TemplateID)
	if err != nil {
		return nil, verdict, err
	}
	if tpl == nil {
		return nil, verdict, errs.ErrUnknownTemplate
	}

	narrative, err := RenderNarrative(tpl, req.Title, req.Answers)
	if err != nil {
		return nil, verdict, err
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = tpl.Name
	}
	d := &models.Disclosure{
		ID:           uuid.NewString(),
		UserID:       identity.ID,
		TemplateID:   tpl.ID,
		Jurisdiction: tpl.Jurisdiction,
		Title:        title,
		Narrative:    narrative,
		CreatedAt:    s.now(),
	}
	if err := s.store.Insert(ctx, d); err != nil {
		return nil, verdict, err
	}
	s.log.Info("disclosure generated", zap.String("disclosure_id", d.ID), zap.String("template_id", tpl.ID))
	return d, verdict, nil
}

// Get returns the caller's disclosure, or nil. The demo identity only ever
// sees the sample.
func (s *Disclosures) Get(ctx context.Context, identity *models.Identity, id string) (*models.Disclosure, error) {
	if identity == nil || identity.ID == "" {
		return nil, errs.ErrNotAuthenticated
	}
	if identity.Demo || IsDemoReportID(id) {
		return SampleDisclosure()
	}
	return s.store.Get(ctx, identity.ID, id)
}

// List returns the caller's most recent disclosures.
func (s *Disclosures) List(ctx context.Context, identity *models.Identity) ([]models.Disclosure, error) {
	if identity == nil || identity.ID == "" {
		return nil, errs.ErrNotAuthenticated
	}
	if identity.Demo {
		d, err := SampleDisclosure()
		if err != nil {
			return nil, err
		}
		return []models.Disclosure{*d}, nil
	}
	return s.store.List(ctx, identity.ID, maxListedDisclosures)
}
