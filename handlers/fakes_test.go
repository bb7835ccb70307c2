package handlers

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"esgportal/errs"
	"esgportal/models"
	"esgportal/payment"
)

type memAccounts struct {
	mu      sync.Mutex
	byEmail map[string]*models.Account
}

func (m *memAccounts) Create(_ context.Context, a *models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[a.Email]; ok {
		return errs.ErrAlreadyExists
	}
	m.byEmail[a.Email] = a
	return nil
}

func (m *memAccounts) GetByEmail(_ context.Context, email string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byEmail[email], nil
}

type memProfiles struct {
	mu   sync.Mutex
	rows map[string]models.UserProfile
	err  error
}

func (m *memProfiles) Get(_ context.Context, id string) (*models.UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *memProfiles) SetTier(_ context.Context, id, email string, tier models.Tier) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.rows[id]
	p.ID, p.Email, p.Tier, p.Role = id, email, tier, models.RoleUser
	m.rows[id] = p
	return nil
}

func (m *memProfiles) tier(id string) models.Tier {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rows[id].Tier
}

type memCheckouts struct {
	mu   sync.Mutex
	rows map[string]*models.CheckoutSession
}

func (m *memCheckouts) Insert(_ context.Context, cs *models.CheckoutSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *cs
	m.rows[cs.SessionID] = &c
	return nil
}

func (m *memCheckouts) Complete(_ context.Context, sessionID, identityID string, price models.PriceType) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cs, ok := m.rows[sessionID]
	if !ok {
		cs = &models.CheckoutSession{SessionID: sessionID, IdentityID: identityID, PriceType: price}
		m.rows[sessionID] = cs
	}
	if cs.Status == models.CheckoutCompleted {
		return false, nil
	}
	cs.Status = models.CheckoutCompleted
	return true, nil
}

func (m *memCheckouts) CountByStatus(_ context.Context, identityID string) (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]int{}
	for _, cs := range m.rows {
		if cs.IdentityID == identityID {
			out[cs.Status]++
		}
	}
	return out, nil
}

func (m *memCheckouts) status(id string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cs, ok := m.rows[id]; ok {
		return cs.Status
	}
	return ""
}

type memDisclosures struct {
	mu   sync.Mutex
	rows []models.Disclosure
}

func (m *memDisclosures) Insert(_ context.Context, d *models.Disclosure) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, *d)
	return nil
}

func (m *memDisclosures) Get(_ context.Context, userID, id string) (*models.Disclosure, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.rows[i].ID == id && m.rows[i].UserID == userID {
			d := m.rows[i]
			return &d, nil
		}
	}
	return nil, nil
}

func (m *memDisclosures) List(_ context.Context, userID string, _ int) ([]models.Disclosure, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Disclosure
	for _, d := range m.rows {
		if d.UserID == userID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *memDisclosures) Count(ctx context.Context, userID string) (int, error) {
	list, err := m.List(ctx, userID, 0)
	return len(list), err
}

type memTemplates struct {
	rows []models.QuestionnaireTemplate
}

func (m *memTemplates) Get(_ context.Context, j, v string) (*models.QuestionnaireTemplate, error) {
	for i := range m.rows {
		if m.rows[i].Jurisdiction == j && m.rows[i].Version == v {
			t := m.rows[i]
			return &t, nil
		}
	}
	return nil, nil
}

func (m *memTemplates) GetByID(_ context.Context, id string) (*models.QuestionnaireTemplate, error) {
	for i := range m.rows {
		if m.rows[i].ID == id {
			t := m.rows[i]
			return &t, nil
		}
	}
	return nil, nil
}

func (m *memTemplates) List(_ context.Context, j string) ([]models.QuestionnaireTemplate, error) {
	var out []models.QuestionnaireTemplate
	for _, t := range m.rows {
		if j == "" || t.Jurisdiction == j {
			out = append(out, t)
		}
	}
	return out, nil
}

type fakeBackend struct {
	mu      sync.Mutex
	calls   int
	withURL bool
	err     error
}

func (b *fakeBackend) CreateCheckoutSession(_ context.Context, req payment.CreateSessionRequest, token string) (*payment.CreateSessionResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	if b.err != nil {
		return nil, b.err
	}
	if token == "" {
		return nil, errors.New("missing token")
	}
	id := fmt.Sprintf("cs_test_%d", b.calls)
	resp := &payment.CreateSessionResponse{SessionID: id}
	if b.withURL {
		resp.URL = "https://pay.example/" + id
	}
	return resp, nil
}

func (b *fakeBackend) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }
